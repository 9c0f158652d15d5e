package model

type EventStatus string

const (
	StatusPending  EventStatus = "pending"
	StatusApproved EventStatus = "approved"
	StatusRejected EventStatus = "rejected"
)

// Statuses lists the admin review tabs in display order.
var Statuses = []EventStatus{StatusPending, StatusApproved, StatusRejected}

func ParseStatus(s string) (EventStatus, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Location    string      `json:"location"`
	Status      EventStatus `json:"status"`
	RSVPCount   int         `json:"rsvpCount"`
	UserRSVP    bool        `json:"userRsvp"`
	CreatedBy   *User       `json:"createdBy,omitempty"`
}

type EventDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Location    string `json:"location"`
}

type SearchParams struct {
	Keyword   string `json:"keyword,omitempty"`
	Location  string `json:"location,omitempty"`
	Status    string `json:"status,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// IsZero reports whether no filter is set.
func (p SearchParams) IsZero() bool {
	return p == SearchParams{}
}
