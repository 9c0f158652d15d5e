package model

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

type Toast struct {
	Kind    ToastKind
	Message string
}

// View names a navigation target.
type View string

const (
	ViewHome     View = "/"
	ViewLogin    View = "/login"
	ViewRegister View = "/register"
)
