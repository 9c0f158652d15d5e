package model

import (
	"errors"
	"strings"
)

var (
	ErrUnknownRole = errors.New("unknown role")
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleStudent, RoleProfessor, RoleAdmin:
		return r, nil
	}
	return "", ErrUnknownRole
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
