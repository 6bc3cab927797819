package user

import (
	"strings"

	"github.com/m-mizutani/gatherly/pkg/domain/types"
)

// User is a person known to the tenancy system. Only the fields needed to
// address mail are kept.
type User struct {
	ID          types.UserID `json:"id"`
	DisplayName string       `json:"display_name"`
	Email       string       `json:"email"`
}

// HasEmail reports whether the user can receive mail.
func (u *User) HasEmail() bool {
	return strings.TrimSpace(u.Email) != ""
}
