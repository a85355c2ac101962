package user

import (
	"errors"
	"strings"
)

var ErrDisplayNameRequired = errors.New("display name is required")

// User owns zero or more linked items.
type User struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
}

type CreateUserParams struct {
	DisplayName string `json:"displayName"`
}

// Validate trims the display name and rejects an empty one.
func (p *CreateUserParams) Validate() error {
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if p.DisplayName == "" {
		return ErrDisplayNameRequired
	}
	return nil
}
