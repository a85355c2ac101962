package item

import (
	"errors"
	"strings"
)

var (
	ErrPublicTokenRequired = errors.New("public token is required")
	ErrInvalidUserID       = errors.New("valid user ID is required")
)

// Item is one linked bank connection. AccessToken is the upstream credential
// and is never serialized.
type Item struct {
	ID              string `json:"id"`
	AccessToken     string `json:"-"`
	UserID          int64  `json:"userId"`
	InstitutionID   string `json:"institutionId"`
	InstitutionName string `json:"institutionName"`
}

type CreateParams struct {
	ID              string
	AccessToken     string
	UserID          int64
	InstitutionID   string
	InstitutionName string
}

// LinkParams is the request to link a new item from a Link public token.
type LinkParams struct {
	PublicToken     string `json:"publicToken"`
	UserID          int64  `json:"userId"`
	InstitutionID   string `json:"institutionId"`
	InstitutionName string `json:"institutionName"`
}

func (p *LinkParams) Validate() error {
	p.PublicToken = strings.TrimSpace(p.PublicToken)
	if p.PublicToken == "" {
		return ErrPublicTokenRequired
	}
	if p.UserID <= 0 {
		return ErrInvalidUserID
	}
	return nil
}

// Status describes an item on the user dashboard. PublicToken is set when the
// item needs re-linking; Error is set when a re-link token could not be made.
type Status struct {
	ItemID      string `json:"itemId"`
	Institution string `json:"institution"`
	PublicToken string `json:"publicToken,omitempty"`
	Error       bool   `json:"error,omitempty"`
}
