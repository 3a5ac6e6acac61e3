package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
}

// Ref projects the user onto the {id, name} pair embedded in other records.
func (u User) Ref() Ref {
	return Ref{ID: u.ID, Name: u.Name}
}

// UserPatch carries the optional fields of a user update.
type UserPatch struct {
	Name  *string
	Email *string
}

// Apply copies the present fields onto user.
func (p UserPatch) Apply(user *User) {
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
}

// ValidateName rejects blank names and names shorter than MinNameLength runes.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be blank")
	}
	if len([]rune(name)) < MinNameLength {
		return fmt.Errorf("name must be at least %d characters", MinNameLength)
	}
	return nil
}

// ValidateEmail accepts a bare address, without display name or angle brackets.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email must not be blank")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return fmt.Errorf("email %q is not a valid address", email)
	}
	return nil
}

// FoldCase is the case folding used for email uniqueness and item search.
func FoldCase(s string) string {
	return strings.ToLower(s)
}
