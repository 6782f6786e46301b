package domain

import (
	"errors"
	"strings"
)

// User is the profile held by an authenticated session.
type User struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	EmailVerified bool     `json:"emailVerified"`
	PhoneVerified bool     `json:"phoneVerified"`
	DateOfBirth   string   `json:"dateOfBirth,omitempty"`
	Gender        Gender   `json:"gender,omitempty"`
	Address       *Address `json:"address,omitempty"`
}

// Address is the postal address edited on the profile page.
type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pinCode"`
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Validate validates the user after login or registration. Returns an error describing the first validation failure.
// Whitespace-only values count as missing.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("email is required")
	}
	if strings.TrimSpace(u.Phone) == "" {
		return errors.New("phone is required")
	}
	return nil
}

// Clone returns a copy of u that shares no memory with it.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Address != nil {
		a := *u.Address
		c.Address = &a
	}
	return &c
}

// UserPatch is a partial update of a User. Nil fields are left untouched.
type UserPatch struct {
	Name          *string  `json:"name,omitempty"`
	Email         *string  `json:"email,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	EmailVerified *bool    `json:"emailVerified,omitempty"`
	PhoneVerified *bool    `json:"phoneVerified,omitempty"`
	DateOfBirth   *string  `json:"dateOfBirth,omitempty"`
	Gender        *Gender  `json:"gender,omitempty"`
	Address       *Address `json:"address,omitempty"`
}

// Apply shallow-merges p onto u and returns the result. A non-nil Address
// replaces the existing address wholesale; callers wanting a field-level
// address edit must pass the complete address.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	if p.PhoneVerified != nil {
		u.PhoneVerified = *p.PhoneVerified
	}
	if p.DateOfBirth != nil {
		u.DateOfBirth = *p.DateOfBirth
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Address != nil {
		a := *p.Address
		u.Address = &a
	}
	return u
}

// IsEmpty reports whether p changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil &&
		p.EmailVerified == nil && p.PhoneVerified == nil &&
		p.DateOfBirth == nil && p.Gender == nil && p.Address == nil
}
