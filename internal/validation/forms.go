package validation

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength applies to the profile password-change form only;
// registration does not enforce strength.
const MinPasswordLength = 8

// LoginForm is the login tab. Email may also hold a phone number.
type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate requires both fields. No format check is made.
func (f LoginForm) Validate() error {
	if f.Email == "" || f.Password == "" {
		return fail(CategoryMissingField, "Please fill in all fields")
	}
	return nil
}

// RegistrationForm is the registration tab.
type RegistrationForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AgreeToTerms    bool   `json:"agreeToTerms"`
}

// Validate checks required fields, then the exact password confirmation, then terms acceptance.
func (f RegistrationForm) Validate() error {
	if f.Name == "" || f.Email == "" || f.Phone == "" || f.Password == "" {
		return fail(CategoryMissingField, "Please fill in all fields")
	}
	if f.Password != f.ConfirmPassword {
		return fail(CategoryMismatch, "Passwords do not match")
	}
	if !f.AgreeToTerms {
		return fail(CategoryTermsNotAccepted, "Please agree to Terms & Conditions")
	}
	return nil
}

// PasswordChangeForm is the profile security tab.
type PasswordChangeForm struct {
	Current string `json:"current"`
	New     string `json:"new"`
	Confirm string `json:"confirm"`
}

// Validate checks required fields, confirmation, then minimum length.
func (f PasswordChangeForm) Validate() error {
	if f.Current == "" || f.New == "" || f.Confirm == "" {
		return fail(CategoryMissingField, "Please fill in all password fields")
	}
	if f.New != f.Confirm {
		return fail(CategoryMismatch, "New passwords do not match")
	}
	if utf8.RuneCountInString(f.New) < MinPasswordLength {
		return fail(CategoryWeakPassword, "Password must be at least 8 characters long")
	}
	return nil
}

// Requirement is one line of the password checklist shown while typing.
type Requirement struct {
	Text string `json:"text"`
	Met  bool   `json:"met"`
}

// PasswordRequirements reports the advisory checklist for pw. Only the length
// rule is enforced by PasswordChangeForm.Validate.
func PasswordRequirements(pw string) []Requirement {
	var upper, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("!@#$%^&*", r):
			special = true
		}
	}
	return []Requirement{
		{Text: "At least 8 characters", Met: utf8.RuneCountInString(pw) >= MinPasswordLength},
		{Text: "One uppercase letter", Met: upper},
		{Text: "One number", Met: digit},
		{Text: "One special character", Met: special},
	}
}

// ProfileForm is the profile personal-information tab. Email and phone are
// read-only there and not part of the form.
type ProfileForm struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	State       string `json:"state"`
	PinCode     string `json:"pinCode"`
}

// Validate requires a name; a user must keep one after registration.
func (f ProfileForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fail(CategoryMissingField, "Name is required")
	}
	return nil
}
