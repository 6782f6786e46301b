package portal

import (
	"context"
	"errors"
	"strings"

	"docverify-portal/internal/session"
	"docverify-portal/internal/telemetry"
	userdomain "docverify-portal/internal/user/domain"
	"docverify-portal/internal/validation"
)

// NotificationPreferences is the profile page's notifications tab.
type NotificationPreferences struct {
	Email          bool `json:"email"`
	SMS            bool `json:"sms"`
	StatusUpdates  bool `json:"statusUpdates"`
	SecurityAlerts bool `json:"securityAlerts"`
}

// DefaultNotificationPreferences enables every notification.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, SMS: true, StatusUpdates: true, SecurityAlerts: true}
}

// SaveProfile applies the personal-information tab. The address is always
// written as a whole, built from the form's address fields.
func (s *Service) SaveProfile(ctx context.Context, form validation.ProfileForm) (Outcome, error) {
	if err := form.Validate(); err != nil {
		return Outcome{}, err
	}
	name := strings.TrimSpace(form.Name)
	dob := form.DateOfBirth
	gender := userdomain.Gender(form.Gender)
	patch := userdomain.UserPatch{
		Name:        &name,
		DateOfBirth: &dob,
		Gender:      &gender,
		Address: &userdomain.Address{
			Line1:   form.Line1,
			Line2:   form.Line2,
			City:    form.City,
			State:   form.State,
			PinCode: form.PinCode,
		},
	}
	if err := notAuthenticated(s.store.UpdateUser(patch)); err != nil {
		return Outcome{}, err
	}
	s.emitForUser(ctx, telemetry.EventProfileUpdated, nil)
	return Outcome{Message: "Profile updated successfully!"}, nil
}

// ChangePassword applies the security tab.
func (s *Service) ChangePassword(ctx context.Context, form validation.PasswordChangeForm) (Outcome, error) {
	if err := form.Validate(); err != nil {
		return Outcome{}, err
	}
	switch err := s.store.ChangePassword(form.Current, form.New); {
	case errors.Is(err, session.ErrNotAuthenticated):
		return Outcome{}, ErrNotAuthenticated
	case errors.Is(err, session.ErrInvalidCredentials):
		return Outcome{}, validation.New(validation.CategoryMismatch, "Current password is incorrect")
	case err != nil:
		return Outcome{}, err
	}
	s.emitForUser(ctx, telemetry.EventPasswordChanged, nil)
	return Outcome{Message: "Password updated successfully!"}, nil
}

// SaveNotifications stores the notifications tab for the rest of the session.
func (s *Service) SaveNotifications(ctx context.Context, prefs NotificationPreferences) (Outcome, error) {
	if !s.store.IsAuthenticated() {
		return Outcome{}, ErrNotAuthenticated
	}
	s.mu.Lock()
	s.notifications = prefs
	s.mu.Unlock()
	s.emitForUser(ctx, telemetry.EventNotificationsSave, nil)
	return Outcome{Message: "Notification preferences saved!"}, nil
}

// Notifications returns the current notification preferences.
func (s *Service) Notifications() NotificationPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notifications
}
