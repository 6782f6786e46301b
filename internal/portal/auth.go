package portal

import (
	"context"
	"fmt"
	"log"
	"time"

	auditdomain "docverify-portal/internal/audit/domain"
	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/session"
	"docverify-portal/internal/telemetry"
	userdomain "docverify-portal/internal/user/domain"
	"docverify-portal/internal/validation"
)

const auditResourceSession = "session"

// AuthResult is returned by Login and Register. Token is empty when the
// service has no token provider.
type AuthResult struct {
	Outcome
	Token     string           `json:"token,omitempty"`
	ExpiresAt *time.Time       `json:"expiresAt,omitempty"`
	SessionID string           `json:"sessionId"`
	User      *userdomain.User `json:"user"`
}

// Login validates the login form and starts a session. Any non-empty
// credentials are accepted.
func (s *Service) Login(ctx context.Context, form validation.LoginForm) (*AuthResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	s.endPrevious(ctx)
	s.store.Login(form.Email, form.Password)
	res, err := s.authResult("Login successful!")
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, res.User.Email, auditdomain.ActionLogin, auditResourceSession)
	s.emit(ctx, telemetry.EventLogin, res.SessionID, res.User.Email, nil)
	return res, nil
}

// Register validates the registration form and starts a session for the new user.
func (s *Service) Register(ctx context.Context, form validation.RegistrationForm) (*AuthResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	candidate := userdomain.User{Name: form.Name, Email: form.Email, Phone: form.Phone}
	if err := candidate.Validate(); err != nil {
		return nil, validation.New(validation.CategoryMissingField, "Please fill in all fields")
	}
	s.endPrevious(ctx)
	s.store.Register(form.Name, form.Email, form.Phone, form.Password)
	res, err := s.authResult("Registration successful!")
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, res.User.Email, auditdomain.ActionRegister, auditResourceSession)
	s.emit(ctx, telemetry.EventRegister, res.SessionID, res.User.Email, nil)
	return res, nil
}

// endPrevious drops verification state left by a session that was replaced without logout.
func (s *Service) endPrevious(ctx context.Context) {
	if s.store.IsAuthenticated() {
		s.resetVerification(ctx)
	}
}

func (s *Service) authResult(message string) (*AuthResult, error) {
	snap := s.store.Snapshot()
	if snap.User == nil {
		return nil, ErrNotAuthenticated
	}
	res := &AuthResult{
		Outcome:   Outcome{Message: message, Next: engine.RouteOnboarding},
		SessionID: snap.SessionID,
		User:      snap.User,
	}
	if s.tokens == nil {
		return res, nil
	}
	token, exp, err := s.tokens.Issue(snap.SessionID, snap.User.Email)
	if err != nil {
		return nil, fmt.Errorf("portal: issue session token: %w", err)
	}
	res.Token = token
	res.ExpiresAt = &exp
	return res, nil
}

// Logout ends the session. Pending codes, cooldowns and notification
// preferences belong to the session and are dropped with it.
func (s *Service) Logout(ctx context.Context) (Outcome, error) {
	u := s.store.User()
	sid := s.store.SessionID()
	if err := notAuthenticated(s.store.Logout()); err != nil {
		return Outcome{}, err
	}
	s.resetVerification(ctx)
	s.mu.Lock()
	s.notifications = DefaultNotificationPreferences()
	s.mu.Unlock()

	var email string
	if u != nil {
		email = u.Email
	}
	s.logEvent(ctx, email, auditdomain.ActionLogout, auditResourceSession)
	s.emit(ctx, telemetry.EventLogout, sid, email, nil)
	log.Printf("portal: session %s ended", sid)
	return Outcome{Message: "Logged out", Next: engine.RouteLogin}, nil
}

func (s *Service) resetVerification(ctx context.Context) {
	s.checker.Reset()
	s.cooldown.Reset()
	if s.devCodes != nil {
		s.devCodes.Clear(ctx)
	}
}

// Session returns a snapshot of the session state.
func (s *Service) Session() session.Snapshot {
	return s.store.Snapshot()
}

// SessionInfo returns the routing-relevant part of the session.
func (s *Service) SessionInfo() engine.SessionInfo {
	u := s.store.User()
	if u == nil {
		return engine.SessionInfo{}
	}
	return engine.SessionInfo{
		Authenticated: true,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
	}
}
