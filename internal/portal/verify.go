package portal

import (
	"context"
	"fmt"
	"log"
	"time"

	"docverify-portal/internal/devotp"
	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/session"
	"docverify-portal/internal/telemetry"
	"docverify-portal/internal/validation"
	"docverify-portal/internal/verification"
)

// CodeSent is returned by SendCode.
type CodeSent struct {
	Outcome
	Channel         verification.Channel `json:"channel"`
	ExpiresAt       *time.Time           `json:"expiresAt,omitempty"`
	CooldownSeconds int                  `json:"cooldownSeconds"`
}

// CooldownError reports a resend attempted before the cooldown ran out.
type CooldownError struct {
	Channel verification.Channel
	Seconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Resend available in %ds", e.Seconds)
}

func (e *CooldownError) Unwrap() error { return verification.ErrCooldownActive }

// SendCode sends a verification code to the user's email address or phone
// number. A channel can send again only after its cooldown has run out.
func (s *Service) SendCode(ctx context.Context, channel verification.Channel) (*CodeSent, error) {
	u := s.store.User()
	if u == nil {
		return nil, ErrNotAuthenticated
	}
	destination := u.Email
	if channel == verification.ChannelPhone {
		destination = u.Phone
	}
	left, err := s.cooldown.Start(channel)
	if err != nil {
		return nil, &CooldownError{Channel: channel, Seconds: verification.CeilSeconds(left)}
	}
	issued, err := s.checker.Issue(ctx, channel, destination)
	if err != nil {
		s.cooldown.Cancel(channel)
		return nil, fmt.Errorf("portal: send %s code: %w", channel, err)
	}
	res := &CodeSent{
		Outcome:         Outcome{Message: channel.SentMessage()},
		Channel:         channel,
		CooldownSeconds: verification.CeilSeconds(left),
	}
	if !issued.ExpiresAt.IsZero() {
		res.ExpiresAt = &issued.ExpiresAt
	}
	s.emitForUser(ctx, telemetry.EventCodeSent, map[string]string{"channel": string(channel)})
	return res, nil
}

// VerifyCode checks a code typed by the user and marks the channel verified.
// Non-digits are stripped first, as the code inputs do.
func (s *Service) VerifyCode(ctx context.Context, channel verification.Channel, input string) (Outcome, error) {
	if !s.store.IsAuthenticated() {
		return Outcome{}, ErrNotAuthenticated
	}
	code := validation.SanitizeCode(input)
	validate := validation.ValidateCode
	if channel == verification.ChannelPhone {
		validate = validation.ValidateOTP
	}
	if err := validate(code); err != nil {
		return Outcome{}, err
	}
	if err := s.checker.Check(ctx, channel, code); err != nil {
		return Outcome{}, fmt.Errorf("portal: verify %s: %w", channel, err)
	}
	var r session.Result
	if channel == verification.ChannelPhone {
		r = s.store.VerifyPhone()
	} else {
		r = s.store.VerifyEmail()
	}
	if err := notAuthenticated(r); err != nil {
		return Outcome{}, err
	}
	s.cooldown.Cancel(channel)
	s.emitForUser(ctx, telemetry.EventContactVerified, map[string]string{"channel": string(channel)})
	log.Printf("portal: %s verified for session %s", channel, s.store.SessionID())
	return Outcome{Message: channel.VerifiedMessage()}, nil
}

// CompleteVerification leaves the verification page once both contacts are verified.
func (s *Service) CompleteVerification(ctx context.Context) (Outcome, error) {
	u := s.store.User()
	if u == nil {
		return Outcome{}, ErrNotAuthenticated
	}
	if !u.EmailVerified || !u.PhoneVerified {
		return Outcome{}, validation.New(validation.CategoryNotVerified, "Please verify both email and phone to continue")
	}
	return Outcome{Message: "Verification complete!", Next: engine.RouteUpload}, nil
}

// ChannelState is the verification page's view of one channel.
type ChannelState struct {
	Destination     string `json:"destination"`
	Verified        bool   `json:"verified"`
	CanResend       bool   `json:"canResend"`
	CooldownSeconds int    `json:"cooldownSeconds"`
}

// VerificationState is the verification page's view of both channels.
type VerificationState struct {
	Email ChannelState `json:"email"`
	Phone ChannelState `json:"phone"`
}

// Verification returns the state shown on the verification page.
func (s *Service) Verification() (VerificationState, error) {
	u := s.store.User()
	if u == nil {
		return VerificationState{}, ErrNotAuthenticated
	}
	return VerificationState{
		Email: ChannelState{
			Destination:     u.Email,
			Verified:        u.EmailVerified,
			CanResend:       !s.cooldown.Active(verification.ChannelEmail),
			CooldownSeconds: s.cooldown.Seconds(verification.ChannelEmail),
		},
		Phone: ChannelState{
			Destination:     u.Phone,
			Verified:        u.PhoneVerified,
			CanResend:       !s.cooldown.Active(verification.ChannelPhone),
			CooldownSeconds: s.cooldown.Seconds(verification.ChannelPhone),
		},
	}, nil
}

// DevCode returns the last code issued on channel. It reports false when no
// dev store is configured or no live code exists.
func (s *Service) DevCode(ctx context.Context, channel verification.Channel) (devotp.Code, bool) {
	if s.devCodes == nil {
		return devotp.Code{}, false
	}
	return s.devCodes.Get(ctx, string(channel))
}
