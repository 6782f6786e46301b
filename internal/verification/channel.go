// Package verification issues and checks the six-digit codes that confirm a
// user's email address and phone number, and enforces the resend cooldown.
package verification

import (
	"errors"
	"fmt"
)

// Channel is a contact detail that can be verified.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPhone Channel = "phone"
)

var (
	ErrUnknownChannel = errors.New("unknown verification channel")
	ErrNoPendingCode  = errors.New("no code has been sent")
	ErrCodeExpired    = errors.New("code has expired")
	ErrCodeMismatch   = errors.New("code does not match")
	ErrCooldownActive = errors.New("resend cooldown active")
)

// ParseChannel maps "email" and "phone" to a Channel.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(s); c {
	case ChannelEmail, ChannelPhone:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// SentMessage is the notification shown after a code is sent.
func (c Channel) SentMessage() string {
	if c == ChannelPhone {
		return "OTP sent to your phone"
	}
	return "Verification code sent to your email"
}

// VerifiedMessage is the notification shown after a code is accepted.
func (c Channel) VerifiedMessage() string {
	if c == ChannelPhone {
		return "Phone verified successfully!"
	}
	return "Email verified successfully!"
}
