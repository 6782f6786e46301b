package verification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultCodeTTL is how long an issued code stays valid.
const DefaultCodeTTL = 5 * time.Minute

// Issued describes a code that was sent. Code is set only by checkers that
// generate real codes; callers decide whether it may leave the process.
type Issued struct {
	Channel   Channel   `json:"channel"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Code      string    `json:"-"`
}

// Checker issues codes and decides whether a submitted code is acceptable.
// Format checks (six digits) happen before Check is called.
type Checker interface {
	Issue(ctx context.Context, channel Channel, destination string) (Issued, error)
	Check(ctx context.Context, channel Channel, code string) error
	// Reset forgets every pending code, e.g. when the session ends.
	Reset()
}

// StubChecker sends nothing and accepts any well-formed code.
type StubChecker struct{}

func (StubChecker) Issue(_ context.Context, channel Channel, _ string) (Issued, error) {
	return Issued{Channel: channel}, nil
}

func (StubChecker) Check(context.Context, Channel, string) error { return nil }

func (StubChecker) Reset() {}

// Recorder receives every issued code in plain text. Used only in development.
type Recorder interface {
	Put(ctx context.Context, key, code string, expiresAt time.Time)
}

type pendingCode struct {
	hash      string
	expiresAt time.Time
}

// OTPChecker issues random single-use codes, keeps their hashes until they
// expire, and delivers them through a per-channel Sender.
type OTPChecker struct {
	mu       sync.Mutex
	pending  map[Channel]pendingCode
	ttl      time.Duration
	senders  map[Channel]Sender
	recorder Recorder
	nowF     func() time.Time
}

// OTPOption configures an OTPChecker.
type OTPOption func(*OTPChecker)

// WithSender delivers codes for channel through s. Channels without a sender
// still get codes; they are only logged as issued.
func WithSender(channel Channel, s Sender) OTPOption {
	return func(c *OTPChecker) { c.senders[channel] = s }
}

// WithRecorder copies every plain code to r.
func WithRecorder(r Recorder) OTPOption {
	return func(c *OTPChecker) { c.recorder = r }
}

// NewOTPChecker returns a checker whose codes live for ttl (DefaultCodeTTL when ttl <= 0).
func NewOTPChecker(ttl time.Duration, opts ...OTPOption) *OTPChecker {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	c := &OTPChecker{
		pending: make(map[Channel]pendingCode),
		ttl:     ttl,
		senders: make(map[Channel]Sender),
		nowF:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Issue generates a code for channel, replacing any pending one, and sends it to destination.
func (c *OTPChecker) Issue(ctx context.Context, channel Channel, destination string) (Issued, error) {
	code, err := GenerateCode()
	if err != nil {
		return Issued{}, fmt.Errorf("generate code: %w", err)
	}
	expiresAt := c.nowF().Add(c.ttl)
	if s, ok := c.senders[channel]; ok {
		if err := s.Send(ctx, destination, code); err != nil {
			return Issued{}, fmt.Errorf("send %s code: %w", channel, err)
		}
	} else {
		log.Printf("verification: %s code issued with no sender configured", channel)
	}

	c.mu.Lock()
	c.pending[channel] = pendingCode{hash: HashCode(code), expiresAt: expiresAt}
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.Put(ctx, string(channel), code, expiresAt)
	}
	return Issued{Channel: channel, ExpiresAt: expiresAt, Code: code}, nil
}

// Check accepts code when it matches the pending, unexpired code for channel.
// A matching code is consumed; a wrong code leaves the pending code in place.
func (c *OTPChecker) Check(_ context.Context, channel Channel, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending[channel]
	if !ok {
		return ErrNoPendingCode
	}
	if !p.expiresAt.After(c.nowF()) {
		delete(c.pending, channel)
		return ErrCodeExpired
	}
	if !CodeMatches(code, p.hash) {
		return ErrCodeMismatch
	}
	delete(c.pending, channel)
	return nil
}

// Reset forgets all pending codes.
func (c *OTPChecker) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.pending)
}
