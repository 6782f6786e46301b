package verification

import (
	"sync"
	"time"
)

// DefaultResendCooldown is the wait between two sends on the same channel.
const DefaultResendCooldown = 60 * time.Second

// Cooldown rate-limits resends per channel from a clock rather than a ticking counter.
type Cooldown struct {
	mu     sync.Mutex
	period time.Duration
	until  map[Channel]time.Time
	nowF   func() time.Time
}

// NewCooldown returns a Cooldown of period (DefaultResendCooldown when period <= 0).
func NewCooldown(period time.Duration) *Cooldown {
	if period <= 0 {
		period = DefaultResendCooldown
	}
	return &Cooldown{
		period: period,
		until:  make(map[Channel]time.Time),
		nowF:   time.Now,
	}
}

// Start begins the cooldown for channel unless one is running, in which case
// it returns ErrCooldownActive and the time left.
func (c *Cooldown) Start(channel Channel) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowF()
	if left := c.until[channel].Sub(now); left > 0 {
		return left, ErrCooldownActive
	}
	c.until[channel] = now.Add(c.period)
	return c.period, nil
}

// Cancel clears the cooldown for channel, used when a send fails after Start.
func (c *Cooldown) Cancel(channel Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.until, channel)
}

// Remaining returns the time left before channel may send again, or zero.
func (c *Cooldown) Remaining(channel Channel) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if left := c.until[channel].Sub(c.nowF()); left > 0 {
		return left
	}
	return 0
}

// Active reports whether channel is cooling down.
func (c *Cooldown) Active(channel Channel) bool {
	return c.Remaining(channel) > 0
}

// Seconds rounds Remaining up to whole seconds, as shown next to the resend button.
func (c *Cooldown) Seconds(channel Channel) int {
	return CeilSeconds(c.Remaining(channel))
}

// CeilSeconds rounds d up to whole seconds. Non-positive durations give 0.
func CeilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// Reset clears every channel.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.until)
}
