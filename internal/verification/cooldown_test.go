package verification

import (
	"errors"
	"testing"
	"time"
)

func TestCooldown(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCooldown(0)
	c.nowF = func() time.Time { return now }

	if got := c.Seconds(ChannelEmail); got != 0 {
		t.Errorf("Seconds before send = %d, want 0", got)
	}
	if _, err := c.Start(ChannelEmail); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := c.Seconds(ChannelEmail); got != 60 {
		t.Errorf("Seconds = %d, want 60", got)
	}

	now = now.Add(59*time.Second + 500*time.Millisecond)
	left, err := c.Start(ChannelEmail)
	if !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("Start during cooldown: err = %v", err)
	}
	if left != 500*time.Millisecond {
		t.Errorf("left = %v", left)
	}
	if got := c.Seconds(ChannelEmail); got != 1 {
		t.Errorf("Seconds = %d, want 1", got)
	}
	if !c.Active(ChannelEmail) || c.Active(ChannelPhone) {
		t.Error("Active reports the wrong channel")
	}
	if _, err := c.Start(ChannelPhone); err != nil {
		t.Errorf("phone blocked by email cooldown: %v", err)
	}

	now = now.Add(500 * time.Millisecond)
	if _, err := c.Start(ChannelEmail); err != nil {
		t.Errorf("Start after cooldown: %v", err)
	}
}

func TestCeilSeconds(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want int
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Nanosecond, 1},
		{59200 * time.Millisecond, 60},
		{60 * time.Second, 60},
	}
	for _, c := range cases {
		if got := CeilSeconds(c.in); got != c.want {
			t.Errorf("CeilSeconds(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCooldown_CancelAndReset(t *testing.T) {
	c := NewCooldown(time.Hour)
	c.Start(ChannelEmail)
	c.Cancel(ChannelEmail)
	if c.Remaining(ChannelEmail) != 0 {
		t.Error("Cancel did not clear the cooldown")
	}
	c.Start(ChannelEmail)
	c.Start(ChannelPhone)
	c.Reset()
	if c.Remaining(ChannelEmail) != 0 || c.Remaining(ChannelPhone) != 0 {
		t.Error("Reset did not clear every channel")
	}
}
