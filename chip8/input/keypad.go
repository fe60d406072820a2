package input

import (
	"time"

	"github.com/valerio/go-chip8/chip8/timing"
)

// HoldTimeout is how long a key stays down after its last press event on
// hosts that never report releases. Slightly longer than a typical key repeat interval.
const HoldTimeout = 100 * time.Millisecond

// Keypad tracks the state of the 16 keypad keys.
type Keypad struct {
	clock     timing.Clock
	timeout   time.Duration
	pressed   [KeyCount]bool
	lastPress [KeyCount]time.Time
}

// NewKeypad returns a keypad whose keys expire timeout after their last press.
// A zero timeout keeps keys down until Release.
func NewKeypad(timeout time.Duration, clock timing.Clock) *Keypad {
	if clock == nil {
		clock = timing.SystemClock{}
	}
	return &Keypad{clock: clock, timeout: timeout}
}

// Press marks key as down and restarts its hold timer. Keys above 0xF are ignored.
func (k *Keypad) Press(key uint8) {
	if int(key) >= KeyCount {
		return
	}
	k.pressed[key] = true
	k.lastPress[key] = k.clock.Now()
}

// Release marks key as up.
func (k *Keypad) Release(key uint8) {
	if int(key) >= KeyCount {
		return
	}
	k.pressed[key] = false
}

// Expire releases keys whose hold timer ran out.
func (k *Keypad) Expire() {
	if k.timeout <= 0 {
		return
	}
	now := k.clock.Now()
	for key := range k.pressed {
		if k.pressed[key] && now.Sub(k.lastPress[key]) >= k.timeout {
			k.pressed[key] = false
		}
	}
}

// IsPressed reports whether key is down. Keys above 0xF are never down.
func (k *Keypad) IsPressed(key uint8) bool {
	return int(key) < KeyCount && k.pressed[key]
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.pressed = [KeyCount]bool{}
}
