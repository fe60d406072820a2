package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-chip8/chip8/timing"
)

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap()
	require.Len(t, km, KeyCount)

	testCases := []struct {
		r    rune
		want uint8
	}{
		{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xC},
		{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xD},
		{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xE},
		{'z', 0xA}, {'x', 0x0}, {'c', 0xB}, {'v', 0xF},
	}
	for _, tC := range testCases {
		t.Run(string(tC.r), func(t *testing.T) {
			key, ok := km.Lookup(tC.r)
			require.True(t, ok)
			assert.Equal(t, tC.want, key)
		})
	}

	key, ok := km.Lookup('Q')
	assert.True(t, ok, "letters match either case")
	assert.Equal(t, uint8(0x4), key)

	_, ok = km.Lookup('p')
	assert.False(t, ok)

	layout := km.Layout()
	assert.Equal(t, []rune(DefaultLayout), layout[:])
}

func TestParseKeymap(t *testing.T) {
	testCases := []struct {
		desc    string
		layout  string
		wantErr string
	}{
		{desc: "hex digits", layout: "0123456789abcdef"},
		{desc: "too short", layout: "0123", wantErr: "must have 16 keys"},
		{desc: "too long", layout: "0123456789abcdefg", wantErr: "must have 16 keys"},
		{desc: "duplicate", layout: "0123456789abcdeF0"[:15] + "0", wantErr: "binds"},
		{desc: "case duplicate", layout: "0123456789abcdeE", wantErr: "binds"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			km, err := ParseKeymap(tC.layout)
			if tC.wantErr != "" {
				assert.ErrorContains(t, err, tC.wantErr)
				return
			}
			require.NoError(t, err)
			key, _ := km.Lookup('b')
			assert.Equal(t, uint8(0xB), key)
		})
	}
}

func TestKeypad_HoldTimeout(t *testing.T) {
	clock := timing.NewManualClock()
	k := NewKeypad(HoldTimeout, clock)

	k.Press(0xA)
	assert.True(t, k.IsPressed(0xA))

	clock.Advance(HoldTimeout / 2)
	k.Expire()
	assert.True(t, k.IsPressed(0xA))

	k.Press(0xA)
	clock.Advance(HoldTimeout / 2)
	k.Expire()
	assert.True(t, k.IsPressed(0xA), "repeat press restarts the hold timer")

	clock.Advance(HoldTimeout)
	k.Expire()
	assert.False(t, k.IsPressed(0xA))
}

func TestKeypad_ExplicitRelease(t *testing.T) {
	clock := timing.NewManualClock()
	k := NewKeypad(0, clock)

	k.Press(0x3)
	clock.Advance(time.Hour)
	k.Expire()
	assert.True(t, k.IsPressed(0x3))

	k.Release(0x3)
	assert.False(t, k.IsPressed(0x3))

	k.Press(0x1)
	k.Press(0x2)
	k.Reset()
	assert.False(t, k.IsPressed(0x1))
	assert.False(t, k.IsPressed(0x2))
}

func TestKeypad_OutOfRange(t *testing.T) {
	k := NewKeypad(0, nil)
	k.Press(0x10)
	k.Release(0xFF)
	assert.False(t, k.IsPressed(0x10))
	assert.False(t, k.IsPressed(0xFF))
}
