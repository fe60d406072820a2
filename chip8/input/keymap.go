package input

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// KeyCount is the number of keys on the hex keypad.
const KeyCount = 16

// DefaultLayout binds keypad keys 0..F, in order, to these host keys.
// On a QWERTY keyboard this lays the keypad out as
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
const DefaultLayout = "x123qweasdzc4rfv"

// Keymap translates host characters to keypad keys.
type Keymap map[rune]uint8

// DefaultKeymap returns the keymap for DefaultLayout.
func DefaultKeymap() Keymap {
	km, _ := ParseKeymap(DefaultLayout)
	return km
}

// ParseKeymap builds a keymap from a layout string whose i-th character
// is bound to keypad key i. Letters match either case.
func ParseKeymap(layout string) (Keymap, error) {
	if n := utf8.RuneCountInString(layout); n != KeyCount {
		return nil, fmt.Errorf("keymap layout must have %d keys, got %d", KeyCount, n)
	}

	km := make(Keymap, KeyCount)
	key := uint8(0)
	for _, r := range layout {
		r = unicode.ToLower(r)
		if prev, exists := km[r]; exists {
			return nil, fmt.Errorf("keymap layout binds %q to both key %X and key %X", r, prev, key)
		}
		km[r] = key
		key++
	}
	return km, nil
}

// Lookup returns the keypad key bound to r.
func (k Keymap) Lookup(r rune) (uint8, bool) {
	key, ok := k[unicode.ToLower(r)]
	return key, ok
}

// Layout returns the host character bound to each keypad key.
func (k Keymap) Layout() [KeyCount]rune {
	var out [KeyCount]rune
	for r, key := range k {
		if int(key) < KeyCount {
			out[key] = r
		}
	}
	return out
}
