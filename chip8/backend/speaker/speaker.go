//go:build beep

package speaker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/valerio/go-chip8/chip8/backend"
)

// Speaker plays the beeper tone on the default audio device.
type Speaker struct {
	ctrl *beep.Ctrl
}

// New initializes the audio device and starts a paused tone.
func New(tone backend.Tone) (*Speaker, error) {
	sr := beep.SampleRate(tone.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/30)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}

	s := &Speaker{ctrl: Stream(tone)}
	speaker.Play(s.ctrl)
	slog.Info("Speaker initialized", "frequency", tone.Frequency, "sample_rate", tone.SampleRate)
	return s, nil
}

func (s *Speaker) StartBeep() { s.setPaused(false) }

func (s *Speaker) StopBeep() { s.setPaused(true) }

func (s *Speaker) setPaused(paused bool) {
	speaker.Lock()
	s.ctrl.Paused = paused
	speaker.Unlock()
}

// Close silences the tone and drops it from the mixer.
func (s *Speaker) Close() error {
	s.setPaused(true)
	speaker.Clear()
	return nil
}
