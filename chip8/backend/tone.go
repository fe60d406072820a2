package backend

// Tone describes the beeper waveform shared by the audio backends.
type Tone struct {
	Frequency  float64
	Volume     float64
	SampleRate int
}

// DefaultTone is a quiet 440Hz square wave sampled at 44.1kHz.
var DefaultTone = Tone{Frequency: 440, Volume: 0.25, SampleRate: 44100}

// SquareWave generates successive samples of a tone, keeping its phase
// across calls so consecutive buffers join without clicks.
type SquareWave struct {
	tone  Tone
	step  float64
	phase float64
}

func NewSquareWave(tone Tone) *SquareWave {
	return &SquareWave{tone: tone, step: tone.Frequency / float64(tone.SampleRate)}
}

// Next returns the next sample, in [-Volume, Volume].
func (w *SquareWave) Next() float64 {
	v := w.tone.Volume
	if w.phase >= 0.5 {
		v = -v
	}
	w.phase += w.step
	if w.phase >= 1 {
		w.phase--
	}
	return v
}
