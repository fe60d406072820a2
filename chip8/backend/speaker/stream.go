package speaker

import (
	"github.com/faiface/beep"
	"github.com/valerio/go-chip8/chip8/backend"
)

// Stream wraps a square wave as an endless stereo beep.Streamer, gated by
// a Ctrl that starts paused.
func Stream(tone backend.Tone) *beep.Ctrl {
	wave := backend.NewSquareWave(tone)
	streamer := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := wave.Next()
			samples[i][0] = v
			samples[i][1] = v
		}
		return len(samples), true
	})
	return &beep.Ctrl{Streamer: streamer, Paused: true}
}
