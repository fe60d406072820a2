package backend

import (
	"errors"
	"io"

	"github.com/valerio/go-chip8/chip8/video"
)

type teeDisplay []Display

// Tee returns a Display that forwards each changed frame to every given display.
func Tee(displays ...Display) Display {
	if len(displays) == 1 {
		return displays[0]
	}
	return teeDisplay(displays)
}

func (t teeDisplay) Draw(fb *video.FrameBuffer) {
	if !fb.TakeDirty() {
		return
	}
	for _, d := range t {
		fb.MarkDirty()
		d.Draw(fb)
	}
	fb.TakeDirty()
}

// Close closes every forwarded display that holds resources.
func (t teeDisplay) Close() error {
	var errs []error
	for _, d := range t {
		if c, ok := d.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// WithDisplay replaces the display of a backend, keeping its audio, input and lifecycle.
func WithDisplay(b Backend, d Display) Backend {
	return &displayOverride{Backend: b, display: d}
}

type displayOverride struct {
	Backend
	display Display
}

func (o *displayOverride) Draw(fb *video.FrameBuffer) {
	o.display.Draw(fb)
}

func (o *displayOverride) Cleanup() error {
	return cleanupWith(o.Backend, o.display)
}

// WithAudio replaces the audio of a backend, keeping its display, input and lifecycle.
func WithAudio(b Backend, a Audio) Backend {
	return &audioOverride{Backend: b, audio: a}
}

type audioOverride struct {
	Backend
	audio Audio
}

func (o *audioOverride) StartBeep() { o.audio.StartBeep() }
func (o *audioOverride) StopBeep()  { o.audio.StopBeep() }

func (o *audioOverride) Cleanup() error {
	return cleanupWith(o.Backend, o.audio)
}

// cleanupWith cleans up b and closes extra if it holds resources of its own.
func cleanupWith(b Backend, extra any) error {
	err := b.Cleanup()
	if c, ok := extra.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

// Silent is an Audio that does nothing.
type Silent struct{}

func (Silent) StartBeep() {}
func (Silent) StopBeep()  {}
