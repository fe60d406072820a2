//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/video"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	bytesPerPixel = 4
	defaultScale  = 12

	// audio chunks cover roughly two frames at 60Hz
	audioChunk   = 1470
	audioBacklog = 2 * audioChunk

	pixelOn  = 0xFF
	pixelOff = 0x10
)

// Backend implements backend.Backend using SDL2 bindings.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stub, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
	config   backend.BackendConfig

	keymap input.Keymap
	keypad *input.Keypad
	quit   bool

	audioDev sdl.AudioDeviceID
	wave     *backend.SquareWave
	samples  []byte
	beeping  bool

	currentFrame *video.FrameBuffer
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init opens the window and the audio device
func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config
	s.keymap = config.KeymapOrDefault()
	s.keypad = input.NewKeypad(0, nil)

	scale := config.Scale
	if scale <= 0 {
		scale = defaultScale
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale),
		int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %v", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %v", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %v", err)
	}
	s.texture = texture
	s.pixels = make([]byte, video.FramebufferSize*bytesPerPixel)

	if err := s.openAudio(); err != nil {
		slog.Warn("Audio unavailable, running silent", "error", err)
	}

	slog.Info("SDL2 backend initialized", "scale", scale)
	return nil
}

func (s *Backend) openAudio() error {
	tone := backend.DefaultTone
	spec := sdl.AudioSpec{
		Freq:     int32(tone.SampleRate),
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return err
	}

	s.audioDev = dev
	s.wave = backend.NewSquareWave(tone)
	s.samples = make([]byte, audioChunk)
	return nil
}

// Draw uploads the framebuffer to the streaming texture when it changed.
func (s *Backend) Draw(fb *video.FrameBuffer) {
	s.currentFrame = fb
	if !fb.TakeDirty() {
		return
	}

	for i, on := range fb.ToSlice() {
		c := byte(pixelOff)
		if on {
			c = pixelOn
		}
		// ABGR byte order for little-endian RGBA8888
		dst := i * bytesPerPixel
		s.pixels[dst] = 0xFF
		s.pixels[dst+1] = c
		s.pixels[dst+2] = c
		s.pixels[dst+3] = c
	}

	s.texture.Update(nil, unsafe.Pointer(&s.pixels[0]), video.FramebufferWidth*bytesPerPixel)
	s.renderer.SetDrawColor(0, 0, 0, 0xFF)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

func (s *Backend) StartBeep() {
	if s.beeping || s.audioDev == 0 {
		return
	}
	s.beeping = true
	s.queueAudio()
	sdl.PauseAudioDevice(s.audioDev, false)
}

func (s *Backend) StopBeep() {
	if !s.beeping {
		return
	}
	s.beeping = false
	sdl.PauseAudioDevice(s.audioDev, true)
	sdl.ClearQueuedAudio(s.audioDev)
}

// queueAudio keeps a small backlog of samples queued while beeping.
func (s *Backend) queueAudio() {
	for sdl.GetQueuedAudioSize(s.audioDev) < audioBacklog {
		for i := range s.samples {
			s.samples[i] = byte(128 + 127*s.wave.Next())
		}
		if err := sdl.QueueAudio(s.audioDev, s.samples); err != nil {
			slog.Warn("Failed to queue audio", "error", err)
			return
		}
	}
}

// Refresh drains the SDL event queue.
func (s *Backend) Refresh() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		s.handleEvent(event)
	}

	if s.beeping {
		s.queueAudio()
	}
}

func (s *Backend) handleEvent(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		s.quit = true

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN {
			s.handleKeyDown(e.Keysym.Sym, e.Repeat)
		} else if e.Type == sdl.KEYUP {
			s.handleKeyUp(e.Keysym.Sym)
		}
	}
}

func (s *Backend) handleKeyDown(key sdl.Keycode, repeat uint8) {
	if repeat != 0 {
		return
	}

	switch key {
	case sdl.K_ESCAPE:
		s.quit = true
		return
	case sdl.K_F12:
		debug.TakeSnapshot(s.currentFrame)
		return
	}

	if k, ok := s.keymap.Lookup(rune(key)); ok {
		s.keypad.Press(k)
	}
}

func (s *Backend) handleKeyUp(key sdl.Keycode) {
	if k, ok := s.keymap.Lookup(rune(key)); ok {
		s.keypad.Release(k)
	}
}

func (s *Backend) IsKeyPressed(key uint8) bool {
	return s.keypad.IsPressed(key)
}

func (s *Backend) IsQuitRequested() bool {
	return s.quit
}

// Cleanup releases SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.audioDev != 0 {
		sdl.CloseAudioDevice(s.audioDev)
	}
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}
