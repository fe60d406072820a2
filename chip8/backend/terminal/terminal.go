package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/terminal/render"
	"github.com/valerio/go-chip8/chip8/debug"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	gameAreaWidth  = video.FramebufferWidth
	gameAreaHeight = video.FramebufferHeight / 2
	dividerX       = gameAreaWidth + 1
	registerHeight = 10
	minTermWidth   = gameAreaWidth + 2
	minTermHeight  = gameAreaHeight + 3
	logCapacity    = 100
)

// Backend renders to a terminal with tcell and reads the keypad from key
// events. Terminals never report key releases, so keys are held for
// input.HoldTimeout after their last press or auto-repeat.
type Backend struct {
	screen    tcell.Screen
	config    backend.BackendConfig
	keymap    input.Keymap
	keypad    *input.Keypad
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	prevLog   *slog.Logger
	signals   chan os.Signal

	currentFrame *video.FrameBuffer
	shownLogs    int
	quit         bool
	beeping      bool
}

// New creates a terminal backend drawing to the controlling terminal.
func New() *Backend {
	return &Backend{}
}

// NewWithScreen creates a terminal backend drawing to screen, which is
// initialized by Init.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.keymap = config.KeymapOrDefault()
	t.keypad = input.NewKeypad(input.HoldTimeout, nil)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logBuffer = render.NewLogBuffer(logCapacity)
	t.logLevel = new(slog.LevelVar)
	t.logLevel.Set(slog.LevelInfo)
	if config.ShowDebug {
		t.logLevel.Set(slog.LevelDebug)
	}
	t.prevLog = slog.Default()
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	slog.Info("Terminal backend initialized", "title", config.Title)
	return nil
}

// Draw repaints the screen when the frame or a side panel changed.
func (t *Backend) Draw(fb *video.FrameBuffer) {
	t.currentFrame = fb
	dirty := fb.TakeDirty()
	if !dirty && !t.panelsChanged() {
		return
	}
	t.render(fb)
	t.screen.Show()
}

// StartBeep rings the terminal bell once per beep.
func (t *Backend) StartBeep() {
	if t.beeping {
		return
	}
	t.beeping = true
	if err := t.screen.Beep(); err != nil {
		slog.Debug("Terminal bell unavailable", "error", err)
	}
}

func (t *Backend) StopBeep() {
	t.beeping = false
}

// Refresh drains pending terminal events and signals and expires held keys.
func (t *Backend) Refresh() {
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev)
		case *tcell.EventResize:
			t.screen.Sync()
			t.shownLogs = -1
		}
	}

	select {
	case sig := <-t.signals:
		slog.Info("Received signal, shutting down", "signal", sig)
		t.quit = true
	default:
	}

	t.keypad.Expire()
}

func (t *Backend) IsKeyPressed(key uint8) bool {
	return t.keypad.IsPressed(key)
}

func (t *Backend) IsQuitRequested() bool {
	return t.quit
}

// Cleanup restores the terminal.
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	if t.prevLog != nil {
		slog.SetDefault(t.prevLog)
		t.prevLog = nil
	}
	return nil
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.quit = true
		return
	case tcell.KeyF10:
		t.config.ShowDebug = !t.config.ShowDebug
		t.shownLogs = -1
		slog.Info("Debug panel toggled", "enabled", t.config.ShowDebug)
		return
	case tcell.KeyF12:
		debug.TakeSnapshot(t.currentFrame)
		return
	case tcell.KeyRune:
	default:
		return
	}

	r := ev.Rune()
	if key, ok := t.keymap.Lookup(r); ok {
		t.keypad.Press(key)
		return
	}

	switch r {
	case '+', '=':
		t.changeLogLevel(-4)
	case '-', '_':
		t.changeLogLevel(4)
	}
}

// changeLogLevel moves the log filter by delta, where slog levels are 4 apart.
func (t *Backend) changeLogLevel(delta slog.Level) {
	next := t.logLevel.Level() + delta
	if next < slog.LevelDebug || next > slog.LevelError {
		return
	}
	t.logLevel.Set(next)
	t.shownLogs = -1
	slog.Warn("Log filter changed", "level", next)
}

func (t *Backend) panelsChanged() bool {
	return t.config.ShowDebug || t.logBuffer.Len() != t.shownLogs
}

func (t *Backend) render(fb *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		t.drawText(0, termHeight/2, termWidth, msg, tcell.StyleDefault.Foreground(tcell.ColorRed))
		return
	}

	t.drawBorders(termWidth, termHeight)
	t.drawFrame(fb)

	panelX := dividerX + 2
	panelWidth := termWidth - panelX
	logsY := 1
	if t.config.ShowDebug && t.config.State != nil {
		t.drawRegisters(panelX, 1, panelWidth, t.config.State.State())
		logsY = registerHeight + 2
	}
	t.drawLogs(panelX, logsY, panelWidth, termHeight-1)
	t.shownLogs = t.logBuffer.Len()
}

func (t *Backend) drawBorders(termWidth, termHeight int) {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for y := 0; y < termHeight-1; y++ {
		t.screen.SetContent(dividerX, y, '│', nil, borderStyle)
	}

	title := " CHIP-8 "
	if t.config.Title != "" {
		title = fmt.Sprintf(" CHIP-8: %s ", t.config.Title)
	}
	t.drawText(1, 0, dividerX-1, title, titleStyle)

	if t.config.ShowDebug {
		t.drawText(dividerX+2, 0, termWidth, " Registers ", titleStyle)
		for x := dividerX + 1; x < termWidth; x++ {
			t.screen.SetContent(x, registerHeight+1, '─', nil, borderStyle)
		}
		t.screen.SetContent(dividerX, registerHeight+1, '├', nil, borderStyle)
	}

	help := " ESC=quit F10=registers F12=snapshot +/-=log filter "
	t.drawText(0, termHeight-1, termWidth, help, borderStyle)
}

func (t *Backend) drawFrame(fb *video.FrameBuffer) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	for y, row := range render.FrameRows(fb) {
		x := 0
		for _, ch := range row {
			t.screen.SetContent(x, y+1, ch, nil, style)
			x++
		}
	}
}

func (t *Backend) drawRegisters(x, y, width int, state debug.CPUState) {
	lines := []string{
		fmt.Sprintf("PC: 0x%04X  I: 0x%04X", state.PC, state.I),
		fmt.Sprintf("Opcode: 0x%04X", state.Opcode),
	}
	for row := 0; row < 16; row += 4 {
		lines = append(lines, fmt.Sprintf("V%X:%02X V%X:%02X V%X:%02X V%X:%02X",
			row, state.V[row], row+1, state.V[row+1], row+2, state.V[row+2], row+3, state.V[row+3]))
	}
	lines = append(lines,
		fmt.Sprintf("DT: %3d  ST: %3d", state.DelayTimer, state.SoundTimer),
		fmt.Sprintf("SP: %2d", state.SP),
	)
	if state.SP > 0 && int(state.SP) <= len(state.Stack) {
		lines = append(lines, fmt.Sprintf("Top: 0x%04X", state.Stack[state.SP-1]))
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
	for i, line := range lines {
		if i >= registerHeight {
			break
		}
		t.drawText(x, y+i, width, line, style)
	}
}

func (t *Backend) drawLogs(x, y, width, bottom int) {
	if bottom <= y {
		return
	}
	entries := t.logBuffer.Recent(bottom-y, t.logLevel.Level())
	for i, entry := range entries {
		style := tcell.StyleDefault.Foreground(tcell.ColorGreen)
		switch {
		case entry.Level >= slog.LevelError:
			style = tcell.StyleDefault.Foreground(tcell.ColorRed)
		case entry.Level >= slog.LevelWarn:
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		}
		t.drawText(x, bottom-1-i, width, render.FormatLogEntry(entry), style)
	}
}

func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= width {
			return
		}
		t.screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
}
