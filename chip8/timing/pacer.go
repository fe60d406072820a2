package timing

import "time"

const (
	// DefaultCyclePeriod is the minimum time between two executed instructions (~600Hz).
	DefaultCyclePeriod = 1666 * time.Microsecond
	// TickPeriod is the 60Hz timer, display and input period.
	TickPeriod = 16666 * time.Microsecond
	// IdleSleep is how long the loop yields when no cycle is due.
	IdleSleep = 10 * time.Microsecond
)

// Pacer accumulates elapsed time into two independent budgets: one for
// instruction cycles and one for the 60Hz tick.
type Pacer struct {
	clock       Clock
	cyclePeriod time.Duration

	last     time.Time
	cycleAcc time.Duration
	tickAcc  time.Duration
}

// NewPacer returns a pacer reading from clock. A non-positive cyclePeriod selects DefaultCyclePeriod.
func NewPacer(clock Clock, cyclePeriod time.Duration) *Pacer {
	if cyclePeriod <= 0 {
		cyclePeriod = DefaultCyclePeriod
	}
	p := &Pacer{clock: clock, cyclePeriod: cyclePeriod}
	p.Reset()
	return p
}

// Reset restarts measurement from now with empty budgets.
func (p *Pacer) Reset() {
	p.last = p.clock.Now()
	p.cycleAcc = 0
	p.tickAcc = 0
}

// Update adds the time elapsed since the previous call to both budgets and returns it.
func (p *Pacer) Update() time.Duration {
	now := p.clock.Now()
	delta := now.Sub(p.last)
	if delta < 0 {
		delta = 0
	}
	p.last = now
	p.cycleAcc += delta
	p.tickAcc += delta
	return delta
}

// CycleDue reports whether more than one cycle period has accumulated,
// and if so empties the cycle budget.
func (p *Pacer) CycleDue() bool {
	if p.cycleAcc <= p.cyclePeriod {
		return false
	}
	p.cycleAcc = 0
	return true
}

// TickDue reports whether more than one tick period has accumulated. The
// remainder past the period is carried over so the tick rate does not drift.
func (p *Pacer) TickDue() bool {
	if p.tickAcc <= TickPeriod {
		return false
	}
	p.tickAcc %= TickPeriod
	return true
}

// Idle yields for IdleSleep.
func (p *Pacer) Idle() {
	p.clock.Sleep(IdleSleep)
}

func (p *Pacer) CyclePeriod() time.Duration {
	return p.cyclePeriod
}
