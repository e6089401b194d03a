package logging

import (
	"time"

	"go.uber.org/zap"
)

// Lap is one recorded checkpoint.
type Lap struct {
	Name    string
	Elapsed time.Duration // since the timer started
	Delta   time.Duration // since the previous lap
}

// LapTimer records named checkpoints and logs each at debug level.
// It is diagnostic only; nothing reads its laps to make decisions.
// A LapTimer belongs to one request and is not safe for concurrent use.
type LapTimer struct {
	logger *zap.Logger
	now    func() time.Time
	start  time.Time
	last   time.Time
	laps   []Lap
}

// NewLapTimer starts a timer. A nil logger is replaced by a no-op one.
func NewLapTimer(logger *zap.Logger) *LapTimer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &LapTimer{logger: logger, now: time.Now}
	t.start = t.now()
	t.last = t.start
	return t
}

// Lap records a checkpoint.
func (t *LapTimer) Lap(name string) Lap {
	now := t.now()
	lap := Lap{Name: name, Elapsed: now.Sub(t.start), Delta: now.Sub(t.last)}
	t.last = now
	t.laps = append(t.laps, lap)

	t.logger.Debug("lap",
		zap.String("checkpoint", name),
		zap.Duration("elapsed", lap.Elapsed),
		zap.Duration("delta", lap.Delta),
	)
	return lap
}

// Laps returns the recorded checkpoints in order.
func (t *LapTimer) Laps() []Lap {
	out := make([]Lap, len(t.laps))
	copy(out, t.laps)
	return out
}
