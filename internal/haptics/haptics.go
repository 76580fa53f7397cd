// Package haptics drives the vibration motor.
package haptics

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Motor switches the vibration motor on or off.
type Motor interface {
	Set(on bool) error
}

// Segment is one step of a vibration pattern.
type Segment struct {
	On       bool
	Duration time.Duration
}

// DoublePulse is two short buzzes separated by a short gap.
var DoublePulse = []Segment{
	{On: true, Duration: 100 * time.Millisecond},
	{On: false, Duration: 100 * time.Millisecond},
	{On: true, Duration: 100 * time.Millisecond},
}

// Player plays patterns on a motor without blocking the caller. A pattern
// requested while another is playing is dropped.
type Player struct {
	motor  Motor
	logger *slog.Logger
	sleep  func(time.Duration)

	playing atomic.Bool
	done    chan struct{}
}

func NewPlayer(m Motor, logger *slog.Logger) *Player {
	return &Player{
		motor:  m,
		logger: logger.With("component", "haptics"),
		sleep:  time.Sleep,
	}
}

func (p *Player) DoublePulse() {
	p.Play(DoublePulse)
}

// Play starts pattern in the background and reports whether it was accepted.
func (p *Player) Play(pattern []Segment) bool {
	if !p.playing.CompareAndSwap(false, true) {
		p.logger.Debug("haptics: pattern already playing, dropping request")
		return false
	}
	done := make(chan struct{})
	p.done = done
	go func() {
		defer close(done)
		defer p.playing.Store(false)
		p.play(pattern)
	}()
	return true
}

// Wait blocks until the most recently accepted pattern has finished.
func (p *Player) Wait() {
	if p.done != nil {
		<-p.done
	}
}

func (p *Player) play(pattern []Segment) {
	for _, s := range pattern {
		if err := p.motor.Set(s.On); err != nil {
			p.logger.Error("haptics: motor write failed", "error", err)
			break
		}
		p.sleep(s.Duration)
	}
	if err := p.motor.Set(false); err != nil {
		p.logger.Error("haptics: motor stop failed", "error", err)
	}
}

// LogMotor stands in for hardware and only logs transitions.
type LogMotor struct {
	Logger *slog.Logger
}

func (m LogMotor) Set(on bool) error {
	m.Logger.Debug("haptics: motor", "on", on)
	return nil
}
