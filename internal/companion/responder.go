// Package companion answers weather requests from a watch with a fixed
// sample. It backs the companion simulator.
package companion

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"watchcore/internal/appmsg"
	"watchcore/internal/weather"
)

type Sender interface {
	Send(d appmsg.Dict) error
}

// Responder replies to every request with the configured sample.
type Responder struct {
	Temperature *int32
	Conditions  *string

	sender Sender
	logger *slog.Logger
}

func NewResponder(temperature *int32, conditions *string, sender Sender, logger *slog.Logger) *Responder {
	return &Responder{
		Temperature: temperature,
		Conditions:  conditions,
		sender:      sender,
		logger:      logger.With("component", "companion"),
	}
}

// Push sends the sample unprompted, as a phone does when the watch connects.
func (r *Responder) Push() error {
	if r.Temperature == nil && r.Conditions == nil {
		return nil
	}
	if err := r.sender.Send(weather.Response(r.Temperature, r.Conditions)); err != nil {
		return fmt.Errorf("push weather: %w", err)
	}
	r.logger.Info("weather pushed", "temperature", deref(r.Temperature), "conditions", derefStr(r.Conditions))
	return nil
}

// Handle answers a weather request; other messages are ignored.
func (r *Responder) Handle(d appmsg.Dict) {
	t, ok := d.Find(weather.KeyRequest)
	if !ok {
		r.logger.Debug("ignoring message without request key", "keys", d.Keys())
		return
	}
	if _, err := t.Uint8(); err != nil {
		r.logger.Warn("ignoring malformed request", "error", err)
		return
	}
	r.logger.Info("weather requested")
	if err := r.Push(); err != nil {
		r.logger.Error("weather reply failed", "error", err)
	}
}

// SampleFromEnv reads COMPANION_TEMPERATURE and COMPANION_CONDITIONS. An
// unset variable leaves that field out of every reply.
func SampleFromEnv() (*int32, *string, error) {
	var (
		temp *int32
		cond *string
	)
	if s := strings.TrimSpace(os.Getenv("COMPANION_TEMPERATURE")); s != "" {
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid COMPANION_TEMPERATURE %q: %w", s, err)
		}
		t := int32(v)
		temp = &t
	}
	if s, ok := os.LookupEnv("COMPANION_CONDITIONS"); ok && strings.TrimSpace(s) != "" {
		c := strings.TrimSpace(s)
		cond = &c
	}
	return temp, cond, nil
}

func deref(p *int32) any {
	if p == nil {
		return nil
	}
	return *p
}

func derefStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
