// Package weather implements the request/response exchange used to fetch
// current conditions from the companion device.
//
// The exchange is best effort: a request is a content-free trigger, responses
// are not correlated with requests, and the only recovery from a lost message
// in either direction is the next scheduled poll.
package weather

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"watchcore/internal/appmsg"
)

const (
	KeyRequest     uint32 = 0
	KeyTemperature uint32 = 0
	KeyConditions  uint32 = 1

	DefaultPollMinutes = 30

	// MaxConditionsLen is the longest conditions label kept, in bytes.
	MaxConditionsLen = 31
	// MaxTemperatureLen bounds the "<t>C" text of the combined line.
	MaxTemperatureLen = 7
	// MaxLineLen bounds the whole combined "<t>C, <conditions>" line.
	MaxLineLen = 31
)

// ErrNoFields is returned for a well-formed response that carries neither
// weather key.
var ErrNoFields = errors.New("weather: response carries no weather fields")

type State uint8

const (
	Idle State = iota
	AwaitingResponse
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting_response"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Sample is one parsed response. A nil field was absent and must leave the
// displayed value untouched.
type Sample struct {
	Temperature *int32
	Conditions  *string
}

// Exchange tracks the single outstanding request, if any.
type Exchange struct {
	pollMinutes int
	state       State
	requestedAt time.Time
}

// NewExchange returns an idle exchange polling whenever the minute of the
// hour is a multiple of pollMinutes.
func NewExchange(pollMinutes int) *Exchange {
	if pollMinutes <= 0 {
		pollMinutes = DefaultPollMinutes
	}
	return &Exchange{pollMinutes: pollMinutes}
}

func (e *Exchange) State() State {
	return e.state
}

// RequestedAt returns when the outstanding request was issued.
func (e *Exchange) RequestedAt() time.Time {
	return e.requestedAt
}

// ShouldPoll reports whether the tick at t triggers a request.
func (e *Exchange) ShouldPoll(t time.Time) bool {
	return t.Minute()%e.pollMinutes == 0
}

// Begin starts a new attempt and returns the request to send. superseded is
// true when the previous request never got an answer.
func (e *Exchange) Begin(at time.Time) (req appmsg.Dict, superseded bool) {
	superseded = e.state == AwaitingResponse
	e.state = AwaitingResponse
	e.requestedAt = at
	return Request(), superseded
}

// SendFailed abandons the outstanding request.
func (e *Exchange) SendFailed() {
	e.state = Idle
}

// Receive parses an inbound dictionary. Any valid response completes the
// attempt, solicited or not; an invalid one leaves the state unchanged.
func (e *Exchange) Receive(d appmsg.Dict) (Sample, error) {
	s, err := Parse(d)
	if err != nil {
		return Sample{}, err
	}
	e.state = Idle
	return s, nil
}

// Request builds the outbound trigger message.
func Request() appmsg.Dict {
	var d appmsg.Dict
	d.WriteUint8(KeyRequest, 0)
	return d
}

// Parse extracts the optional temperature and conditions. A field present
// with the wrong type rejects the whole message.
func Parse(d appmsg.Dict) (Sample, error) {
	var s Sample
	if t, ok := d.Find(KeyTemperature); ok {
		v, err := t.Int32()
		if err != nil {
			return Sample{}, fmt.Errorf("temperature: %w", err)
		}
		s.Temperature = &v
	}
	if t, ok := d.Find(KeyConditions); ok {
		v, err := t.CString()
		if err != nil {
			return Sample{}, fmt.Errorf("conditions: %w", err)
		}
		v = Truncate(v, MaxConditionsLen)
		s.Conditions = &v
	}
	if s.Temperature == nil && s.Conditions == nil {
		return Sample{}, ErrNoFields
	}
	return s, nil
}

// Response builds the dictionary a companion sends back. Nil fields are omitted.
func Response(temperature *int32, conditions *string) appmsg.Dict {
	var d appmsg.Dict
	if temperature != nil {
		d.WriteInt32(KeyTemperature, *temperature)
	}
	if conditions != nil {
		d.WriteCString(KeyConditions, *conditions)
	}
	return d
}

// TemperatureText renders whole degrees Celsius the way the split layout shows them.
func TemperatureText(v int32) string {
	return strconv.Itoa(int(v))
}

// CombinedLine renders the single weather line of the combined layout,
// bounded the way the watch's text buffers are.
func CombinedLine(temperature, conditions string) string {
	t := Truncate(temperature+"C", MaxTemperatureLen)
	return Truncate(t+", "+conditions, MaxLineLen)
}

// Truncate cuts s to at most n bytes. Only a rune split by the cut is dropped;
// invalid bytes elsewhere are kept as they are.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for i := len(s) - 1; i >= 0 && i >= len(s)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(s[i]) {
			continue
		}
		if !utf8.FullRuneInString(s[i:]) {
			s = s[:i]
		}
		break
	}
	return s
}
