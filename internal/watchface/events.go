package watchface

import (
	"time"

	"watchcore/internal/appmsg"
)

// Event is anything the controller loop consumes.
type Event interface {
	event()
}

type Tick struct{ At time.Time }

type BatteryChanged struct{ Percent int }

type ConnectionChanged struct{ Connected bool }

type InboxReceived struct{ Dict appmsg.Dict }

type InboxDropped struct {
	Reason appmsg.Result
	Err    error
}

type OutboxSent struct{}

type OutboxFailed struct {
	Reason appmsg.Result
	Err    error
}

func (Tick) event()              {}
func (BatteryChanged) event()    {}
func (ConnectionChanged) event() {}
func (InboxReceived) event()     {}
func (InboxDropped) event()      {}
func (OutboxSent) event()        {}
func (OutboxFailed) event()      {}

// RecordKind classifies an exchange record.
type RecordKind string

const (
	RecordRequested    RecordKind = "requested"
	RecordSuperseded   RecordKind = "superseded"
	RecordSent         RecordKind = "sent"
	RecordSendFailed   RecordKind = "send_failed"
	RecordReceived     RecordKind = "received"
	RecordDropped      RecordKind = "dropped"
	RecordDecodeFailed RecordKind = "decode_failed"
)

// Record describes one weather exchange event.
type Record struct {
	At          time.Time
	Kind        RecordKind
	Reason      appmsg.Result
	Detail      string
	Temperature *int32
	Conditions  *string
}

// Observer receives exchange records. Observe is called on the controller
// loop and must not block.
type Observer interface {
	Observe(Record)
}

// Stats counts exchange outcomes since startup.
type Stats struct {
	Requests       int `json:"requests"`
	Superseded     int `json:"superseded"`
	Sent           int `json:"sent"`
	SendFailures   int `json:"send_failures"`
	Received       int `json:"received"`
	Dropped        int `json:"dropped"`
	DecodeFailures int `json:"decode_failures"`
}
