package appmsg

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("appmsg: companion not connected")
	ErrSendTimeout  = errors.New("appmsg: send timed out")
	ErrClosed       = errors.New("appmsg: channel closed")
)

// Result is the reason code attached to a dropped inbound or failed outbound message.
type Result uint8

const (
	ResultOK Result = iota
	ResultSendTimeout
	ResultSendRejected
	ResultNotConnected
	ResultBufferOverflow
	ResultMalformed
	ResultClosed
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultSendTimeout:
		return "send_timeout"
	case ResultSendRejected:
		return "send_rejected"
	case ResultNotConnected:
		return "not_connected"
	case ResultBufferOverflow:
		return "buffer_overflow"
	case ResultMalformed:
		return "malformed"
	case ResultClosed:
		return "closed"
	default:
		return fmt.Sprintf("result(%d)", uint8(r))
	}
}

// ResultFor classifies err into a reason code. Unknown errors are rejections.
func ResultFor(err error) Result {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrSendTimeout):
		return ResultSendTimeout
	case errors.Is(err, ErrNotConnected):
		return ResultNotConnected
	case errors.Is(err, ErrBufferOverflow):
		return ResultBufferOverflow
	case errors.Is(err, ErrMalformed), errors.Is(err, ErrTupleType):
		return ResultMalformed
	case errors.Is(err, ErrClosed):
		return ResultClosed
	default:
		return ResultSendRejected
	}
}
