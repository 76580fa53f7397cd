package appmsg

import (
	"errors"
	"fmt"
	"testing"
)

func TestResultFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Result
	}{
		{name: "nil", err: nil, want: ResultOK},
		{name: "wrapped timeout", err: fmt.Errorf("publish: %w", ErrSendTimeout), want: ResultSendTimeout},
		{name: "not connected", err: ErrNotConnected, want: ResultNotConnected},
		{name: "overflow", err: fmt.Errorf("encode: %w", ErrBufferOverflow), want: ResultBufferOverflow},
		{name: "malformed", err: ErrMalformed, want: ResultMalformed},
		{name: "tuple type", err: ErrTupleType, want: ResultMalformed},
		{name: "closed", err: ErrClosed, want: ResultClosed},
		{name: "other", err: errors.New("broker said no"), want: ResultSendRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultFor(tt.err); got != tt.want {
				t.Errorf("ResultFor(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
