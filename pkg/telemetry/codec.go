package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"
)

// frameSnappy marks a frame whose remainder is a snappy block.
const frameSnappy byte = 0x01

var (
	// ErrEmptyFrame is returned for zero-length frames.
	ErrEmptyFrame = errors.New("empty telemetry frame")
	// ErrUnknownEvent is returned for envelopes naming an event we do not handle.
	ErrUnknownEvent = errors.New("unknown telemetry event")
)

// EncodeFrame marshals an envelope for event/data, snappy-compressing the
// JSON when compress is set.
func EncodeFrame(event Event, data any, compress bool) ([]byte, error) {
	env := Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", event, err)
		}
		env.Data = raw
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}
	if !compress {
		return payload, nil
	}
	compressed := snappy.Encode(nil, payload)
	frame := make([]byte, 0, len(compressed)+1)
	frame = append(frame, frameSnappy)
	return append(frame, compressed...), nil
}

// DecodeFrame turns a raw frame into a Message.
func DecodeFrame(frame []byte) (Message, error) {
	if len(frame) == 0 {
		return Message{}, ErrEmptyFrame
	}
	payload := frame
	if frame[0] == frameSnappy {
		decoded, err := snappy.Decode(nil, frame[1:])
		if err != nil {
			return Message{}, fmt.Errorf("failed to decompress frame: %w", err)
		}
		payload = decoded
	}

	var env Envelope
	if err := json.Unmarshal(sanitizeNonFinite(payload), &env); err != nil {
		return Message{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope interprets an already-split envelope.
func DecodeEnvelope(env Envelope) (Message, error) {
	msg := Message{Received: time.Now()}
	switch env.Event {
	case EventTopology:
		var topo Topology
		if err := json.Unmarshal(env.Data, &topo); err != nil {
			return Message{}, fmt.Errorf("failed to decode topology: %w", err)
		}
		msg.Kind = MessageTopology
		msg.Topology = &topo
	case EventTrainingUpdate:
		var rec EpochRecord
		if err := json.Unmarshal(sanitizeNonFinite(env.Data), &rec); err != nil {
			return Message{}, fmt.Errorf("failed to decode epoch record: %w", err)
		}
		msg.Kind = MessageRecord
		msg.Record = &rec
	case EventReset:
		msg.Kind = MessageControl
		msg.Control = ControlReset
	case EventStopTraining, EventTrainingStopped:
		msg.Kind = MessageControl
		msg.Control = ControlStop
	case EventStartTraining, EventTrainingStarted:
		msg.Kind = MessageControl
		msg.Control = ControlStart
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
	return msg, nil
}

// sanitizeNonFinite rewrites the bare NaN, Infinity and -Infinity tokens that
// Python's json module emits into null, leaving string contents untouched.
func sanitizeNonFinite(data []byte) []byte {
	var out []byte
	inString := false
	escaped := false
	last := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		var n int
		switch {
		case hasToken(data[i:], "NaN"):
			n = 3
		case hasToken(data[i:], "Infinity"):
			n = 8
		case hasToken(data[i:], "-Infinity"):
			n = 9
		default:
			continue
		}
		if out == nil {
			out = make([]byte, 0, len(data))
		}
		out = append(out, data[last:i]...)
		out = append(out, "null"...)
		i += n - 1
		last = i + 1
	}
	if out == nil {
		return data
	}
	return append(out, data[last:]...)
}

func hasToken(data []byte, tok string) bool {
	return len(data) >= len(tok) && string(data[:len(tok)]) == tok
}
