package events

import "encoding/json"

// Event name constants
const (
	KeySampled     = "key.sampled"
	KeyWritten     = "key.written"
	PowerState     = "power.state"
	WakeResult     = "wake.result"
	ConfigReloaded = "config.reloaded"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// KeySampledEvent is published by a sampler after each scheduled read.
// Exactly one of Hex and Error is set.
type KeySampledEvent struct {
	Key   string `json:"key"`
	Hex   string `json:"hex,omitempty"`
	Error string `json:"error,omitempty"`
	Ts    int64  `json:"ts"`
}

// KeyWrittenEvent is published after a successful write through the daemon.
type KeyWrittenEvent struct {
	Key string `json:"key"`
	Hex string `json:"hex"`
	Ts  int64  `json:"ts"`
}

// PowerStateEvent is published on system sleep and wake.
type PowerStateEvent struct {
	State string `json:"state"` // "sleep" or "wake"
	Ts    int64  `json:"ts"`
}

// WakeResultEvent carries the wake timer value read after a wake.
type WakeResultEvent struct {
	Milliseconds int64 `json:"milliseconds"`
	Ts           int64 `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is empty,
// it returns the zero value of T with a nil error.
//
// Example:
//
//	payload, err := events.DecodeAs[events.KeySampledEvent](ev)
//	if err != nil { /* handle */ }
//	fmt.Println(payload.Key, payload.Hex)
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
