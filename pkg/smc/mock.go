package smc

import (
	"errors"
	"fmt"
	"sync"
)

// MockController is an in-memory controller implementing Channel. Values are
// stored in controller byte order. Every request goes through the binary
// codec before it is handled, and every request is recorded.
type MockController struct {
	mu      sync.Mutex
	entries map[Key]mockEntry
	calls   []ParamBlock
	opens   int
	closes  int

	openErr error
	callErr func(n int, in ParamBlock) error
	results map[Selector]Result
}

type mockEntry struct {
	dataType DataType
	data     []byte
}

var errSessionClosed = errors.New("session closed")

// NewMockController returns an empty controller.
func NewMockController() *MockController {
	return &MockController{
		entries: make(map[Key]mockEntry),
		results: make(map[Selector]Result),
	}
}

// Set defines key with the given type and value. The key's data size is
// len(data), which must not exceed MaxDataSize.
func (m *MockController) Set(key Key, typ DataType, data []byte) {
	if len(data) > MaxDataSize {
		panic(fmt.Sprintf("mock value for %s is %d bytes, max %d", key, len(data), MaxDataSize))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = mockEntry{
		dataType: typ,
		data:     append([]byte{}, data...),
	}
}

// Get returns the stored value of key in controller byte order.
func (m *MockController) Get(key Key) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return append([]byte{}, e.data...), true
}

// Delete removes key.
func (m *MockController) Delete(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// SetOpenError makes Open fail with err. A nil err restores normal behaviour.
func (m *MockController) SetOpenError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.openErr = err
}

// SetCallError installs fn, which is consulted before each call is handled.
// n counts calls since the controller was created, starting at 0. A non-nil
// return value fails the call as a channel failure.
func (m *MockController) SetCallError(fn func(n int, in ParamBlock) error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callErr = fn
}

// SetResult forces every call with selector sel to answer r.
func (m *MockController) SetResult(sel Selector, r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[sel] = r
}

// Calls returns the decoded requests received so far.
func (m *MockController) Calls() []ParamBlock {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]ParamBlock{}, m.calls...)
}

// Opens returns how many sessions were opened successfully.
func (m *MockController) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.opens
}

// Closes returns how many sessions were closed.
func (m *MockController) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closes
}

// Open implements Channel.
func (m *MockController) Open() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.openErr != nil {
		return nil, &Error{Kind: ChannelError, Op: "open", Err: m.openErr}
	}
	m.opens++

	return &mockSession{m: m}, nil
}

type mockSession struct {
	m      *MockController
	closed bool
}

func (s *mockSession) Call(in ParamBlock) (ParamBlock, error) {
	if s.closed {
		return ParamBlock{}, &Error{Kind: ChannelError, Op: "call", Key: in.Key, Err: errSessionClosed}
	}

	raw, err := in.MarshalBinary()
	if err != nil {
		return ParamBlock{}, err
	}

	resp, err := s.m.handle(raw)
	if err != nil {
		return ParamBlock{}, err
	}

	var out ParamBlock
	if err := out.UnmarshalBinary(resp); err != nil {
		return ParamBlock{}, err
	}
	return out, nil
}

func (s *mockSession) Close() error {
	if s.closed {
		return errSessionClosed
	}
	s.closed = true

	s.m.mu.Lock()
	s.m.closes++
	s.m.mu.Unlock()

	return nil
}

func (m *MockController) handle(raw []byte) ([]byte, error) {
	var in ParamBlock
	if err := in.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.calls)
	m.calls = append(m.calls, in)

	if m.callErr != nil {
		if err := m.callErr(n, in); err != nil {
			return nil, err
		}
	}

	out := ParamBlock{Key: in.Key, Selector: in.Selector}
	if r, ok := m.results[in.Selector]; ok {
		out.Result = r
		return out.MarshalBinary()
	}

	e, ok := m.entries[in.Key]
	size := uint32(len(e.data))

	switch {
	case !ok:
		out.Result = KeyNotFound
	case in.Selector == SelectorGetKeyInfo:
		out.KeyInfo = KeyInfo{DataSize: size, DataType: e.dataType}
	case in.Selector == SelectorReadKey:
		if in.KeyInfo.DataSize != size {
			out.Result = KeySizeMismatch
			break
		}
		out.KeyInfo.DataSize = size
		copy(out.Bytes[:], e.data)
	case in.Selector == SelectorWriteKey:
		if in.KeyInfo.DataSize != size {
			out.Result = KeySizeMismatch
			break
		}
		copy(e.data, in.Bytes[:size])
	default:
		out.Result = BadCommand
	}

	return out.MarshalBinary()
}
