package smc

import (
	"encoding/hex"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// AppleSMC reads and writes SMC keys through a Channel. It holds no open
// session: every call acquires one and releases it before returning.
// Use Connect for an explicitly owned session.
type AppleSMC struct {
	channel Channel

	policyMu sync.RWMutex
	policies PolicyTable

	mu sync.Mutex
	// silentRunning caches a successful WKTP probe.
	silentRunning bool
}

// Option configures an AppleSMC.
type Option func(*AppleSMC)

// WithPolicies replaces the transfer policy table.
func WithPolicies(t PolicyTable) Option {
	return func(c *AppleSMC) {
		c.policies = t.Clone()
	}
}

// New returns a new AppleSMC talking to the real controller.
func New(opts ...Option) *AppleSMC {
	return NewWithChannel(NewIOKitChannel(), opts...)
}

// NewWithChannel returns a new AppleSMC using ch.
func NewWithChannel(ch Channel, opts ...Option) *AppleSMC {
	c := &AppleSMC{
		channel:  ch,
		policies: DefaultPolicies(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewMock returns a new mocked AppleSMC with prefill values. Values are in
// controller byte order.
func NewMock(prefillValues map[string][]byte) *AppleSMC {
	ctrl := NewMockController()

	for key, value := range prefillValues {
		ctrl.Set(MustKey(key), DataType(0), value)
	}

	return NewWithChannel(ctrl)
}

// Policies returns a copy of the transfer policy table.
func (c *AppleSMC) Policies() PolicyTable {
	return c.policyTable().Clone()
}

// SetPolicies replaces the transfer policy table. Transactions already in
// flight keep the table they started with.
func (c *AppleSMC) SetPolicies(t PolicyTable) {
	t = t.Clone()

	c.policyMu.Lock()
	defer c.policyMu.Unlock()
	c.policies = t
}

func (c *AppleSMC) policyTable() PolicyTable {
	c.policyMu.RLock()
	defer c.policyMu.RUnlock()
	return c.policies
}

func (c *AppleSMC) withSession(fn func(Session) error) error {
	sess, err := openSession(c.channel)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close SMC session")
		}
	}()

	return fn(sess)
}

func openSession(ch Channel) (Session, error) {
	sess, err := ch.Open()
	if err != nil {
		if _, ok := KindOf(err); ok {
			return nil, err
		}
		return nil, &Error{Kind: ChannelError, Op: "open", Err: err}
	}
	return sess, nil
}

// KeyInfo returns the metadata of key.
func (c *AppleSMC) KeyInfo(key Key) (KeyInfo, error) {
	if key.IsZero() {
		return KeyInfo{}, &Error{Kind: InvalidArgument, Op: "get key info", Key: key}
	}

	var info KeyInfo
	err := c.withSession(func(sess Session) error {
		var err error
		info, err = getKeyInfo(sess, key)
		return err
	})
	return info, err
}

// ReadKey reads up to maxLen bytes of key in host order.
func (c *AppleSMC) ReadKey(key Key, maxLen int) ([]byte, error) {
	if key.IsZero() || maxLen < 0 {
		return nil, &Error{Kind: InvalidArgument, Op: "read key", Key: key}
	}

	var b []byte
	err := c.withSession(func(sess Session) error {
		var err error
		b, _, err = readKey(sess, c.policyTable(), key, maxLen)
		return err
	})
	return b, err
}

// WriteKey writes data to key.
func (c *AppleSMC) WriteKey(key Key, data []byte) error {
	if key.IsZero() || data == nil {
		return &Error{Kind: InvalidArgument, Op: "write key", Key: key}
	}

	return c.withSession(func(sess Session) error {
		_, err := writeKey(sess, key, data)
		return err
	})
}

// Value is a key's value together with its metadata.
type Value struct {
	Key      string   `json:"key"`
	DataType string   `json:"dataType"`
	DataSize uint32   `json:"dataSize"`
	Bytes    HexBytes `json:"bytes"`
}

// HexBytes is a byte slice that marshals as a hex string.
type HexBytes []byte

func (b HexBytes) String() string {
	return hex.EncodeToString(b)
}

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	d, err := hex.DecodeString(string(text))
	if err != nil {
		return &Error{Kind: InvalidArgument, Op: "decode hex", Err: err}
	}
	*b = d
	return nil
}

// Read reads the full value of key.
func (c *AppleSMC) Read(key string) (Value, error) {
	k, err := ParseKey(key)
	if err != nil {
		return Value{}, err
	}

	v, err := c.ReadValue(k, MaxDataSize)
	if err != nil {
		return v, pkgerrors.Wrapf(err, "failed to read %s", key)
	}
	return v, nil
}

// ReadValue reads up to maxLen bytes of key along with its metadata.
func (c *AppleSMC) ReadValue(key Key, maxLen int) (Value, error) {
	logrus.WithFields(logrus.Fields{
		"key":    key,
		"maxLen": maxLen,
	}).Trace("Trying to read from SMC")

	if key.IsZero() || maxLen < 0 {
		return Value{}, &Error{Kind: InvalidArgument, Op: "read key", Key: key}
	}

	v := Value{Key: key.String()}
	err := c.withSession(func(sess Session) error {
		b, info, err := readKey(sess, c.policyTable(), key, maxLen)
		if err != nil {
			return err
		}
		v.Bytes = b
		v.DataSize = info.DataSize
		v.DataType = info.DataType.String()
		return nil
	})
	if err != nil {
		return v, err
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": v,
	}).Trace("Load from SMC succeed")

	return v, nil
}

// Write writes a value to SMC.
func (c *AppleSMC) Write(key string, value []byte) error {
	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": value,
	}).Trace("Trying to write to SMC")

	k, err := ParseKey(key)
	if err != nil {
		return err
	}

	if err := c.WriteKey(k, value); err != nil {
		return pkgerrors.Wrapf(err, "failed to write %s", key)
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": value,
	}).Trace("Write to SMC succeed")

	return nil
}

// Conn is an explicitly owned session. It is not safe for concurrent use;
// the owner serialises access and must call Close.
type Conn struct {
	sess     Session
	policies PolicyTable
	closed   bool
}

// Connect acquires a session that stays open until Conn.Close.
func (c *AppleSMC) Connect() (*Conn, error) {
	sess, err := openSession(c.channel)
	if err != nil {
		return nil, err
	}
	return &Conn{sess: sess, policies: c.policyTable()}, nil
}

func (c *Conn) check(op string, key Key) error {
	if c.closed {
		return &Error{Kind: ChannelError, Op: op, Key: key, Err: errConnClosed}
	}
	return nil
}

// KeyInfo returns the metadata of key.
func (c *Conn) KeyInfo(key Key) (KeyInfo, error) {
	if err := c.check("get key info", key); err != nil {
		return KeyInfo{}, err
	}
	return getKeyInfo(c.sess, key)
}

// ReadKey reads up to maxLen bytes of key in host order.
func (c *Conn) ReadKey(key Key, maxLen int) ([]byte, error) {
	if err := c.check("read key", key); err != nil {
		return nil, err
	}
	b, _, err := readKey(c.sess, c.policies, key, maxLen)
	return b, err
}

// WriteKey writes data to key.
func (c *Conn) WriteKey(key Key, data []byte) error {
	if err := c.check("write key", key); err != nil {
		return err
	}
	_, err := writeKey(c.sess, key, data)
	return err
}

// Close releases the session. Closing twice is a no-op.
func (c *Conn) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.sess.Close()
}
