package smc

import (
	"encoding/binary"
	"fmt"
)

// Key is a 4-byte SMC key, e.g. 'ACID'.
type Key uint32

// ParseKey packs a 4-character key name into a Key.
func ParseKey(s string) (Key, error) {
	if len(s) != 4 {
		return 0, &Error{Kind: InvalidArgument, Op: "parse key", Err: fmt.Errorf("key %q must be exactly 4 bytes", s)}
	}

	k := Key(binary.BigEndian.Uint32([]byte(s)))
	if k.IsZero() {
		return 0, &Error{Kind: InvalidArgument, Op: "parse key", Err: fmt.Errorf("key %q is zero", s)}
	}

	return k, nil
}

// MustKey is like ParseKey but panics on malformed names. Use it for constants.
func MustKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// IsZero reports whether k is the reserved zero key.
func (k Key) IsZero() bool {
	return k == 0
}

// String returns the 4-character form of k, or its hex value if any byte
// is not printable ASCII.
func (k Key) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(k))
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(k))
		}
	}
	return string(b[:])
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
