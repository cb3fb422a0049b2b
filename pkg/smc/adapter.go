package smc

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"
)

// IsAdapterEnabled returns whether the adapter is enabled.
func (c *AppleSMC) IsAdapterEnabled() (bool, error) {
	logrus.Tracef("IsAdapterEnabled called")

	v, err := c.Read(AdapterKey)
	if err != nil {
		return false, err
	}

	ret := len(v.Bytes) == 1 && v.Bytes[0] == 0x0
	logrus.Tracef("IsAdapterEnabled returned %t", ret)

	return ret, nil
}

// EnableAdapter enables the adapter.
func (c *AppleSMC) EnableAdapter() error {
	logrus.Tracef("EnableAdapter called")

	return c.Write(AdapterKey, []byte{0x0})
}

// DisableAdapter disables the adapter.
func (c *AppleSMC) DisableAdapter() error {
	logrus.Tracef("DisableAdapter called")

	return c.Write(AdapterKey, []byte{0x1})
}

// ACAdapterInfo returns the raw 64-bit adapter info word. The key is read
// without byte swapping, so the bytes are already in host order.
func (c *AppleSMC) ACAdapterInfo() (uint64, error) {
	logrus.Tracef("ACAdapterInfo called")

	b, err := c.ReadKey(ACAdapterInfoKey, 8)
	if err != nil {
		return 0, err
	}

	var buf [8]byte
	copy(buf[:], b)
	ret := binary.LittleEndian.Uint64(buf[:])
	logrus.Tracef("ACAdapterInfo returned %#x", ret)

	return ret, nil
}
