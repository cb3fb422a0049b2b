package smc

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// MagSafeLedState is the state of the MagSafe LED.
type MagSafeLedState uint8

// Representation of MagSafeLedState.
const (
	LEDSystem        MagSafeLedState = 0x00
	LEDOff           MagSafeLedState = 0x01
	LEDGreen         MagSafeLedState = 0x03
	LEDOrange        MagSafeLedState = 0x04
	LEDErrorOnce     MagSafeLedState = 0x05
	LEDErrorPermSlow MagSafeLedState = 0x06
	LEDErrorPermFast MagSafeLedState = 0x07
	LEDErrorPermOff  MagSafeLedState = 0x19
)

func (s MagSafeLedState) String() string {
	switch s {
	case LEDSystem:
		return "system"
	case LEDOff:
		return "off"
	case LEDGreen:
		return "green"
	case LEDOrange:
		return "orange"
	case LEDErrorOnce:
		return "error-once"
	case LEDErrorPermSlow:
		return "error-perm-slow"
	case LEDErrorPermFast:
		return "error-perm-fast"
	case LEDErrorPermOff:
		return "error-perm-off"
	default:
		return fmt.Sprintf("MagSafeLedState(%#x)", uint8(s))
	}
}

// ParseMagSafeLedState parses the name returned by MagSafeLedState.String.
func ParseMagSafeLedState(s string) (MagSafeLedState, error) {
	for _, st := range []MagSafeLedState{
		LEDSystem, LEDOff, LEDGreen, LEDOrange,
		LEDErrorOnce, LEDErrorPermSlow, LEDErrorPermFast, LEDErrorPermOff,
	} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, &Error{Kind: InvalidArgument, Op: "parse LED state", Err: fmt.Errorf("unknown MagSafe LED state %q", s)}
}

// SetMagSafeLedState sets the LED.
func (c *AppleSMC) SetMagSafeLedState(state MagSafeLedState) error {
	logrus.Tracef("SetMagSafeLedState(%v) called", state)

	return c.WriteKey(MustKey(MagSafeLedKey), []byte{byte(state)})
}

// GetMagSafeLedState returns the LED state. Unknown raw states read as orange,
// and 2 (a transitional green) reads as green.
func (c *AppleSMC) GetMagSafeLedState() (MagSafeLedState, error) {
	logrus.Tracef("GetMagSafeLedState called")

	b, err := c.ReadKey(MustKey(MagSafeLedKey), 1)
	if err != nil || len(b) != 1 {
		return LEDOrange, err
	}

	rawState := MagSafeLedState(b[0])
	ret := LEDOrange
	switch rawState {
	case LEDSystem, LEDOff, LEDGreen, LEDOrange, LEDErrorOnce, LEDErrorPermSlow, LEDErrorPermFast, LEDErrorPermOff:
		ret = rawState
	case 2:
		ret = LEDGreen
	}
	logrus.Tracef("GetMagSafeLedState returned %v", ret)
	return ret, nil
}

// CheckMagSafeExistence reports whether the controller has a MagSafe LED key.
func (c *AppleSMC) CheckMagSafeExistence() bool {
	_, err := c.KeyInfo(MustKey(MagSafeLedKey))
	return err == nil
}
