package smc

import (
	"encoding/binary"
	"fmt"
	"math"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/powerinfo"
)

// IsPluggedIn returns whether the device is plugged in.
func (c *AppleSMC) IsPluggedIn() (bool, error) {
	logrus.Tracef("IsPluggedIn called")

	v, err := c.Read(ACPowerKey)
	if err != nil {
		return false, err
	}

	ret := len(v.Bytes) == 1 && int8(v.Bytes[0]) > 0
	logrus.Tracef("IsPluggedIn returned %t", ret)

	return ret, nil
}

// GetBatteryCharge returns the battery charge in percent.
func (c *AppleSMC) GetBatteryCharge() (int, error) {
	logrus.Tracef("GetBatteryCharge called")

	v, err := c.Read(BatteryChargeKey)
	if err != nil {
		return 0, err
	}

	if len(v.Bytes) != 1 {
		return 0, fmt.Errorf("incorrect data length %d!=1", len(v.Bytes))
	}

	return int(v.Bytes[0]), nil
}

// GetPowerTelemetry reads the DC-in and battery sensors and derives power
// figures from them. The sensors report little-endian values; after the
// read swap they are big-endian.
func (c *AppleSMC) GetPowerTelemetry() (*powerinfo.PowerTelemetry, error) {
	logrus.Tracef("GetPowerTelemetry called")

	dcinCurrent, err := c.Read(DCInCurrentKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read dcin current")
	}
	dcinVoltage, err := c.Read(DCInVoltageKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read dcin voltage")
	}
	battCurrent, err := c.Read(BatteryCurrentKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read battery current")
	}
	battVoltage, err := c.Read(BatteryVoltageKey)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read battery voltage")
	}

	acAmperage := decodeFloat(dcinCurrent.Bytes)
	acVoltage := decodeFloat(dcinVoltage.Bytes)
	pAC := acAmperage * acVoltage

	// Battery current is signed mA, voltage is mV.
	pBatt := (float64(decodeInt(battCurrent.Bytes)) / 1000.0) * (float64(decodeUint(battVoltage.Bytes)) / 1000.0)

	return &powerinfo.PowerTelemetry{
		ACPower:      pAC,
		BatteryPower: pBatt,
		SystemPower:  pAC - pBatt,
		ACVoltage:    acVoltage,
		ACAmperage:   acAmperage,
	}, nil
}

func decodeFloat(b []byte) float64 {
	if len(b) != 4 {
		return 0
	}
	return float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
}

func decodeInt(b []byte) int16 {
	if len(b) != 2 {
		return 0
	}
	return int16(binary.BigEndian.Uint16(b))
}

func decodeUint(b []byte) uint16 {
	if len(b) != 2 {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}
