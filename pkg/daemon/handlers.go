package daemon

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/distatus/battery"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/events"
	"github.com/charlie0129/smcd/pkg/powerinfo"
	"github.com/charlie0129/smcd/pkg/smc"
	"github.com/charlie0129/smcd/pkg/version"
)

func keyParam(c *gin.Context) (smc.Key, bool) {
	k, err := smc.ParseKey(c.Param("key"))
	if err != nil {
		abortWithSMCError(c, err)
		return 0, false
	}
	return k, true
}

func (d *Daemon) getKey(c *gin.Context) {
	k, ok := keyParam(c)
	if !ok {
		return
	}

	maxLen := smc.MaxDataSize
	if s := c.Query("maxLen"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			abortWithError(c, http.StatusBadRequest, fmt.Errorf("maxLen must be a non-negative integer, got %q", s))
			return
		}
		maxLen = n
	}

	v, err := d.smc.ReadValue(k, maxLen)
	if err != nil {
		logrus.Errorf("read %s failed: %v", k, err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, v)
}

func (d *Daemon) putKey(c *gin.Context) {
	k, ok := keyParam(c)
	if !ok {
		return
	}

	var b smc.HexBytes
	if err := c.BindJSON(&b); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if b == nil {
		b = smc.HexBytes{}
	}

	if err := d.smc.WriteKey(k, b); err != nil {
		logrus.Errorf("write %s failed: %v", k, err)
		abortWithSMCError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"key": k,
		"val": b,
	}).Infof("wrote key")
	d.hub.Publish(events.KeyWritten, events.KeyWrittenEvent{
		Key: k.String(),
		Hex: b.String(),
		Ts:  time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) getKeyInfo(c *gin.Context) {
	k, ok := keyParam(c)
	if !ok {
		return
	}

	info, err := d.smc.KeyInfo(k)
	if err != nil {
		logrus.Errorf("get key info %s failed: %v", k, err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, smc.Value{
		Key:      k.String(),
		DataType: info.DataType.String(),
		DataSize: info.DataSize,
	})
}

func (d *Daemon) getAdapterInfo(c *gin.Context) {
	info, err := d.smc.ACAdapterInfo()
	if err != nil {
		logrus.Errorf("getAdapterInfo failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, info)
}

func (d *Daemon) getWakeTimer(c *gin.Context) {
	dur, err := d.smc.WakeTimerResult()
	if err != nil {
		logrus.Errorf("getWakeTimer failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, dur.Milliseconds())
}

func (d *Daemon) primeWakeTimer(c *gin.Context) {
	if err := d.smc.PrimeWakeTimer(); err != nil {
		logrus.Errorf("primeWakeTimer failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	logrus.Infof("primed wake timer")

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) getSilentRunning(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.smc.SupportsSilentRunning())
}

func (d *Daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func (d *Daemon) setPrimeWakeTimer(c *gin.Context) {
	var p bool
	if err := c.BindJSON(&p); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	d.conf.SetPrimeWakeTimer(p)
	if err := d.conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.Infof("set prime wake timer to %t", p)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) setAdapter(c *gin.Context) {
	var e bool
	if err := c.BindJSON(&e); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if e {
		if err := d.smc.EnableAdapter(); err != nil {
			logrus.Errorf("enablePowerAdapter failed: %v", err)
			abortWithSMCError(c, err)
			return
		}
		logrus.Infof("enabled power adapter")
	} else {
		if err := d.smc.DisableAdapter(); err != nil {
			logrus.Errorf("disablePowerAdapter failed: %v", err)
			abortWithSMCError(c, err)
			return
		}
		logrus.Infof("disabled power adapter")
	}

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) getAdapter(c *gin.Context) {
	enabled, err := d.smc.IsAdapterEnabled()
	if err != nil {
		logrus.Errorf("getAdapter failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, enabled)
}

func (d *Daemon) getCharging(c *gin.Context) {
	charging, err := d.smc.IsChargingEnabled()
	if err != nil {
		logrus.Errorf("getCharging failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, charging)
}

func (d *Daemon) setCharging(c *gin.Context) {
	var e bool
	if err := c.BindJSON(&e); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if e {
		if err := d.smc.EnableCharging(); err != nil {
			logrus.Errorf("EnableCharging failed: %v", err)
			abortWithSMCError(c, err)
			return
		}
		logrus.Infof("enabled charging")
	} else {
		if err := d.smc.DisableCharging(); err != nil {
			logrus.Errorf("DisableCharging failed: %v", err)
			abortWithSMCError(c, err)
			return
		}
		logrus.Infof("disabled charging")
	}

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) getMagSafeLed(c *gin.Context) {
	if !d.smc.CheckMagSafeExistence() {
		abortWithError(c, http.StatusNotFound, errors.New("there is no MagSafe LED on this device"))
		return
	}

	state, err := d.smc.GetMagSafeLedState()
	if err != nil {
		logrus.Errorf("GetMagSafeLedState failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, state.String())
}

func (d *Daemon) setMagSafeLed(c *gin.Context) {
	// Check if MagSafe is supported first. If not, return error.
	if !d.smc.CheckMagSafeExistence() {
		abortWithError(c, http.StatusNotFound, errors.New("there is no MagSafe LED on this device"))
		return
	}

	var s string
	if err := c.BindJSON(&s); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	state, err := smc.ParseMagSafeLedState(s)
	if err != nil {
		abortWithSMCError(c, err)
		return
	}

	if err := d.smc.SetMagSafeLedState(state); err != nil {
		logrus.Errorf("SetMagSafeLedState failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	logrus.Infof("set MagSafe LED to %v", state)

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *Daemon) getCurrentCharge(c *gin.Context) {
	charge, err := d.smc.GetBatteryCharge()
	if err != nil {
		logrus.Errorf("getCurrentCharge failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, charge)
}

func (d *Daemon) getPluggedIn(c *gin.Context) {
	pluggedIn, err := d.smc.IsPluggedIn()
	if err != nil {
		logrus.Errorf("getPluggedIn failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, pluggedIn)
}

func (d *Daemon) getChargingControlCapable(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.smc.IsChargingControlCapable())
}

func (d *Daemon) getPowerTelemetry(c *gin.Context) {
	t, err := d.smc.GetPowerTelemetry()
	if err != nil {
		logrus.Errorf("getPowerTelemetry failed: %v", err)
		abortWithSMCError(c, err)
		return
	}

	c.IndentedJSON(http.StatusOK, t)
}

func (d *Daemon) getBatteryInfo(c *gin.Context) {
	batteries, err := d.batteries()
	if err != nil {
		logrus.Errorf("getBatteryInfo failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if len(batteries) == 0 {
		logrus.Errorf("no batteries found")
		c.IndentedJSON(http.StatusNotFound, "no batteries found")
		_ = c.AbortWithError(http.StatusNotFound, errors.New("no batteries found"))
		return
	}

	// Apple laptops only have one battery.
	c.IndentedJSON(http.StatusOK, batteryInfo(batteries[0]))
}

func batteryInfo(bat *battery.Battery) powerinfo.Battery {
	ret := powerinfo.Battery{
		Design:        bat.Design,
		Full:          bat.Full,
		Current:       bat.Current,
		ChargeRate:    bat.ChargeRate,
		Voltage:       bat.Voltage,
		DesignVoltage: bat.DesignVoltage,
	}

	switch bat.State {
	case battery.Charging:
		ret.State = powerinfo.Charging
	case battery.Discharging:
		ret.State = powerinfo.Discharging
		ret.ChargeRate = -bat.ChargeRate
	case battery.Full:
		ret.State = powerinfo.Full
	default:
		ret.State = powerinfo.Idle
	}

	return ret
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
