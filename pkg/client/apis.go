package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/smcd/pkg/config"
	"github.com/charlie0129/smcd/pkg/powerinfo"
	"github.com/charlie0129/smcd/pkg/smc"
)

// ReadKey reads up to maxLen bytes of key. A negative maxLen reads the
// whole value.
func (c *Client) ReadKey(key string, maxLen int) (*smc.Value, error) {
	path := "/keys/" + url.PathEscape(key)
	if maxLen >= 0 {
		path += "?maxLen=" + strconv.Itoa(maxLen)
	}

	ret, err := c.Get(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read key %s", key)
	}

	var v smc.Value
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal key %s", key)
	}
	return &v, nil
}

// WriteKey writes data to key.
func (c *Client) WriteKey(key string, data []byte) (string, error) {
	payload, err := json.Marshal(smc.HexBytes(data))
	if err != nil {
		return "", err
	}
	return c.Put("/keys/"+url.PathEscape(key), string(payload))
}

// KeyInfo returns the metadata of key. Bytes is left empty.
func (c *Client) KeyInfo(key string) (*smc.Value, error) {
	ret, err := c.Get("/keys/" + url.PathEscape(key) + "/info")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get info of key %s", key)
	}

	var v smc.Value
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal info of key %s", key)
	}
	return &v, nil
}

func (c *Client) GetAdapterInfo() (uint64, error) {
	ret, err := c.Get("/adapter-info")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get adapter info")
	}
	info, err := strconv.ParseUint(ret, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse adapter info")
	}
	return info, nil
}

func (c *Client) GetWakeTimer() (time.Duration, error) {
	ret, err := c.Get("/wake-timer")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get wake timer")
	}
	ms, err := strconv.ParseInt(ret, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse wake timer")
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (c *Client) PrimeWakeTimer() (string, error) {
	return c.Put("/wake-timer", "")
}

func (c *Client) GetSilentRunning() (bool, error) {
	ret, err := c.Get("/silent-running")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to check silent running support")
	}
	return parseBoolResponse(ret)
}

func (c *Client) SetPrimeWakeTimer(enabled bool) (string, error) {
	return c.Put("/prime-wake-timer", strconv.FormatBool(enabled))
}

func (c *Client) SetAdapter(enabled bool) (string, error) {
	return c.Put("/adapter", strconv.FormatBool(enabled))
}

func (c *Client) GetAdapter() (bool, error) {
	ret, err := c.Get("/adapter")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get power adapter status")
	}
	return parseBoolResponse(ret)
}

func (c *Client) GetCharging() (bool, error) {
	ret, err := c.Get("/charging")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get charging status")
	}
	return parseBoolResponse(ret)
}

func (c *Client) SetCharging(enabled bool) (string, error) {
	return c.Put("/charging", strconv.FormatBool(enabled))
}

func (c *Client) GetMagSafeLed() (string, error) {
	ret, err := c.Get("/magsafe-led")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get MagSafe LED state")
	}

	var state string
	if err := json.Unmarshal([]byte(ret), &state); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal MagSafe LED state")
	}
	return state, nil
}

func (c *Client) SetMagSafeLed(state string) (string, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return "", err
	}
	return c.Put("/magsafe-led", string(payload))
}

func (c *Client) GetPluggedIn() (bool, error) {
	ret, err := c.Get("/plugged-in")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to check if you are plugged in")
	}
	return parseBoolResponse(ret)
}

func (c *Client) GetCurrentCharge() (int, error) {
	ret, err := c.Get("/current-charge")
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to get current charge")
	}
	currentCharge, err := strconv.Atoi(ret)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to unmarshal current charge")
	}
	return currentCharge, nil
}

func (c *Client) GetBatteryInfo() (*powerinfo.Battery, error) {
	ret, err := c.Get("/battery-info")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery info")
	}

	var bat powerinfo.Battery
	if err := json.Unmarshal([]byte(ret), &bat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal battery info: %w", err)
	}

	return &bat, nil
}

func (c *Client) GetChargingControlCapable() (bool, error) {
	ret, err := c.Get("/charging-control-capable")
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to get charging control capability")
	}

	capable, err := strconv.ParseBool(ret)
	if err != nil {
		return false, pkgerrors.Wrapf(err, "failed to parse charging control capability response")
	}

	return capable, nil
}

func (c *Client) GetPowerTelemetry() (*powerinfo.PowerTelemetry, error) {
	ret, err := c.Get("/power-telemetry")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get power telemetry")
	}

	var info powerinfo.PowerTelemetry
	if err := json.Unmarshal([]byte(ret), &info); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal power telemetry")
	}
	return &info, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}

func parseBoolResponse(resp string) (bool, error) {
	switch resp {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, pkgerrors.Errorf("unexpected response: %s", resp)
	}
}
