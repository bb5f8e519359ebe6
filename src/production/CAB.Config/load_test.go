package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapEnv(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromEnvironment(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: mapEnv(map[string]string{
		"WIFI_SSID":     "shop-floor",
		"WIFI_PASSWORD": "wpa-key",
		"MQTT_BROKER":   "10.0.0.5",
		"MQTT_PORT":     "1884",
		"CABINET_ID":    "CAB017",
		"PIN_PWDN":      "-1",
		"LOG_LEVEL":     "debug",
	})})
	require.NoError(t, err)

	assert.Equal(t, "shop-floor", cfg.NetworkCredentials().SSID)
	assert.Equal(t, BrokerEndpoint{Host: "10.0.0.5", Port: 1884}, cfg.BrokerEndpoint())
	assert.Equal(t, "CAB017", cfg.CabinetID())
	assert.False(t, cfg.Pin(RolePWDN).Wired())
	assert.Equal(t, "debug", cfg.Logging().Level)
}

func TestLoadCloudPresetFromEnvironment(t *testing.T) {
	cfg, err := Load(LoadOptions{LookupEnv: mapEnv(map[string]string{
		"WIFI_SSID":     "shop-floor",
		"WIFI_PASSWORD": "wpa-key",
		"MQTT_PRESET":   "cloud",
		"MQTT_BROKER":   "78d8.s1.eu.hivemq.cloud",
		"MQTT_USERNAME": "cab",
		"MQTT_PASSWORD": "hive",
	})})
	require.NoError(t, err)

	cloud, ok := cfg.Broker().(CloudBroker)
	require.True(t, ok)
	assert.Equal(t, 8883, cloud.Port)
	assert.Equal(t, "78d8.s1.eu.hivemq.cloud", cloud.Host)
}

func TestLoadMalformedEnvironment(t *testing.T) {
	_, err := Load(LoadOptions{LookupEnv: mapEnv(map[string]string{
		"WIFI_SSID":          "shop-floor",
		"WIFI_PASSWORD":      "wpa-key",
		"MQTT_PORT":          "eighteen",
		"PIN_XCLK":           "x",
		"ALLOW_PLACEHOLDERS": "maybe",
		"READ_TIMEOUT":       "30",
	})})
	require.Error(t, err)

	var fields []string
	for _, ce := range ConfigurationErrors(err) {
		fields = append(fields, ce.Field)
	}
	assert.ElementsMatch(t, []string{"MQTT_PORT", "PIN_XCLK", "ALLOW_PLACEHOLDERS", "READ_TIMEOUT"}, fields)
}

func TestLoadUnknownPreset(t *testing.T) {
	_, err := Load(LoadOptions{LookupEnv: mapEnv(map[string]string{
		"WIFI_SSID":     "shop-floor",
		"WIFI_PASSWORD": "wpa-key",
		"MQTT_PRESET":   "both",
	})})
	require.Error(t, err)
	errs := ConfigurationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "MQTT_PRESET", errs[0].Field)
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeTempFile(t, "device.yaml", `
network:
  ssid: warehouse
  password: wpa2-key
broker:
  preset: cloud
  cloud:
    host: broker.example.com
    username: cab
    password: hive
cabinet:
  id: CAB100
pins:
  RESET: 4
server:
  read_timeout: 5s
`)

	cfg, err := Load(LoadOptions{ConfigFile: path, LookupEnv: mapEnv(nil)})
	require.NoError(t, err)

	assert.Equal(t, "warehouse", cfg.NetworkCredentials().SSID)
	assert.Equal(t, BrokerEndpoint{Host: "broker.example.com", Port: 8883, Username: "cab", Password: "hive"}, cfg.BrokerEndpoint())
	assert.Equal(t, "CAB100", cfg.CabinetID())
	assert.Equal(t, Pin(4), cfg.Pin(RoleRESET))
	assert.Equal(t, Pin(32), cfg.Pin(RolePWDN))
	assert.Equal(t, 5*time.Second, cfg.Server().ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server().WriteTimeout)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeTempFile(t, "device.yaml", `
network:
  ssid: warehouse
  password: wpa2-key
cabinet:
  id: CAB100
`)

	cfg, err := Load(LoadOptions{LookupEnv: mapEnv(map[string]string{
		ConfigPathEnv: path,
		"CABINET_ID":  "CAB200",
	})})
	require.NoError(t, err)
	assert.Equal(t, "warehouse", cfg.NetworkCredentials().SSID)
	assert.Equal(t, "CAB200", cfg.CabinetID())
}

func TestLoadYAMLUnknownKey(t *testing.T) {
	path := writeTempFile(t, "device.yaml", "network:\n  essid: typo\n")

	_, err := Load(LoadOptions{ConfigFile: path, LookupEnv: mapEnv(nil)})
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml"), LookupEnv: mapEnv(nil)})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadEnvFile(t *testing.T) {
	path := writeTempFile(t, "device.env", "CAB_TEST_ENVFILE_SSID=from-env-file\n")
	t.Setenv("CAB_TEST_ENVFILE_SSID", "")
	os.Unsetenv("CAB_TEST_ENVFILE_SSID")

	lookup := func(key string) (string, bool) {
		switch key {
		case "WIFI_SSID":
			return os.LookupEnv("CAB_TEST_ENVFILE_SSID")
		case "WIFI_PASSWORD":
			return "wpa-key", true
		}
		return "", false
	}

	cfg, err := Load(LoadOptions{EnvFile: path, LookupEnv: lookup})
	require.NoError(t, err)
	assert.Equal(t, "from-env-file", cfg.NetworkCredentials().SSID)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "absent.env"), LookupEnv: mapEnv(nil)})
	assert.Error(t, err)
}

func TestMergeEmptyYAML(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.MergeYAML(nil))
	assert.Equal(t, Defaults(), s)
}

func TestApplyEnvStringSlice(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.ApplyEnv(mapEnv(map[string]string{
		"CORS_ALLOWED_ORIGINS": " http://a.local , ,http://b.local",
	})))
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, s.Server.AllowedOrigins)
}

func TestLoadYAMLPinKeySpellings(t *testing.T) {
	path := writeTempFile(t, "device.yaml", `
network:
  ssid: warehouse
  password: wpa2-key
pins:
  pwdn: 12
  Y2_GPIO_NUM: 13
  reset_gpio_num: 4
`)

	first, err := Load(LoadOptions{ConfigFile: path, LookupEnv: mapEnv(nil)})
	require.NoError(t, err)

	assert.Equal(t, Pin(12), first.Pin(RolePWDN))
	assert.Equal(t, Pin(13), first.Pin(RoleY2))
	assert.Equal(t, Pin(4), first.Pin(RoleRESET))
	assert.Equal(t, Pin(0), first.Pin(RoleXCLK))

	for i := 0; i < 50; i++ {
		again, err := Load(LoadOptions{ConfigFile: path, LookupEnv: mapEnv(nil)})
		require.NoError(t, err)
		require.Equal(t, first.Pins(), again.Pins(), "load %d", i)
	}
}

func TestMergeYAMLReplacesDefaultPin(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.MergeYAML([]byte("pins:\n  pwdn: 12\n")))

	assert.Len(t, s.Pins, len(PinRoles()))
	assert.Equal(t, 12, s.Pins["PWDN"])
	assert.NotContains(t, s.Pins, "pwdn")
}

func TestMergeYAMLRejectsRoleSetTwice(t *testing.T) {
	s := Defaults()
	err := s.MergeYAML([]byte("pins:\n  pwdn: 12\n  PWDN_GPIO_NUM: 14\n"))
	require.Error(t, err)

	errs := ConfigurationErrors(err)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Reason, "same role")

	// the defaults are left untouched
	assert.Equal(t, 32, s.Pins["PWDN"])
}
