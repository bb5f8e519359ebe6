package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresetKind(t *testing.T) {
	kind, err := ParsePresetKind("")
	require.NoError(t, err)
	assert.Equal(t, PresetLocal, kind)

	kind, err = ParsePresetKind("CLOUD")
	require.NoError(t, err)
	assert.Equal(t, PresetCloud, kind)

	_, err = ParsePresetKind("hivemq")
	assert.Error(t, err)
}

func TestPresetFromSettingsLocal(t *testing.T) {
	preset, errs := presetFromSettings(Defaults().Broker)
	require.Empty(t, errs)

	local, ok := preset.(LocalBroker)
	require.True(t, ok)
	assert.Equal(t, PresetLocal, local.Kind())
	assert.False(t, local.UsesTLS())
	assert.Equal(t, BrokerEndpoint{Host: "192.168.1.100", Port: 1883}, local.Endpoint())
	assert.False(t, local.Endpoint().HasCredentials())
}

func TestPresetFromSettingsCloudDropsLocalValues(t *testing.T) {
	s := Defaults().Broker
	s.Preset = "cloud"
	s.Cloud.Host = "abc.s1.eu.hivemq.cloud"
	s.Cloud.Username = "cab"
	s.Cloud.Password = "secret"

	preset, errs := presetFromSettings(s)
	require.Empty(t, errs)

	_, isLocal := preset.(LocalBroker)
	assert.False(t, isLocal)
	assert.True(t, preset.UsesTLS())

	ep := preset.Endpoint()
	assert.Equal(t, BrokerEndpoint{Host: "abc.s1.eu.hivemq.cloud", Port: 8883, Username: "cab", Password: "secret"}, ep)
	assert.NotEqual(t, s.Local.Host, ep.Host)
	assert.NotEqual(t, s.Local.Port, ep.Port)
}

func TestCloudPresetRequiresCredentials(t *testing.T) {
	s := Defaults().Broker
	s.Preset = "cloud"
	s.Cloud.Username = ""
	s.Cloud.Password = ""

	_, errs := presetFromSettings(s)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "broker.cloud.username")
	assert.Contains(t, errs[1].Error(), "broker.cloud.password")
}

func TestPresetPortRange(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		s := Defaults().Broker
		s.Local.Port = port
		_, errs := presetFromSettings(s)
		require.Len(t, errs, 1, "port %d", port)
		assert.Contains(t, errs[0].Error(), "broker.local.port")
	}

	for _, port := range []int{1, 1883, 65535} {
		s := Defaults().Broker
		s.Local.Port = port
		_, errs := presetFromSettings(s)
		assert.Empty(t, errs, "port %d", port)
	}
}

func TestUnknownPreset(t *testing.T) {
	s := Defaults().Broker
	s.Preset = "both"

	preset, errs := presetFromSettings(s)
	assert.Nil(t, preset)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "broker.preset")
}

func TestBrokerEndpointAddress(t *testing.T) {
	assert.Equal(t, "192.168.1.100:1883", BrokerEndpoint{Host: "192.168.1.100", Port: 1883}.Address())
	assert.Equal(t, "[::1]:8883", BrokerEndpoint{Host: "::1", Port: 8883}.Address())
}
