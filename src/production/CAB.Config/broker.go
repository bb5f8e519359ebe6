package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	DefaultLocalPort = 1883
	DefaultCloudPort = 8883
)

// PresetKind selects one of the broker presets.
type PresetKind string

const (
	PresetLocal PresetKind = "local"
	PresetCloud PresetKind = "cloud"
)

// ParsePresetKind accepts "local" or "cloud" in any case. Empty selects local.
func ParsePresetKind(s string) (PresetKind, error) {
	switch PresetKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", PresetLocal:
		return PresetLocal, nil
	case PresetCloud:
		return PresetCloud, nil
	}
	return "", fmt.Errorf("unknown broker preset %q (expected local or cloud)", s)
}

// BrokerEndpoint is the flat view of the active preset handed to an MQTT client.
type BrokerEndpoint struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Address returns host:port.
func (e BrokerEndpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e BrokerEndpoint) HasCredentials() bool {
	return e.Username != ""
}

// BrokerPreset is either LocalBroker or CloudBroker. The set is closed.
type BrokerPreset interface {
	Kind() PresetKind
	Endpoint() BrokerEndpoint
	UsesTLS() bool
	validate() []error
}

// LocalBroker is a plain-TCP broker on the cabinet's LAN, e.g. Mosquitto.
type LocalBroker struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (b LocalBroker) Kind() PresetKind { return PresetLocal }
func (b LocalBroker) UsesTLS() bool    { return false }

func (b LocalBroker) Endpoint() BrokerEndpoint {
	return BrokerEndpoint{Host: b.Host, Port: b.Port, Username: b.Username, Password: b.Password}
}

func (b LocalBroker) validate() []error {
	errs := validateHostPort("broker.local", b.Host, b.Port)
	if b.Password != "" && b.Username == "" {
		errs = append(errs, &ConfigurationError{Field: "broker.local.username", Reason: "password set without a username"})
	}
	return errs
}

// CloudBroker is a hosted broker reached over TLS with credentials, e.g. HiveMQ Cloud.
type CloudBroker struct {
	Host     string
	Port     int
	Username string
	Password string
	// CAFile optionally pins the broker's CA; the system pool is used otherwise.
	CAFile string
}

func (b CloudBroker) Kind() PresetKind { return PresetCloud }
func (b CloudBroker) UsesTLS() bool    { return true }

func (b CloudBroker) Endpoint() BrokerEndpoint {
	return BrokerEndpoint{Host: b.Host, Port: b.Port, Username: b.Username, Password: b.Password}
}

func (b CloudBroker) validate() []error {
	errs := validateHostPort("broker.cloud", b.Host, b.Port)
	if b.Username == "" {
		errs = append(errs, &ConfigurationError{Field: "broker.cloud.username", Reason: "required by the cloud preset"})
	}
	if b.Password == "" {
		errs = append(errs, &ConfigurationError{Field: "broker.cloud.password", Reason: "required by the cloud preset"})
	}
	return errs
}

func validateHostPort(prefix, host string, port int) []error {
	var errs []error
	if strings.TrimSpace(host) == "" {
		errs = append(errs, &ConfigurationError{Field: prefix + ".host", Reason: "must not be empty"})
	}
	if port < 1 || port > 65535 {
		errs = append(errs, &ConfigurationError{Field: prefix + ".port", Value: strconv.Itoa(port), Reason: "must be within 1-65535"})
	}
	return errs
}

// presetFromSettings picks the single active preset. Fields of the other preset are dropped.
func presetFromSettings(s BrokerSettings) (BrokerPreset, []error) {
	kind, err := ParsePresetKind(s.Preset)
	if err != nil {
		return nil, []error{&ConfigurationError{Field: "broker.preset", Value: s.Preset, Reason: "expected local or cloud"}}
	}

	var preset BrokerPreset
	switch kind {
	case PresetLocal:
		preset = LocalBroker{
			Host:     s.Local.Host,
			Port:     s.Local.Port,
			Username: s.Local.Username,
			Password: s.Local.Password,
		}
	case PresetCloud:
		preset = CloudBroker{
			Host:     s.Cloud.Host,
			Port:     s.Cloud.Port,
			Username: s.Cloud.Username,
			Password: s.Cloud.Password,
			CAFile:   s.Cloud.CAFile,
		}
	default:
		panic("unhandled broker preset " + string(kind))
	}

	return preset, preset.validate()
}
