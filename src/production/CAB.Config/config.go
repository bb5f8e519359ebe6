package config

import (
	"errors"
	"strings"
	"time"
)

// Settings is the raw, mutable form of the configuration as read from defaults, file and environment.
// Build turns it into an immutable Config.
type Settings struct {
	// Network credentials
	Network NetworkSettings `yaml:"network"`

	// MQTT broker presets
	Broker BrokerSettings `yaml:"broker"`

	// Cabinet identity
	Cabinet CabinetSettings `yaml:"cabinet"`

	// Camera pins by role name; -1 marks a line that is not wired
	Pins map[string]int `yaml:"pins"`

	// AllowPlaceholders accepts the shipped example credentials, for bench setups only
	AllowPlaceholders bool `yaml:"allow_placeholders"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Inspection server configuration
	Server ServerConfig `yaml:"server"`

	// Fleet registry configuration
	Registry RegistryConfig `yaml:"registry"`
}

// NetworkSettings holds the Wi-Fi identity
type NetworkSettings struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

// BrokerSettings holds both presets; only the one named by Preset survives Build
type BrokerSettings struct {
	Preset string              `yaml:"preset"`
	Local  LocalBrokerSettings `yaml:"local"`
	Cloud  CloudBrokerSettings `yaml:"cloud"`
}

// LocalBrokerSettings holds the LAN broker preset
type LocalBrokerSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// CloudBrokerSettings holds the hosted broker preset
type CloudBrokerSettings struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	CAFile   string `yaml:"ca_file"`
}

// CabinetSettings holds the device identity
type CabinetSettings struct {
	ID string `yaml:"id"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `yaml:"level" json:"level"`
	Format       string `yaml:"format" json:"format"` // json or text
	Output       string `yaml:"output" json:"output"` // stdout, stderr, or file path
	EnableCaller bool   `yaml:"enable_caller" json:"enable_caller"`
}

// ServerConfig holds inspection server configuration
type ServerConfig struct {
	Port           string        `yaml:"port" json:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins" json:"allowed_origins"`

	// RegistryToken guards registry writes; when empty those routes are refused
	RegistryToken string `yaml:"registry_token" json:"-"`
}

// RegistryConfig holds the MongoDB fleet registry configuration. An empty URI keeps the registry in memory.
type RegistryConfig struct {
	URI            string        `yaml:"uri" json:"-"`
	Database       string        `yaml:"database" json:"database"`
	Collection     string        `yaml:"collection" json:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
}

// NetworkCredentials is the Wi-Fi identity handed to the network stack
type NetworkCredentials struct {
	SSID     string
	Password string
}

// Config is the validated device configuration table. All getters return copies.
type Config struct {
	network      NetworkCredentials
	broker       BrokerPreset
	identity     DeviceIdentity
	pins         PinAssignment
	logging      LoggingConfig
	server       ServerConfig
	registry     RegistryConfig
	placeholders []string
}

// Build validates s and returns the immutable configuration, or every violation joined.
func Build(s Settings) (*Config, error) {
	var errs []error

	network := NetworkCredentials{SSID: s.Network.SSID, Password: s.Network.Password}
	if strings.TrimSpace(network.SSID) == "" {
		errs = append(errs, &ConfigurationError{Field: "network.ssid", Reason: "must not be empty"})
	}
	if network.Password == "" {
		errs = append(errs, &ConfigurationError{Field: "network.password", Reason: "must not be empty"})
	}

	broker, brokerErrs := presetFromSettings(s.Broker)
	errs = append(errs, brokerErrs...)

	identity := DeviceIdentity{CabinetID: strings.TrimSpace(s.Cabinet.ID)}
	errs = append(errs, identity.validate()...)

	pins, pinErrs := pinsFromSettings(s.Pins)
	errs = append(errs, pinErrs...)

	placeholders := findPlaceholders(network, broker)
	if !s.AllowPlaceholders {
		for _, field := range placeholders {
			errs = append(errs, &ConfigurationError{Field: field, Reason: "still set to the shipped placeholder"})
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		network:      network,
		broker:       broker,
		identity:     identity,
		pins:         pins,
		logging:      s.Logging,
		server:       cloneServer(s.Server),
		registry:     s.Registry,
		placeholders: placeholders,
	}, nil
}

func cloneServer(s ServerConfig) ServerConfig {
	s.AllowedOrigins = append([]string(nil), s.AllowedOrigins...)
	return s
}

// NetworkCredentials returns the configured Wi-Fi identity.
func (c *Config) NetworkCredentials() NetworkCredentials {
	return c.network
}

// Broker returns the active preset.
func (c *Config) Broker() BrokerPreset {
	return c.broker
}

// BrokerEndpoint returns host, port and credentials of the active preset.
func (c *Config) BrokerEndpoint() BrokerEndpoint {
	return c.broker.Endpoint()
}

func (c *Config) Identity() DeviceIdentity {
	return c.identity
}

// CabinetID returns the identifier used to namespace this cabinet's topics.
func (c *Config) CabinetID() string {
	return c.identity.CabinetID
}

// Pin returns the GPIO for role, or NotWired.
func (c *Config) Pin(role PinRole) GPIO {
	return c.pins.Get(role)
}

func (c *Config) Pins() PinAssignment {
	return c.pins
}

func (c *Config) Logging() LoggingConfig {
	return c.logging
}

func (c *Config) Server() ServerConfig {
	return cloneServer(c.server)
}

func (c *Config) Registry() RegistryConfig {
	return c.registry
}

// Placeholders lists fields still holding shipped example values. Non-empty only when placeholders were allowed.
func (c *Config) Placeholders() []string {
	return append([]string(nil), c.placeholders...)
}

// Settings returns a Settings value that rebuilds an identical Config.
// Only the active broker preset is populated.
func (c *Config) Settings() Settings {
	s := Settings{
		Network:           NetworkSettings{SSID: c.network.SSID, Password: c.network.Password},
		Cabinet:           CabinetSettings{ID: c.identity.CabinetID},
		Pins:              settingsFromPins(c.pins),
		AllowPlaceholders: len(c.placeholders) > 0,
		Logging:           c.logging,
		Server:            cloneServer(c.server),
		Registry:          c.registry,
	}

	s.Broker.Preset = string(c.broker.Kind())
	switch b := c.broker.(type) {
	case LocalBroker:
		s.Broker.Local = LocalBrokerSettings{Host: b.Host, Port: b.Port, Username: b.Username, Password: b.Password}
	case CloudBroker:
		s.Broker.Cloud = CloudBrokerSettings{Host: b.Host, Port: b.Port, Username: b.Username, Password: b.Password, CAFile: b.CAFile}
	}
	return s
}
