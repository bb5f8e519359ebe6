package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the YAML file when LoadOptions.ConfigFile is empty.
const ConfigPathEnv = "DEVICE_CONFIG_PATH"

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// ConfigFile is an optional YAML file layered over the defaults
	ConfigFile string

	// EnvFile is loaded with godotenv; when empty a ./.env is tried and silently skipped if missing
	EnvFile string

	// LookupEnv defaults to os.LookupEnv
	LookupEnv func(key string) (string, bool)
}

// Load builds the configuration from compiled-in defaults, an optional YAML file and the environment,
// in that order, and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	} else {
		// Try to load .env file, but don't fail if it doesn't exist
		_ = godotenv.Load()
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	settings := Defaults()

	path := opts.ConfigFile
	if path == "" {
		path, _ = lookup(ConfigPathEnv)
	}
	if path != "" {
		if err := settings.MergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := settings.ApplyEnv(lookup); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg, err := Build(settings)
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// MergeFile overlays the YAML file at path onto s. Keys absent from the file keep their current value.
func (s *Settings) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return s.MergeYAML(data)
}

// MergeYAML overlays a YAML document onto s. Unknown keys are rejected.
func (s *Settings) MergeYAML(data []byte) error {
	// Pins are decoded apart so file keys can be matched to roles before overlaying
	base := s.Pins
	s.Pins = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(s)
	filePins := s.Pins
	s.Pins = base
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	pins, errs := canonicalPins(filePins)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if len(pins) == 0 {
		return nil
	}

	merged := make(map[string]int, len(base)+len(pins))
	for role, n := range base {
		merged[role] = n
	}
	for role, n := range pins {
		merged[role] = n
	}
	s.Pins = merged
	return nil
}

// ApplyEnv overlays environment variables onto s. Malformed values are reported as ConfigurationErrors.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	env := envReader{lookup: lookup}

	env.str("WIFI_SSID", &s.Network.SSID)
	env.str("WIFI_PASSWORD", &s.Network.Password)

	env.str("MQTT_PRESET", &s.Broker.Preset)
	if kind, err := ParsePresetKind(s.Broker.Preset); err != nil {
		env.errs = append(env.errs, &ConfigurationError{Field: "MQTT_PRESET", Value: s.Broker.Preset, Reason: "expected local or cloud"})
	} else {
		// Endpoint variables address whichever preset is selected, as the firmware header does.
		switch kind {
		case PresetLocal:
			env.str("MQTT_BROKER", &s.Broker.Local.Host)
			env.integer("MQTT_PORT", &s.Broker.Local.Port)
			env.str("MQTT_USERNAME", &s.Broker.Local.Username)
			env.str("MQTT_PASSWORD", &s.Broker.Local.Password)
		case PresetCloud:
			env.str("MQTT_BROKER", &s.Broker.Cloud.Host)
			env.integer("MQTT_PORT", &s.Broker.Cloud.Port)
			env.str("MQTT_USERNAME", &s.Broker.Cloud.Username)
			env.str("MQTT_PASSWORD", &s.Broker.Cloud.Password)
			env.str("MQTT_CA_FILE", &s.Broker.Cloud.CAFile)
		}
	}

	env.str("CABINET_ID", &s.Cabinet.ID)

	for _, role := range PinRoles() {
		key := "PIN_" + role.String()
		n, ok := env.lookupInt(key)
		if !ok {
			continue
		}
		if s.Pins == nil {
			s.Pins = make(map[string]int)
		}
		s.Pins[role.String()] = n
	}

	env.boolean("ALLOW_PLACEHOLDERS", &s.AllowPlaceholders)

	env.str("LOG_LEVEL", &s.Logging.Level)
	env.str("LOG_FORMAT", &s.Logging.Format)
	env.str("LOG_OUTPUT", &s.Logging.Output)
	env.boolean("LOG_ENABLE_CALLER", &s.Logging.EnableCaller)

	env.str("PORT", &s.Server.Port)
	env.duration("READ_TIMEOUT", &s.Server.ReadTimeout)
	env.duration("WRITE_TIMEOUT", &s.Server.WriteTimeout)
	env.duration("IDLE_TIMEOUT", &s.Server.IdleTimeout)
	env.stringSlice("CORS_ALLOWED_ORIGINS", &s.Server.AllowedOrigins)
	env.str("REGISTRY_TOKEN", &s.Server.RegistryToken)

	env.str("MONGODB_URI", &s.Registry.URI)
	env.str("DB_NAME", &s.Registry.Database)
	env.str("COLL_NAME", &s.Registry.Collection)
	env.duration("MONGODB_CONNECT_TIMEOUT", &s.Registry.ConnectTimeout)

	return errors.Join(env.errs...)
}

// Helper functions for environment variable parsing

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	value, ok := e.lookup(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func (e *envReader) str(key string, dst *string) {
	if value, ok := e.get(key); ok {
		*dst = value
	}
}

func (e *envReader) lookupInt(key string) (int, bool) {
	value, ok := e.get(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, &ConfigurationError{Field: key, Value: value, Reason: "not an integer"})
		return 0, false
	}
	return n, true
}

func (e *envReader) integer(key string, dst *int) {
	if n, ok := e.lookupInt(key); ok {
		*dst = n
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		e.errs = append(e.errs, &ConfigurationError{Field: key, Value: value, Reason: "expected true/false or 1/0"})
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, &ConfigurationError{Field: key, Value: value, Reason: "not a duration"})
		return
	}
	*dst = d
}

func (e *envReader) stringSlice(key string, dst *[]string) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	*dst = parts
}
