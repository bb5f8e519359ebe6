package config

const redacted = "********"

// Summary is a JSON view of the configuration with secrets masked.
type Summary struct {
	Network  NetworkSummary  `json:"network"`
	Broker   BrokerSummary   `json:"broker"`
	Identity IdentitySummary `json:"identity"`
	Pins     []PinSummary    `json:"pins"`
	Logging  LoggingConfig   `json:"logging"`
	// Placeholders lists fields still holding shipped example values
	Placeholders []string `json:"placeholders,omitempty"`
}

type NetworkSummary struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

type BrokerSummary struct {
	Preset   PresetKind `json:"preset"`
	Host     string     `json:"host"`
	Port     int        `json:"port"`
	TLS      bool       `json:"tls"`
	Username string     `json:"username,omitempty"`
	Password string     `json:"password,omitempty"`
}

type IdentitySummary struct {
	CabinetID string `json:"cabinet_id"`
	Topics    Topics `json:"topics"`
}

// PinSummary reports GPIO -1 together with wired=false for lines that are not connected.
type PinSummary struct {
	Role  string `json:"role"`
	GPIO  int    `json:"gpio"`
	Wired bool   `json:"wired"`
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return redacted
}

// Summary returns the redacted view.
func (c *Config) Summary() Summary {
	ep := c.broker.Endpoint()
	return Summary{
		Network: NetworkSummary{SSID: c.network.SSID, Password: mask(c.network.Password)},
		Broker: BrokerSummary{
			Preset:   c.broker.Kind(),
			Host:     ep.Host,
			Port:     ep.Port,
			TLS:      c.broker.UsesTLS(),
			Username: ep.Username,
			Password: mask(ep.Password),
		},
		Identity: IdentitySummary{
			CabinetID: c.identity.CabinetID,
			Topics:    c.identity.Topics(),
		},
		Pins:         PinSummaries(c.pins),
		Logging:      c.logging,
		Placeholders: c.Placeholders(),
	}
}

// PinSummaries lists the pin table in firmware order.
func PinSummaries(p PinAssignment) []PinSummary {
	entries := p.Entries()
	out := make([]PinSummary, len(entries))
	for i, e := range entries {
		out[i] = PinSummarize(e.Role, e.GPIO)
	}
	return out
}

func PinSummarize(role PinRole, g GPIO) PinSummary {
	return PinSummary{Role: role.String(), GPIO: g.Legacy(), Wired: g.Wired()}
}
