package firmware

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
)

// HeaderGuard wraps the generated file
const HeaderGuard = "CONFIG_H"

const headerTemplate = `#ifndef {{ .Guard }}
#define {{ .Guard }}

// WiFi Configuration
#define WIFI_SSID {{ cstr .Network.SSID }}
#define WIFI_PASSWORD {{ cstr .Network.Password }}

// MQTT Configuration ({{ .PresetLabel }})
#define MQTT_BROKER {{ cstr .Broker.Host }}
#define MQTT_PORT {{ .Broker.Port }}
#define MQTT_USERNAME {{ cstr .Broker.Username }}
#define MQTT_PASSWORD {{ cstr .Broker.Password }}
{{- if .TLS }}
#define MQTT_USE_TLS 1
{{- end }}

// Cabinet Configuration
#define CABINET_ID {{ cstr .CabinetID }}

// Camera Pins (AI-Thinker ESP32-CAM)
{{- range .Pins }}
#define {{ printf "%-17s%3d" .Role.Define .GPIO.Legacy }}
{{- end }}

#endif
`

var tmpl = template.Must(template.New("config.h").Funcs(template.FuncMap{
	"cstr": CString,
}).Parse(headerTemplate))

type headerData struct {
	Guard       string
	Network     config.NetworkCredentials
	Broker      config.BrokerEndpoint
	PresetLabel string
	TLS         bool
	CabinetID   string
	Pins        []config.PinEntry
}

// RenderHeader writes the firmware config.h for cfg. Only the selected broker
// preset is emitted and pins that are not wired are written as -1.
func RenderHeader(w io.Writer, cfg *config.Config) error {
	data := headerData{
		Guard:       HeaderGuard,
		Network:     cfg.NetworkCredentials(),
		Broker:      cfg.BrokerEndpoint(),
		PresetLabel: string(cfg.Broker().Kind()) + " broker",
		TLS:         cfg.Broker().UsesTLS(),
		CabinetID:   cfg.CabinetID(),
		Pins:        cfg.Pins().Entries(),
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render config.h: %w", err)
	}
	return nil
}

// CString quotes s as a C string literal. Bytes outside printable ASCII are
// hex escaped and the escape is closed so a following hex digit is not absorbed.
func CString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x""`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
