package config

import "time"

// Shipped example values. A deployment must replace them unless placeholders are allowed.
const (
	PlaceholderSSID          = "your_wifi_name"
	PlaceholderWiFiPassword  = "your_wifi_password"
	PlaceholderCloudHost     = "your-cluster.hivemq.cloud"
	PlaceholderCloudUsername = "your_username"
	PlaceholderCloudPassword = "your_password"

	DefaultLocalHost = "192.168.1.100"
	DefaultCabinetID = "CAB001"
)

// Defaults returns the compiled-in configuration of an AI-Thinker ESP32-CAM cabinet on the local broker.
func Defaults() Settings {
	return Settings{
		Network: NetworkSettings{
			SSID:     PlaceholderSSID,
			Password: PlaceholderWiFiPassword,
		},
		Broker: BrokerSettings{
			Preset: string(PresetLocal),
			Local: LocalBrokerSettings{
				Host: DefaultLocalHost,
				Port: DefaultLocalPort,
			},
			Cloud: CloudBrokerSettings{
				Host:     PlaceholderCloudHost,
				Port:     DefaultCloudPort,
				Username: PlaceholderCloudUsername,
				Password: PlaceholderCloudPassword,
			},
		},
		Cabinet: CabinetSettings{ID: DefaultCabinetID},
		Pins:    settingsFromPins(AIThinkerPins()),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Server: ServerConfig{
			Port:           "8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    120 * time.Second,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Registry: RegistryConfig{
			Database:       "smart_cabinet",
			Collection:     "cabinets",
			ConnectTimeout: 20 * time.Second,
		},
	}
}

func findPlaceholders(network NetworkCredentials, broker BrokerPreset) []string {
	var out []string
	if network.SSID == PlaceholderSSID {
		out = append(out, "network.ssid")
	}
	if network.Password == PlaceholderWiFiPassword {
		out = append(out, "network.password")
	}
	if cloud, ok := broker.(CloudBroker); ok {
		if cloud.Host == PlaceholderCloudHost {
			out = append(out, "broker.cloud.host")
		}
		if cloud.Username == PlaceholderCloudUsername {
			out = append(out, "broker.cloud.username")
		}
		if cloud.Password == PlaceholderCloudPassword {
			out = append(out, "broker.cloud.password")
		}
	}
	return out
}
