package messaging

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	logger "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Logger"
	cabmodels "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Models"
)

// MaxClientIDLength is the MQTT 3.1 limit brokers are allowed to enforce.
const MaxClientIDLength = 23

// Options tunes the client parameters derived from the device configuration.
type Options struct {
	ClientIDPrefix string
	KeepAlive      time.Duration
	PingTimeout    time.Duration
	ConnectTimeout time.Duration
	// Will publishes an offline status on the cabinet's status topic when the session drops
	Will bool
}

func DefaultOptions() Options {
	return Options{
		ClientIDPrefix: "cab",
		KeepAlive:      60 * time.Second,
		PingTimeout:    10 * time.Second,
		ConnectTimeout: 30 * time.Second,
		Will:           true,
	}
}

// BrokerURL returns tcp://host:port, or tcps:// when the preset uses TLS.
func BrokerURL(ep config.BrokerEndpoint, useTLS bool) string {
	scheme := "tcp"
	if useTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s", scheme, ep.Address())
}

// ClientID returns <prefix>-<cabinet>-<random>, trimmed to MaxClientIDLength.
func ClientID(prefix, cabinetID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	id := fmt.Sprintf("%s-%s-%s", prefix, cabinetID, suffix)
	if len(id) > MaxClientIDLength {
		id = id[:MaxClientIDLength]
	}
	return id
}

// TLSConfig returns a TLS 1.2+ config, pinned to caFile when given.
func TLSConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file %s", caFile)
	}
	cfg.RootCAs = cp
	return cfg, nil
}

// WillPayload is the status message a broker publishes for a cabinet that disappears.
func WillPayload(cabinetID string) []byte {
	payload, _ := json.Marshal(cabmodels.StatusMessage{CabinetID: cabinetID, Status: cabmodels.StatusOffline})
	return payload
}

// NewClientOptions translates the active broker preset and identity into paho client options.
func NewClientOptions(cfg *config.Config, opts Options) (*mqtt.ClientOptions, error) {
	preset := cfg.Broker()
	ep := preset.Endpoint()
	identity := cfg.Identity()

	o := mqtt.NewClientOptions().
		AddBroker(BrokerURL(ep, preset.UsesTLS())).
		SetClientID(ClientID(opts.ClientIDPrefix, identity.CabinetID)).
		SetKeepAlive(opts.KeepAlive).
		SetPingTimeout(opts.PingTimeout).
		SetConnectTimeout(opts.ConnectTimeout).
		SetAutoReconnect(true).
		SetCleanSession(true)

	// Credentials are only sent when a username is configured
	if ep.HasCredentials() {
		o.SetUsername(ep.Username)
		o.SetPassword(ep.Password)
	}

	if cloud, ok := preset.(config.CloudBroker); ok {
		tlsCfg, err := TLSConfig(cloud.CAFile)
		if err != nil {
			return nil, err
		}
		tlsCfg.ServerName = ep.Host
		o.SetTLSConfig(tlsCfg)
	}

	if opts.Will {
		o.SetBinaryWill(identity.Topic(config.TopicStatus), WillPayload(identity.CabinetID), 1, true)
	}

	return o, nil
}

// Probe connects once with the configured parameters and disconnects, to check the broker is reachable.
func Probe(ctx context.Context, cfg *config.Config, opts Options, log *logger.Logger) error {
	o, err := NewClientOptions(cfg, opts)
	if err != nil {
		return err
	}
	o.SetAutoReconnect(false)
	o.SetConnectRetry(false)

	address := cfg.BrokerEndpoint().Address()
	log.Logger.Info().Str("broker", address).Str("preset", string(cfg.Broker().Kind())).Msg("Probing MQTT broker")

	client := mqtt.NewClient(o)
	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		client.Disconnect(0)
		return fmt.Errorf("probe %s: %w", address, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("probe %s: %w", address, err)
	}

	client.Disconnect(250)
	log.Logger.Info().Str("broker", address).Msg("MQTT broker reachable")
	return nil
}
