package config

import (
	"fmt"
	"regexp"
	"strings"
)

// CabinetIDPattern is the fleet naming scheme, e.g. CAB001.
var CabinetIDPattern = regexp.MustCompile(`^CAB[0-9]{3,}$`)

// TopicRoot prefixes every cabinet topic.
const TopicRoot = "cabinet"

// TopicKind is the per-cabinet suffix of an MQTT topic.
type TopicKind string

const (
	TopicStatus       TopicKind = "status"
	TopicControl      TopicKind = "control"
	TopicVerify       TopicKind = "verify"
	TopicVerifyResult TopicKind = "verify/result"
	TopicHeartbeat    TopicKind = "heartbeat"
)

var topicKinds = []TopicKind{TopicStatus, TopicControl, TopicVerify, TopicVerifyResult, TopicHeartbeat}

// DeviceIdentity identifies one physical cabinet in the fleet.
type DeviceIdentity struct {
	CabinetID string
}

func (d DeviceIdentity) validate() []error {
	if d.CabinetID == "" {
		return []error{&ConfigurationError{Field: "cabinet.id", Reason: "must not be empty"}}
	}
	if !CabinetIDPattern.MatchString(d.CabinetID) {
		return []error{&ConfigurationError{Field: "cabinet.id", Value: d.CabinetID, Reason: "must match " + CabinetIDPattern.String()}}
	}
	return nil
}

// Topic returns cabinet/<id>/<kind>.
func (d DeviceIdentity) Topic(kind TopicKind) string {
	return TopicRoot + "/" + d.CabinetID + "/" + string(kind)
}

// Topics is every topic namespaced to one cabinet.
type Topics struct {
	Status       string `json:"status"`
	Control      string `json:"control"`
	Verify       string `json:"verify"`
	VerifyResult string `json:"verify_result"`
	Heartbeat    string `json:"heartbeat"`
}

func (d DeviceIdentity) Topics() Topics {
	return Topics{
		Status:       d.Topic(TopicStatus),
		Control:      d.Topic(TopicControl),
		Verify:       d.Topic(TopicVerify),
		VerifyResult: d.Topic(TopicVerifyResult),
		Heartbeat:    d.Topic(TopicHeartbeat),
	}
}

// WildcardTopic matches kind for every cabinet, for backend subscriptions.
func WildcardTopic(kind TopicKind) string {
	return TopicRoot + "/+/" + string(kind)
}

// ParseCabinetTopic splits cabinet/<id>/<kind> back into its parts.
func ParseCabinetTopic(topic string) (string, TopicKind, error) {
	parts := strings.SplitN(topic, "/", 3)
	if len(parts) != 3 || parts[0] != TopicRoot || parts[1] == "" {
		return "", "", fmt.Errorf("topic %q is not of the form %s/<cabinet_id>/<kind>", topic, TopicRoot)
	}
	if !CabinetIDPattern.MatchString(parts[1]) {
		return "", "", fmt.Errorf("topic %q has invalid cabinet id %q", topic, parts[1])
	}

	kind := TopicKind(parts[2])
	for _, k := range topicKinds {
		if k == kind {
			return parts[1], kind, nil
		}
	}
	return "", "", fmt.Errorf("topic %q has unknown kind %q", topic, parts[2])
}
