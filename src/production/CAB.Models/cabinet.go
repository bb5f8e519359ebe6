package cabmodels

import "time"

// CabinetRecord is one provisioned cabinet in the fleet registry
type CabinetRecord struct {
	CabinetID    string    `json:"cabinet_id" bson:"cabinet_id"`
	Hardware     string    `json:"hardware" bson:"hardware"` // e.g. ai-thinker-esp32-cam
	Preset       string    `json:"preset" bson:"preset"`     // local or cloud
	BrokerHost   string    `json:"broker_host" bson:"broker_host"`
	RegisteredAt time.Time `json:"registered_at" bson:"registered_at"`
}
