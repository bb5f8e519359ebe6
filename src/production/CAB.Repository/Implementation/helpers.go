package implementation

import (
	"time"

	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	cabmodels "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Models"
	interfaces "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Repository/Interfaces"
)

// HardwareAIThinker names the only supported board revision
const HardwareAIThinker = "ai-thinker-esp32-cam"

// RecordFromConfig describes the running cabinet for the registry
func RecordFromConfig(cfg *config.Config, now time.Time) cabmodels.CabinetRecord {
	return cabmodels.CabinetRecord{
		CabinetID:    cfg.CabinetID(),
		Hardware:     HardwareAIThinker,
		Preset:       string(cfg.Broker().Kind()),
		BrokerHost:   cfg.BrokerEndpoint().Host,
		RegisteredAt: now.UTC(),
	}
}

var (
	_ interfaces.CabinetRepository = (*MongoCabinetRepository)(nil)
	_ interfaces.CabinetRepository = (*MemoryCabinetRepository)(nil)
)
