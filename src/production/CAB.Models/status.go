package cabmodels

// Cabinet connectivity states published on cabinet/<id>/status
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// StatusMessage is the JSON payload of cabinet/<id>/status
type StatusMessage struct {
	CabinetID  string `json:"cabinet_id"`
	Status     string `json:"status"`
	LockStatus string `json:"lock_status,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}
