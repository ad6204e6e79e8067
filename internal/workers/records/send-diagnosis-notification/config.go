package senddiagnosisnotification

import (
	"time"

	"policyfund-workers/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SMSSenderID  string
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
		FromEmail:    cfg.Notifications.Email.FromEmail,
		SMSSenderID:  cfg.Notifications.SMS.SenderID,
		Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
	}
}
