package sohodiagnosis

import (
	"time"

	"policyfund-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:      config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		CacheEnabled: cfg.Cache.Enabled,
		CacheTTL:     cfg.Cache.DiagnosisTTLDuration(),
	}
}
