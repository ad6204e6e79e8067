package recorddiagnosissnapshot

import (
	"time"

	"policyfund-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// Index is the Elasticsearch index snapshots are copied to for search.
	Index string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		Index:   cfg.Database.Elasticsearch.SnapshotIndex,
	}
}
