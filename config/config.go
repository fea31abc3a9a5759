package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the engine process. Every
// field has a default so a bare `livre` run works out of the box.
type Config struct {
	JournalDir     string        `env:"JOURNAL_DIR" envDefault:"./data/journal"`
	SnapshotDir    string        `env:"SNAPSHOT_DIR" envDefault:"./data/snapshot"`
	OutboxDir      string        `env:"OUTBOX_DIR" envDefault:"./data/outbox"`
	SegmentSize    int64         `env:"JOURNAL_SEGMENT_SIZE" envDefault:"2097152"`
	JournalSync    bool          `env:"JOURNAL_SYNC" envDefault:"false"`
	KafkaBrokers   []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	TradeTopic     string        `env:"KAFKA_TRADE_TOPIC" envDefault:"livre.trades"`
	EventTopic     string        `env:"KAFKA_EVENT_TOPIC" envDefault:"livre.events"`
	KafkaEnabled   bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	SnapshotEvery  time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"30s"`
	BroadcastEvery time.Duration `env:"BROADCAST_INTERVAL" envDefault:"2s"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment, layered over an
// optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
