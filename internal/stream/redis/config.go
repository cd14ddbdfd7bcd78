package redis

import "time"

const (
	DefaultStream = "judge-requests"
	DefaultGroup  = "judge-workers"
	DefaultTTL    = 24 * time.Hour

	DefaultClaimMinIdle  = 2 * time.Minute
	DefaultClaimInterval = 30 * time.Second
)

type Config struct {
	Addr         string
	Password     string
	Stream       string
	Group        string
	ConsumerName string
	// ResultTTL bounds how long job counters and results stay in Redis.
	ResultTTL time.Duration
	// Entries pending longer than ClaimMinIdle are taken over from their
	// consumer, checked every ClaimInterval.
	ClaimMinIdle  time.Duration
	ClaimInterval time.Duration
}

func NewConfig(addr string, password string, stream string, group string, consumerName string) *Config {
	cfg := &Config{
		Addr:         addr,
		Password:     password,
		Stream:       stream,
		Group:        group,
		ConsumerName: consumerName,
		ResultTTL:    DefaultTTL,

		ClaimMinIdle:  DefaultClaimMinIdle,
		ClaimInterval: DefaultClaimInterval,
	}
	if cfg.Stream == "" {
		cfg.Stream = DefaultStream
	}
	if cfg.Group == "" {
		cfg.Group = DefaultGroup
	}
	return cfg
}
