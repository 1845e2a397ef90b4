package config

import (
	"fmt"
	"strconv"
	"time"
)

const (
	defaultDeadLetterQueue = "catalog.events.dead"
	defaultPrefetch        = 10
)

// Activity configures the event consumer. Prefetch bounds the unacknowledged
// deliveries the broker pushes at once; undecodable events are moved to
// DeadLetterQueue instead of being redelivered.
type Activity struct {
	RabbitMQURL     string
	DeadLetterQueue string
	Prefetch        int
	ShutdownTimeout time.Duration
}

func LoadActivity() (Activity, error) {
	cfg := Activity{
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		DeadLetterQueue: getEnv("ACTIVITY_DEAD_LETTER_QUEUE", defaultDeadLetterQueue),
		Prefetch:        defaultPrefetch,
		ShutdownTimeout: defaultShutdownTimeout,
	}

	if cfg.RabbitMQURL == "" {
		return Activity{}, fmt.Errorf("RABBITMQ_URL is required")
	}

	if raw := getEnv("ACTIVITY_PREFETCH", ""); raw != "" {
		prefetch, err := strconv.Atoi(raw)
		if err != nil || prefetch <= 0 {
			return Activity{}, fmt.Errorf("ACTIVITY_PREFETCH must be a positive integer")
		}
		cfg.Prefetch = prefetch
	}

	if raw := getEnv("ACTIVITY_SHUTDOWN_TIMEOUT", ""); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return Activity{}, fmt.Errorf("ACTIVITY_SHUTDOWN_TIMEOUT must be a positive duration")
		}
		cfg.ShutdownTimeout = timeout
	}

	return cfg, nil
}
