package main

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	DBUrl                    string        `env:"DB_URL,required=true" validate:"required"`
	Host                     string        `env:"HOST,default=localhost"`
	Port                     int           `env:"PORT,default=6687" validate:"min=1,max=65535"`
	JwtSecret                string        `env:"JWT_SECRET,required=true" validate:"required,min=32"`
	SubscriberBufferSize     int           `env:"SUBSCRIBER_BUFFER_SIZE,default=16" validate:"min=1"`
	RestartInterval          time.Duration `env:"RESTART_INTERVAL,default=1s"`
	FeedMinReconnectInterval time.Duration `env:"FEED_MIN_RECONNECT_INTERVAL,default=1s"`
	FeedMaxReconnectInterval time.Duration `env:"FEED_MAX_RECONNECT_INTERVAL,default=30s"`
	SSEKeepAliveInterval     time.Duration `env:"SSE_KEEPALIVE_INTERVAL,default=30s"`
	ShutdownTimeout          time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	LogLevel                 string        `env:"LOG_LEVEL,default=INFO"`
}

var validate = validator.New()

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.FeedMinReconnectInterval > c.FeedMaxReconnectInterval {
		return fmt.Errorf("FEED_MIN_RECONNECT_INTERVAL must not exceed FEED_MAX_RECONNECT_INTERVAL")
	}
	return nil
}
