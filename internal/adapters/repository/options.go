package repository

import (
	"time"

	"github.com/okian/playerhunt/pkg/logger"
)

type settings struct {
	now         func() time.Time
	openTimeout time.Duration
	logger      logger.Logger
}

func defaultSettings() settings {
	return settings{now: time.Now, openTimeout: time.Second}
}

// Option applies a configuration option to a store.
type Option func(*settings)

// WithClock overrides the time source used for AddedAt and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOpenTimeout bounds how long opening waits for the file lock.
func WithOpenTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.openTimeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
