package stream

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Driver names for the registry backend.
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// ServiceConfig selects and configures the registry backend.
type ServiceConfig struct {
	// Driver is "redis", "memory", or empty to disable resumability.
	Driver string

	// Redis configures the redis driver.
	Redis RedisConfig
}

// Service lazily initializes the stream registry on first use. If the
// backend is not configured or cannot be reached the failure is cached
// and resumability stays disabled for the life of the process, matching
// the degraded mode where new streams still run but cannot be resumed.
type Service struct {
	cfg ServiceConfig

	once     sync.Once
	registry Registry
	err      error
}

// NewService creates a service for the given configuration. No connection
// is made until Registry is first called.
func NewService(cfg ServiceConfig) *Service {
	return &Service{cfg: cfg}
}

// Registry returns the initialized registry, or ErrUnavailable when
// resumability is disabled.
func (s *Service) Registry(ctx context.Context) (Registry, error) {
	s.once.Do(func() {
		switch s.cfg.Driver {
		case DriverMemory:
			s.registry = NewMemory()
		case DriverRedis:
			if s.cfg.Redis.URL == "" {
				slog.Warn("resumable streams disabled: no redis URL configured")
				s.err = ErrUnavailable
				return
			}
			registry, err := NewRedis(ctx, s.cfg.Redis)
			if err != nil {
				slog.Warn("resumable streams disabled: redis unreachable", "error", err)
				s.err = ErrUnavailable
				return
			}
			s.registry = registry
		case "":
			s.err = ErrUnavailable
		default:
			s.err = errors.New("unknown stream driver: " + s.cfg.Driver)
		}
	})
	return s.registry, s.err
}

// Close releases the registry if it was initialized.
func (s *Service) Close() error {
	if s.registry != nil {
		return s.registry.Close()
	}
	return nil
}
