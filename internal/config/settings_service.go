package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// ServiceDocument is the base name of the service configuration document.
	ServiceDocument = "service"

	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// ServiceSettings aggregates the server settings resolved from the service document.
type ServiceSettings struct {
	Port                 int
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlService mirrors the optional part of the service document.
type yamlService struct {
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	Port *int
}

// ServiceSettingsFrom reads the service document. The port is required; every
// other key falls back to a default.
func ServiceSettingsFrom(doc *Document) (ServiceSettings, error) {
	port, err := doc.GetInt("port")
	if err != nil {
		return ServiceSettings{}, err
	}

	var raw yamlService
	if err := doc.Decode(&raw); err != nil {
		return ServiceSettings{}, err
	}

	settings := defaultServiceSettings()
	settings.Port = port
	if err := applyYAMLService(&settings, raw); err != nil {
		return ServiceSettings{}, err
	}
	if err := validateService(settings); err != nil {
		return ServiceSettings{}, err
	}
	return settings, nil
}

// Apply copies the set overrides onto s.
func (o CLIOverrides) Apply(s *ServiceSettings) {
	if o.Port != nil && *o.Port >= 0 {
		s.Port = *o.Port
	}
}

func defaultServiceSettings() ServiceSettings {
	return ServiceSettings{
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

func applyYAMLService(s *ServiceSettings, raw yamlService) error {
	var errs []error
	parse := func(key, value string, target *time.Duration) {
		if value == "" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", key, err))
			return
		}
		*target = d
	}

	parse("shutdown_grace_period", raw.ShutdownGracePeriod, &s.ShutdownGracePeriod)
	parse("read_header_timeout", raw.ReadHeaderTimeout, &s.ReadHeaderTimeout)
	parse("write_timeout", raw.WriteTimeout, &s.WriteTimeout)
	parse("idle_timeout", raw.IdleTimeout, &s.IdleTimeout)

	if raw.EnableRequestLogging != nil {
		s.EnableRequestLogging = *raw.EnableRequestLogging
	}
	if raw.RateLimit.RPS != nil {
		s.RateLimitRPS = *raw.RateLimit.RPS
	}
	if raw.RateLimit.Burst != nil {
		s.RateLimitBurst = *raw.RateLimit.Burst
	}

	return errors.Join(errs...)
}

func validateService(s ServiceSettings) error {
	var errs []error
	if s.RateLimitRPS < 0 {
		errs = append(errs, errors.New("rate_limit.rps must be >= 0"))
	}
	if s.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate_limit.burst must be >= 0"))
	}
	if s.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("shutdown_grace_period must be positive"))
	}
	return errors.Join(errs...)
}
