// Package bootstrap runs the startup sequence: it reads the environment role,
// resolves the logging document, installs the logging pipeline and then
// resolves the service document. Every failure is returned to the caller,
// which decides how to abort.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eugenenazirov/envrole-service/internal/config"
	"github.com/eugenenazirov/envrole-service/internal/logging"
)

// DefaultScope is the only scope whose records reach the sink.
const DefaultScope = "service"

// SinkFactory creates the terminal sink from the logging settings.
type SinkFactory func(config.LoggingSettings) (logging.Sink, func(), error)

// Options tunes Run. The zero value reads the role and directory from the
// environment and installs the pipeline process-wide.
type Options struct {
	// Role overrides the ENVROLE variable when set.
	Role string
	// ConfigDir overrides the CONFIG_DIR variable when set.
	ConfigDir string
	Scope     string
	Installer *logging.Installer
	Observer  logging.StageObserver
	NewSink   SinkFactory
}

// Result is what the server needs once startup succeeded.
type Result struct {
	Role     string
	Logging  config.LoggingSettings
	Service  config.ServiceSettings
	Pipeline *logging.Pipeline
	Logger   *zap.Logger

	closeOutput func()
}

// Close flushes the pipeline and releases the log output.
func (r *Result) Close() {
	_ = r.Pipeline.Sync()
	if r.closeOutput != nil {
		r.closeOutput()
	}
}

// Run performs the startup sequence.
func Run(opts Options) (*Result, error) {
	opts = withDefaults(opts)

	role, dir, err := resolveEnvironment(opts)
	if err != nil {
		return nil, err
	}
	resolver := config.Resolver{Dir: dir, Role: role}

	logDoc, err := resolver.Resolve(config.LoggingDocument)
	if err != nil {
		return nil, fmt.Errorf("resolve logging config: %w", err)
	}
	logSettings, err := config.LoggingSettingsFrom(logDoc)
	if err != nil {
		return nil, fmt.Errorf("read logging config: %w", err)
	}

	sink, closeOutput, err := opts.NewSink(logSettings)
	if err != nil {
		return nil, fmt.Errorf("create log sink: %w", err)
	}

	pipeline, err := logging.Build(logSettings.Level, opts.Scope, sink, logging.WithStageObserver(opts.Observer))
	if err != nil {
		closeOutput()
		return nil, err
	}
	if err := opts.Installer.Install(pipeline); err != nil {
		closeOutput()
		return nil, fmt.Errorf("install logging pipeline: %w", err)
	}

	logger := pipeline.Logger()
	logger.Info(fmt.Sprintf("Starting logging at level: %s, for env role: %s", logSettings.Level, role),
		zap.String("format", logSettings.Format),
		zap.String("config_dir", dir),
	)

	result := &Result{
		Role:        role,
		Logging:     logSettings,
		Pipeline:    pipeline,
		Logger:      logger,
		closeOutput: closeOutput,
	}

	svcDoc, err := resolver.Resolve(config.ServiceDocument)
	if err != nil {
		return result, fmt.Errorf("resolve service config: %w", err)
	}
	result.Service, err = config.ServiceSettingsFrom(svcDoc)
	if err != nil {
		return result, fmt.Errorf("read service config: %w", err)
	}

	logger.Debug("service config resolved", zap.Int("port", result.Service.Port))
	return result, nil
}

func withDefaults(opts Options) Options {
	if opts.Scope == "" {
		opts.Scope = DefaultScope
	}
	if opts.Installer == nil {
		opts.Installer = logging.GlobalInstaller()
	}
	if opts.NewSink == nil {
		opts.NewSink = defaultSink
	}
	return opts
}

func defaultSink(settings config.LoggingSettings) (logging.Sink, func(), error) {
	return logging.NewSink(settings.Format, settings.Output)
}

// resolveEnvironment settles the role first so that a missing role fails
// before any document is read.
func resolveEnvironment(opts Options) (role, dir string, err error) {
	role, dir = opts.Role, opts.ConfigDir
	if role == "" {
		env, err := config.LoadEnvironment()
		if err != nil {
			return "", "", err
		}
		role = env.Role
		if dir == "" {
			dir = env.ConfigDir
		}
	}
	if dir == "" {
		dir = config.DefaultDir
	}

	located, err := config.LocateDir(dir)
	if err != nil {
		return "", "", &config.ConfigLoadError{Source: dir, Cause: err}
	}
	return role, located, nil
}
