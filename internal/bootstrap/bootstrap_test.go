package bootstrap

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envrole-service/internal/config"
	"github.com/eugenenazirov/envrole-service/internal/logging"
)

type memorySink struct {
	mu      sync.Mutex
	records []logging.Record
}

func (s *memorySink) Emit(rec logging.Record) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

func (s *memorySink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Message)
	}
	return out
}

func writeConfigDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func testOptions(dir, role string, sink *memorySink) Options {
	return Options{
		Role:      role,
		ConfigDir: dir,
		Installer: logging.NewInstaller(nil),
		NewSink: func(config.LoggingSettings) (logging.Sink, func(), error) {
			return sink, func() {}, nil
		},
	}
}

var prodFiles = map[string]string{
	"logging.yaml":      "level: warn\nformat: json\n",
	"logging-prod.yaml": "level: info\n",
	"service.yaml":      "port: 8000\nshutdown_grace_period: 2s\n",
	"service-prod.yaml": "port: 9000\n",
}

func TestRunEndToEnd(t *testing.T) {
	dir := writeConfigDir(t, prodFiles)
	sink := &memorySink{}

	result, err := Run(testOptions(dir, "prod", sink))
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, "prod", result.Role)
	assert.Equal(t, "info", result.Logging.Level)
	assert.Equal(t, 9000, result.Service.Port)
	assert.Equal(t, "2s", result.Service.ShutdownGracePeriod.String())

	logger := result.Logger
	logger.Debug("debug record")
	logger.Info("service record")
	zap.New(result.Pipeline.Core()).Named("other").Info("other record")

	assert.Equal(t, []string{
		"Starting logging at level: info, for env role: prod",
		"service record",
	}, sink.messages())
}

func TestRunReadsRoleFromEnvironment(t *testing.T) {
	dir := writeConfigDir(t, prodFiles)
	t.Setenv(config.RoleEnvVar, "prod")
	t.Setenv("CONFIG_DIR", dir)

	sink := &memorySink{}
	opts := testOptions("", "", sink)

	result, err := Run(opts)
	require.NoError(t, err)
	assert.Equal(t, "prod", result.Role)
	assert.Equal(t, 9000, result.Service.Port)
}

func TestRunMissingRoleFailsBeforeFileAccess(t *testing.T) {
	t.Setenv(config.RoleEnvVar, "")
	require.NoError(t, os.Unsetenv(config.RoleEnvVar))

	sinkCreated := false
	opts := Options{
		ConfigDir: filepath.Join(t.TempDir(), "missing"),
		Installer: logging.NewInstaller(nil),
		NewSink: func(config.LoggingSettings) (logging.Sink, func(), error) {
			sinkCreated = true
			return &memorySink{}, func() {}, nil
		},
	}

	_, err := Run(opts)

	var missing *config.MissingRoleError
	require.ErrorAs(t, err, &missing)
	var loadErr *config.ConfigLoadError
	assert.False(t, errors.As(err, &loadErr))
	assert.False(t, sinkCreated)
	assert.Nil(t, opts.Installer.Active())
}

func TestRunMissingOverlay(t *testing.T) {
	dir := writeConfigDir(t, prodFiles)
	opts := testOptions(dir, "staging", &memorySink{})

	_, err := Run(opts)

	var loadErr *config.ConfigLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Nil(t, opts.Installer.Active(), "no pipeline without a logging config")
}

func TestRunBadLevelAbortsBeforeInstall(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"logging.yaml":     "level: info\n",
		"logging-dev.yaml": "level: chatty\n",
		"service.yaml":     "port: 8000\n",
		"service-dev.yaml": "port: 8001\n",
	})
	opts := testOptions(dir, "dev", &memorySink{})

	_, err := Run(opts)

	var parseErr *logging.LevelParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "chatty", parseErr.Raw)
	assert.Nil(t, opts.Installer.Active())
}

func TestRunMissingLevel(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"logging.yaml":     "format: json\n",
		"logging-dev.yaml": "format: console\n",
	})

	_, err := Run(testOptions(dir, "dev", &memorySink{}))

	var notFound *config.KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "level", notFound.Key)
}

func TestRunServiceErrorKeepsLogger(t *testing.T) {
	dir := writeConfigDir(t, map[string]string{
		"logging.yaml":     "level: info\n",
		"logging-dev.yaml": "level: debug\n",
		"service.yaml":     "port: eighty\n",
		"service-dev.yaml": "host: localhost\n",
	})

	result, err := Run(testOptions(dir, "dev", &memorySink{}))

	var mismatch *config.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.NotNil(t, result)
	assert.NotNil(t, result.Logger)
}

func TestRunTwiceWithSameInstaller(t *testing.T) {
	dir := writeConfigDir(t, prodFiles)
	first := &memorySink{}
	opts := testOptions(dir, "prod", first)

	_, err := Run(opts)
	require.NoError(t, err)

	second := &memorySink{}
	opts.NewSink = func(config.LoggingSettings) (logging.Sink, func(), error) {
		return second, func() {}, nil
	}
	_, err = Run(opts)
	require.ErrorIs(t, err, logging.ErrAlreadyInitialized)

	opts.Installer.Active().Logger().Warn("still routed to the first sink")
	assert.Contains(t, first.messages(), "still routed to the first sink")
	assert.Empty(t, second.messages())
}

func TestRunWithRepositoryConfig(t *testing.T) {
	sink := &memorySink{}
	opts := testOptions("", "dev", sink)

	result, err := Run(opts)
	require.NoError(t, err)
	assert.Positive(t, result.Service.Port)
	assert.NotEmpty(t, sink.messages())
}
