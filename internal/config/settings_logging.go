package config

import "errors"

const (
	// LoggingDocument is the base name of the logging configuration document.
	LoggingDocument = "logging"

	defaultLogFormat = "json"
	defaultLogOutput = "stdout"
)

// LoggingSettings is the typed view of the logging document.
type LoggingSettings struct {
	Level  string
	Format string
	Output string
}

// LoggingSettingsFrom reads the logging document. Only level is required.
func LoggingSettingsFrom(doc *Document) (LoggingSettings, error) {
	level, err := doc.GetString("level")
	if err != nil {
		return LoggingSettings{}, err
	}

	settings := LoggingSettings{
		Level:  level,
		Format: defaultLogFormat,
		Output: defaultLogOutput,
	}

	var errs []error
	if settings.Format, err = optionalString(doc, "format", settings.Format); err != nil {
		errs = append(errs, err)
	}
	if settings.Output, err = optionalString(doc, "output", settings.Output); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return LoggingSettings{}, errors.Join(errs...)
	}

	return settings, nil
}

func optionalString(doc *Document, key, fallback string) (string, error) {
	if !doc.Has(key) {
		return fallback, nil
	}
	value, err := doc.GetString(key)
	if err != nil {
		return fallback, err
	}
	if value == "" {
		return fallback, nil
	}
	return value, nil
}
