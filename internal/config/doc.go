// Package config resolves environment-scoped YAML configuration. A base
// document supplies defaults and a role-specific overlay document
// (<base>-<role>) overrides it key by key, recursively. The merged Document is
// immutable and exposes typed accessors; LoggingSettings and ServiceSettings
// turn the two documents the service reads into strongly typed settings.
package config
