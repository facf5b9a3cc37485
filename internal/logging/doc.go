// Package logging assembles the process-wide logging pipeline: a terminal Sink
// wrapped by a severity filter and a scope filter, expressed as zapcore.Core
// stages. The pipeline is installed once per process through an Installer.
package logging
