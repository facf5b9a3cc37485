// Package application wires the resolved service settings into the HTTP API
// and owns the http.Server lifecycle. Configuration resolution and logging
// installation happen earlier, in package bootstrap.
package application
