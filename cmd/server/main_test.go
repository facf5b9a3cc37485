package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	osSignal "os/signal"
	"strings"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eugenenazirov/envrole-service/internal/config"
)

func TestAbortReportsDiagnostic(t *testing.T) {
	t.Cleanup(func() {
		exit = os.Exit
	})

	var code int
	exit = func(c int) {
		code = c
	}

	var stderr bytes.Buffer
	abort(&stderr, nil, &config.MissingRoleError{Variable: config.RoleEnvVar})

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "ENVROLE") {
		t.Fatalf("expected diagnostic to name the variable, got %q", stderr.String())
	}
}

func TestAbortWrapsCause(t *testing.T) {
	t.Cleanup(func() {
		exit = os.Exit
	})
	exit = func(int) {}

	var stderr bytes.Buffer
	cause := &config.ConfigLoadError{Source: "env/service-qa", Cause: errors.New("missing")}
	abort(&stderr, nil, cause)

	if !strings.Contains(stderr.String(), "env/service-qa") {
		t.Fatalf("expected diagnostic to name the file, got %q", stderr.String())
	}
}

func TestShutdownSignals(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}

	server := &http.Server{}
	called := make(chan struct{}, 1)
	server.RegisterOnShutdown(func() {
		called <- struct{}{}
	})

	core, logs := observer.New(zapcore.InfoLevel)
	shutdown(server, time.Millisecond, zap.New(core))

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected server shutdown callback to execute")
	}
	if logs.FilterMessage("shutting down server").Len() != 1 {
		t.Fatalf("expected shutdown to be logged")
	}
}
