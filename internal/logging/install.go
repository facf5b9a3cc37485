package logging

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

// Installer makes a pipeline active exactly once.
type Installer struct {
	active    atomic.Pointer[Pipeline]
	onInstall func(*Pipeline)
}

// NewInstaller returns an Installer calling onInstall after the first
// successful Install. A nil onInstall only records the pipeline.
func NewInstaller(onInstall func(*Pipeline)) *Installer {
	return &Installer{onInstall: onInstall}
}

// Install activates p. Every call after the first successful one returns
// ErrAlreadyInitialized and leaves the active pipeline untouched.
func (i *Installer) Install(p *Pipeline) error {
	if p == nil {
		return &PipelineBuildError{Cause: errors.New("cannot install a nil pipeline")}
	}
	if !i.active.CompareAndSwap(nil, p) {
		return ErrAlreadyInitialized
	}
	if i.onInstall != nil {
		i.onInstall(p)
	}
	return nil
}

// Active returns the installed pipeline or nil.
func (i *Installer) Active() *Pipeline {
	return i.active.Load()
}

var global = NewInstaller(installGlobals)

// Install activates p for the whole process: zap.L, zap.S and the standard
// library logger all route through it afterwards.
func Install(p *Pipeline) error {
	return global.Install(p)
}

// Active returns the process-wide pipeline or nil before Install.
func Active() *Pipeline {
	return global.Active()
}

// GlobalInstaller exposes the process-wide installer.
func GlobalInstaller() *Installer {
	return global
}

func installGlobals(p *Pipeline) {
	zap.ReplaceGlobals(p.Logger())
	_ = zap.RedirectStdLog(p.Logger())
}
