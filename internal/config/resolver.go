package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// RoleEnvVar names the environment variable selecting the overlay documents.
	RoleEnvVar = "ENVROLE"
	// DefaultDir is the directory searched for documents when none is configured.
	DefaultDir = "env"

	overlaySeparator = "-"
)

var documentExtensions = []string{".yaml", ".yml", ""}

// Environment holds the process environment consumed by the resolver.
type Environment struct {
	Role      string `env:"ENVROLE,required,notEmpty"`
	ConfigDir string `env:"CONFIG_DIR" envDefault:"env"`
}

// LoadEnvironment reads the environment role and the optional configuration
// directory. A missing or empty role yields *MissingRoleError.
func LoadEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, &MissingRoleError{Variable: RoleEnvVar, Cause: err}
	}
	return e, nil
}

// RoleFromEnv returns the environment role.
func RoleFromEnv() (string, error) {
	e, err := LoadEnvironment()
	if err != nil {
		return "", err
	}
	return e.Role, nil
}

// Resolver loads documents for a fixed directory and role.
type Resolver struct {
	Dir  string
	Role string
}

// Resolve loads <baseName> and <baseName>-<role> from r.Dir and merges them.
func (r Resolver) Resolve(baseName string) (*Document, error) {
	return Resolve(r.Dir, baseName, r.Role)
}

// OverlayName returns the overlay document name for baseName and role.
func OverlayName(baseName, role string) string {
	return baseName + overlaySeparator + role
}

// Resolve loads the base document and the role overlay from dir and merges
// them, overlay winning. Both documents must exist.
func Resolve(dir, baseName, role string) (*Document, error) {
	if strings.TrimSpace(role) == "" {
		return nil, &MissingRoleError{Variable: RoleEnvVar}
	}
	if dir == "" {
		dir = DefaultDir
	}

	base, err := loadDocument(dir, baseName)
	if err != nil {
		return nil, err
	}
	overlay, err := loadDocument(dir, OverlayName(baseName, role))
	if err != nil {
		return nil, err
	}

	return NewDocument(baseName, base, overlay)
}

func loadDocument(dir, name string) (map[string]any, error) {
	source := filepath.Join(dir, name)

	path, err := locateDocument(dir, name)
	if err != nil {
		return nil, &ConfigLoadError{Source: source, Cause: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigLoadError{Source: path, Cause: fmt.Errorf("read file: %w", err)}
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, &ConfigLoadError{Source: path, Cause: fmt.Errorf("parse YAML: %w", err)}
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// locateDocument tries name with each known extension, in order.
func locateDocument(dir, name string) (string, error) {
	for _, ext := range documentExtensions {
		candidate := filepath.Join(dir, name+ext)
		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", err
		}
		if info.IsDir() {
			continue
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no document named %q in %s: %w", name, dir, fs.ErrNotExist)
}

// LocateDir returns dir unchanged when it is absolute or exists relative to the
// working directory; otherwise it walks up the parent directories looking for it.
func LocateDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for current := wd; ; {
		candidate := filepath.Join(current, dir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("unable to locate config directory %s", dir)
}
