package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order used when no
// explicit path is given: ./galactic.yaml, then the user config dir.
func DefaultSearchPaths() []string {
	paths := []string{"galactic.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "galactic", "config.yaml"))
	}
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must
// exist. Otherwise the first existing DefaultSearchPaths entry is returned,
// or "" when there is none; the file is optional.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load reads a YAML file over the defaults, then applies the environment.
// ${VAR} references in the file are expanded. An empty path skips the file.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, err
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := s.ApplyEnv(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Resolve finds and loads configuration. Returns the settings and the
// file that was read, if any.
func Resolve(explicit string) (Settings, string, error) {
	path, err := FindConfig(explicit)
	if err != nil {
		return Settings{}, "", err
	}
	s, err := Load(path)
	return s, path, err
}
