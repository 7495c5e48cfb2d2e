package trackerconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file over the defaults and validates the result.
// KnownFields(true) fails on typos and unused fields.
// An empty path returns the defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (Settings, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Settings{}, err
	}

	if err := Validate(&cfg); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// Hash returns the SHA256 of the canonical JSON form of the settings.
// Cached tables record it so that a settings change forces a rebuild.
func Hash(cfg Settings) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
