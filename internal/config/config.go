// Package config loads the door daemon's configuration from a JSON file, with a few
// settings overridable from the environment.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/sauerbraten/jsonfile"

	"github.com/sauerbraten/anonauth/pkg/auth"
)

const DefaultPath = "doord_config.json"

type Config struct {
	DatabaseFilePath    string            `json:"db_file_path"`
	ListenAddress       string            `json:"listen_address"`
	WebInterfaceAddress string            `json:"web_interface_address"`
	MaxRevocations      int               `json:"max_revocations"`
	Admins              map[string]string `json:"admins"` // name → hex encoded HMAC key
}

func defaults() Config {
	return Config{
		DatabaseFilePath:    "doord.sqlite",
		ListenAddress:       "0.0.0.0:28787",
		WebInterfaceAddress: "localhost:28788",
		MaxRevocations:      50,
	}
}

// Load parses the config file at path. DOORD_DB, DOORD_LISTEN and DOORD_WEB, when set,
// take precedence over the file.
func Load(path string) (*Config, error) {
	c := defaults()

	err := jsonfile.ParseFile(path, &c)
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	overrideFromEnv(&c.DatabaseFilePath, "DOORD_DB")
	overrideFromEnv(&c.ListenAddress, "DOORD_LISTEN")
	overrideFromEnv(&c.WebInterfaceAddress, "DOORD_WEB")

	err = c.validate()
	if err != nil {
		return nil, err
	}

	return &c, nil
}

func overrideFromEnv(field *string, name string) {
	if value := os.Getenv(name); value != "" {
		*field = value
	}
}

func (c *Config) validate() error {
	if c.DatabaseFilePath == "" {
		return fmt.Errorf("config: db_file_path must not be empty")
	}
	if c.ListenAddress == "" {
		return fmt.Errorf("config: listen_address must not be empty")
	}
	if c.MaxRevocations < 0 || c.MaxRevocations > auth.MaxPublicPoints {
		return fmt.Errorf("config: max_revocations must be in [0, %d], got %d", auth.MaxPublicPoints, c.MaxRevocations)
	}
	_, err := c.AdminKeys()
	return err
}

// AdminKeys decodes the admins' keys.
func (c *Config) AdminKeys() (map[string][]byte, error) {
	keys := make(map[string][]byte, len(c.Admins))
	for name, encoded := range c.Admins {
		key, err := hex.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("config: key of admin '%s': %w", name, err)
		}
		if len(key) == 0 {
			return nil, fmt.Errorf("config: admin '%s' has an empty key", name)
		}
		keys[name] = key
	}
	return keys, nil
}
