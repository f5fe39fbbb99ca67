package config

import (
	"encoding/base64"
	"errors"
	"os"
)

type Config struct {
	NodeURL   string
	NodeToken string
	DBURL     string
	MasterKey []byte
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		NodeURL:   "http://127.0.0.1:9005",
		NodeToken: os.Getenv("BAZAAR_NODE_TOKEN"),
		DBURL:     os.Getenv("BAZAAR_DB_URL"),
	}

	if v := os.Getenv("BAZAAR_NODE_URL"); v != "" {
		cfg.NodeURL = v
	}

	if v := os.Getenv("BAZAAR_MASTER_KEY"); v != "" {
		key, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return Config{}, errors.New("master key must be base64")
		}
		cfg.MasterKey = key
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.NodeURL == "" {
		return errors.New("node url is required")
	}
	if c.DBURL == "" {
		return errors.New("db url is required")
	}
	if len(c.MasterKey) != 32 {
		return errors.New("master key must be 32 bytes (base64-encoded)")
	}
	return nil
}
