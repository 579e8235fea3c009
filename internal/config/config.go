package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Engine  EngineConfig  `yaml:"engine"`
	Cases   CasesConfig   `yaml:"cases"`
	Static  StaticConfig  `yaml:"static"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// SessionConfig locates the persisted session credential file.
type SessionConfig struct {
	File string `yaml:"file"`
}

// EngineConfig points at the external WhatsApp Web engine sidecar.
type EngineConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// CasesConfig locates the per-case JSON list files.
type CasesConfig struct {
	Dir string `yaml:"dir"`
}

// StaticConfig locates the static UI served at /.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads the config file over built-in defaults. A missing file is not
// an error; the defaults alone are a working configuration.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8000,
			Host: "0.0.0.0",
		},
		Session: SessionConfig{
			File: "whatsapp-session.json",
		},
		Engine: EngineConfig{
			URL: "http://127.0.0.1:3000",
		},
		Cases: CasesConfig{
			Dir: "public/files",
		},
		Static: StaticConfig{
			Dir: "public",
		},
	}
}
