package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version int     `yaml:"version"`
	Queries []Query `yaml:"queries"`
	Extract Extract `yaml:"extract"`
}

type Query struct {
	Path string `yaml:"path"`
}

// Extract selects which extractors the report includes. A zero value means
// everything.
type Extract struct {
	Statements    bool `yaml:"statements"`
	Tables        bool `yaml:"tables"`
	Where         bool `yaml:"where"`
	WhereDetailed bool `yaml:"whereDetailed"`
	Functions     bool `yaml:"functions"`
}

func (e Extract) All() bool {
	return e == Extract{}
}

func Read(configPath string) (*Config, error) {
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read config file "%s": %w`, configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(fileData, &config); err != nil {
		return nil, fmt.Errorf(`failed to unmarshal config file "%s": %w`, configPath, err)
	}

	return &config, nil
}
