package distsql

import (
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Config of the engine.
type Config struct {
	// Parallelism is the number of tasks table scans are distributed
	// over. Zero or one keeps plans serial.
	Parallelism int `yaml:"parallelism"`
	// MaxMemoryGroups bounds the number of groups an aggregation holds
	// in memory before spilling to disk. Zero disables spilling.
	MaxMemoryGroups int `yaml:"max_memory_groups"`
	// SpillDir is the directory aggregation spills are created under.
	// Empty means the system temporary directory.
	SpillDir string `yaml:"spill_dir"`
	// Debug makes the analyzer log every rule application.
	Debug bool `yaml:"debug"`
}

// ReadConfig loads a Config from the yaml file at path.
func ReadConfig(path string) (Config, error) {
	var cfg Config

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
