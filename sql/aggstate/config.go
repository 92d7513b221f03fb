// Package aggstate persists partial aggregation state that no longer
// fits in memory. Groups are packed into binary records, stored on disk
// keyed by their group hash and merged back into the computation when
// the grouping iterator drains.
package aggstate

import (
	"io"
	"io/ioutil"
	"os"

	yaml "gopkg.in/yaml.v2"

	"gopkg.in/src-d/go-distsql.v0/sql"
	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrUnknownCellType is returned when a spill config names a cell type
// this package cannot pack.
var ErrUnknownCellType = errors.NewKind("unknown cell type %q in spill config")

// Config is the on-disk descriptor of one spill, written next to its
// database so the record layout survives the process that created it.
type Config struct {
	ID     string   `yaml:"id"`
	Cells  []string `yaml:"cells"`
	States []int    `yaml:"states"`
}

// NewConfig creates a new Config describing the given layout.
func NewConfig(id string, layout *Layout) *Config {
	cells := make([]string, len(layout.Cells))
	for i, t := range layout.Cells {
		cells[i] = t.Name()
	}

	states := make([]int, len(layout.States))
	copy(states, layout.States)

	return &Config{
		ID:     id,
		Cells:  cells,
		States: states,
	}
}

// Layout rebuilds the record layout described by the config.
func (c *Config) Layout() (*Layout, error) {
	cells := make([]sql.Type, len(c.Cells))
	for i, name := range c.Cells {
		t, err := typeForName(name)
		if err != nil {
			return nil, err
		}
		cells[i] = t
	}

	states := make([]int, len(c.States))
	copy(states, c.States)

	return &Layout{Cells: cells, States: states}, nil
}

func typeForName(name string) (sql.Type, error) {
	switch name {
	case sql.Null.Name():
		return sql.Null, nil
	case sql.Boolean.Name():
		return sql.Boolean, nil
	case sql.Int64.Name():
		return sql.Int64, nil
	case sql.Float64.Name():
		return sql.Float64, nil
	case sql.Text.Name():
		return sql.Text, nil
	case sql.Timestamp.Name():
		return sql.Timestamp, nil
	}
	return nil, ErrUnknownCellType.New(name)
}

// WriteConfig writes the configuration to the passed writer.
func WriteConfig(w io.Writer, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	return err
}

// WriteConfigFile writes the configuration to file.
func WriteConfigFile(path string, cfg *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteConfig(f, cfg)
}

// ReadConfig reads a spill configuration from the passed reader.
func ReadConfig(r io.Reader) (*Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	return &cfg, err
}

// ReadConfigFile reads a spill configuration from file.
func ReadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadConfig(f)
}

// CreateProcessingFile creates the lock file marking a spill as open.
func CreateProcessingFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	// we don't care about errors closing here
	_ = f.Close()
	return nil
}

// RemoveProcessingFile removes the lock file marking a spill as open.
func RemoveProcessingFile(path string) error {
	return os.Remove(path)
}

// ExistsProcessingFile returns whether the processing file exists.
func ExistsProcessingFile(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
