package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Options holds the core-relevant configuration knobs for an engine
// instance.
type Options struct {
	MaxReadSetSize          uint32 `yaml:"max_read_set_size"`
	MaxWriteSetSize         uint32 `yaml:"max_write_set_size"`
	MaxLockFreeWriteSetSize uint32 `yaml:"max_lock_free_write_set_size"`
	LocalWorkMemorySizeMB   uint32 `yaml:"local_work_memory_size_mb"`
	EpochAdvanceIntervalMS  uint32 `yaml:"epoch_advance_interval_ms"`
	LogBufferKB             uint64 `yaml:"log_buffer_kb"`
	NullLogDevice           bool   `yaml:"null_log_device"`

	// Debug is parsed from configuration, but no engine component reads
	// it: invariant violations are neither asserted nor reported through
	// this flag.
	Debug bool `yaml:"debug"`

	// InstanceID correlates this engine instance's log lines and storage
	// creation requests; generated if left empty.
	InstanceID string `yaml:"instance_id"`
}

// Default returns the engine's out-of-the-box tuning values.
func Default() Options {
	return Options{
		MaxReadSetSize:          32768,
		MaxWriteSetSize:         8192,
		MaxLockFreeWriteSetSize: 4096,
		LocalWorkMemorySizeMB:   2,
		EpochAdvanceIntervalMS:  20,
		LogBufferKB:             524288,
		NullLogDevice:           false,
		InstanceID:              uuid.NewString(),
	}
}

// Load reads an Options set from a YAML file, starting from Default():
// fields the file omits keep their defaults, while fields the file sets
// (to zero included) take the file's value. An empty InstanceID is
// replaced with a freshly generated one.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if opts.InstanceID == "" {
		opts.InstanceID = uuid.NewString()
	}
	return opts, nil
}
