// Package config holds the transactional core's tunables, loadable from
// YAML the way the rest of the engine's ambient stack configures itself.
package config
