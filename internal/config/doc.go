// Package config loads the monitor's configuration.
//
// Two kinds of configuration live here. Settings are process-wide (log
// destination, status server address, config-error policy) and are read once
// at start. Config is the per-cycle snapshot of targets, interval and
// notification credentials; Provider rebuilds it from scratch on every call so
// edits to the file or environment take effect on the next cycle.
package config
