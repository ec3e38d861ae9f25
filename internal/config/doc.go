// Package config provides configuration structures and utilities for
// onefilellm. It defines the aggregation options built from CLI flags,
// the optional YAML configuration file, and the XDG paths used for
// persistent state.
package config
