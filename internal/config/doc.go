// Package config loads the scan engine's TOML settings file, following it
// with an environment-variable overlay, and reports the system/build
// banner the same way the original application's startup sequence did.
package config
