// Package config loads and merges openmc configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (OPENMC_OWNER, OPENMC_CACHE_BACKEND, GITHUB_TOKEN, etc.),
//     including those read from a .env file in the working directory
//  3. Config file ($XDG_CONFIG_HOME/openmc/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
