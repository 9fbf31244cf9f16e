// Package config loads, normalizes, and validates podboost configuration.
//
// Configuration lives in a TOML file, by default at
// ~/.config/podboost/config.toml with a podboost.toml fallback in the
// working directory. Defaults apply when the file is missing, secrets fall
// back to environment variables, and all path fields are expanded to
// absolute form before use.
package config
