// Package config loads the bottools settings file.
//
// The file describes where the upstream repository lives, which downstream
// manifest entries track it, how the bump commit is authored and how the
// bot is packaged. Every field has a default, so a missing default file is
// not an error.
package config
