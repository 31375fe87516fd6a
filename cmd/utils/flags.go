package utils

import (
	"os"
	"path/filepath"
)

var (
	GrantHome string
)

// GetGrantHome resolves the node home dir from --home-dir, $GRANTHOME or $HOME/.grant-node.
func GetGrantHome() string {
	if GrantHome != "" {
		return GrantHome
	}

	home := os.Getenv("GRANTHOME")

	if home != "" {
		return home
	}

	return os.ExpandEnv(filepath.Join("$HOME", ".grant-node"))
}
