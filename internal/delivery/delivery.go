// Package delivery places finished archive artifacts into the
// configured mail directory.
package delivery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Placer defines the contract for placing a finished artifact into a
// configured destination.
type Placer interface {
	// Deliver moves artifact into destination and returns its final
	// location.
	Deliver(artifact, destination string) (string, error)
}

// DirPlacer implements Placer against a local mail directory.
type DirPlacer struct{}

// Deliver moves artifact into the destination directory. The
// destination may contain ~, environment variables, and glob
// patterns; a glob resolves to its first existing directory match,
// and a plain path is created when missing. Returns the final
// artifact location.
func (DirPlacer) Deliver(artifact, destination string) (string, error) {
	dir, err := resolveDestination(destination)
	if err != nil {
		return "", err
	}

	target := filepath.Join(dir, filepath.Base(artifact))
	if err := move(artifact, target); err != nil {
		return "", fmt.Errorf("delivering %s: %w", artifact, err)
	}

	log.Debugf("delivered %s", target)
	return target, nil
}

// resolveDestination expands ~, $VARS, and globs into one existing
// directory, creating the literal path when the pattern matches
// nothing.
func resolveDestination(destination string) (string, error) {
	expanded := os.ExpandEnv(destination)
	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding destination %s: %w", destination, err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
	}

	matches, err := filepath.Glob(expanded)
	if err != nil {
		return "", fmt.Errorf("bad destination pattern %s: %w", destination, err)
	}
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			return m, nil
		}
	}

	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", fmt.Errorf("creating destination %s: %w", expanded, err)
	}
	return expanded, nil
}

// move renames src to dst, falling back to copy and remove when the
// two live on different filesystems.
func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}

	return os.Remove(src)
}
