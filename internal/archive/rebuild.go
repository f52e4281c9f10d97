// Package archive consolidates the monthly payload files of a list
// into a single plain-text artifact.
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/nhle/listmirror/internal/period"
)

// ListDir returns the directory that holds one list's monthly payloads.
func ListDir(root, archive string) string {
	return filepath.Join(root, archive)
}

// PayloadPath returns the local path of one monthly payload file.
func PayloadPath(root, archive string, p period.Period) string {
	return filepath.Join(ListDir(root, archive), p.Filename())
}

// Rebuild regenerates the consolidated artifact from every monthly
// payload in dir, in chronological order. Payloads that cannot be
// opened or decompressed are skipped. Returns the artifact path.
func Rebuild(dir, artifactName string) (string, error) {
	pattern := filepath.Join(dir, "*.txt.gz")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("globbing payloads in %s: %w", dir, err)
	}

	type payload struct {
		path   string
		period period.Period
	}
	payloads := make([]payload, 0, len(matches))
	for _, m := range matches {
		p, ok := period.ParseFilename(filepath.Base(m))
		if !ok {
			continue
		}
		payloads = append(payloads, payload{path: m, period: p})
	}
	sort.Slice(payloads, func(i, j int) bool {
		return payloads[i].period.Before(payloads[j].period)
	})

	artifactPath := filepath.Join(dir, artifactName)
	if err := os.Remove(artifactPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("removing stale artifact %s: %w", artifactPath, err)
	}

	out, err := os.Create(artifactPath)
	if err != nil {
		return "", fmt.Errorf("creating artifact %s: %w", artifactPath, err)
	}

	for _, pl := range payloads {
		if err := appendPayload(out, pl.path); err != nil {
			log.Warnf("skipping payload %s: %s", pl.path, err)
		}
	}

	if err := out.Close(); err != nil {
		return "", fmt.Errorf("closing artifact %s: %w", artifactPath, err)
	}
	return artifactPath, nil
}

// appendPayload decompresses one gzipped payload into the artifact.
func appendPayload(out io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening payload: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("decompressing payload: %w", err)
	}
	defer gz.Close()

	if _, err := io.Copy(out, gz); err != nil {
		return fmt.Errorf("decompressing payload: %w", err)
	}
	return nil
}
