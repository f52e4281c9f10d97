package delivery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nhle/listmirror/internal/delivery"
)

func writeArtifact(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "alpha.mbox")
	if err := os.WriteFile(path, []byte("archive content"), 0o644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	return path
}

func TestDeliverMovesArtifact(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "mail")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("creating destination: %v", err)
	}
	artifact := writeArtifact(t, src)

	final, err := delivery.DirPlacer{}.Deliver(artifact, dest)
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}

	want := filepath.Join(dest, "alpha.mbox")
	if final != want {
		t.Errorf("final path = %q, want %q", final, want)
	}
	data, err := os.ReadFile(final)
	if err != nil {
		t.Fatalf("reading delivered artifact: %v", err)
	}
	if string(data) != "archive content" {
		t.Errorf("delivered content = %q", data)
	}
	if _, err := os.Stat(artifact); !os.IsNotExist(err) {
		t.Error("source artifact still present after delivery")
	}
}

func TestDeliverCreatesMissingDestination(t *testing.T) {
	src := t.TempDir()
	dest := filepath.Join(t.TempDir(), "not", "yet", "there")
	artifact := writeArtifact(t, src)

	final, err := delivery.DirPlacer{}.Deliver(artifact, dest)
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if _, err := os.Stat(final); err != nil {
		t.Errorf("delivered artifact missing: %v", err)
	}
}

func TestDeliverExpandsEnvironment(t *testing.T) {
	src := t.TempDir()
	base := t.TempDir()
	mail := filepath.Join(base, "mail")
	if err := os.MkdirAll(mail, 0o755); err != nil {
		t.Fatalf("creating destination: %v", err)
	}
	t.Setenv("LISTMIRROR_TEST_BASE", base)
	artifact := writeArtifact(t, src)

	final, err := delivery.DirPlacer{}.Deliver(artifact, "$LISTMIRROR_TEST_BASE/mail")
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	want := filepath.Join(mail, "alpha.mbox")
	if final != want {
		t.Errorf("final path = %q, want %q", final, want)
	}
}

func TestDeliverResolvesGlob(t *testing.T) {
	src := t.TempDir()
	base := t.TempDir()
	mail := filepath.Join(base, "mail-2022")
	if err := os.MkdirAll(mail, 0o755); err != nil {
		t.Fatalf("creating destination: %v", err)
	}
	artifact := writeArtifact(t, src)

	final, err := delivery.DirPlacer{}.Deliver(artifact, filepath.Join(base, "mail-*"))
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	want := filepath.Join(mail, "alpha.mbox")
	if final != want {
		t.Errorf("final path = %q, want %q", final, want)
	}
}
