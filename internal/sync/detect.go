package sync

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
)

// snapshotSuffix names the transient before-copy of a payload while
// its month is being processed.
const snapshotSuffix = ".prev"

// detectChange compares the payload's state after a fetch attempt with
// the snapshot taken before it. A payload that appeared for the first
// time is a change; an untouched modification time is not, without
// looking at the bytes; a touched modification time is a change only
// when the bytes actually differ.
func detectChange(dest string, hadBefore bool, prevMtime time.Time) (bool, error) {
	info, err := os.Stat(dest)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing was ever fetched for this month.
			return false, nil
		}
		return false, fmt.Errorf("inspecting payload %s: %w", dest, err)
	}

	if !hadBefore {
		return true, nil
	}
	if info.ModTime().Equal(prevMtime) {
		return false, nil
	}

	same, err := sameContent(dest, dest+snapshotSuffix)
	if err != nil {
		return false, err
	}
	return !same, nil
}

// sameContent reports whether two files hold identical bytes.
func sameContent(a, b string) (bool, error) {
	da, err := os.ReadFile(a)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", a, err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", b, err)
	}
	return bytes.Equal(da, db), nil
}

// copyFile duplicates src into dst, replacing dst if present.
func copyFile(src, dst string) error {
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
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	return out.Close()
}
