// Package fsio provides the file primitives every store shares: atomic
// writes via temp-file+fsync+rename, two-space-indented JSON documents,
// and timestamped archival instead of deletion.
package fsio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteFileAtomic writes data to path using the temp-file, fsync, rename
// pattern so readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadJSON decodes the JSON document at path into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// WriteJSON atomically writes v as a two-space-indented JSON document with
// a trailing newline, the format the host application expects.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// archiveName builds "<base>_<YYYYMMDD_HHMMSS>[_<reason>]<ext>" for a file,
// or "<name>_<YYYYMMDD_HHMMSS>[_<reason>]" for a directory.
func archiveName(src, reason string, now time.Time, isDir bool) string {
	base := filepath.Base(src)
	stamp := now.Format("20060102_150405")
	suffix := stamp
	if reason != "" {
		suffix += "_" + sanitizeReason(reason)
	}
	if isDir {
		return base + "_" + suffix
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + suffix + ext
}

func sanitizeReason(reason string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ReplaceAll(strings.TrimSpace(reason), " ", "-"))
}

// Archive moves the file or directory at src into archiveDir under a
// timestamped name and returns the destination path. Nothing managed by
// steward is ever deleted outright.
func Archive(src, archiveDir, reason string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", archiveDir, err)
	}
	dst := filepath.Join(archiveDir, archiveName(src, reason, time.Now(), info.IsDir()))
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	// Rename fails across filesystems; fall back to copy+remove.
	if info.IsDir() {
		if err := copyDir(src, dst); err != nil {
			return "", err
		}
	} else {
		if err := copyFile(src, dst, info.Mode()); err != nil {
			return "", err
		}
	}
	if err := os.RemoveAll(src); err != nil {
		return "", fmt.Errorf("removing %s after archive: %w", src, err)
	}
	return dst, nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, info.Mode())
	})
}
