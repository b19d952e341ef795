// Package fsutil provides filesystem helpers shared by the classification
// engine and the empty-folder manager. Everything goes through afero so the
// callers can run against the OS or an in-memory filesystem.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// maxSuffixAttempts bounds the collision retry loops.
const maxSuffixAttempts = 100000

// ErrNoFreeName is returned when no unused name could be found.
var ErrNoFreeName = errors.New("no free name available")

// SplitName splits a file name into stem and suffix the way a path suffix is
// usually understood: the suffix starts at the last dot, unless that dot is
// the first or the last character. ".bashrc" has no suffix.
func SplitName(name string) (stem, suffix string) {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return name, ""
	}
	return name[:i], name[i:]
}

// Extension returns the lowercased suffix of name without its dot.
func Extension(name string) string {
	_, suffix := SplitName(filepath.Base(name))
	return strings.ToLower(strings.TrimPrefix(suffix, "."))
}

// Abs returns the cleaned absolute form of path. Paths stored in history
// must not depend on the working directory of the process that wrote them.
func Abs(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return abs, nil
}

// Exists reports whether path exists without following a final symlink.
func Exists(fsys afero.Fs, path string) bool {
	_, err := Lstat(fsys, path)
	return err == nil
}

// UniqueFilePath returns dir/name when it is free. Otherwise it appends
// "_<unix seconds>" before the suffix, and when that name is also taken
// (two collisions within the same second) a further "_<n>" counter.
func UniqueFilePath(fsys afero.Fs, dir, name string, now time.Time) (string, error) {
	candidate := filepath.Join(dir, name)
	if !Exists(fsys, candidate) {
		return candidate, nil
	}

	stem, suffix := SplitName(name)
	stamp := strconv.FormatInt(now.Unix(), 10)
	candidate = filepath.Join(dir, stem+"_"+stamp+suffix)
	if !Exists(fsys, candidate) {
		return candidate, nil
	}

	for n := 1; n <= maxSuffixAttempts; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%s_%d%s", stem, stamp, n, suffix))
		if !Exists(fsys, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s in %s", ErrNoFreeName, name, dir)
}

// UniqueDirPath returns parent/name when it is free, otherwise the first free
// parent/name_<n> for n = 1, 2, ...
func UniqueDirPath(fsys afero.Fs, parent, name string) (string, error) {
	candidate := filepath.Join(parent, name)
	if !Exists(fsys, candidate) {
		return candidate, nil
	}
	for n := 1; n <= maxSuffixAttempts; n++ {
		candidate = filepath.Join(parent, name+"_"+strconv.Itoa(n))
		if !Exists(fsys, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s in %s", ErrNoFreeName, name, parent)
}

// Move renames src to dst. When the rename fails for a reason other than a
// missing source or a permission problem (typically a cross-device move) it
// falls back to copy followed by removal of the source.
func Move(fsys afero.Fs, src, dst string) error {
	renameErr := fsys.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	if errors.Is(renameErr, fs.ErrNotExist) || errors.Is(renameErr, fs.ErrPermission) {
		return renameErr
	}

	info, err := Lstat(fsys, src)
	if err != nil {
		return renameErr
	}

	if info.IsDir() {
		if err := CopyTree(fsys, src, dst); err != nil {
			_ = fsys.RemoveAll(dst)
			return fmt.Errorf("failed to copy directory after rename error %v: %w", renameErr, err)
		}
		// The copy is complete; a partial source removal must not cost the copy.
		if err := fsys.RemoveAll(src); err != nil {
			return fmt.Errorf("copied %s but failed to remove source: %w", src, err)
		}
		return nil
	}

	if err := CopyFile(fsys, src, dst, info.Mode().Perm()); err != nil {
		_ = fsys.Remove(dst)
		return fmt.Errorf("failed to copy file after rename error %v: %w", renameErr, err)
	}
	if err := fsys.Remove(src); err != nil {
		_ = fsys.Remove(dst)
		return fmt.Errorf("failed to remove source after copy: %w", err)
	}
	return nil
}

// CopyFile copies a regular file, preserving its modification time.
func CopyFile(fsys afero.Fs, src, dst string, perm os.FileMode) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return fsys.Chtimes(dst, info.ModTime(), info.ModTime())
}

// CopyTree recursively copies the directory src to dst. Symlinks are skipped.
func CopyTree(fsys afero.Fs, src, dst string) error {
	return afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return fsys.MkdirAll(target, info.Mode().Perm()|0o700)
		case info.Mode().IsRegular():
			return CopyFile(fsys, path, target, info.Mode().Perm())
		default:
			return nil
		}
	})
}

// Lstat returns file info without following a final symlink when the
// filesystem supports it.
func Lstat(fsys afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fsys.Stat(path)
}
