package builder

import (
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
)

// CopyTree copies src to dst recursively. Entries for which skip returns
// true are left out along with everything beneath them; skip may be nil.
func CopyTree(src, dst string, skip func(path string) bool) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return copyError(src, dst, err)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return copyError(src, dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return copyError(src, dst, err)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if skip != nil && skip(srcPath) {
			continue
		}

		info, err := os.Stat(srcPath)
		if err != nil {
			return copyError(srcPath, dstPath, err)
		}
		if info.IsDir() {
			if err := CopyTree(srcPath, dstPath, skip); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// copyFile copies a single file byte for byte, keeping its permission bits.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return copyError(src, dst, err)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return copyError(src, dst, err)
	}
	dstFile, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return copyError(src, dst, err)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return copyError(src, dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return copyError(src, dst, err)
	}

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return copyError(src, dst, err)
	}
	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return copyError(src, dst, err)
	}
	return nil
}

func copyError(src, dst string, err error) error {
	return errors.FileSystemError("failed to copy").
		WithCause(err).
		WithContext("source", src).
		WithContext("output", dst).
		Build()
}
