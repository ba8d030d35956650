package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// LinkOrCopy hardlinks src to dst, falling back to a full copy when the two
// paths live on different devices.
func LinkOrCopy(src, dst string) error {
	err := os.Link(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && linkErr.Err == syscall.EXDEV {
		return copyFile(src, dst)
	}
	return fmt.Errorf("link %s to %s: %w", src, dst, err)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}

// SaveFile puts src at dst if not there already, creating the path tree as
// needed.
func SaveFile(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create dir for %s: %w", dst, err)
	}
	return LinkOrCopy(src, dst)
}

// ListFiles finds all the files with the given extension under path.
func ListFiles(path, extension string) ([]string, error) {
	return FindRecursive(path, func(name string) bool {
		return strings.HasSuffix(name, extension)
	})
}

// FindRecursive walks path and returns the files whose base name passes
// match.
func FindRecursive(path string, match func(name string) bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && match(d.Name()) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	return found, nil
}
