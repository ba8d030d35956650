// Package source expands artifact source specs into local file paths.
//
// A source can be a local file or directory, an http(s) url, a source list
// (conf:path or conf:stdin, one source per line), or a repo-suffix:<string>
// directive appended to the repo name.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"repoman/internal/download"
	"repoman/internal/fsutil"
)

const (
	confPrefix   = "conf:"
	suffixPrefix = "repo-suffix:"
	stdinConf    = "stdin"
)

// Result is the outcome of expanding a set of sources.
type Result struct {
	// Paths are the local artifact files to add, in source order.
	Paths []string
	// RepoSuffix is the last repo-suffix directive seen, if any.
	RepoSuffix string
}

// Expander resolves source specs, downloading remote artifacts into a temp
// dir.
type Expander struct {
	downloader *download.Client
	tempDir    string
	stdin      io.Reader
}

// NewExpander creates an Expander that downloads urls with the given client
// into tempDir.
func NewExpander(downloader *download.Client, tempDir string) *Expander {
	return &Expander{
		downloader: downloader,
		tempDir:    tempDir,
		stdin:      os.Stdin,
	}
}

// Expand resolves the given source specs into local artifact paths.
func (e *Expander) Expand(sources []string) (*Result, error) {
	result := &Result{}
	for _, src := range sources {
		if err := e.expandOne(strings.TrimSpace(src), result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *Expander) expandOne(src string, result *Result) error {
	switch {
	case src == "" || strings.HasPrefix(src, "#"):
		return nil

	case strings.HasPrefix(src, suffixPrefix):
		result.RepoSuffix = strings.TrimPrefix(src, suffixPrefix)
		return nil

	case strings.HasPrefix(src, confPrefix):
		return e.expandConf(strings.TrimPrefix(src, confPrefix), result)

	case download.IsURL(src):
		path, err := e.downloader.ToFile(src, e.tempDir)
		if err != nil {
			return err
		}
		result.Paths = append(result.Paths, path)
		return nil

	default:
		return e.expandLocal(src, result)
	}
}

// expandConf reads one source per line from a file, or from stdin when the
// path is "stdin", and expands each.
func (e *Expander) expandConf(path string, result *Result) error {
	var reader io.Reader
	if path == stdinConf {
		reader = e.stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open source list %s: %w", path, err)
		}
		defer file.Close()
		reader = file
	}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err := e.expandOne(strings.TrimSpace(scanner.Text()), result); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read source list %s: %w", path, err)
	}
	return nil
}

func (e *Expander) expandLocal(src string, result *Result) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("source %s: %w", src, err)
	}
	if !info.IsDir() {
		result.Paths = append(result.Paths, src)
		return nil
	}
	paths, err := fsutil.FindRecursive(src, func(string) bool { return true })
	if err != nil {
		return err
	}
	result.Paths = append(result.Paths, paths...)
	return nil
}
