// Package vcs locates the version-control root enclosing a filesystem path.
package vcs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
)

// DefaultMarkers are the entries whose presence marks a version-control root.
var DefaultMarkers = []string{".git", ".hg", ".svn"}

// Finder resolves the version-control root containing a path.
type Finder interface {
	Root(path string) (string, error)
}

// MarkerFinder walks upward from a path until it finds a directory holding
// one of Markers. It needs no VCS binary.
type MarkerFinder struct {
	Markers []string
}

var _ Finder = MarkerFinder{}

// Root returns the absolute path of the nearest ancestor of path (path
// included) that holds a marker entry. It fails with
// apierr.ErrNotVersionControlled when the filesystem root is reached.
func (f MarkerFinder) Root(path string) (string, error) {
	markers := f.Markers
	if len(markers) == 0 {
		markers = DefaultMarkers
	}

	dir, err := startDir(path)
	if err != nil {
		return "", err
	}

	for {
		for _, m := range markers {
			if _, err := os.Lstat(filepath.Join(dir, m)); err == nil {
				zap.L().Debug("version-control root found", zap.String("root", dir), zap.String("marker", m))
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", apierr.Wrap(apierr.ErrNotVersionControlled, fmt.Sprintf("%s is not inside a version-controlled tree", path))
		}
		dir = parent
	}
}

// GitFinder asks git for the work tree root.
type GitFinder struct {
	// Binary is the git executable. Default: "git".
	Binary string
}

var _ Finder = GitFinder{}

// Root runs `git rev-parse --show-toplevel` in path's directory.
func (f GitFinder) Root(path string) (string, error) {
	bin := f.Binary
	if bin == "" {
		bin = "git"
	}

	dir, err := startDir(path)
	if err != nil {
		return "", err
	}

	//nolint:gosec // G204: binary and args are controlled by the caller
	cmd := exec.Command(bin, "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(strings.ToLower(msg), "not a git repository") {
			return "", apierr.Wrap(apierr.ErrNotVersionControlled, msg)
		}
		return "", fmt.Errorf("git rev-parse --show-toplevel: %s: %w", msg, err)
	}

	root := strings.TrimSpace(stdout.String())
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return filepath.Clean(root), nil
}

// Contains reports whether dir is root or one of its descendants. Both paths
// must be absolute and clean.
func Contains(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// startDir returns the absolute directory a walk starts from: path itself, or
// its parent when path is a file.
func startDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !fi.IsDir() {
		abs = filepath.Dir(abs)
	}
	return abs, nil
}
