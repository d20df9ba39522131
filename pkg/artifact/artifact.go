package artifact

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
	"github.com/shamank/adama-sdk-go/pkg/model"
	"github.com/shamank/adama-sdk-go/pkg/vcs"
)

// Artifact is a packaged source tree ready to be submitted.
type Artifact struct {
	// Root is the absolute path of the version-control root that was archived.
	Root string
	// MetadataPath is the descriptor path relative to Root, slash separated.
	MetadataPath string
	// Descriptor is the parsed metadata descriptor.
	Descriptor *model.Descriptor
	// Archive is the gzip-compressed tar of Root.
	Archive []byte
}

// FileName is the name the archive is uploaded under.
func (a *Artifact) FileName() string {
	return a.Descriptor.Name + ".tgz"
}

// Packager builds Artifacts. The zero value is not usable; use NewPackager.
type Packager struct {
	finder    vcs.Finder
	names     []string
	skipDirs  []string
	readFile  func(string) ([]byte, error)
	statEntry func(string) (os.FileInfo, error)
}

// Option customizes a Packager.
type Option func(*Packager)

// WithFinder selects how the version-control root is located.
// Default: vcs.MarkerFinder.
func WithFinder(f vcs.Finder) Option {
	return func(p *Packager) {
		if f != nil {
			p.finder = f
		}
	}
}

// WithDescriptorNames overrides the descriptor file names, in lookup order.
func WithDescriptorNames(names ...string) Option {
	return func(p *Packager) {
		if len(names) > 0 {
			p.names = names
		}
	}
}

// WithSkipDirs sets the directory names left out of the archive.
// Default: vcs.DefaultMarkers.
func WithSkipDirs(dirs ...string) Option {
	return func(p *Packager) {
		p.skipDirs = dirs
	}
}

// NewPackager returns a Packager with the given options applied.
func NewPackager(opts ...Option) *Packager {
	p := &Packager{
		finder:    vcs.MarkerFinder{},
		names:     model.DescriptorFileNames,
		skipDirs:  vcs.DefaultMarkers,
		readFile:  os.ReadFile,
		statEntry: os.Stat,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Package builds an Artifact for the source tree containing path with a
// default Packager.
func Package(path string) (*Artifact, error) {
	return NewPackager().Package(path)
}

// Package locates the version-control root enclosing path, finds the nearest
// metadata descriptor between path and that root, and archives the root.
//
// It works on absolute paths and never changes the process working directory.
func (p *Packager) Package(path string) (*Artifact, error) {
	root, err := p.finder.Root(path)
	if err != nil {
		return nil, err
	}

	start, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if fi, err := p.statEntry(start); err == nil && !fi.IsDir() {
		start = filepath.Dir(start)
	}
	// finders may report a symlink-resolved root
	if !vcs.Contains(root, start) {
		if resolved, err := filepath.EvalSymlinks(start); err == nil {
			start = resolved
		}
	}

	metaFile, err := p.FindDescriptor(start, root)
	if err != nil {
		return nil, err
	}

	data, err := p.readFile(metaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", metaFile, err)
	}
	desc, err := model.ParseDescriptor(data)
	if err != nil {
		return nil, apierr.Wrap(apierr.ErrInvalidMetadata, fmt.Sprintf("%s: %v", metaFile, err))
	}

	rel, err := filepath.Rel(root, metaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to relativize %s: %w", metaFile, err)
	}

	var buf bytes.Buffer
	if err := writeArchive(&buf, root, p.skipDirs); err != nil {
		zap.L().Error("failed to archive source tree", zap.String("root", root), zap.Error(err))
		return nil, fmt.Errorf("failed to archive %s: %w", root, err)
	}

	zap.L().Info("packaged service",
		zap.String("name", desc.Name),
		zap.String("type", desc.Type),
		zap.String("root", root),
		zap.String("metadata", filepath.ToSlash(rel)),
		zap.Int("bytes", buf.Len()))

	return &Artifact{
		Root:         root,
		MetadataPath: filepath.ToSlash(rel),
		Descriptor:   desc,
		Archive:      buf.Bytes(),
	}, nil
}

// FindDescriptor walks from start toward root, both absolute, and returns the
// first descriptor file found. The walk stops as soon as the current
// directory is no longer root or one of its descendants, and fails with
// apierr.ErrMetadataNotFound.
func (p *Packager) FindDescriptor(start, root string) (string, error) {
	dir := filepath.Clean(start)
	root = filepath.Clean(root)

	for vcs.Contains(root, dir) {
		for _, name := range p.names {
			candidate := filepath.Join(dir, name)
			if fi, err := p.statEntry(candidate); err == nil && fi.Mode().IsRegular() {
				zap.L().Debug("metadata descriptor found", zap.String("path", candidate))
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", apierr.Wrap(apierr.ErrMetadataNotFound, fmt.Sprintf("no %v between %s and %s", p.names, start, root))
}
