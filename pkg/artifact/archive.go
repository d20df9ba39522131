package artifact

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
)

// Entry is a single member of an archive.
type Entry struct {
	Name     string
	Typeflag byte
	Size     int64
	Mode     int64
	Linkname string
}

// ListArchive lists the members of a tar or tar.gz archive.
//
// The input is inspected for a gzip magic header; if present, it is
// transparently decompressed before reading tar entries.
func ListArchive(data []byte) (entries []Entry, err error) {
	var reader io.Reader = bytes.NewReader(data)

	if isGzipFile(data) {
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		defer func(gzr *gzip.Reader) {
			if cerr := gzr.Close(); cerr != nil {
				zap.L().Error("failed to close gzip reader", zap.Error(cerr))
			}
		}(gzr)
		reader = gzr
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			zap.L().Error("Failed to read tar entry", zap.Error(err))
			return nil, err
		}
		entries = append(entries, Entry{
			Name:     header.Name,
			Typeflag: header.Typeflag,
			Size:     header.Size,
			Mode:     header.Mode,
			Linkname: header.Linkname,
		})
	}
	return entries, nil
}

// ReadArchiveFile returns the content of the regular file name inside a tar
// or tar.gz archive.
func ReadArchiveFile(data []byte, name string) ([]byte, error) {
	var reader io.Reader = bytes.NewReader(data)
	if isGzipFile(data) {
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress gzip: %w", err)
		}
		defer gzr.Close()
		reader = gzr
	}

	tr := tar.NewReader(reader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
		}
		if err != nil {
			return nil, err
		}
		if header.Name == name && header.Typeflag == tar.TypeReg {
			return io.ReadAll(tr)
		}
	}
}

// isGzipFile reports whether data appears to be gzip-compressed,
// based on the 0x1F 0x8B magic bytes.
func isGzipFile(data []byte) bool {
	return len(data) > 2 && data[0] == 0x1F && data[1] == 0x8B
}

// writeArchive writes a gzip-compressed tar of root's contents to w. Member
// names are slash-separated paths relative to root. Directories named in skip
// are not descended into.
func writeArchive(w io.Writer, root string, skip []string) (err error) {
	gzw := gzip.NewWriter(w)
	defer func() {
		if cerr := gzw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	tw := tar.NewWriter(gzw)
	defer func() {
		if cerr := tw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() && slices.Contains(skip, d.Name()) {
			return filepath.SkipDir
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("failed to get file info: %w", infoErr)
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			target, linkErr := os.Readlink(path)
			if linkErr != nil {
				return fmt.Errorf("failed to read link %s: %w", path, linkErr)
			}
			link = target
		}

		header, hdrErr := tar.FileInfoHeader(info, link)
		if hdrErr != nil {
			return fmt.Errorf("failed to build header for %s: %w", path, hdrErr)
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write header for %s: %w", rel, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return fmt.Errorf("failed to open %s: %w", path, openErr)
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("failed to archive %s: %w", rel, err)
		}
		return nil
	})
}
