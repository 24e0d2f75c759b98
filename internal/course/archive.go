package course

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "tmc/internal/errors"
)

// skipDirs are never included in a submission archive.
var skipDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"__pycache__":  true,
}

// zipDir archives the regular files under root with slash-separated paths
// relative to root. Hidden directories are skipped.
func zipDir(root string) ([]byte, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeArchiveFailed, "read exercise directory", err)
	}
	if !info.IsDir() {
		return nil, apperrors.New(apperrors.CodeArchiveFailed, fmt.Sprintf("%s is not a directory", root), nil)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if walkErr != nil {
		return nil, apperrors.New(apperrors.CodeArchiveFailed, "archive "+root, walkErr)
	}
	if err := zw.Close(); err != nil {
		return nil, apperrors.New(apperrors.CodeArchiveFailed, "finish archive", err)
	}
	return buf.Bytes(), nil
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	//nolint:gosec // G304: archiving files the user asked to submit
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// extractZip unpacks data into dest. Entries that would land outside dest
// and symlinks are rejected.
func extractZip(data []byte, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return apperrors.New(apperrors.CodeArchiveFailed, "open downloaded archive", err)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return apperrors.New(apperrors.CodeArchiveFailed, "create "+dest, err)
	}
	for _, f := range zr.File {
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return err
		}
		mode := f.Mode()
		switch {
		case mode&os.ModeSymlink != 0:
			return apperrors.New(apperrors.CodeArchiveFailed, fmt.Sprintf("archive entry %q is a symlink", f.Name), nil)
		case f.FileInfo().IsDir():
			if err := os.MkdirAll(target, 0o755); err != nil {
				return apperrors.New(apperrors.CodeArchiveFailed, "create "+target, err)
			}
		default:
			if err := writeEntry(f, target); err != nil {
				return apperrors.New(apperrors.CodeArchiveFailed, "extract "+f.Name, err)
			}
		}
	}
	return nil
}

func safeJoin(dest, name string) (string, error) {
	clean := filepath.FromSlash(name)
	if filepath.IsAbs(clean) || filepath.VolumeName(clean) != "" {
		return "", apperrors.New(apperrors.CodeArchiveFailed, fmt.Sprintf("archive entry %q has an absolute path", name), nil)
	}
	target := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperrors.New(apperrors.CodeArchiveFailed, fmt.Sprintf("archive entry %q escapes the target directory", name), nil)
	}
	return target, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	//nolint:gosec // G304: target is validated by safeJoin
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
