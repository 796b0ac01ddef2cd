package assembly

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// CanonicalPath returns an absolute, symlink-resolved form of path suitable
// for equality checks. The path does not need to exist; when it does not,
// only its directory is resolved.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	} else if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	abs = filepath.Clean(abs)
	if caseInsensitiveFS() {
		abs = fold(abs)
	}
	return abs, nil
}

func caseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// SamePath reports whether a and b name the same file.
func SamePath(a, b string) bool {
	ca, err := CanonicalPath(a)
	if err != nil {
		return false
	}
	cb, err := CanonicalPath(b)
	if err != nil {
		return false
	}
	return ca == cb
}

// stageInPlace returns inputs with every path that collides with output
// replaced by a temporary copy. The returned cleanup removes the copy and
// must be called on every exit path; it is never nil.
func (a *Assembler) stageInPlace(output string, inputs []string) ([]string, func(), error) {
	staged := make([]string, len(inputs))
	copy(staged, inputs)

	var tmpPath string
	cleanup := func() {
		if tmpPath != "" {
			if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				a.log.Warn("remove staged copy", "path", tmpPath, "error", err)
			}
		}
	}

	for i, in := range inputs {
		if !SamePath(in, output) {
			continue
		}
		if tmpPath == "" {
			p, err := a.copyToTemp(in)
			if errors.Is(err, fs.ErrNotExist) {
				// Nothing to protect; opening the input reports it.
				continue
			}
			if err != nil {
				cleanup()
				return nil, func() {}, ioErr("stage in-place input", in, err)
			}
			tmpPath = p
			a.log.Debug("staged in-place input", "input", in, "staged", tmpPath)
		}
		staged[i] = tmpPath
	}
	return staged, cleanup, nil
}

func (a *Assembler) copyToTemp(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(path))
	tmp, err := os.CreateTemp(a.TempDir, "assembly-inplace-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
