package api

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfassembly/internal/assembly"
)

var errOutsideRoot = errors.New("path escapes document root")

// resolvePath maps a request path onto the filesystem under root. Relative
// paths are taken from root; absolute paths must already lie inside it.
// Symlinks are followed before the check.
func resolvePath(root, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", assembly.ErrInvalidSelection)
	}
	full := p
	if !filepath.IsAbs(full) {
		full = filepath.Join(root, full)
	}
	full = filepath.Clean(full)

	canonRoot, err := assembly.CanonicalPath(root)
	if err != nil {
		return "", err
	}
	canon, err := assembly.CanonicalPath(full)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(canonRoot, canon)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errOutsideRoot, p)
	}
	return full, nil
}

func (s *Server) resolveAll(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		r, err := resolvePath(s.cfg.DocumentRoot, p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Server) resolveExtract(req *assembly.ExtractionRequest) error {
	var err error
	if req.Source, err = resolvePath(s.cfg.DocumentRoot, req.Source); err != nil {
		return err
	}
	req.Output, err = resolvePath(s.cfg.DocumentRoot, req.Output)
	return err
}

func (s *Server) resolveMerge(req *assembly.MergeRequest) error {
	var err error
	if req.Main, err = resolvePath(s.cfg.DocumentRoot, req.Main); err != nil {
		return err
	}
	if req.Output, err = resolvePath(s.cfg.DocumentRoot, req.Output); err != nil {
		return err
	}
	if len(req.Additional) > 0 {
		req.Additional, err = s.resolveAll(req.Additional)
	}
	return err
}
