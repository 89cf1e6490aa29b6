package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/homotopy/internal/compiler"
	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
)

// LoadError represents an error locating input files.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FindFiles returns path itself when it is a file, or every file below it
// with one of the given extensions whose base name (without extension)
// matches filter. An empty filter matches everything. Results are sorted.
func FindFiles(path string, exts []string, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if !slices.Contains(exts, ext) {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning %s: %v", path, err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no %s files found in %s", strings.Join(exts, "/"), path)}
	}
	slices.Sort(files)
	return files, nil
}

// LoadSignature compiles the signature at path (a .cue file or a directory
// holding one CUE package) into a fresh interner.
func LoadSignature(path string) (*proof.Signature, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("signature not found: %s", path)}
	}
	return compiler.LoadFile(path, core.NewInterner())
}
