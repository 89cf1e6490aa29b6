package compiler

import (
	"os"
	"path/filepath"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/homotopy/internal/core"
	"github.com/roach88/homotopy/internal/proof"
)

// CompileString compiles CUE source text into a signature. filename is used
// in error positions only.
func CompileString(src, filename string, in *core.Interner) (*proof.Signature, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cuecontext.Filename(filename))
	return CompileSignature(v, in)
}

// LoadFile loads a signature from a .cue file, or from every .cue file of
// the package in a directory.
func LoadFile(path string, in *core.Interner) (*proof.Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &CompileError{Code: ErrCUE, Field: "load", Message: err.Error(), Err: err}
	}

	cfg := &load.Config{Dir: path}
	args := []string{"."}
	if !info.IsDir() {
		cfg.Dir = filepath.Dir(path)
		args = []string{filepath.Base(path)}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return nil, &CompileError{Code: ErrCUE, Field: "load", Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError("load", inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	return CompileSignature(v, in)
}
