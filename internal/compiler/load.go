package compiler

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed counter.cue
var counterCUE []byte

// DefaultContractName is the contract compiled by LoadDefault.
const DefaultContractName = "Counter"

// LoadDefault compiles the embedded counter contract.
//
// Each call builds a fresh CUE context, so the returned Contract can be used
// by one goroutine without coordinating with other callers.
func LoadDefault() (*Contract, error) {
	return Load(counterCUE, "counter.cue", DefaultContractName)
}

// MustLoadDefault is LoadDefault for callers that cannot recover from a
// broken embedded contract.
func MustLoadDefault() *Contract {
	c, err := LoadDefault()
	if err != nil {
		panic(fmt.Sprintf("compiler: embedded contract: %v", err))
	}
	return c
}

// LoadFile compiles contract.<name> from a CUE file on disk.
func LoadFile(path, name string) (*Contract, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contract: %w", err)
	}
	return Load(src, path, name)
}

// Load compiles contract.<name> from CUE source.
func Load(src []byte, filename, name string) (*Contract, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(src, cue.Filename(filename))
	if err := root.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := root.LookupPath(cue.MakePath(cue.Str("contract"), cue.Str(name)))
	if !v.Exists() {
		return nil, &CompileError{
			Field:   "contract." + name,
			Message: "contract not found",
			Pos:     root.Pos(),
		}
	}
	return CompileContract(v)
}

// Source returns the embedded counter contract source.
func Source() []byte {
	return counterCUE
}
