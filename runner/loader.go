package runner

import (
	"context"
	"fmt"
	"os"

	"github.com/ahearne/lightcone/vm"
)

// FileLoader returns a Loader reading a compiled program file. The parser
// front end writes these files; decoding validates them before execution.
func FileLoader(path string) Loader {
	return func(ctx context.Context) (*vm.Program, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening program %q: %w", path, err)
		}
		defer f.Close()
		prog, err := vm.DecodeProgram(f)
		if err != nil {
			return nil, fmt.Errorf("program %q: %w", path, err)
		}
		return prog, nil
	}
}
