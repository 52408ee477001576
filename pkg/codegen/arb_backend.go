package codegen

import (
	"bytes"
	"fmt"

	"github.com/xplshn/arbc/pkg/config"
	"github.com/xplshn/arbc/pkg/ir"
)

const (
	arbHeader = "!!ARBfp1.0"
	arbEnd    = "END"
)

type arbBackend struct{}

func NewARBBackend() Backend { return &arbBackend{} }

// Generate writes the program header, one line per instruction and the END
// marker.
func (b *arbBackend) Generate(prog *ir.Program, cfg *config.Config) (*bytes.Buffer, error) {
	if prog == nil {
		return nil, fmt.Errorf("arb backend: no program to render")
	}
	var buf bytes.Buffer
	for _, line := range Lines(prog) {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return &buf, nil
}

// Lines renders prog as the ordered list of assembly lines, header and END
// included.
func Lines(prog *ir.Program) []string {
	lines := make([]string, 0, len(prog.Instructions)+3)
	lines = append(lines, arbHeader, "")
	for _, instr := range prog.Instructions {
		lines = append(lines, instr.String())
	}
	return append(lines, arbEnd)
}
