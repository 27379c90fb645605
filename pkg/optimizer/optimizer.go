// Package optimizer fuses runs of identical cell and pointer operations
// into counted instructions, and renders fused programs as listings.
package optimizer

import (
	"fmt"
	"strings"

	"github.com/bfvm/bfvm/pkg/parser"
	"github.com/bfvm/bfvm/pkg/types"
)

// Optimize run-length encodes ops. Only fusable ops are merged; loop and
// I/O instructions always get their own entry with count 1.
func Optimize(ops []types.Op) []types.Fused {
	fused := make([]types.Fused, 0, len(ops))
	if len(ops) == 0 {
		return fused
	}

	cur := types.Fused{Op: ops[0], Count: 1}
	for _, op := range ops[1:] {
		if op == cur.Op && op.Fusable() {
			cur.Count++
			continue
		}
		fused = append(fused, cur)
		cur = types.Fused{Op: op, Count: 1}
	}
	return append(fused, cur)
}

// Ops projects a fused program back to its instruction kinds, one per entry.
// The result indexes the same way as fused, so it can feed BuildJumpTable.
func Ops(fused []types.Fused) []types.Op {
	ops := make([]types.Op, len(fused))
	for i, f := range fused {
		ops[i] = f.Op
	}
	return ops
}

// Expand undoes Optimize.
func Expand(fused []types.Fused) []types.Op {
	var ops []types.Op
	for _, f := range fused {
		for n := 0; n < f.Count; n++ {
			ops = append(ops, f.Op)
		}
	}
	return ops
}

// Disassemble renders fused as a numbered listing, indenting loop bodies
// and annotating brackets with their jump targets.
func Disassemble(fused []types.Fused) string {
	var sb strings.Builder
	jt, err := parser.BuildJumpTable(Ops(fused))
	if err != nil {
		jt = nil
	}

	depth := 0
	for i, f := range fused {
		if f.Op == types.LoopEnd && depth > 0 {
			depth--
		}
		sb.WriteString(fmt.Sprintf("%04d: %s", i, strings.Repeat("  ", depth)))

		switch f.Op {
		case types.LoopStart:
			sb.WriteString("LOOP")
			if jt != nil {
				sb.WriteString(fmt.Sprintf(" -> %04d", jt.Forward(i)))
			}
			depth++
		case types.LoopEnd:
			sb.WriteString("END")
			if jt != nil {
				sb.WriteString(fmt.Sprintf(" -> %04d", jt.Backward(i)))
			}
		default:
			sb.WriteString(f.String())
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
