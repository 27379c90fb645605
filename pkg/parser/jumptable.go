package parser

import "github.com/bfvm/bfvm/pkg/types"

// NoJump is returned for indices that are not a bracket.
const NoJump = -1

// JumpTable maps each LoopStart index to its matching LoopEnd and back.
// It is indexed by position, so lookups never hash.
type JumpTable struct {
	targets []int
	pairs   int
}

// BuildJumpTable matches brackets in ops with an explicit stack.
func BuildJumpTable(ops []types.Op) (*JumpTable, error) {
	jt := &JumpTable{targets: make([]int, len(ops))}
	var stack []int

	for i, op := range ops {
		jt.targets[i] = NoJump
		switch op {
		case types.LoopStart:
			stack = append(stack, i)
		case types.LoopEnd:
			if len(stack) == 0 {
				return nil, &types.SyntaxError{Kind: types.UnmatchedClose, Index: i}
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jt.targets[start] = i
			jt.targets[i] = start
			jt.pairs++
		}
	}

	if len(stack) > 0 {
		return nil, &types.SyntaxError{Kind: types.UnmatchedOpen, Index: stack[len(stack)-1]}
	}
	return jt, nil
}

// Forward returns the LoopEnd matching the LoopStart at pos, or NoJump.
func (jt *JumpTable) Forward(pos int) int {
	if pos < 0 || pos >= len(jt.targets) || jt.targets[pos] < pos {
		return NoJump
	}
	return jt.targets[pos]
}

// Backward returns the LoopStart matching the LoopEnd at pos, or NoJump.
func (jt *JumpTable) Backward(pos int) int {
	if pos < 0 || pos >= len(jt.targets) || jt.targets[pos] > pos {
		return NoJump
	}
	return jt.targets[pos]
}

// Len is the length of the sequence the table was built from.
func (jt *JumpTable) Len() int { return len(jt.targets) }

// Pairs is the number of matched loops.
func (jt *JumpTable) Pairs() int { return jt.pairs }
