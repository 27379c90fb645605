// Package types defines the instruction model for bfvm.
// Every program is a flat sequence of Op values, optionally fused into counted pairs.
package types

import "fmt"

// Op is one of the eight tape instructions.
type Op byte

const (
	Increment Op = iota // + add one to the current cell
	Decrement           // - subtract one from the current cell
	MoveRight           // > move the data pointer right
	MoveLeft            // < move the data pointer left
	Output              // . write the current cell
	Input               // , read a byte into the current cell
	LoopStart           // [ jump past matching ] if cell is zero
	LoopEnd             // ] jump back to matching [ if cell is nonzero
)

var symbols = [...]rune{'+', '-', '>', '<', '.', ',', '[', ']'}

var names = [...]string{
	"INC", "DEC", "RIGHT", "LEFT", "OUT", "IN", "LOOP", "END",
}

// Symbols is the source alphabet, in Op order.
const Symbols = "+-><.,[]"

// OpFromSymbol maps a source character to its Op.
func OpFromSymbol(c rune) (Op, bool) {
	switch c {
	case '+':
		return Increment, true
	case '-':
		return Decrement, true
	case '>':
		return MoveRight, true
	case '<':
		return MoveLeft, true
	case '.':
		return Output, true
	case ',':
		return Input, true
	case '[':
		return LoopStart, true
	case ']':
		return LoopEnd, true
	}
	return 0, false
}

// Symbol returns the source character for op.
func (op Op) Symbol() rune {
	if int(op) < len(symbols) {
		return symbols[op]
	}
	return '?'
}

func (op Op) String() string {
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

// Fusable reports whether consecutive copies of op may be merged into one
// counted instruction. Only cell arithmetic and pointer movement qualify.
func (op Op) Fusable() bool {
	switch op {
	case Increment, Decrement, MoveRight, MoveLeft:
		return true
	}
	return false
}

// Fused is an Op paired with a repeat count (always >= 1).
type Fused struct {
	Op    Op
	Count int
}

func (f Fused) String() string {
	if f.Count == 1 {
		return f.Op.String()
	}
	return fmt.Sprintf("%s x%d", f.Op, f.Count)
}
