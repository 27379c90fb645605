package types

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks against the typed errors below.
var (
	ErrSyntax = errors.New("syntax error")
	ErrMemory = errors.New("memory error")
)

// SyntaxKind says which bracket was left unmatched.
type SyntaxKind int

const (
	UnmatchedOpen SyntaxKind = iota
	UnmatchedClose
)

func (k SyntaxKind) String() string {
	switch k {
	case UnmatchedOpen:
		return "unmatched opening bracket '['"
	case UnmatchedClose:
		return "unmatched closing bracket ']'"
	default:
		return fmt.Sprintf("unknown syntax error %d", int(k))
	}
}

// SyntaxError reports unbalanced brackets. Index is the position in the
// filtered instruction sequence; Line and Column locate the bracket in the
// source text when known (zero otherwise).
type SyntaxError struct {
	Kind   SyntaxKind
	Index  int
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at position %d (line %d, column %d)", e.Kind, e.Index, e.Line, e.Column)
	}
	return fmt.Sprintf("%s at position %d", e.Kind, e.Index)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// MemoryError reports a data pointer outside the tape. Pointer holds the
// offending value, Size the tape length.
type MemoryError struct {
	Pointer int
	Size    int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("data pointer %d out of bounds [0, %d)", e.Pointer, e.Size)
}

func (e *MemoryError) Is(target error) bool { return target == ErrMemory }
