package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestSymbolRoundTrip(t *testing.T) {
	for i, c := range Symbols {
		op, ok := OpFromSymbol(c)
		if !ok {
			t.Fatalf("OpFromSymbol(%q) not recognized", c)
		}
		if op != Op(i) {
			t.Errorf("OpFromSymbol(%q) = %v, want %v", c, op, Op(i))
		}
		if op.Symbol() != c {
			t.Errorf("%v.Symbol() = %q, want %q", op, op.Symbol(), c)
		}
	}
}

func TestUnknownSymbols(t *testing.T) {
	for _, c := range "abc 019\n\t*#!?" {
		if op, ok := OpFromSymbol(c); ok {
			t.Errorf("OpFromSymbol(%q) = %v, want not recognized", c, op)
		}
	}
}

func TestFusable(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{Increment, true},
		{Decrement, true},
		{MoveRight, true},
		{MoveLeft, true},
		{Output, false},
		{Input, false},
		{LoopStart, false},
		{LoopEnd, false},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := tt.op.Fusable(); got != tt.want {
				t.Errorf("Fusable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFusedString(t *testing.T) {
	if s := (Fused{Op: Increment, Count: 1}).String(); s != "INC" {
		t.Errorf("got %q, want INC", s)
	}
	if s := (Fused{Op: MoveLeft, Count: 4}).String(); s != "LEFT x4" {
		t.Errorf("got %q, want %q", s, "LEFT x4")
	}
}

func TestErrorsMatchSentinels(t *testing.T) {
	var err error = fmt.Errorf("run: %w", &SyntaxError{Kind: UnmatchedClose, Index: 2})
	if !errors.Is(err, ErrSyntax) {
		t.Error("wrapped SyntaxError should match ErrSyntax")
	}
	if errors.Is(err, ErrMemory) {
		t.Error("SyntaxError should not match ErrMemory")
	}
	var se *SyntaxError
	if !errors.As(err, &se) || se.Index != 2 {
		t.Errorf("errors.As failed or wrong index: %v", se)
	}

	err = fmt.Errorf("run: %w", &MemoryError{Pointer: -1, Size: 10})
	if !errors.Is(err, ErrMemory) {
		t.Error("wrapped MemoryError should match ErrMemory")
	}
	var me *MemoryError
	if !errors.As(err, &me) || me.Pointer != -1 {
		t.Errorf("errors.As failed or wrong pointer: %v", me)
	}
}

func TestSyntaxErrorMessage(t *testing.T) {
	e := &SyntaxError{Kind: UnmatchedOpen, Index: 0, Line: 1, Column: 1}
	want := "unmatched opening bracket '[' at position 0 (line 1, column 1)"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}
	e = &SyntaxError{Kind: UnmatchedClose, Index: 3}
	want = "unmatched closing bracket ']' at position 3"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}
}
