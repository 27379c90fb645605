// Package parser turns bfvm source text into a validated instruction sequence
// and precomputes loop jump targets. Lexing uses Participle's simple lexer.
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/bfvm/bfvm/pkg/types"
)

// Any character outside the eight symbols is a comment.
var bfLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Command", Pattern: `[-+<>.,\[\]]`},
	{Name: "Comment", Pattern: `[^-+<>.,\[\]]+`},
})

var commandType = bfLexer.Symbols()["Command"]

// Program is a tokenized source: the instruction sequence and the source
// position of each instruction.
type Program struct {
	Ops       []types.Op
	Positions []lexer.Position
}

// Parse lexes source and validates bracket balance.
func Parse(source string) (*Program, error) {
	lex, err := bfLexer.LexString("", source)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}

	prog := &Program{
		Ops:       make([]types.Op, 0, len(tokens)),
		Positions: make([]lexer.Position, 0, len(tokens)),
	}
	depth := 0
	for _, tok := range tokens {
		if tok.EOF() || tok.Type != commandType {
			continue
		}
		op, ok := types.OpFromSymbol(rune(tok.Value[0]))
		if !ok {
			continue
		}
		idx := len(prog.Ops)
		prog.Ops = append(prog.Ops, op)
		prog.Positions = append(prog.Positions, tok.Pos)

		switch op {
		case types.LoopStart:
			depth++
		case types.LoopEnd:
			depth--
			if depth < 0 {
				return nil, prog.syntaxError(types.UnmatchedClose, idx)
			}
		}
	}
	if depth > 0 {
		return nil, prog.syntaxError(types.UnmatchedOpen, len(prog.Ops)-1)
	}
	return prog, nil
}

// Tokenize returns the instruction sequence for source, ignoring every
// character that is not one of the eight symbols.
func Tokenize(source string) ([]types.Op, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return prog.Ops, nil
}

func (p *Program) syntaxError(kind types.SyntaxKind, idx int) *types.SyntaxError {
	e := &types.SyntaxError{Kind: kind, Index: idx}
	if idx >= 0 && idx < len(p.Positions) {
		e.Line = p.Positions[idx].Line
		e.Column = p.Positions[idx].Column
	}
	return e
}
