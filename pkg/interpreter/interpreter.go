// Package interpreter provides the bfvm execution engine.
// It owns the memory tape, the data pointer and the instruction pointer.
package interpreter

import (
	"io"
	"slices"

	"github.com/tliron/commonlog"

	"github.com/bfvm/bfvm/pkg/config"
	"github.com/bfvm/bfvm/pkg/optimizer"
	"github.com/bfvm/bfvm/pkg/parser"
	"github.com/bfvm/bfvm/pkg/types"
)

// State is the engine's run state.
type State int

const (
	Running State = iota
	Halted
)

func (s State) String() string {
	if s == Halted {
		return "halted"
	}
	return "running"
}

// Interpreter executes tape programs. It is not safe for concurrent use;
// run one Interpreter per goroutine.
type Interpreter struct {
	cfg      config.Config
	optimize bool

	// Tape and pointers
	memory []int8
	dp     int
	ip     int
	state  State
	steps  int

	// Program from the last Execute
	ops        []types.Op
	jumps      *parser.JumpTable
	fused      []types.Fused
	fusedJumps *parser.JumpTable

	in  io.Reader
	out io.Writer
	buf [1]byte

	log commonlog.Logger
}

// New creates an Interpreter reading from in and writing to out. A nil in
// reads as end of input; a nil out discards output.
func New(cfg config.Config, in io.Reader, out io.Writer) (*Interpreter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}
	i := &Interpreter{
		cfg:      cfg,
		optimize: cfg.Optimize,
		memory:   make([]int8, cfg.MemorySize),
		in:       in,
		out:      out,
		log:      commonlog.GetLogger("bfvm.interpreter"),
	}
	i.Reset()
	return i, nil
}

// Execute tokenizes, validates and runs source to completion. Syntax errors
// are reported before the tape is touched. A *types.MemoryError aborts the
// run and leaves the tape as it was at the fault.
func (i *Interpreter) Execute(source string) error {
	ops, err := parser.Tokenize(source)
	if err != nil {
		return err
	}
	jumps, err := parser.BuildJumpTable(ops)
	if err != nil {
		return err
	}

	i.ops, i.jumps = ops, jumps
	i.fused, i.fusedJumps = nil, nil
	if i.optimize {
		i.fused = optimizer.Optimize(ops)
		if i.fusedJumps, err = parser.BuildJumpTable(optimizer.Ops(i.fused)); err != nil {
			return err
		}
	}

	i.Reset()
	if i.cfg.Debug {
		i.log.Debugf("program: %d instructions, %d loops, optimized=%v (%d fused)",
			len(ops), jumps.Pairs(), i.optimize, len(i.fused))
	}

	if i.optimize {
		err = i.runOptimized()
	} else {
		err = i.runNaive()
	}

	if i.cfg.Debug {
		if err != nil {
			i.log.Debugf("run aborted after %d steps at ip=%d: %s", i.steps, i.ip, err)
		} else {
			i.log.Debugf("run halted after %d steps, dp=%d", i.steps, i.dp)
		}
	}
	return err
}

// Reset zeroes the tape and both pointers. The last program is kept.
func (i *Interpreter) Reset() {
	clear(i.memory)
	i.dp = 0
	i.ip = 0
	i.steps = 0
	i.state = Running
}

// SetOptimizationEnabled selects the dispatch strategy for later runs.
func (i *Interpreter) SetOptimizationEnabled(enabled bool) {
	i.optimize = enabled
}

// OptimizationEnabled reports the current dispatch strategy.
func (i *Interpreter) OptimizationEnabled() bool {
	return i.optimize
}

// Memory returns a copy of the tape.
func (i *Interpreter) Memory() []int8 {
	return slices.Clone(i.memory)
}

// DataPointer returns the current data pointer. After a MemoryError it
// holds the out-of-range value that caused the fault.
func (i *Interpreter) DataPointer() int {
	return i.dp
}

// State returns Halted once the last run reached the end of its program.
func (i *Interpreter) State() State {
	return i.state
}

// Steps returns the number of instructions dispatched by the last run.
// Fused instructions count once.
func (i *Interpreter) Steps() int {
	return i.steps
}

// Config returns the settings the engine was built with.
func (i *Interpreter) Config() config.Config {
	return i.cfg
}

// Program returns the fused form of the last executed program. When the
// last run was naive the program is fused on demand.
func (i *Interpreter) Program() []types.Fused {
	if i.fused != nil {
		return slices.Clone(i.fused)
	}
	return optimizer.Optimize(i.ops)
}
