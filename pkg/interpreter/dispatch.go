package interpreter

import (
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/bfvm/bfvm/pkg/parser"
	"github.com/bfvm/bfvm/pkg/types"
)

// runNaive dispatches the raw instruction sequence one op at a time.
func (i *Interpreter) runNaive() error {
	for i.ip < len(i.ops) {
		op := i.ops[i.ip]
		i.trace(op, 1)
		if err := i.exec(op, 1, i.jumps); err != nil {
			return err
		}
		i.ip++
		i.steps++
	}
	i.state = Halted
	return nil
}

// runOptimized dispatches the fused sequence. Loop targets come from the
// jump table built over the fused indices.
func (i *Interpreter) runOptimized() error {
	for i.ip < len(i.fused) {
		f := i.fused[i.ip]
		i.trace(f.Op, f.Count)
		if err := i.exec(f.Op, f.Count, i.fusedJumps); err != nil {
			return err
		}
		i.ip++
		i.steps++
	}
	i.state = Halted
	return nil
}

// exec applies op count times. A taken loop jump leaves ip on the matching
// bracket; the caller's increment then moves past it.
func (i *Interpreter) exec(op types.Op, count int, jumps *parser.JumpTable) error {
	switch op {
	case types.Increment:
		if err := i.checkPointer(); err != nil {
			return err
		}
		i.memory[i.dp] += int8(count)

	case types.Decrement:
		if err := i.checkPointer(); err != nil {
			return err
		}
		i.memory[i.dp] -= int8(count)

	// A fused move faults on the first cell past the edge, like the
	// equivalent run of single moves would.
	case types.MoveRight:
		i.dp += count
		if i.dp > len(i.memory) {
			i.dp = len(i.memory)
		}
		return i.checkPointer()

	case types.MoveLeft:
		i.dp -= count
		if i.dp < -1 {
			i.dp = -1
		}
		return i.checkPointer()

	case types.Output:
		if err := i.checkPointer(); err != nil {
			return err
		}
		i.buf[0] = byte(i.memory[i.dp])
		if _, err := i.out.Write(i.buf[:]); err != nil {
			return fmt.Errorf("output: %w", err)
		}

	case types.Input:
		if err := i.checkPointer(); err != nil {
			return err
		}
		i.memory[i.dp] = i.readByte()

	case types.LoopStart:
		if err := i.checkPointer(); err != nil {
			return err
		}
		if i.memory[i.dp] == 0 {
			if target := jumps.Forward(i.ip); target != parser.NoJump {
				i.ip = target
			}
		}

	case types.LoopEnd:
		if err := i.checkPointer(); err != nil {
			return err
		}
		if i.memory[i.dp] != 0 {
			if target := jumps.Backward(i.ip); target != parser.NoJump {
				i.ip = target
			}
		}
	}
	return nil
}

func (i *Interpreter) checkPointer() error {
	if i.dp < 0 || i.dp >= len(i.memory) {
		return &types.MemoryError{Pointer: i.dp, Size: len(i.memory)}
	}
	return nil
}

// readByte returns the next input byte, or 0 at end of input or on error.
func (i *Interpreter) readByte() int8 {
	if i.in == nil {
		return 0
	}
	if br, ok := i.in.(io.ByteReader); ok {
		b, err := br.ReadByte()
		if err != nil {
			return 0
		}
		return int8(b)
	}
	if _, err := io.ReadFull(i.in, i.buf[:]); err != nil {
		return 0
	}
	return int8(i.buf[0])
}

func (i *Interpreter) trace(op types.Op, count int) {
	if !i.cfg.Debug || !i.log.AllowLevel(commonlog.Debug) {
		return
	}
	var cell int8
	if i.dp >= 0 && i.dp < len(i.memory) {
		cell = i.memory[i.dp]
	}
	i.log.Debugf("ip=%04d %-6s x%-3d dp=%-5d cell=%d", i.ip, op, count, i.dp, cell)
}
