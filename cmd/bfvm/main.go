// bfvm - a virtual machine for the eight-symbol tape language
// Runs programs from a file, the command line, or an interactive shell
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/kutil/util"

	"github.com/bfvm/bfvm/pkg/config"
	"github.com/bfvm/bfvm/pkg/interpreter"
	"github.com/bfvm/bfvm/pkg/optimizer"
	"github.com/bfvm/bfvm/pkg/parser"
	"github.com/bfvm/bfvm/pkg/types"

	_ "github.com/tliron/commonlog/simple"
)

// Prints "HI"
const demoProgram = "++++++++[>+++++++++<-]>.+."

var (
	flagCode        string
	flagMemory      int
	flagDebug       bool
	flagNoOptimize  bool
	flagInteractive bool
	flagConfig      = flag.String("config", "", "Path to "+config.FileName+" (default: search upward from the working directory)")
	flagDisasm      = flag.Bool("disasm", false, "Print the optimized program listing instead of running it")
	flagTimeout     = flag.Duration("timeout", 0, "Abort a run that takes longer than this (0 = no limit)")
	flagQuiet       = flag.Bool("quiet", false, "Quiet mode (no banner)")
)

func init() {
	for _, name := range []string{"c", "code"} {
		flag.StringVar(&flagCode, name, "", "Execute code directly")
	}
	for _, name := range []string{"m", "memory"} {
		flag.IntVar(&flagMemory, name, config.DefaultMemorySize, "Set memory size in cells")
	}
	for _, name := range []string{"d", "debug"} {
		flag.BoolVar(&flagDebug, name, false, "Enable debug mode (trace every instruction)")
	}
	for _, name := range []string{"n", "no-optimize"} {
		flag.BoolVar(&flagNoOptimize, name, false, "Disable code optimization")
	}
	for _, name := range []string{"i", "interactive"} {
		flag.BoolVar(&flagInteractive, name, false, "Run in interactive mode")
	}
}

var log = commonlog.GetLogger("bfvm")

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		util.Exit(1)
	}

	// The simple backend buffers stderr; only util.Exit flushes it.
	verbosity := -4
	if cfg.Debug {
		verbosity = 4
	}
	commonlog.Configure(verbosity, nil)
	log = commonlog.GetLogger("bfvm")

	stdin := bufio.NewReader(os.Stdin)
	interp, err := interpreter.New(cfg, stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		util.Exit(1)
	}
	log.Debugf("config: memory=%d optimize=%v debug=%v", cfg.MemorySize, cfg.Optimize, cfg.Debug)

	args := flag.Args()
	switch {
	case flagInteractive:
		runREPL(interp, stdin)

	case flagCode != "":
		if err := runSource(interp, flagCode, "<code>"); err != nil {
			fail(err)
		}

	case len(args) > 0:
		for _, filename := range args {
			if err := runFile(interp, filename); err != nil {
				fail(err)
			}
		}

	default:
		fmt.Println("Running default example program (outputs 'HI'):")
		if err := runSource(interp, demoProgram, "<demo>"); err != nil {
			fail(err)
		}
		fmt.Println("\n\nUse -help to see available options.")
	}

	util.Exit(0)
}

// loadConfig layers defaults, the config file and explicitly set flags.
func loadConfig() (config.Config, error) {
	var (
		cfg  config.Config
		path string
		err  error
	)
	if *flagConfig != "" {
		path = *flagConfig
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.FindAndLoad(".")
	}
	if err != nil {
		return config.Config{}, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m", "memory":
			cfg.MemorySize = flagMemory
		case "d", "debug":
			cfg.Debug = flagDebug
		case "n", "no-optimize":
			cfg.Optimize = !flagNoOptimize
		}
	})

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	if path != "" && cfg.Debug {
		fmt.Fprintf(os.Stderr, "Using config %s\n", path)
	}
	return cfg, nil
}

func runFile(interp *interpreter.Interpreter, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	return runSource(interp, string(data), filename)
}

func runSource(interp *interpreter.Interpreter, source, filename string) error {
	if *flagDisasm {
		ops, err := parser.Tokenize(source)
		if err != nil {
			return fmt.Errorf("syntax error in %s: %w", filename, err)
		}
		fmt.Print(optimizer.Disassemble(optimizer.Optimize(ops)))
		return nil
	}

	if err := execute(interp, source); err != nil {
		var se *types.SyntaxError
		if errors.As(err, &se) {
			showSourceContext(source, se)
			return fmt.Errorf("syntax error in %s: %w", filename, err)
		}
		return fmt.Errorf("runtime error in %s: %w", filename, err)
	}
	return nil
}

// execute runs source, enforcing -timeout with a watchdog. The engine
// cannot be interrupted, so an overrun ends the process.
func execute(interp *interpreter.Interpreter, source string) error {
	if *flagTimeout <= 0 {
		return interp.Execute(source)
	}

	done := make(chan error, 1)
	go func() {
		done <- interp.Execute(source)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(*flagTimeout):
		fmt.Fprintf(os.Stderr, "\nError: run exceeded %s\n", *flagTimeout)
		util.Exit(3)
	}
	return nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	log.Errorf("%+v", err)
	util.Exit(1)
}

// showSourceContext prints the offending source line with a caret under
// the bracket, when the error carries a position.
func showSourceContext(source string, se *types.SyntaxError) {
	if se.Line <= 0 {
		return
	}
	lines := strings.Split(source, "\n")
	if se.Line > len(lines) {
		return
	}
	line := strings.TrimRight(lines[se.Line-1], "\r")
	fmt.Fprintf(os.Stderr, "  %s\n  %s^\n", line, strings.Repeat(" ", max(se.Column-1, 0)))
}

func runREPL(interp *interpreter.Interpreter, reader *bufio.Reader) {
	if !*flagQuiet {
		printBanner()
	}

	var pending strings.Builder
	depth := 0

	for {
		if pending.Len() == 0 {
			fmt.Print("> ")
		} else {
			fmt.Print("... ")
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if pending.Len() == 0 && handleCommand(interp, line) {
			continue
		}

		depth += strings.Count(line, "[") - strings.Count(line, "]")
		pending.WriteString(line)
		pending.WriteByte('\n')

		// An open '[' keeps collecting lines.
		if depth > 0 {
			continue
		}
		if source := pending.String(); strings.TrimSpace(source) != "" {
			executeREPL(interp, source)
		}
		pending.Reset()
		depth = 0
	}
}

func handleCommand(interp *interpreter.Interpreter, line string) bool {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return true

	case strings.EqualFold(trimmed, "help"):
		printHelp()
		return true

	case strings.EqualFold(trimmed, "exit") || strings.EqualFold(trimmed, "quit"):
		fmt.Println("Goodbye!")
		util.Exit(0)

	case trimmed == "memory":
		printMemory(interp)
		return true

	case trimmed == "reset":
		interp.Reset()
		fmt.Println("Interpreter state reset")
		return true

	case trimmed == "dump":
		fmt.Print(optimizer.Disassemble(interp.Program()))
		return true

	case trimmed == "optimize":
		interp.SetOptimizationEnabled(!interp.OptimizationEnabled())
		fmt.Printf("Optimization: %v\n", interp.OptimizationEnabled())
		return true

	case strings.HasPrefix(trimmed, "load "):
		filename := strings.TrimSpace(strings.TrimPrefix(trimmed, "load "))
		if filename == "" {
			fmt.Println("Usage: load <filename>")
			return true
		}
		fmt.Printf("Executing file: %s\n", filename)
		if err := runFile(interp, filename); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		fmt.Println()
		return true
	}

	return false
}

func executeREPL(interp *interpreter.Interpreter, source string) {
	if err := runSource(interp, source, "<repl>"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Println()

	if interp.Config().Debug {
		fmt.Printf("  Steps: %d  Pointer: %d\n", interp.Steps(), interp.DataPointer())
	}
}

func printMemory(interp *interpreter.Interpreter) {
	memory := interp.Memory()
	fmt.Printf("Data pointer: %d\n", interp.DataPointer())
	fmt.Printf("Memory size: %d cells\n", len(memory))
	fmt.Println("First 10 memory cells:")
	for i := 0; i < min(10, len(memory)); i++ {
		c := byte(memory[i])
		ascii := "."
		if c >= 0x20 && c < 0x7F {
			ascii = string(rune(c))
		}
		fmt.Printf("Cell %d: %d (ASCII: %s)\n", i, memory[i], ascii)
	}
}

func printBanner() {
	fmt.Print(`
╔═══════════════════════════════════════════════════════════╗
║  bfvm - Interactive Mode                                  ║
║  Eight symbols, one tape: + - > < . , [ ]                 ║
╠═══════════════════════════════════════════════════════════╣
║  Type 'help' for commands, 'exit' to quit                 ║
╚═══════════════════════════════════════════════════════════╝
`)
}

func printHelp() {
	fmt.Print(`
Available commands:
  exit, quit       Exit the interpreter
  help             Show this help message
  load <file>      Load and execute a file
  memory           Display memory info
  reset            Reset the interpreter state
  dump             List the last program after optimization
  optimize         Toggle the optimizer

Any other input is executed as a program. A line with an unclosed '['
continues on the next line.

Language:
  + -              Increment / decrement the current cell
  > <              Move the data pointer right / left
  . ,              Output / input one byte
  [ ]              Loop while the current cell is nonzero
`)
}

func usage() {
	fmt.Fprintf(os.Stderr, `bfvm - tape language virtual machine
Usage: bfvm [options] [file...]

Options:
  -h, -help            Show this help message
  -c, -code <code>     Execute code directly
  -m, -memory <size>   Set memory size (default: %d)
  -d, -debug           Enable debug mode
  -n, -no-optimize     Disable code optimization
  -i, -interactive     Run in interactive mode
  -config <path>       Load settings from a %s file
  -disasm              Print the optimized program instead of running it
  -timeout <duration>  Abort a run that takes longer than this
  -quiet               No banner in interactive mode

Examples:
  bfvm program.b
  bfvm -c "%s"
  bfvm -i
`, config.DefaultMemorySize, config.FileName, demoProgram)
}
