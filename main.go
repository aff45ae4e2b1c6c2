// Command elementvm compiles and runs MFM-style cellular-automaton
// element programs.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/mfmvm/elementvm/config"
	"github.com/mfmvm/elementvm/encoder"
	"github.com/mfmvm/elementvm/loader"
	"github.com/mfmvm/elementvm/parser"
	"github.com/mfmvm/elementvm/tools"
	"github.com/mfmvm/elementvm/tracetui"
	"github.com/mfmvm/elementvm/traceserver"
	"github.com/mfmvm/elementvm/vm"
)

const (
	exitParseError   = 2
	exitResolveError = 3
	exitEncodeError  = 4
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compile":
		runCompile(os.Args[2:])
	case "run":
		runRun(os.Args[2:])
	case "disasm":
		runDisasm(os.Args[2:])
	case "lint":
		runLint(os.Args[2:])
	case "xref":
		runXref(os.Args[2:])
	case "trace":
		runTrace(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: elementvm <compile|run|disasm|lint|xref|trace|serve> [flags] <file>")
}

// loadBytecode reads and decodes a compiled program, exiting the
// process on any failure (shared by every subcommand that operates on
// an already-compiled .mfmb file).
func loadBytecode(path string) *vm.Program {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI-provided path
	if err != nil {
		fmt.Fprintf(os.Stderr, "read: %v\n", err)
		os.Exit(1)
	}
	prog, err := loader.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}
	return prog
}

func runDisasm(args []string) {
	fs := flag.NewFlagSet("disasm", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "disasm: missing bytecode file")
		os.Exit(1)
	}
	fmt.Print(vm.Disassemble(loadBytecode(fs.Arg(0))))
}

func runLint(args []string) {
	fs := flag.NewFlagSet("lint", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "lint: missing bytecode file")
		os.Exit(1)
	}
	findings := tools.Lint(loadBytecode(fs.Arg(0)))
	for _, f := range findings {
		fmt.Println(f.String())
	}
	if len(findings) > 0 {
		os.Exit(1)
	}
}

func runXref(args []string) {
	fs := flag.NewFlagSet("xref", flag.ExitOnError)
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "xref: missing bytecode file")
		os.Exit(1)
	}
	prog := loadBytecode(fs.Arg(0))
	fmt.Println("fields:")
	fmt.Print(tools.FormatXref(tools.FieldXref(prog)))
	fmt.Println("labels:")
	fmt.Print(tools.FormatXref(tools.LabelXref(prog)))
}

// runTrace runs a program to completion with tracing enabled, then
// opens the terminal trace viewer over the recorded steps.
func runTrace(args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	budget := fs.Int("budget", 0, "instruction budget override (0: use config default)")
	seed := fs.Int64("seed", 1, "RNG seed")
	maxRecords := fs.Int("max-records", 0, "cap on retained trace records (0: unbounded)")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "trace: missing bytecode file")
		os.Exit(1)
	}

	prog := loadBytecode(fs.Arg(0))
	cfg, _ := config.Load()
	b := *budget
	if b == 0 {
		b = int(cfg.Execution.InstructionBudget)
	}

	window := vm.NewSimpleWindow()
	window.Set(0, vm.NewAtom(prog.SelfTypeNum, vm.ZeroValue))
	machine := vm.NewVM(prog, window, vm.NewRegisterSet(), vm.NewRNG(*seed), b)
	machine.Trace = vm.NewTrace(*maxRecords)
	result := machine.Run()

	fmt.Printf("state=%s steps=%d\n", result.State, result.Steps)
	if err := tracetui.NewViewer(prog, machine.Trace).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "trace: viewer: %v\n", err)
		os.Exit(1)
	}
}

// runServe runs a program to completion with tracing on, hands each
// recorded step to the websocket broadcaster, then serves /ws and the
// recorded trace as JSON at /trace.json. The steps are published before
// the server starts listening, so no websocket client receives them;
// /trace.json is where the trace can be fetched.
func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "listen address (default: config trace_server.listen_addr)")
	seed := fs.Int64("seed", 1, "RNG seed")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "serve: missing bytecode file")
		os.Exit(1)
	}

	prog := loadBytecode(fs.Arg(0))
	cfg, _ := config.Load()
	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = cfg.TraceServer.ListenAddr
	}

	broadcaster := traceserver.NewBroadcaster()
	http.Handle("/ws", broadcaster)

	window := vm.NewSimpleWindow()
	window.Set(0, vm.NewAtom(prog.SelfTypeNum, vm.ZeroValue))
	machine := vm.NewVM(prog, window, vm.NewRegisterSet(), vm.NewRNG(*seed), int(cfg.Execution.InstructionBudget))
	machine.Trace = vm.NewTrace(0)
	result := machine.Run()
	for _, rec := range machine.Trace.Records {
		broadcaster.Publish(rec)
	}

	http.HandleFunc("/trace.json", func(w http.ResponseWriter, r *http.Request) {
		data, err := traceserver.MarshalTrace(machine.Trace)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	})

	fmt.Printf("state=%s steps=%d, serving on %s\n", result.State, result.Steps, listenAddr)
	if err := http.ListenAndServe(listenAddr, nil); err != nil { // #nosec G114 -- dev trace server, not internet-facing
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
}

func runCompile(args []string) {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	out := fs.String("o", "", "output bytecode file (default: <input>.mfmb)")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "compile: missing source file")
		os.Exit(1)
	}
	src, err := os.ReadFile(fs.Arg(0)) // #nosec G304 -- CLI-provided path
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
		os.Exit(1)
	}

	mod, errs := parser.Parse(fs.Arg(0), string(src))
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		os.Exit(exitParseError)
	}

	prog, errs := encoder.Resolve(mod)
	if errs.HasErrors() {
		fmt.Fprint(os.Stderr, errs.Error())
		os.Exit(exitResolveError)
	}

	data, err := encoder.Encode(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(exitEncodeError)
	}

	outPath := *out
	if outPath == "" {
		outPath = fs.Arg(0) + ".mfmb"
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil { // #nosec G306 -- bytecode output, not secret
		fmt.Fprintf(os.Stderr, "compile: writing %s: %v\n", outPath, err)
		os.Exit(1)
	}
}

func runRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	budget := fs.Int("budget", 0, "instruction budget override (0: use config default)")
	seed := fs.Int64("seed", 1, "RNG seed")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "run: missing bytecode file")
		os.Exit(1)
	}
	data, err := os.ReadFile(fs.Arg(0)) // #nosec G304 -- CLI-provided path
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}

	prog, err := loader.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}

	cfg, _ := config.Load()
	if cfg.Physics.BuildTag != "" {
		phys := loader.NewPhysics(cfg.Physics.BuildTag)
		if err := loader.BindPhysics(prog, phys); err != nil {
			if cfg.Physics.StrictBuildTag {
				fmt.Fprintf(os.Stderr, "run: %v\n", err)
				os.Exit(1)
			}
			fmt.Fprintf(os.Stderr, "run: warning: %v\n", err)
		}
	}

	b := *budget
	if b == 0 {
		b = int(cfg.Execution.InstructionBudget)
	}

	window := vm.NewSimpleWindow()
	window.Set(0, vm.NewAtom(prog.SelfTypeNum, vm.ZeroValue))
	regs := vm.NewRegisterSet()
	rng := vm.NewRNG(*seed)

	machine := vm.NewVM(prog, window, regs, rng, b)
	result := machine.Run()

	fmt.Printf("state=%s steps=%d\n", result.State, result.Steps)
	if result.Fault != nil {
		fmt.Printf("fault: %s\n", result.Fault.Error())
		os.Exit(1)
	}
}
