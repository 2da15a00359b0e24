// cmd/exprc is a small command-line driver over the compilation pipeline,
// grounded on the teacher's cmd/sentra/main.go dispatch shape (command
// name plus aliases, help/version handled first) but reduced to the two
// operations this core actually exposes: compiling a projection or a
// filter from wire-encoded messages and reporting whether it built. The
// -dump-ir flag is passed through to the configuration; the driver does not
// print the resulting disassembly.
package main

import (
	"fmt"
	"os"

	"exprc/internal/cache"
	"exprc/internal/config"
	"exprc/internal/jit"
	"exprc/internal/registry"
	"exprc/internal/wire"

	_ "exprc/internal/intrinsics"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"p": "project",
	"f": "filter",
	"v": "version",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		usage()
	case "--version", "-v", "version":
		fmt.Println("exprc", version)
	case "project":
		runProject(args[1:])
	case "filter":
		runFilter(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "exprc: unrecognised command %q\n", cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println(`exprc: expression compiler and vectorised evaluator

Usage:
  exprc project <schema-file> <expressions-file> [-dump-ir]
  exprc filter  <schema-file> <condition-file>   [-dump-ir]
  exprc version

Schema, expressions, and condition files are wire-framed binary messages
(internal/wire); this driver only validates that they compile.`)
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == name {
			return true
		}
	}
	return false
}

func readFileOrExit(path string) []byte {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "exprc: %v\n", err)
		os.Exit(1)
	}
	return b
}

func runProject(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "exprc: project requires <schema-file> <expressions-file>")
		os.Exit(2)
	}
	cfg := config.Default()
	cfg.DumpIR = hasFlag(args, "-dump-ir")

	s, st := wire.DecodeSchema(readFileOrExit(args[0]))
	if st != nil {
		fmt.Fprintf(os.Stderr, "exprc: decode schema: %v\n", st)
		os.Exit(1)
	}
	exprs, st := wire.DecodeExpressions(readFileOrExit(args[1]))
	if st != nil {
		fmt.Fprintf(os.Stderr, "exprc: decode expressions: %v\n", st)
		os.Exit(1)
	}

	eng := jit.New(cfg, registry.Global)
	c := cache.New(64)
	p, st := c.Projector(s, exprs, cfg, eng)
	if st != nil {
		fmt.Fprintf(os.Stderr, "exprc: make: %v\n", st)
		os.Exit(1)
	}
	defer p.Release()
	fmt.Printf("compiled projector with %d output column(s); cache: %s\n", len(p.Outputs()), c.Stats())
}

func runFilter(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "exprc: filter requires <schema-file> <condition-file>")
		os.Exit(2)
	}
	cfg := config.Default()
	cfg.DumpIR = hasFlag(args, "-dump-ir")

	s, st := wire.DecodeSchema(readFileOrExit(args[0]))
	if st != nil {
		fmt.Fprintf(os.Stderr, "exprc: decode schema: %v\n", st)
		os.Exit(1)
	}
	cond, st := wire.DecodeCondition(readFileOrExit(args[1]))
	if st != nil {
		fmt.Fprintf(os.Stderr, "exprc: decode condition: %v\n", st)
		os.Exit(1)
	}

	eng := jit.New(cfg, registry.Global)
	c := cache.New(64)
	f, st := c.Filter(s, cond, cfg, eng)
	if st != nil {
		fmt.Fprintf(os.Stderr, "exprc: make: %v\n", st)
		os.Exit(1)
	}
	defer f.Release()
	fmt.Printf("compiled filter; cache: %s\n", c.Stats())
}
