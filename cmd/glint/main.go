// Command glint runs a glint source file or drops into a minimal
// line-at-a-time REPL when invoked with no file argument.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/glintlang/glint/internal/evaluator"
	"github.com/glintlang/glint/internal/interp"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-debug] [-config path] [-no-adaptive] [script]\n", os.Args[0])
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("GLINT_DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	var (
		scriptPath string
		configPath string
		debugMode  bool
		noAdaptive bool
	)

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "-debug" || arg == "--debug":
			debugMode = true
		case arg == "-no-adaptive" || arg == "--no-adaptive":
			noAdaptive = true
		case arg == "-config" || arg == "--config":
			i++
			if i >= len(args) {
				usage()
				os.Exit(2)
			}
			configPath = args[i]
		case arg == "-h" || arg == "-help" || arg == "--help":
			usage()
			return
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", arg)
			usage()
			os.Exit(2)
		default:
			scriptPath = arg
		}
	}

	cfg := interp.DefaultConfig()
	if configPath != "" {
		loaded, err := interp.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config %q: %s\n", configPath, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if debugMode {
		cfg.Debug = true
	}
	if noAdaptive {
		cfg.AdaptiveExecution = false
	}

	i := interp.New(cfg)

	if scriptPath == "" {
		runREPL(i)
		return
	}

	src, err := os.ReadFile(scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %q: %s\n", scriptPath, err)
		os.Exit(1)
	}
	i.Eval.CurrentFile = scriptPath

	if _, err := i.Run(string(src)); err != nil {
		if t, ok := err.(*evaluator.Throw); ok {
			os.Exit(exitCodeFor(t))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// exitCodeFor maps an uncaught throw's error category to a process
// exit status: 2 for syntax and semantic codes (1000-2999), 3 for
// type and runtime codes (3000-4999), 1 otherwise.
func exitCodeFor(t *evaluator.Throw) int {
	switch {
	case t.Info.Code >= 1000 && t.Info.Code < 3000:
		return 2
	case t.Info.Code >= 3000 && t.Info.Code < 5000:
		return 3
	default:
		return 1
	}
}

// runREPL evaluates one line at a time against a single persistent
// Interpreter, so bindings and imports accumulate across lines.
func runREPL(i *interp.Interpreter) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stdout, "glint REPL. Ctrl-D to exit.")
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(os.Stdout)
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		v, err := i.Run(line)
		if err != nil {
			continue // the console reporter already printed it
		}
		if v != nil {
			fmt.Fprintln(os.Stdout, v.String())
		}
	}
}
