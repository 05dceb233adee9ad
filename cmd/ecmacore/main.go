package main

import (
	"bufio"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"ecmacore/pkg/config"
	"ecmacore/pkg/driver"
	"ecmacore/pkg/errors"
	"ecmacore/pkg/vm"
)

const usage = `Usage: ecmacore [options] [command [args...]]

Commands:
  get <path>              evaluate a property path, e.g. Math.PI
  call <path> [args...]   call a routine, e.g. call Math.max 1 2
  describe [name...]      show built-in tables and what is instantiated
  stats                   show heap statistics
  recognize <name...>     look names up in the magic-string table

Without a command, commands are read from standard input.

Options:
`

func main() {
	configFlag := flag.String("config", "", "Configuration file (default: nearest ecmacore.toml)")
	envFlag := flag.String("env", ".env", "Environment file loaded before reading ECMACORE_* overrides")
	formatFlag := flag.String("format", "text", "Output format: text, yaml or cbor")
	strictFlag := flag.Bool("strict", false, "Panic on invariant violations")
	verboseFlag := flag.Int("v", 0, "Log verbosity (overrides the configuration when non-zero)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	out, err := newPrinter(os.Stdout, *formatFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(64) // Exit code 64: command line usage error
	}

	cfg, err := loadConfig(*configFlag, *envFlag)
	if err != nil {
		reportError(err)
		os.Exit(78) // Exit code 78: configuration error
	}
	if *strictFlag {
		cfg.Engine.Strict = true
	}
	if *verboseFlag != 0 {
		cfg.Log.Verbosity = *verboseFlag
	}
	configureLogging(cfg)

	engine, err := driver.New(cfg)
	if err != nil {
		reportError(err)
		os.Exit(70) // Exit code 70: internal software error
	}

	ok := true
	if flag.NArg() > 0 {
		ok = runCommand(engine, out, flag.Args())
	} else {
		ok = runRepl(engine, out, os.Stdin)
	}

	if err := engine.Close(); err != nil {
		reportError(err)
		ok = false
	}
	if !ok {
		os.Exit(70)
	}
}

// loadConfig reads the configuration file, then the .env file, then the
// ECMACORE_* variables.
func loadConfig(path, envFile string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}

	if envFile != "" {
		// godotenv does not override variables that are already set.
		if err := godotenv.Load(envFile); err != nil && !stderrors.Is(err, os.ErrNotExist) {
			return nil, (&errors.ConfigError{Path: envFile, Msg: "cannot load environment file"}).CausedBy(err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configureLogging(cfg *config.Config) {
	var path *string
	if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, path)
}

func reportError(err error) {
	var engineErrs []errors.EngineError
	for _, e := range flatten(err) {
		var ee errors.EngineError
		if stderrors.As(e, &ee) {
			engineErrs = append(engineErrs, ee)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", e)
		}
	}
	errors.DisplayErrors(os.Stderr, engineErrs)
}

// flatten splits errors joined with errors.Join.
func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// runCommand executes one command line. It reports whether it succeeded.
func runCommand(e *driver.Engine, out *printer, args []string) bool {
	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "get":
		if len(rest) != 1 {
			err = fmt.Errorf("usage: get <path>")
			break
		}
		err = cmdGet(e, out, rest[0])
	case "call":
		if len(rest) < 1 {
			err = fmt.Errorf("usage: call <path> [args...]")
			break
		}
		err = cmdCall(e, out, rest[0], rest[1:])
	case "describe":
		err = cmdDescribe(e, out, rest)
	case "stats":
		err = out.stats(e.Stats())
	case "recognize":
		err = out.recognize(rest)
	case "help":
		fmt.Fprint(out.w, usage)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		reportError(err)
		return false
	}
	return true
}

func cmdGet(e *driver.Engine, out *printer, path string) error {
	v, err := e.Get(path)
	if err != nil {
		return err
	}
	defer v.Free()
	return out.value(v)
}

func cmdCall(e *driver.Engine, out *printer, path string, rawArgs []string) error {
	args := make([]vm.Value, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = driver.ParseValue(a)
	}
	defer func() {
		for _, a := range args {
			a.Free()
		}
	}()
	v, err := e.Call(path, args...)
	if err != nil {
		return err
	}
	defer v.Free()
	return out.value(v)
}

func cmdDescribe(e *driver.Engine, out *printer, names []string) error {
	if len(names) == 0 {
		return out.builtins(e.Builtins())
	}
	var states []*driver.BuiltinState
	for _, name := range names {
		st, err := e.Describe(name)
		if err != nil {
			return err
		}
		states = append(states, st)
	}
	return out.builtins(states)
}

// runRepl reads commands line by line until EOF or "quit".
func runRepl(e *driver.Engine, out *printer, in io.Reader) bool {
	interactive := out.tty && in == os.Stdin
	scanner := bufio.NewScanner(in)
	ok := true
	for {
		if interactive {
			fmt.Fprint(out.w, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if !runCommand(e, out, strings.Fields(line)) {
			ok = false
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		return false
	}
	return ok
}
