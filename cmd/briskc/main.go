// Package main implements the brisk compiler entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/compiler"
	"github.com/you-not-fish/brisk/internal/logger"
	"github.com/you-not-fish/brisk/internal/syntax"
)

// includeList collects repeated -include flags.
type includeList []string

func (l *includeList) String() string { return strings.Join(*l, ",") }

func (l *includeList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Compiler flags
var (
	output      = flag.String("o", "", "Output file (default: input with .bkc extension)")
	noHeader    = flag.Bool("no-header", false, "Hide the exported header")
	emitTokens  = flag.Bool("emit-tokens", false, "Output token stream")
	emitHeader  = flag.Bool("emit-header", false, "Output the exported header as JSON")
	interactive = flag.Bool("i", false, "Read a program interactively and check it")
	logLevel    = flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	logFormat   = flag.String("log-format", "text", "Log format (text or json)")
	logFile     = flag.String("log-file", "", "Append logs to this file")
	version     = flag.Bool("version", false, "Print version")

	includes includeList
)

func init() {
	flag.Var(&includes, "include", "Link against a compiled module or .json header (repeatable)")
}

// Version information
const Version = "0.1.0-dev"

const historyFile = ".brisk_history"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "brisk compiler %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: briskc [options] <file.bk>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Printf("briskc version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	closer, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	defer closer.Close()

	if *interactive {
		os.Exit(runInteractive())
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: no input file")
		fmt.Fprintln(os.Stderr, "usage: briskc [options] <file.bk>")
		os.Exit(1)
	}
	filename := args[0]

	if *emitTokens {
		os.Exit(runEmitTokens(filename))
	}
	if *emitHeader {
		os.Exit(runEmitHeader(filename))
	}
	os.Exit(runCompile(filename, *output))
}

func setupLogging() (io.Closer, error) {
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		return nil, err
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.Format = *logFormat
	cfg.LogFile = *logFile
	return logger.Init(cfg)
}

// config returns the compiler configuration for the command line, with
// the -include headers loaded.
func config() (*compiler.Config, error) {
	conf := &compiler.Config{
		HideHeader: *noHeader,
		Logger:     logger.Default(),
		Warn: func(pos syntax.Pos, msg string) {
			fmt.Fprintf(os.Stderr, "%s: warning: %s\n", pos, msg)
		},
	}
	for _, path := range includes {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "include")
		}
		h, err := bytecode.LoadHeader(path, data)
		if err != nil {
			return nil, errors.Wrap(err, "include")
		}
		conf.Includes = append(conf.Includes, h)
	}
	return conf, nil
}

// printError reports err on stderr. Internal compiler errors are printed
// with their stack trace when debug logging is on.
func printError(err error) {
	ie, ok := errors.Cause(err).(*compiler.InternalError)
	if ok && logger.Default().Enabled(context.Background(), slog.LevelDebug) {
		fmt.Fprintf(os.Stderr, "error: %+v\n", ie)
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}

// runCompile compiles filename to out, or next to the input if out is
// empty.
func runCompile(filename, out string) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	conf, err := config()
	if err != nil {
		printError(err)
		return 1
	}

	bin, err := compiler.Compile(filename, src, conf)
	if err != nil {
		logger.LogError(conf.Logger, "compile", filename, err.Error())
		printError(err)
		return 1
	}

	if out == "" {
		out = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".bkc"
	}
	if err := os.WriteFile(out, bin, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	logger.Info("wrote program", "file", out, "bytes", len(bin))
	return 0
}

// runEmitHeader checks filename and prints the header it exports.
func runEmitHeader(filename string) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	conf, err := config()
	if err != nil {
		printError(err)
		return 1
	}
	tree, err := syntax.Parse(filename, src)
	if err != nil {
		printError(err)
		return 1
	}
	p := compiler.NewProgram(tree, conf)
	if err := p.Prescan(); err != nil {
		printError(err)
		return 1
	}
	if err := p.Evaluate(); err != nil {
		printError(err)
		return 1
	}
	fmt.Println(p.Header())
	return 0
}

// runEmitTokens scans the input file and prints all tokens with positions.
func runEmitTokens(filename string) int {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var errs []string
	errh := func(line, col uint32, msg string) {
		errs = append(errs, fmt.Sprintf("%s:%d:%d: %s", filename, line, col, msg))
	}
	s := syntax.NewScanner(filename, src, errh)

	fmt.Printf("%-20s %-12s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-20s %-12s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 12), strings.Repeat("-", 20))
	for {
		s.Next()
		tok := s.Token()
		fmt.Printf("%-20s %-12s %q\n", s.Pos(), tok, s.Literal())
		if tok.IsEOF() {
			break
		}
	}

	if len(errs) > 0 {
		fmt.Println()
		fmt.Println("Errors:")
		for _, e := range errs {
			fmt.Printf("  %s\n", e)
		}
		return 1
	}
	return 0
}

// ----------------------------------------------------------------------------
// Interactive mode

// runInteractive reads programs from the terminal, one per blank-line
// terminated chunk, and reports whether each compiles.
func runInteractive() int {
	conf, err := config()
	if err != nil {
		printError(err)
		return 1
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Printf("brisk %s: enter a program, then an empty line to compile it; :quit exits\n", Version)
	for {
		src, ok := readProgram(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit":
			return 0
		}
		fmt.Println(check(src, conf))
	}
}

// readProgram reads lines until an empty one. It reports false at end of
// input or when the prompt is aborted.
func readProgram(ln *liner.State) (string, bool) {
	var b strings.Builder
	prompt := "brisk> "
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return "", false
		}
		if strings.TrimSpace(line) == "" || (b.Len() == 0 && strings.HasPrefix(line, ":")) {
			b.WriteString(line)
			return b.String(), true
		}
		ln.AppendHistory(line)
		b.WriteString(line)
		b.WriteByte('\n')
		prompt = "...    "
	}
}

// check compiles src and describes the outcome.
func check(src string, conf *compiler.Config) string {
	bin, err := compiler.Compile("<input>", []byte(src), conf)
	if err != nil {
		return "error: " + err.Error()
	}
	return fmt.Sprintf("ok: %d bytes", len(bin))
}
