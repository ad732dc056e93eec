// sdfc compiles signed-distance-field scene descriptions to WGSL
// shader fragments, or runs them interactively in a REPL.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/docopt/docopt-go"
	"github.com/mattn/go-isatty"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/peterh/liner"

	sdflang "github.com/pollrobots/sdflang"
)

const (
	appName     = "sdfc"
	historyFile = ".sdflang_history"
	promptMain  = "sdf> "
	promptCont  = "...> "
)

const usage = `sdfc - compile signed-distance-field scenes to WGSL.

Usage:
  sdfc compile <file> [--trace=<level>]
  sdfc repl [--trace=<level>]
  sdfc version
  sdfc -h | --help

Options:
  -h --help        Show this screen.
  --trace=<level>  Trace level [Debug|Info|Error] [default: Error].
`

var colorize = isatty.IsTerminal(os.Stderr.Fd())

func red(s string) string {
	if !colorize {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func green(s string) string {
	if !colorize {
		return s
	}
	return "\x1b[32m" + s + "\x1b[0m"
}

func blue(s string) string {
	if !colorize {
		return s
	}
	return "\x1b[94m" + s + "\x1b[0m"
}

func main() {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		os.Exit(2)
	}

	// set up logging
	gtrace.SyntaxTracer = gologadapter.New()
	level, _ := opts.String("--trace")
	tracing.Select("sdflang").SetTraceLevel(tracing.TraceLevelFromString(level))

	compile, _ := opts.Bool("compile")
	repl, _ := opts.Bool("repl")
	version, _ := opts.Bool("version")
	switch {
	case compile:
		file, _ := opts.String("<file>")
		os.Exit(cmdCompile(file))
	case repl:
		os.Exit(cmdRepl())
	case version:
		fmt.Printf("%s (built %s)\n", sdflang.Version, sdflang.BuildDate)
	}
}

// -----------------------------------------------------------------------------
// compile
// -----------------------------------------------------------------------------

func cmdCompile(file string) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	ip, err := sdflang.NewInterpreter()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}

	results := ip.CompileSource(string(src))
	failed := false
	for _, c := range results {
		if len(c.Errors) > 0 {
			failed = true
			for _, e := range c.Errors {
				fmt.Fprintln(os.Stderr, red(sdflang.RenderSnippet(string(src), e)))
			}
			continue
		}
		for _, line := range c.Prelude {
			fmt.Println(line)
		}
		fmt.Printf("// type: %s\n%s\n", c.Type, c.Code)
	}

	if deps := ip.Dependencies(); len(deps) > 0 {
		fmt.Printf("// requires: %s\n", strings.Join(deps, ", "))
	}
	for i, u := range ip.Uniforms() {
		fmt.Printf("// uniform %d: %s\n", i, u)
	}
	if failed {
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl() int {
	fmt.Printf("sdflang %s REPL\nCtrl+C cancels input, Ctrl+D exits.\n", sdflang.Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip, err := sdflang.NewInterpreter()
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}

		for _, c := range ip.CompileSource(code) {
			if len(c.Errors) > 0 {
				for _, e := range c.Errors {
					fmt.Fprintln(os.Stderr, red(sdflang.RenderSnippet(code, e)))
				}
				continue
			}
			for _, line := range c.Prelude {
				fmt.Println(green(line))
			}
			fmt.Printf("%s %s\n", green("["+c.Type.String()+"]"), blue(c.Code))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe collects lines until the buffer parses or fails with
// a real (not continuation) error.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if sdflang.IsIncomplete(src) {
			continue
		}
		return src, true
	}
}
