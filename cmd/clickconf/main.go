// Command clickconf parses a configuration file (or, with -repl, a
// sequence of statements typed interactively), expands it, and prints the
// resulting flat graph.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/ava12/clickconf/classes"
	"github.com/ava12/clickconf/diag"
	"github.com/ava12/clickconf/expand"
	"github.com/ava12/clickconf/parser"
	"github.com/ava12/clickconf/router"
)

const (
	historyFile = ".clickconf_history"
	promptMain  = "clickconf> "
)

func main() {
	repl := flag.Bool("repl", false, "read statements interactively instead of from a file")
	flag.Parse()

	if *repl {
		os.Exit(runRepl())
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: clickconf [-repl] config_file")
		os.Exit(1)
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	counter := &diag.Counter{}
	rt := compile(content, args[0], counter)
	printReport(counter)
	if rt != nil {
		printRouter(rt)
	}
	if !counter.OK() {
		os.Exit(1)
	}
}

func compile(content []byte, filename string, r diag.Reporter) *router.Memory {
	ct := classes.New()
	p, cookie := parser.BeginParse(content, filename, ct, r, nil, nil)
	defer p.EndParse(cookie)

	for p.ParseStatement() {
	}
	sink := router.NewMemory()
	expand.CreateRouter(p.Graph(), p.Classes(), p.Requirements(), r, sink)
	return sink
}

func printReport(c *diag.Counter) {
	for _, msg := range c.Messages {
		fmt.Println(msg.Message)
	}
	for _, e := range c.Errors {
		fmt.Fprintln(os.Stderr, e.Message)
	}
}

func printRouter(rt *router.Memory) {
	for i, el := range rt.Elements {
		fmt.Printf("%d: %s :: %s(%s)\n", i, el.Name, el.ClassName, el.Config)
	}
	for _, c := range rt.Connections {
		fmt.Printf("%d[%d] -> %d[%d]\n", c.FromID, c.FromPort, c.ToID, c.ToPort)
	}
	for _, w := range rt.Requirements {
		fmt.Printf("require(%s)\n", w)
	}
}

func runRepl() int {
	fmt.Println("clickconf REPL. Ctrl+D to finish a buffer and compile it, Ctrl+C to cancel.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

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

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	var buf strings.Builder
	for {
		line, err := ln.Prompt(promptMain)
		if err == liner.ErrPromptAborted {
			return 130
		}
		if err != nil {
			break
		}
		ln.AppendHistory(line)
		if strings.TrimSpace(line) == ":quit" {
			break
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	counter := &diag.Counter{}
	rt := compile([]byte(buf.String()), "<repl>", counter)
	printReport(counter)
	if rt != nil {
		printRouter(rt)
	}
	if !counter.OK() {
		return 1
	}
	return 0
}
