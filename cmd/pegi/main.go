/*
Pegi starts an interactive pegrun engine session.

It loads a compiled grammar manifest and then repeatedly reads lines of
input text from the console, parsing each one against the grammar and
printing the resulting AST (or a caret-style parse error) to stdout. To exit
the interpreter, type "QUIT".

Usage:

	pegi [flags]

The flags are:

	-v, --version
		Give the current version of pegrun and then exit.

	-g, --grammar FILE
		Use the provided .pgm manifest file. Defaults to the file
		"grammar.pgm" in the current working directory.

	-d, --direct
		Force reading directly from stdin instead of going through GNU
		readline based routines for reading input even if launched in a tty
		with stdin and stdout.

	-c, --command INPUT
		Immediately parse the given input and print the result, then leave
		the interpreter open for further input.

	--no-eof-check
		Do not require the whole of each line to be consumed for a parse to
		be considered successful.

	--max-depth N
		Bound matchAutomaton call-stack depth to N. Zero (the default) means
		unlimited.

	--tree
		Print the full AST on a successful parse instead of just "OK".
*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/corvidlang/pegrun/internal/input"
	"github.com/corvidlang/pegrun/internal/peg"
	"github.com/corvidlang/pegrun/internal/pegfile"
	"github.com/corvidlang/pegrun/internal/pegfmt"
	"github.com/corvidlang/pegrun/internal/version"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue loading the grammar.
	ExitInitError

	// ExitIOError indicates an unsuccessful program execution due to a
	// problem reading input.
	ExitIOError
)

var (
	returnCode    int
	flagVersion   = pflag.BoolP("version", "v", false, "Gives the version info")
	grammarFile   = pflag.StringP("grammar", "g", "grammar.pgm", "The .pgm manifest that describes the compiled grammar to use")
	forceDirect   = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible")
	startInput    = pflag.StringP("command", "c", "", "Immediately parse the given input and leave the interpreter open")
	noEOFCheck    = pflag.Bool("no-eof-check", false, "Do not require the whole input to be consumed for a successful parse")
	maxDepth      = pflag.Int("max-depth", 0, "Bound matchAutomaton call-stack depth; 0 means unlimited")
	printFullTree = pflag.Bool("tree", false, "Print the full AST on a successful parse instead of just OK")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	manifest, err := pegfile.Load(*grammarFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	start, roles, names, err := manifest.Resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	automata, err := pegfile.LoadArtifact(manifest.ArtifactPath(*grammarFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	cfg := peg.DefaultConfig()
	cfg.EOFCheck = !*noEOFCheck
	cfg.MaxDepth = *maxDepth

	if *startInput != "" {
		runOne(automata, roles, names, cfg, start, *startInput)
	}

	var reader interface {
		ReadLine() (string, error)
		Close() error
	}

	isTTY := !*forceDirect && isTerminal()
	if isTTY {
		ilr, err := input.NewInteractiveReader("pegi> ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		reader = ilr
	} else {
		reader = input.NewDirectReader(os.Stdin)
	}
	defer reader.Close()

	for {
		line, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				return
			}
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitIOError
			return
		}

		if strings.EqualFold(strings.TrimSpace(line), "QUIT") {
			return
		}

		runOne(automata, roles, names, cfg, start, line)
	}
}

func runOne(automata []peg.Automaton, roles peg.TagRoles, names map[peg.TypeTag]string, cfg peg.Config, start int, line string) {
	in := peg.NewStringInput(line)
	eng := peg.New(automata, roles, names, cfg, in, nil)
	res := eng.Parse(start)

	if !res.OK() {
		fmt.Println(pegfmt.CaretError(line, res.Err))
		return
	}

	if *printFullTree {
		fmt.Println(pegfmt.Tree(res.AST, pegfmt.TreeOptions{Names: names}))
	} else {
		fmt.Println("OK")
	}
}

func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
