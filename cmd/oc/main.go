package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oclang/oc"
)

const defaultWritePermission = 0644 // -rw-r--r--

type defineList []string

func (d *defineList) String() string { return strings.Join(*d, ",") }

func (d *defineList) Set(v string) error {
	*d = append(*d, v)
	return nil
}

type args struct {
	defines defineList

	traceLexer  *bool
	traceParser *bool
	reserved    *bool
	help        *bool
}

func readArgs() *args {
	a := &args{
		traceLexer:  flag.Bool("l", false, "Enable the lexer debug trace"),
		traceParser: flag.Bool("y", false, "Enable the parser debug trace"),

		// '@' is implementation reserved: accepted, ignored.
		reserved: flag.Bool("@", false, ""),

		help: flag.Bool("h", false, "Print usage and exit"),
	}
	flag.Var(&a.defines, "D", "Forward a definition to the preprocessor")
	flag.Usage = usage
	flag.Parse()
	return a
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-D <define>] [-ly@h] <source file>\n", os.Args[0])
}

func errprintf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s: ", os.Args[0])
	fmt.Fprintf(os.Stderr, format, args...)
}

func main() {
	os.Exit(run())
}

func run() int {
	a := readArgs()
	if *a.help {
		usage()
		return 0
	}
	if flag.NArg() == 0 {
		errprintf("no program file specified\n")
		return 1
	}
	if flag.NArg() > 1 {
		errprintf("multiple program files is not supported\n")
		return 1
	}

	infile := flag.Arg(0)
	if !strings.HasSuffix(infile, ".oc") {
		errprintf("file '%s' has a non-allowed file extension!\n", infile)
		return 1
	}
	base := strings.TrimSuffix(filepath.Base(infile), ".oc")

	if _, err := os.Stat(infile); err != nil {
		errprintf("could not open input file: %v\n", err)
		return 1
	}

	art, err := oc.Compile(infile, oc.CompileOptions{
		Defines:     a.defines,
		TraceLexer:  *a.traceLexer,
		TraceParser: *a.traceParser,
		Diagnostics: os.Stderr,
	})
	if err != nil {
		errprintf("%v\n", err)
		return 1
	}

	outputs := map[string]string{
		base + ".str": art.Strings,
		base + ".tok": art.Tokens,
		base + ".ast": art.AST,
		base + ".oil": art.OIL,
	}
	for name, content := range outputs {
		if err := os.WriteFile(name, []byte(content), defaultWritePermission); err != nil {
			errprintf("failed to write output file: %v\n", err)
			return 1
		}
	}
	fmt.Print(art.Symbols)

	if art.Errors > 0 {
		return 2
	}
	return 0
}
