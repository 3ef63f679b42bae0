package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jiramark "github.com/TritonDataCenter/go-jiramark"
)

var (
	inputFlag   = flag.String("input", "", "read from file instead of stdin")
	outputFlag  = flag.String("output", "", "write to file instead of stdout")
	grammarFlag = flag.String("grammar", "", "parse with a grammar description file and print the tree")
	treeFlag    = flag.Bool("tree", false, "print the parse tree instead of HTML")
)

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "jiramark: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()

	in := io.Reader(os.Stdin)
	if *inputFlag != "" {
		f, err := os.Open(*inputFlag)
		if err != nil {
			fatal("%v", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		fatal("reading input: %v", err)
	}
	input := string(data)

	out := io.Writer(os.Stdout)
	if *outputFlag != "" {
		f, err := os.Create(*outputFlag)
		if err != nil {
			fatal("%v", err)
		}
		defer f.Close()
		out = f
	}

	var rendered string
	switch {
	case *grammarFlag != "":
		src, err := os.ReadFile(*grammarFlag)
		if err != nil {
			fatal("%v", err)
		}
		name := strings.TrimSuffix(filepath.Base(*grammarFlag), filepath.Ext(*grammarFlag))
		g, err := jiramark.Compile(name, string(src))
		if err != nil {
			fatal("%v", err)
		}
		node, err := g.Parse(input)
		if err != nil {
			fatal("%v", err)
		}
		rendered = jiramark.TreeString(node)

	case *treeFlag:
		node, err := jiramark.MarkupGrammar().Parse(input)
		if err != nil {
			fatal("%v", err)
		}
		rendered = jiramark.TreeString(node)

	default:
		rendered, err = jiramark.ToHTML(input, nil)
		if err != nil {
			fatal("%v", err)
		}
	}

	fmt.Fprintln(out, rendered)
}
