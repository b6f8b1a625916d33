// Command ftmlfmt parses a wikitext file (or stdin) and prints its rendered
// HTML or plain-text form to stdout. Grounded on the teacher's
// example/main.go minimal flag-based bootstrap: no CLI framework, just
// stdlib flag, matching the teacher's own choice not to reach for one.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dpotapov/ftml-go"
	"github.com/dpotapov/ftml-go/include"
	"github.com/dpotapov/ftml-go/render/html"
)

func main() {
	textMode := flag.Bool("text", false, "render as plain text instead of HTML")
	path := flag.String("file", "", "wikitext file to render (defaults to stdin)")
	flag.Parse()

	var raw []byte
	var err error
	if *path == "" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(*path)
	}
	if err != nil {
		log.Fatalf("ftmlfmt: read input: %v", err)
	}

	result, err := ftml.Parse(context.Background(), string(raw), ftml.PageInfo{}, ftml.Settings{}, include.NullIncluder{}, nil)
	if err != nil {
		log.Fatalf("ftmlfmt: parse: %v", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "ftmlfmt: warning: %s\n", w.Error())
	}

	if *textMode {
		fmt.Println(ftml.RenderText(result.Tree))
		return
	}

	out, err := ftml.RenderHTML(result.Tree, ftml.PageInfo{}, nil, html.Options{})
	if err != nil {
		log.Fatalf("ftmlfmt: render: %v", err)
	}
	fmt.Println(out.Body)
}
