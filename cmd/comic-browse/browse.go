package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sternrassler/comic-catalog/pkg/catalog"
)

const helpText = "commands: n next, p previous, g <page> go to page, q quit"

// browser drives a Pager from line commands.
type browser struct {
	pager  *catalog.Pager
	in     *bufio.Scanner
	out    io.Writer
	styles styles
}

func newBrowser(pager *catalog.Pager, in io.Reader, out io.Writer) *browser {
	return &browser{
		pager:  pager,
		in:     bufio.NewScanner(in),
		out:    out,
		styles: newStyles(out),
	}
}

// run shows the current page and executes commands until q or end of input.
func (b *browser) run(ctx context.Context) error {
	b.show(b.pager.Load(ctx))

	for {
		fmt.Fprint(b.out, "> ")
		if !b.in.Scan() {
			fmt.Fprintln(b.out)
			return b.in.Err()
		}

		fields := strings.Fields(b.in.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "q", "quit":
			return nil
		case "n", "next":
			b.show(b.pager.Next(ctx))
		case "p", "prev":
			b.show(b.pager.Prev(ctx))
		case "g", "goto":
			page, err := parsePage(fields)
			if err != nil {
				fmt.Fprintln(b.out, err)
				continue
			}
			b.show(b.pager.Goto(ctx, page))
		default:
			fmt.Fprintln(b.out, helpText)
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// show renders the pager state after a navigation call. Load failures are part
// of the state and rendered as such.
func (b *browser) show(err error) {
	if errors.Is(err, catalog.ErrNavigationDisabled) {
		fmt.Fprintln(b.out, "that control is disabled")
		return
	}
	b.styles.renderView(b.out, catalog.NewView(b.pager.State()))
}

func parsePage(fields []string) (int, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("usage: g <page>")
	}
	page, err := strconv.Atoi(fields[1])
	if err != nil || page < 1 {
		return 0, fmt.Errorf("page must be a positive integer")
	}
	return page, nil
}
