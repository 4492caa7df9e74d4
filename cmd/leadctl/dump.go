package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"leadscope_backend/internal/leads/loader"
	"leadscope_backend/internal/leads/render"

	"github.com/spf13/cobra"
)

// maxStalls bounds consecutive scrolls that load nothing, so a failing server
// ends the dump instead of spinning.
const maxStalls = 3

// dumpView is a fixed-height viewport kept scrolled to the end. Appended rows
// are written straight to out.
type dumpView struct {
	out    io.Writer
	height int
	count  int
	err    error
}

func (v *dumpView) Append(rows ...loader.Row) {
	for _, r := range rows {
		if v.err != nil {
			return
		}
		_, v.err = fmt.Fprintln(v.out, r.Content)
	}
	v.count += len(rows)
}

// DistanceToBottom is always zero: the view follows the last row.
func (v *dumpView) DistanceToBottom() int { return 0 }

func (v *dumpView) Underfilled() bool { return v.count < v.height }

// dumpAll scrolls until the list ends. It reports whether the end was reached.
func dumpAll(ctx context.Context, l *loader.Loader, view *dumpView) (bool, error) {
	l.Mount(ctx)
	stalls := 0
	for l.HasMore() && stalls < maxStalls {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		before := l.CurrentPage()
		l.OnScroll(ctx)
		if view.err != nil {
			return false, view.err
		}
		if l.CurrentPage() == before && l.HasMore() {
			stalls++
			continue
		}
		stalls = 0
	}
	return !l.HasMore(), view.err
}

func runDump(cmd *cobra.Command, _ []string) error {
	if err := requireToken(); err != nil {
		return err
	}
	log, closeLog, err := openLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	client, err := loader.NewPageClient(dashboardURL(baseURL, search, platform, sortBy), token)
	if err != nil {
		return err
	}
	renderer := render.NewTerminal(render.Printer(terminalLocale()))

	start := page
	if start < 1 {
		start = 1
	}
	rows, first, err := preload(ctx, client, renderer, start)
	if err != nil {
		return err
	}

	height := dumpHeight
	if height < 1 {
		height = 1
	}
	view := &dumpView{out: cmd.OutOrStdout(), height: height}
	view.Append(rows...)
	if view.err != nil || !first.HasMore || len(rows) == 0 {
		return view.err
	}

	l := loader.New(client, renderer, view, view, nil, log, loader.WithInitialPage(start))
	complete, err := dumpAll(ctx, l, view)
	if err != nil {
		return err
	}
	if !complete {
		return fmt.Errorf("stopped after page %d: the server kept failing", l.CurrentPage())
	}
	return nil
}
