package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// progressHandler renders rebuild_batch events as progress lines and
// passes every other record to the wrapped handler. On a terminal the line
// is redrawn in place; elsewhere each batch gets its own line.
type progressHandler struct {
	next  slog.Handler
	out   io.Writer
	tty   bool
	mu    *sync.Mutex
	attrs []slog.Attr
	drawn *bool
}

func newProgressHandler(next slog.Handler, out io.Writer) *progressHandler {
	return &progressHandler{next: next, out: out, tty: isTTY(out), mu: &sync.Mutex{}, drawn: new(bool)}
}

// isTTY reports whether w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (h *progressHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level == slog.LevelDebug || h.next.Enabled(ctx, level)
}

func (h *progressHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Message != "rebuild_batch" {
		if !h.next.Enabled(ctx, r.Level) {
			return nil
		}
		h.finishLine()
		return h.next.Handle(ctx, r)
	}

	vals := map[string]slog.Value{}
	for _, a := range h.attrs {
		vals[a.Key] = a.Value
	}
	r.Attrs(func(a slog.Attr) bool {
		vals[a.Key] = a.Value
		return true
	})

	line := fmt.Sprintf("%s: batch %d, %d records",
		vals["model"].String(), vals["batch"].Int64(), vals["processed"].Int64())

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tty {
		_, err := fmt.Fprintf(h.out, "\r\033[K%s", line)
		*h.drawn = true
		return err
	}
	_, err := fmt.Fprintln(h.out, line)
	return err
}

// finishLine ends an in-place progress line before other output.
func (h *progressHandler) finishLine() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if *h.drawn {
		fmt.Fprintln(h.out)
		*h.drawn = false
	}
}

func (h *progressHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.next = h.next.WithAttrs(attrs)
	c.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &c
}

func (h *progressHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.next = h.next.WithGroup(name)
	return &c
}
