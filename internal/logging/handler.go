package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Handler writes human-readable log lines for cairn's stderr:
//
//	3:04PM INFO  committed config config=provider path=/work/provider.yaml
//
// Levels are colored on terminals. Values of secret-looking keys and values
// that look like tokens or private keys are masked.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	colors *palette
}

type palette struct {
	time, key                *color.Color
	trace, debug, info, warn *color.Color
	err                      *color.Color
}

// NewHandler returns a Handler writing to out. Colors are used only when out
// supports them.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{opts: *opts, out: out, mu: &sync.Mutex{}}
	if SupportsColor(out) {
		h.colors = &palette{
			time:  color.New(color.FgHiBlack),
			key:   color.New(color.FgCyan),
			trace: color.New(color.FgHiBlack),
			debug: color.New(color.FgMagenta),
			info:  color.New(color.FgGreen),
			warn:  color.New(color.FgYellow),
			err:   color.New(color.FgRed, color.Bold),
		}
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r into one line and writes it with a single Write.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(h.timeColor(), r.Time.Format(time.Kitchen)))
		buf.WriteByte(' ')
	}

	label, c := h.level(r.Level)
	fmt.Fprintf(&buf, "%s%s ", h.paint(c, label), strings.Repeat(" ", max(0, 5-len(label))))
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// level names LevelTrace, which slog would print as DEBUG-4.
func (h *Handler) level(l slog.Level) (string, *color.Color) {
	var p palette
	if h.colors != nil {
		p = *h.colors
	}
	switch {
	case l >= slog.LevelError:
		return l.String(), p.err
	case l >= slog.LevelWarn:
		return l.String(), p.warn
	case l >= slog.LevelInfo:
		return l.String(), p.info
	case l > LevelTrace:
		return l.String(), p.debug
	default:
		return "TRACE", p.trace
	}
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) appendAttr(buf *bytes.Buffer, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}

	value := a.Value.Resolve().Any()
	if ShouldMask(a.Key) {
		value = MaskValue(fmt.Sprint(value))
	} else if s, ok := value.(string); ok && LooksSecret(s) {
		value = MaskValue(s)
	}

	key := a.Key
	if len(h.groups) > 0 {
		key = strings.Join(h.groups, ".") + "." + key
	}
	if h.colors != nil {
		key = h.colors.key.Sprint(key)
	}
	fmt.Fprintf(buf, " %s=%v", key, value)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &next
}

// WithGroup prefixes the keys of later attributes with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &next
}
