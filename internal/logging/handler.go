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

// Handler is a slog.Handler for people reading a terminal:
//
//	3:04PM INFO  install complete installed=3 already_present=1
//
// Colors are used only when the writer supports them. Secret-looking
// attributes are masked the same way [RedactAttr] masks them for the JSON
// handlers.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	prefix string // preformatted WithAttrs output
	groups []string
	colors *palette
}

type palette struct {
	time, key *color.Color
	levels    map[slog.Level]*color.Color
}

func newPalette() *palette {
	return &palette{
		time: color.New(color.FgHiBlack),
		key:  color.New(color.FgCyan),
		levels: map[slog.Level]*color.Color{
			LevelTrace:      color.New(color.FgHiBlack),
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		},
	}
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	h := &Handler{
		opts: *opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r as a single line and writes it in one call.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(h.timeColor(), r.Time.Format(time.Kitchen)))
		buf.WriteByte(' ')
	}

	name := levelName(r.Level)
	fmt.Fprintf(&buf, "%s%s ", h.paint(h.levelColor(r.Level), name), strings.Repeat(" ", max(0, 5-len(name))))
	buf.WriteString(r.Message)
	buf.WriteString(h.prefix)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, h.groups, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func levelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) levelColor(l slog.Level) *color.Color {
	if h.colors == nil {
		return nil
	}
	switch {
	case l >= slog.LevelError:
		return h.colors.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return h.colors.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return h.colors.levels[slog.LevelInfo]
	case l > LevelTrace:
		return h.colors.levels[slog.LevelDebug]
	default:
		return h.colors.levels[LevelTrace]
	}
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

// appendAttr writes " key=value", expanding groups into dotted keys.
func (h *Handler) appendAttr(buf *bytes.Buffer, groups []string, a slog.Attr) {
	a = RedactAttr(groups, a)
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(groups[:len(groups):len(groups)], a.Key)
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(buf, inner, ga)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	fmt.Fprintf(buf, " %s=%s", h.paint(h.keyColor(), key), formatValue(a.Value))
}

func (h *Handler) keyColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.key
}

// formatValue renders name lists as a comma-separated list and quotes
// strings that contain spaces.
func formatValue(v slog.Value) string {
	switch val := v.Any().(type) {
	case []string:
		return "[" + strings.Join(val, ",") + "]"
	case string:
		if strings.ContainsAny(val, " \t\"=") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case time.Duration:
		return val.Round(time.Millisecond).String()
	default:
		return fmt.Sprint(val)
	}
}

// WithAttrs returns a Handler that prints attrs on every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var buf bytes.Buffer
	for _, a := range attrs {
		h.appendAttr(&buf, h.groups, a)
	}
	newH := *h
	newH.prefix = h.prefix + buf.String()
	return &newH
}

// WithGroup returns a Handler that qualifies later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.groups = append(h.groups[:len(h.groups):len(h.groups)], name)
	return &newH
}
