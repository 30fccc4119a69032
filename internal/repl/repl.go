package repl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"reflect"
	"sandpy"
	"sandpy/internal/parser"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"
)

const (
	PROMPT   = ">> "
	CONTINUE = ".. "
)

// Session replays its transcript on every entry, so each entry runs in a
// fresh Exec with the full budget. Entries that fail are not kept.
type Session struct {
	transcript []string
	ttl        int64
	opts       sandpy.Options
	last       *sandpy.Bindings
	out        io.Writer
}

func NewSession(ttl int64, opts sandpy.Options, out io.Writer) *Session {
	return &Session{ttl: ttl, opts: opts, last: sandpy.NewBindings(), out: out}
}

func (s *Session) Transcript() []string {
	out := make([]string, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) Bindings() *sandpy.Bindings { return s.last }

func (s *Session) TTL() int64 { return s.ttl }

func (s *Session) source(entry string) string {
	if len(s.transcript) == 0 {
		return entry
	}
	return strings.Join(s.transcript, "\n") + "\n" + entry
}

// Eval runs the transcript plus entry. On success the entry joins the
// transcript and the new bindings are returned.
func (s *Session) Eval(entry string) (*sandpy.Bindings, error) {
	b, err := sandpy.ExecWith(s.source(entry), s.ttl, s.opts)
	if err != nil {
		return nil, err
	}
	s.transcript = append(s.transcript, entry)
	s.last = b
	return b, nil
}

// Handle processes one entry or command and reports whether to quit.
func (s *Session) Handle(code string) bool {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	prev := s.last
	src := s.source(code)
	b, err := s.Eval(code)
	if err != nil {
		io.WriteString(s.out, sandpy.RenderError(src, err))
		return false
	}
	for name, v := range b.All() {
		old, ok := prev.Get(name)
		if ok && reflect.DeepEqual(old, v) {
			continue
		}
		fmt.Fprintf(s.out, "%s = %s\n", name, formatValue(v))
	}
	return false
}

func (s *Session) command(cmd string) bool {
	fields := strings.Fields(cmd)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.transcript = nil
		s.last = sandpy.NewBindings()
		io.WriteString(s.out, "transcript cleared\n")
	case ":bindings":
		if s.last.Len() == 0 {
			io.WriteString(s.out, "no bindings\n")
		}
		for name, v := range s.last.All() {
			fmt.Fprintf(s.out, "%s: %s = %s\n", name, s.last.Type(name), formatValue(v))
		}
	case ":ttl":
		if len(fields) != 2 {
			fmt.Fprintf(s.out, "ttl is %d\n", s.ttl)
			return false
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil || n < 0 {
			fmt.Fprintf(s.out, "invalid ttl %q\n", fields[1])
			return false
		}
		s.ttl = n
		fmt.Fprintf(s.out, "ttl set to %d\n", n)
	default:
		io.WriteString(s.out, "unknown command. Type :quit, :reset, :bindings or :ttl N.\n")
	}
	return false
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "None"
	case string:
		return strconv.Quote(v)
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(v)
	}
}

// LineReader is the part of liner.State the loop uses.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// ReadEntry collects lines until they parse or fail for a reason other
// than running out of input. ok is false at end of input.
func ReadEntry(r LineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := PROMPT
		if b.Len() > 0 {
			prompt = CONTINUE
		}
		line, err := r.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// ctrl-c drops the pending entry
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		_, perr := parser.Parse(src)
		var parseErr *parser.Error
		if perr != nil && errors.As(perr, &parseErr) && parseErr.Incomplete {
			continue
		}
		return src, true
	}
}

// Loop reads entries until end of input or :quit.
func Loop(r LineReader, s *Session) {
	for {
		code, ok := ReadEntry(r)
		if !ok {
			io.WriteString(s.out, "\n")
			return
		}
		if s.Handle(code) {
			return
		}
		if h, ok := r.(interface{ AppendHistory(string) }); ok && strings.TrimSpace(code) != "" {
			h.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		}
	}
}

// Start runs an interactive session on the terminal.
func Start(s *Session, historyPath string) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				slog.Warn("could not write history", slog.String("path", historyPath), slog.Any("error", err))
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM)
	defer signal.Stop(sigc)
	go func() {
		if _, ok := <-sigc; ok {
			ln.Close()
			os.Exit(130)
		}
	}()

	io.WriteString(s.out, "sandpy repl. Type :quit to exit.\n")
	Loop(ln, s)
}
