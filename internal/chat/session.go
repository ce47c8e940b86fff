// Package chat runs the interactive console that turns typed Persian/English
// commands into task tool calls.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/todomcp/todo/internal/intent"
	"github.com/todomcp/todo/internal/view"
)

// Executor runs a tool call. Tool failures are reported inside the result as
// {"error":{...}}; the error return means the call itself could not be made.
type Executor interface {
	Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

var exitWords = map[string]bool{"exit": true, "quit": true, "q": true, "خروج": true}

var examples = []string{
	"لیست تسک‌ها رو نشون بده / show all tasks",
	"لیست pending رو نشون بده / list pending tasks",
	"یک تسک جدید با عنوان X بساز / create task with title X",
	"وضعیت تسک 5 رو done کن / update task 5 to done",
	"جزئیات تسک 3 / show task 3 details",
	"تسک 2 رو حذف کن / delete task 2",
	"exit / quit / خروج",
}

// Session is one console conversation. It is not safe for concurrent use.
type Session struct {
	exec   Executor
	in     *bufio.Scanner
	out    io.Writer
	styles styles
}

type Option func(*Session)

// WithStyle enables colored output for terminals.
func WithStyle(enabled bool) Option {
	return func(s *Session) {
		if enabled {
			s.styles = colorStyles()
		}
	}
}

func New(exec Executor, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		exec:   exec,
		in:     bufio.NewScanner(in),
		out:    out,
		styles: plainStyles(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run prints the banner and processes lines until an exit word, end of
// input or context cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.Banner()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, s.styles.prompt.Render("You: "))
		if !s.in.Scan() {
			fmt.Fprintln(s.out, "\n👋 Goodbye!")
			return s.in.Err()
		}

		if quit := s.Handle(ctx, s.in.Text()); quit {
			fmt.Fprintln(s.out, "\n👋 Goodbye!")
			return nil
		}
	}
}

// Banner prints the list of supported commands.
func (s *Session) Banner() {
	fmt.Fprintln(s.out, s.styles.rule.Render(strings.Repeat("-", 60)))
	fmt.Fprintln(s.out, s.styles.title.Render("Available commands (Persian/English):"))
	for _, e := range examples {
		fmt.Fprintf(s.out, "  - %s\n", e)
	}
	fmt.Fprintln(s.out, s.styles.rule.Render(strings.Repeat("-", 60)))
	fmt.Fprintln(s.out)
}

// Handle processes one input line and reports whether the session should
// end. Unrecognized input prints help and never reaches the executor.
func (s *Session) Handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if exitWords[strings.ToLower(line)] {
		return true
	}

	parsed := intent.Parse(line)
	if !parsed.Recognized() {
		fmt.Fprintln(s.out, "\n❓ I didn't understand that. Please try one of the supported commands.")
		fmt.Fprintln(s.out, "   متوجه نشدم. لطفاً یکی از دستورات پشتیبانی شده را امتحان کنید.")
		fmt.Fprintln(s.out)
		return false
	}

	name := string(parsed.Intent)
	fmt.Fprintf(s.out, "\n%s\n", s.styles.call.Render("🔧 Calling: "+name))
	if len(parsed.Args) > 0 {
		fmt.Fprintf(s.out, "   Arguments: %s\n", formatArgs(parsed.Args))
	}

	result, err := s.exec.Execute(ctx, name, parsed.Args)
	if err != nil {
		fmt.Fprintf(s.out, "\n%s\n\n", s.styles.err.Render("❌ Error: "+err.Error()))
		return false
	}

	fmt.Fprintf(s.out, "\n%s\n\n", view.RenderResult(name, result))
	return false
}

func formatArgs(args map[string]any) string {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(data)
}

// paint decorates console text.
type paint func(string) string

func (p paint) Render(s string) string { return p(s) }

type styles struct {
	prompt paint
	title  paint
	rule   paint
	call   paint
	err    paint
}

func plainStyles() styles {
	plain := func(s string) string { return s }
	return styles{prompt: plain, title: plain, rule: plain, call: plain, err: plain}
}

func colorStyles() styles {
	return styles{
		prompt: render(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))),
		title:  render(lipgloss.NewStyle().Bold(true)),
		rule:   render(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))),
		call:   render(lipgloss.NewStyle().Foreground(lipgloss.Color("11"))),
		err:    render(lipgloss.NewStyle().Foreground(lipgloss.Color("9"))),
	}
}

func render(st lipgloss.Style) paint {
	return func(s string) string { return st.Render(s) }
}
