package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// printer writes command output. Markdown and colors are used only when the
// destination is a terminal so piped output stays plain.
type printer struct {
	out      io.Writer
	tty      bool
	renderer *glamour.TermRenderer
}

func newPrinter(out io.Writer) *printer {
	p := &printer{out: out, tty: isTerminal(out)}
	if p.tty {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			p.renderer = r
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// markdown prints an answer. The text has already been through the math
// formatter, so $ delimiters reach the renderer intact.
func (p *printer) markdown(text string) {
	if p.renderer != nil {
		if rendered, err := p.renderer.Render(text); err == nil {
			fmt.Fprint(p.out, rendered)
			return
		}
	}
	fmt.Fprintln(p.out, text)
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.tty {
		return text
	}
	return s.Render(text)
}

func (p *printer) field(label, value string) {
	fmt.Fprintf(p.out, "%s %s\n", p.style(labelStyle, label+":"), value)
}

func (p *printer) ok(text string) {
	fmt.Fprintln(p.out, p.style(okStyle, text))
}

func (p *printer) warn(text string) {
	fmt.Fprintln(p.out, p.style(warnStyle, text))
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintln(p.out, p.style(errorStyle, "[Error]"), fmt.Sprintf(format, args...))
}
