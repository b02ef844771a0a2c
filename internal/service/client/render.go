package client

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
)

const (
	// maxListed bounds how many pending alarms status prints.
	maxListed = 5

	instantLayout = "Mon 02 Jan 15:04"
	updatedLayout = "2006-01-02 15:04"
)

// daemonState describes the daemon as seen by the CLI.
type daemonState struct {
	// address is the gRPC address that was tried.
	address string
	// pids are the running server processes.
	pids []int
	// reachable reports whether the gRPC call succeeded.
	reachable bool
	// nextWake is the next background catch-up; zero when none is registered.
	nextWake time.Time
}

// printer renders CLI output. Colors and the frame are only used on a terminal.
type printer struct {
	out      io.Writer
	terminal bool

	title lipgloss.Style
	label lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	muted lipgloss.Style
	frame lipgloss.Style
}

func newPrinter(out io.Writer) *printer {
	renderer := lipgloss.NewRenderer(out)

	p := &printer{
		out:      out,
		terminal: isTerminal(out),
		title:    renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:    renderer.NewStyle().Width(10),
		good:     renderer.NewStyle().Foreground(lipgloss.Color("10")),
		bad:      renderer.NewStyle().Foreground(lipgloss.Color("9")),
		muted:    renderer.NewStyle().Foreground(lipgloss.Color("8")),
		frame:    renderer.NewStyle(),
	}

	if p.terminal {
		p.frame = p.frame.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	}

	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) settings(settings *alarm.Settings, armed bool, pending []time.Time, daemon daemonState) {
	lines := []string{
		p.title.Render("Work Alarm"),
		p.row("Alarms", p.enabled(settings.Enabled, armed)),
		p.row("Rule", settings.Rule.String()),
	}

	if !settings.UpdatedAt.IsZero() {
		updated := settings.UpdatedAt.Local().Format(updatedLayout)
		if settings.UpdatedBy != nil {
			updated += " by " + settings.UpdatedBy.String()
		}

		lines = append(lines, p.row("Updated", updated))
	}

	lines = append(lines, p.row("Daemon", p.daemon(daemon)))

	if !daemon.nextWake.IsZero() {
		lines = append(lines, p.row("Catch-up", "next at "+daemon.nextWake.Local().Format(instantLayout)))
	}

	p.print(lipgloss.JoinVertical(lipgloss.Left, lines...))

	if armed {
		p.instants("Next alarms", pending, maxListed)
	}
}

func (p *printer) changed(title string, settings *alarm.Settings, pending []time.Time) {
	p.print(lipgloss.JoinVertical(lipgloss.Left,
		p.title.Render(title),
		p.row("Alarms", p.enabled(settings.Enabled, len(pending) > 0)),
		p.row("Rule", settings.Rule.String()),
	))

	if len(pending) > 0 {
		p.instants("Next alarms", pending, maxListed)
	}
}

// instants prints the list; limit <= 0 prints everything.
func (p *printer) instants(header string, instants []time.Time, limit int) {
	lines := []string{p.title.Render(header)}

	if len(instants) == 0 {
		lines = append(lines, p.muted.Render("none"))
	}

	for i, at := range instants {
		if limit > 0 && i == limit {
			lines = append(lines, p.muted.Render(fmt.Sprintf("... and %d more", len(instants)-limit)))

			break
		}

		lines = append(lines, at.Local().Format(instantLayout))
	}

	p.print(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (p *printer) enabled(enabled, armed bool) string {
	switch {
	case enabled && armed:
		return p.good.Render("enabled, armed")
	case enabled:
		return p.good.Render("enabled")
	default:
		return p.bad.Render("disabled")
	}
}

func (p *printer) daemon(d daemonState) string {
	var b strings.Builder

	if d.reachable {
		b.WriteString(p.good.Render("reachable"))
	} else {
		b.WriteString(p.bad.Render("not reachable"))
	}

	b.WriteString(" at " + d.address)

	if len(d.pids) > 0 {
		ids := make([]string, 0, len(d.pids))
		for _, pid := range d.pids {
			ids = append(ids, strconv.Itoa(pid))
		}

		b.WriteString(p.muted.Render(" (pid " + strings.Join(ids, ", ") + ")"))
	}

	return b.String()
}

func (p *printer) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, p.label.Render(label+":"), value)
}

func (p *printer) print(block string) {
	_, _ = fmt.Fprintln(p.out, p.frame.Render(block))
}
