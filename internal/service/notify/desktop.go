package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/oshokin/work-alarm/internal/domain/alarm"
)

const (
	// notifySendBinary shows notifications on Linux desktops.
	notifySendBinary = "notify-send"
	// osascriptBinary shows notifications on macOS.
	osascriptBinary = "osascript"
	// replaceHint makes notification daemons replace a notification with the same value.
	replaceHint = "string:x-canonical-private-synchronous:"
)

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) error

// DesktopOption configures a DesktopPresenter.
type DesktopOption func(*DesktopPresenter)

// WithRunner replaces the command runner.
func WithRunner(run Runner) DesktopOption {
	return func(p *DesktopPresenter) {
		p.run = run
	}
}

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) DesktopOption {
	return func(p *DesktopPresenter) {
		p.goos = goos
	}
}

// WithLookPath replaces the executable lookup.
func WithLookPath(lookPath func(file string) (string, error)) DesktopOption {
	return func(p *DesktopPresenter) {
		p.lookPath = lookPath
	}
}

// DesktopPresenter shows notifications through the OS notification tool.
type DesktopPresenter struct {
	// goos is the operating system the command is built for.
	goos string
	// binary is the resolved path of the notification tool.
	binary string
	// run executes the notification tool.
	run Runner
	// lookPath resolves the notification tool.
	lookPath func(file string) (string, error)
}

// NewDesktopPresenter finds the notification tool of the current OS. It
// returns alarm.ErrUnsupportedCapability when there is none.
func NewDesktopPresenter(opts ...DesktopOption) (*DesktopPresenter, error) {
	p := &DesktopPresenter{
		goos:     runtime.GOOS,
		run:      runCommand,
		lookPath: exec.LookPath,
	}

	for _, opt := range opts {
		opt(p)
	}

	var tool string

	switch strings.ToLower(p.goos) {
	case "linux", "freebsd", "openbsd", "netbsd":
		tool = notifySendBinary
	case "darwin":
		tool = osascriptBinary
	default:
		return nil, fmt.Errorf("%w: desktop notifications on %s", alarm.ErrUnsupportedCapability, p.goos)
	}

	binary, err := p.lookPath(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found: %w", alarm.ErrUnsupportedCapability, tool, err)
	}

	p.binary = binary

	return p, nil
}

// Name implements Presenter.
func (*DesktopPresenter) Name() string { return "desktop" }

// Background implements Presenter.
func (*DesktopPresenter) Background() bool { return true }

// Permission implements Presenter. Desktop tools have no consent prompt.
func (*DesktopPresenter) Permission(context.Context) Permission { return PermissionGranted }

// Present implements Presenter.
func (p *DesktopPresenter) Present(ctx context.Context, n *Notification) error {
	if err := p.run(ctx, p.binary, p.args(n)...); err != nil {
		return fmt.Errorf("show desktop notification: %w", err)
	}

	return nil
}

func (p *DesktopPresenter) args(n *Notification) []string {
	if strings.EqualFold(p.goos, "darwin") {
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptString(n.Body), appleScriptString(n.Title))

		return []string{"-e", script}
	}

	args := []string{"--app-name", n.Title}
	if n.Tag != "" {
		args = append(args, "--hint", replaceHint+n.Tag)
	}

	if n.Renotify {
		args = append(args, "--urgency", "normal")
	}

	return append(args, n.Title, n.Body)
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	return `"` + s + `"`
}

func runCommand(ctx context.Context, name string, args ...string) error {
	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}

	return nil
}
