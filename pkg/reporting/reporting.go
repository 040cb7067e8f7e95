// Package reporting renders per-hook run results: a dots-to-79 status line
// per hook with a fatih/color palette, and github.com/charmbracelet/lipgloss
// rendering the status pill itself.
package reporting

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/prek-go/prek/pkg/hookdef"
	"github.com/prek-go/prek/pkg/language"
	"github.com/prek-go/prek/pkg/runner"
)

const lineWidth = 79

var (
	passedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0")).Bold(true).Padding(0, 1)
	failedStyle  = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("15")).Bold(true).Padding(0, 1)
	skippedStyle = lipgloss.NewStyle().Background(lipgloss.Color("6")).Foreground(lipgloss.Color("0")).Padding(0, 1)
	detailColor  = color.New(color.Faint, color.FgWhite)
)

// Printer implements runner.Reporter, writing one status line per hook plus
// the verbose/failure detail block to w.
type Printer struct {
	w       io.Writer
	verbose bool
	color   bool

	mu                 sync.Mutex
	unimplementedLangs map[string]bool
}

// New builds a Printer. color should reflect the resolved --color mode
// (auto/always/never), not a raw TTY check — that decision belongs to the
// out-of-scope CLI layer.
func New(w io.Writer, verbose, color bool) *Printer {
	return &Printer{w: w, verbose: verbose, color: color, unimplementedLangs: map[string]bool{}}
}

// HookStart is a no-op: this reporter prints once a hook finishes, not when
// it starts, so there is no "running..." line.
func (p *Printer) HookStart(string, hookdef.Hook) {}

// HookDone prints the status line and, for verbose/failed hooks, the detail
// block.
func (p *Printer) HookDone(_ string, res runner.HookResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := displayName(res.Hook)
	switch res.Status {
	case language.StatusNoFiles, language.StatusUnimplemented:
		p.printSkipped(name)
		if p.verbose {
			fmt.Fprintln(p.w, p.detail(fmt.Sprintf("- hook id: %s", res.Hook.ID)))
		}
	case language.StatusDryRun:
		p.printPill(name, "Dry run", skippedStyle)
		if len(res.Output) > 0 {
			fmt.Fprintf(p.w, "\n%s\n\n", strings.TrimRight(string(res.Output), "\n"))
		}
	case language.StatusFailed:
		p.printPill(name, "Failed", failedStyle)
		p.printDetails(res)
	default:
		p.printPill(name, "Passed", passedStyle)
		if p.verbose || res.Hook.Verbose {
			p.printDetails(res)
		}
	}
}

// GroupModified prints the "files were modified" envelope line.
func (p *Printer) GroupModified(_ string, group []hookdef.Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(group))
	for i, h := range group {
		names[i] = displayName(h)
	}
	fmt.Fprintln(p.w, p.detail(fmt.Sprintf("- files were modified by following hooks: %s", strings.Join(names, ", "))))
}

// Unimplemented records a hook that could not run because its language has
// no concrete adapter; the warning itself is emitted once by Flush.
func (p *Printer) Unimplemented(h hookdef.Hook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unimplementedLangs[string(h.Language)] = true
}

// Flush prints the aggregated end-of-run unimplemented-language warning.
// Call once after the run completes.
func (p *Printer) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.unimplementedLangs) == 0 {
		return
	}
	langs := make([]string, 0, len(p.unimplementedLangs))
	for l := range p.unimplementedLangs {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	fmt.Fprintf(p.w, "warning: skipped hooks for unimplemented language(s): %s\n", strings.Join(langs, ", "))
}

func (p *Printer) printPill(name, status string, style lipgloss.Style) {
	dots := dotsFor(name, len(status))
	if p.color {
		fmt.Fprintf(p.w, "%s%s%s\n", name, dots, style.Render(status))
	} else {
		fmt.Fprintf(p.w, "%s%s%s\n", name, dots, status)
	}
}

func (p *Printer) printSkipped(name string) {
	const prefix, status = "(no files to check)", "Skipped"
	dots := dotsFor(name, len(prefix)+len(status))
	if p.color {
		fmt.Fprintf(p.w, "%s%s%s%s\n", name, dots, prefix, skippedStyle.Render(status))
	} else {
		fmt.Fprintf(p.w, "%s%s%s%s\n", name, dots, prefix, status)
	}
}

func (p *Printer) printDetails(res runner.HookResult) {
	fmt.Fprintln(p.w, p.detail(fmt.Sprintf("- hook id: %s", res.Hook.ID)))
	fmt.Fprintln(p.w, p.detail(fmt.Sprintf("- duration: %s", formatDuration(res.Duration))))
	if res.ExitCode != 0 {
		fmt.Fprintln(p.w, p.detail(fmt.Sprintf("- exit code: %d", res.ExitCode)))
	}
	if len(res.Output) > 0 {
		fmt.Fprintf(p.w, "\n%s\n\n", strings.TrimRight(string(res.Output), "\n"))
	}
	if res.Hook.LogFile != "" {
		if err := appendLog(res.Hook.LogFile, res.Output); err != nil {
			fmt.Fprintln(p.w, p.detail(fmt.Sprintf("- warning: could not write log_file %s: %v", res.Hook.LogFile, err)))
		}
	}
}

func (p *Printer) detail(s string) string {
	if p.color {
		return detailColor.Sprint(s)
	}
	return s
}

func displayName(h hookdef.Hook) string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

func dotsFor(name string, suffixLen int) string {
	n := lineWidth - len(name) - suffixLen
	if n < 1 {
		n = 1
	}
	return strings.Repeat(".", n)
}

// formatDuration rounds for display: sub-5ms shows as "0s", sub-1s as two
// decimal places, sub-minute as one, else m/s.
func formatDuration(d time.Duration) string {
	s := d.Seconds()
	switch {
	case s < 0.005:
		return "0s"
	case s < 1:
		return fmt.Sprintf("%.2fs", s)
	case s < 60:
		return fmt.Sprintf("%.1fs", s)
	default:
		m := int(s) / 60
		rem := int(s) % 60
		return fmt.Sprintf("%dm%ds", m, rem)
	}
}

func appendLog(path string, output []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(output)
	return err
}

// ShowDiff runs `git diff --no-ext-diff` over workspaceRoot and streams it
// to w, for --show-diff-on-failure.
func ShowDiff(w io.Writer, workspaceRoot string) error {
	cmd := exec.Command("git", "diff", "--no-ext-diff")
	cmd.Dir = workspaceRoot
	cmd.Stdout = w
	cmd.Stderr = io.Discard
	return cmd.Run()
}
