package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"beta-than-ever/planner/internal/net/proto"
	"beta-than-ever/planner/internal/planner"
)

var (
	colorTitle   = lipgloss.Color("#2CD7C7")
	colorHand    = lipgloss.Color("#F4D03F")
	colorFoot    = lipgloss.Color("#20B9B4")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#5C7A84")
	colorWarning = lipgloss.Color("#E67E22")
)

type styles struct {
	title   lipgloss.Style
	hand    lipgloss.Style
	foot    lipgloss.Style
	muted   lipgloss.Style
	solved  lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(styled bool) styles {
	if !styled {
		plain := lipgloss.NewStyle()
		return styles{plain, plain, plain, plain, plain, plain, plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		hand:    lipgloss.NewStyle().Foreground(colorHand),
		foot:    lipgloss.NewStyle().Foreground(colorFoot),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		solved:  lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
		warning: lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
		failure: lipgloss.NewStyle().Bold(true).Foreground(colorError),
	}
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (c *cli) render(results []planned, format string) error {
	if format == formatJSON {
		return c.renderJSON(results)
	}
	st := newStyles(c.styled)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(c.stdout)
		}
		fmt.Fprint(c.stdout, renderText(r, st))
	}
	return nil
}

// fileRecord is one line of `plan --format json` output.
type fileRecord struct {
	File   string          `json:"file"`
	Result *proto.ResultV1 `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (c *cli) renderJSON(results []planned) error {
	enc := json.NewEncoder(c.stdout)
	for _, r := range results {
		record := fileRecord{File: r.Path}
		if r.Err != nil {
			record.Error = r.Err.Error()
		} else {
			wire := proto.FromResult(r.Name, r.Result)
			record.Result = &wire
		}
		if err := enc.Encode(record); err != nil {
			return err
		}
	}
	return nil
}

func renderText(r planned, st styles) string {
	var b strings.Builder
	name := r.Name
	if name == "" {
		name = r.Path
	}
	b.WriteString(st.title.Render(name))
	b.WriteString("\n")

	if r.Err != nil {
		fmt.Fprintf(&b, "  %s %v\n", st.failure.Render("error:"), r.Err)
		return b.String()
	}

	res := r.Result
	stats := st.muted.Render(fmt.Sprintf("(%d expansions, %d generated, %s)", res.Expansions, res.Generated, res.Duration.Round(time.Microsecond)))
	switch res.Status {
	case planner.StatusSolved:
		fmt.Fprintf(&b, "  %s in %d moves, cost %g %s\n", st.solved.Render("solved"), len(res.Moves), res.Cost, stats)
		if len(res.Path) > 0 {
			fmt.Fprintf(&b, "  %s %s\n", st.muted.Render("start"), res.Path[0])
		}
		for _, m := range res.Moves {
			limb := st.foot
			if m.Limb.IsHand() {
				limb = st.hand
			}
			fmt.Fprintf(&b, "  %3d. %s moves to hold %d\n", m.Step, limb.Render(m.Limb.Label()), m.To)
		}
	case planner.StatusUnreachable:
		fmt.Fprintf(&b, "  %s goal hold %d cannot be reached %s\n", st.warning.Render("unreachable:"), res.Goal, stats)
	case planner.StatusBudgetExceeded:
		fmt.Fprintf(&b, "  %s %s budget spent before reaching hold %d %s\n", st.warning.Render("budget exceeded:"), res.BudgetReason, res.Goal, stats)
	}
	return b.String()
}
