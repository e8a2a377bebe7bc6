// Package report renders score results and config coverage for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/emspt/configstore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Formatter writes reports in one of the supported formats.
type Formatter struct {
	w        io.Writer
	format   string
	colorize bool
}

func NewFormatter(w io.Writer, format string, colorize bool) (*Formatter, error) {
	switch format {
	case FormatConsole, FormatJSON:
	case "":
		format = FormatConsole
	default:
		return nil, fmt.Errorf("unknown format %q (console|json)", format)
	}
	return &Formatter{w: w, format: format, colorize: colorize}, nil
}

func (f *Formatter) style(color string) lipgloss.Style {
	if !f.colorize {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func (f *Formatter) bandStyle(band string) lipgloss.Style {
	switch band {
	case emspt.BandHigh:
		return f.style("9") // red
	case emspt.BandMid:
		return f.style("11") // yellow
	case emspt.BandLow:
		return f.style("10") // green
	default:
		return f.style("7") // gray
	}
}

func (f *Formatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Score writes one scoring result.
func (f *Formatter) Score(res emspt.ScoreResult) error {
	if f.format == FormatJSON {
		return f.writeJSON(res)
	}

	bold := lipgloss.NewStyle()
	if f.colorize {
		bold = bold.Bold(true)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", bold.Render("Профиль:"), res.Profile)
	fmt.Fprintf(&b, "%-12s %8s %5s  %s\n", "Шкала", "Балл", "Стен", "Уровень")
	for _, name := range scaleOrder(res) {
		level := "-"
		if in, ok := res.Interpretations[name]; ok {
			level = string(in.Level)
		}
		fmt.Fprintf(&b, "%-12s %8.2f %5d  %s\n", name, res.Scales[name], res.Sten[name], level)
	}

	lie := "не применена"
	if res.LieApplied {
		lie = f.style("11").Render("применена")
	}
	fmt.Fprintf(&b, "\nШкала лжи: %.2f (коррекция %s)\n", res.LieRaw, lie)
	fmt.Fprintf(&b, "ИРП:       %.2f %s\n", res.IRP, f.bandStyle(res.IRPInterval).Render(res.IRPInterval))
	fmt.Fprintf(&b, "КВЕРИПО:   %.2f %s\n", res.Kveripo, f.bandStyle(res.KveripoInterval).Render(res.KveripoInterval))

	if len(res.Interpretations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", bold.Render("Интерпретация:"))
		for _, name := range scaleOrder(res) {
			in, ok := res.Interpretations[name]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "  %s (стен %d): %s\n", name, in.Sten, in.Text)
		}
	}
	_, err := io.WriteString(f.w, b.String())
	return err
}

// Coverage writes the profiles that cannot be scored.
func (f *Formatter) Coverage(root string, gaps []configstore.Gap) error {
	if f.format == FormatJSON {
		if gaps == nil {
			gaps = []configstore.Gap{}
		}
		return f.writeJSON(map[string]any{"root": root, "complete": len(gaps) == 0, "gaps": gaps})
	}

	var b strings.Builder
	if len(gaps) == 0 {
		fmt.Fprintf(&b, "%s %s: all profiles covered\n", f.style("10").Render("✓"), root)
	} else {
		for _, g := range gaps {
			fmt.Fprintf(&b, "%s %-22s missing %s\n", f.style("9").Render("✗"), g.Profile, strings.Join(g.Missing, ", "))
		}
		fmt.Fprintf(&b, "\n%s: %d profiles cannot be scored\n", root, len(gaps))
	}
	_, err := io.WriteString(f.w, b.String())
	return err
}

// scaleOrder prefers the form's key order and falls back to sorted names
// for results that went through JSON.
func scaleOrder(res emspt.ScoreResult) []string {
	if len(res.ScaleOrder) > 0 {
		return res.ScaleOrder
	}
	names := make([]string, 0, len(res.Scales))
	for name := range res.Scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
