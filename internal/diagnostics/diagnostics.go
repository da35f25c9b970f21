// Package diagnostics is the pass's non-fatal reporting surface: Rust-style
// caret-formatted parse errors for the textual IR format and the unopt_cf
// diagnostic spec.md §7 calls for (a Switch/Cond selector resolved to a
// constant but more than one successor remains live). Fatal contract
// breaches stay combo.InvariantError; nothing here is ever raised for those.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"combo/internal/ir"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reportable condition: a parse failure or an unopt_cf
// finding. Line/Column are 1-based and zero when the diagnostic has no
// source position (e.g. one raised against an in-memory graph with no
// backing text).
type Diagnostic struct {
	Severity Severity
	Source   string // "parser", "unopt_cf", or "combo" for a failed pass run
	Message  string
	Line     int
	Column   int
	Node     *ir.Node // set for unopt_cf; nil for parse errors
}

// FromParseError converts a participle parse failure into a Diagnostic. A
// non-participle error (e.g. a file-read failure) becomes a position-less
// diagnostic.
func FromParseError(err error) Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		return Diagnostic{Severity: SeverityError, Source: "parser", Message: err.Error()}
	}
	pos := pe.Position()
	return Diagnostic{
		Severity: SeverityError,
		Source:   "parser",
		Message:  pe.Message(),
		Line:     pos.Line,
		Column:   pos.Column,
	}
}

// ScanUnoptCF walks g for Switch/Cond nodes whose selector is a materialized
// Const but which still have more than one Proj child on the same output
// index — the condition spec.md §7 describes: control flow the pass could not
// fold down to a single edge, typically a source-level unreachable case. Proj
// children on distinct indices are not counted against each other, since a
// rewritten graph may still hold a Proj whose successor block was pruned.
func ScanUnoptCF(g *ir.Graph) []Diagnostic {
	var diags []Diagnostic
	for _, blk := range g.Blocks {
		attr, ok := blk.Attr.(*ir.BlockAttr)
		if !ok {
			continue
		}
		for _, n := range attr.Members {
			if n.Op != ir.OpSwitch && n.Op != ir.OpCond {
				continue
			}
			if len(n.In) == 0 || n.In[0].Op != ir.OpConst {
				continue
			}
			if projCount(g, n) > 1 {
				diags = append(diags, Diagnostic{
					Severity: SeverityWarning,
					Source:   "unopt_cf",
					Message:  fmt.Sprintf("%s %%%d has a constant selector but more than one successor remains reachable", n.Op, n.ID),
					Node:     n,
				})
			}
		}
	}
	return diags
}

func projCount(g *ir.Graph, n *ir.Node) int {
	perIndex := map[int]int{}
	count := 0
	for _, blk := range g.Blocks {
		attr := blk.Attr.(*ir.BlockAttr)
		for _, m := range attr.Members {
			if m.Op == ir.OpProj && len(m.In) > 0 && m.In[0] == n {
				pa, _ := m.Attr.(*ir.ProjAttr)
				idx := -1
				if pa != nil {
					idx = pa.Index
				}
				perIndex[idx]++
				count = max(count, perIndex[idx])
			}
		}
	}
	return count
}

// Format renders one diagnostic as a caret-pointing, colorized line against
// src, or a position-less colorized line when the diagnostic carries no
// source position (unopt_cf findings report against the graph, not text).
func Format(src string, d Diagnostic) string {
	var b strings.Builder
	banner := color.New(color.FgRed, color.Bold)
	if d.Severity == SeverityWarning {
		banner = color.New(color.FgYellow, color.Bold)
	}

	if d.Line <= 0 {
		banner.Fprintf(&b, "%s: %s: %s\n", d.Severity, d.Source, d.Message)
		return b.String()
	}

	lines := strings.Split(src, "\n")
	banner.Fprintf(&b, "%s: %s at line %d, column %d:\n", d.Severity, d.Source, d.Line, d.Column)
	if d.Line-1 < len(lines) {
		line := lines[d.Line-1]
		fmt.Fprintln(&b, line)
		caret := strings.Repeat(" ", max(d.Column-1, 0)) + "^"
		color.New(color.FgHiRed).Fprintln(&b, caret)
	}
	fmt.Fprintf(&b, "-> %s\n", d.Message)
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
