package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/wasm-gc/gctype"
)

// pairRelation is the relation between type A of the left module and type
// B of the right module.
type pairRelation struct {
	A, B  uint32
	Equal bool
	Sub   bool // A <: B
	Super bool // B <: A
}

// Symbol renders the relation as a single matrix cell.
func (p pairRelation) Symbol() string {
	switch {
	case p.Equal:
		return "="
	case p.Sub:
		return "<"
	case p.Super:
		return ">"
	}
	return "."
}

func (p pairRelation) related() bool {
	return p.Equal || p.Sub || p.Super
}

type report struct {
	left, right namedModule
	pairs       [][]pairRelation

	canonical int
	capacity  int
	charged   uint64
	memory    uint32
}

func buildReport(left, right namedModule) *report {
	lt, rt := left.mod.Types, right.mod.Types
	r := &report{left: left, right: right, pairs: make([][]pairRelation, lt.Len())}
	for i := range uint32(lt.Len()) {
		row := make([]pairRelation, rt.Len())
		for j := range uint32(rt.Len()) {
			row[j] = pairRelation{
				A:     i,
				B:     j,
				Equal: gctype.TypesEqual(lt, i, rt, j),
				Sub:   gctype.IsSubtype(lt, i, rt, j),
				Super: gctype.IsSubtype(rt, j, lt, i),
			}
		}
		r.pairs[i] = row
	}
	return r
}

// related returns the pairs with any relation, row by row.
func (r *report) related() []pairRelation {
	var out []pairRelation
	for _, row := range r.pairs {
		for _, p := range row {
			if p.related() {
				out = append(out, p)
			}
		}
	}
	return out
}

// all returns every pair, row by row.
func (r *report) all() []pairRelation {
	var out []pairRelation
	for _, row := range r.pairs {
		out = append(out, row...)
	}
	return out
}

func (r *report) describe(p pairRelation) string {
	a := r.left.mod.TypeLabel(p.A)
	b := r.right.mod.TypeLabel(p.B)
	switch {
	case p.Equal:
		return a + " and " + b + " are equal"
	case p.Sub:
		return a + " is a subtype of " + b
	case p.Super:
		return b + " is a subtype of " + a
	}
	return a + " and " + b + " are unrelated"
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	equalStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98"))
	subStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func writeReport(w io.Writer, r *report, styled bool) error {
	var b strings.Builder
	writeTypes(&b, "left", r.left)
	if r.right.mod != r.left.mod {
		writeTypes(&b, "right", r.right)
	}

	b.WriteString("\nrelation of row to column: = equal, < subtype, > supertype, . unrelated\n")
	b.WriteString(r.matrix(styled))
	b.WriteString("\n")

	for _, p := range r.related() {
		b.WriteString("  " + r.describe(p) + "\n")
	}
	fmt.Fprintf(&b, "\ncanonical reference types: %d (capacity %d, %d bytes charged)\n",
		r.canonical, r.capacity, r.charged)
	if r.memory > 0 {
		fmt.Fprintf(&b, "linear memory: %d bytes\n", r.memory)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTypes(b *strings.Builder, side string, m namedModule) {
	fmt.Fprintf(b, "%s: %s (%d types)\n", side, m.name, m.mod.Types.Len())
	for i := range uint32(m.mod.Types.Len()) {
		st, _ := m.mod.Types.Type(i)
		fmt.Fprintf(b, "  %-12s %s\n", m.mod.TypeLabel(i), st)
	}
}

func (r *report) matrix(styled bool) string {
	headers := []string{""}
	for j := range uint32(r.right.mod.Types.Len()) {
		headers = append(headers, r.right.mod.TypeLabel(j))
	}
	rows := make([][]string, len(r.pairs))
	for i, row := range r.pairs {
		cells := []string{r.left.mod.TypeLabel(uint32(i))}
		for _, p := range row {
			cells = append(cells, p.Symbol())
		}
		rows[i] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if !styled {
				return base
			}
			if row == table.HeaderRow || col == 0 {
				return base.Inherit(headerStyle)
			}
			switch rows[row][col] {
			case "=":
				return base.Inherit(equalStyle)
			case "<", ">":
				return base.Inherit(subStyle)
			}
			return base.Inherit(dimStyle)
		})
	return t.Render()
}
