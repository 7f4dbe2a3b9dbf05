package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"reelgraph/internal/analytics"
	"reelgraph/internal/domain"
	"reelgraph/internal/store"
)

var (
	colorAccent  = lipgloss.Color("#874BFD")
	colorSuccess = lipgloss.Color("#00FF99")
	colorMuted   = lipgloss.Color("#64748B")
	colorDanger  = lipgloss.Color("#FF0055")
	colorWarning = lipgloss.Color("#F59E0B")
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	danger  lipgloss.Style
}

// styleFor builds styles for w. Writers that are not terminals get plain text.
func styleFor(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Foreground(colorAccent).Bold(true),
		label:   r.NewStyle().Foreground(colorMuted),
		value:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess).Bold(true),
		warning: r.NewStyle().Foreground(colorWarning),
		danger:  r.NewStyle().Foreground(colorDanger).Bold(true),
	}
}

const labelWidth = 22

func row(st styles, label, value string) string {
	pad := labelWidth - len(label)
	if pad < 1 {
		pad = 1
	}
	return "  " + st.label.Render(label) + strings.Repeat(" ", pad) + value + "\n"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// renderStats prints an analytics report for a dataset file
func renderStats(w io.Writer, source string, load store.LoadReport, r analytics.Report) error {
	st := styleFor(w)
	var b strings.Builder

	b.WriteString(st.title.Render("reelgraph stats") + " " + source + "\n")

	loaded := load.String()
	if load.RejectedCount() > 0 {
		loaded = st.warning.Render(loaded)
	}
	b.WriteString(row(st, "loaded", loaded))

	undefined := func(field string) string {
		return st.muted.Render("undefined (" + r.Undefined[field] + ")")
	}
	floatOr := func(v *float64, field string) string {
		if v == nil {
			return undefined(field)
		}
		return st.value.Render(formatFloat(*v))
	}

	b.WriteString(row(st, "nodes", st.value.Render(strconv.Itoa(r.Nodes))))
	b.WriteString(row(st, "edges", st.value.Render(strconv.Itoa(r.Edges))))
	b.WriteString(row(st, "average degree", floatOr(r.AverageDegree, "average_degree")))
	b.WriteString(row(st, "density", floatOr(r.Density, "density")))
	b.WriteString(row(st, "components", st.value.Render(strconv.Itoa(r.Components))))
	b.WriteString(row(st, "largest component", st.value.Render(
		fmt.Sprintf("%d nodes, %d edges", r.LargestComponentNodes, r.LargestComponentEdges))))

	diameter := undefined("diameter")
	if r.Diameter != nil {
		diameter = st.value.Render(strconv.Itoa(*r.Diameter))
	}
	b.WriteString(row(st, "diameter", diameter))
	b.WriteString(row(st, "average path length", floatOr(r.AveragePathLength, "average_path_length")))

	_, err := io.WriteString(w, b.String())
	return err
}

// renderDatasets prints the archive listing
func renderDatasets(w io.Writer, infos []domain.DatasetInfo) error {
	st := styleFor(w)
	if len(infos) == 0 {
		_, err := io.WriteString(w, st.muted.Render("no datasets archived")+"\n")
		return err
	}

	nameWidth := len("NAME")
	for _, info := range infos {
		nameWidth = max(nameWidth, len(info.Name))
	}

	var b strings.Builder
	header := fmt.Sprintf("%-*s  %7s  %7s  %-19s  %s", nameWidth, "NAME", "NODES", "EDGES", "UPDATED", "SOURCE")
	b.WriteString(st.title.Render(header) + "\n")
	for _, info := range infos {
		fmt.Fprintf(&b, "%s  %7d  %7d  %s  %s\n",
			st.value.Render(fmt.Sprintf("%-*s", nameWidth, info.Name)),
			info.NodeCount,
			info.EdgeCount,
			info.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
			st.muted.Render(info.Source),
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
