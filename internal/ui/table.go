package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	pkgtypes "github.com/vietdv277/cirrus/pkg/types"
)

// cell is one styled table cell
type cell struct {
	text  string
	style lipgloss.Style
}

// boxTable renders rows inside a rounded box with a header row
type boxTable struct {
	headers []string
	widths  []int
	rows    [][]cell
}

func newBoxTable(headers ...string) *boxTable {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &boxTable{headers: headers, widths: widths}
}

// maxWidth caps a column; cells longer than the cap are truncated
func (t *boxTable) maxWidth(col, max int) {
	if t.widths[col] > max {
		t.widths[col] = max
	}
}

func (t *boxTable) addRow(cells ...cell) {
	for i, c := range cells {
		if w := runewidth.StringWidth(c.text); w > t.widths[i] {
			t.widths[i] = w
		}
	}
	t.rows = append(t.rows, cells)
}

func (t *boxTable) border(left, mid, right string) string {
	var sb strings.Builder
	sb.WriteString(BorderStyle.Render(left))
	for i, w := range t.widths {
		sb.WriteString(BorderStyle.Render(strings.Repeat(Horizontal, w+2)))
		if i < len(t.widths)-1 {
			sb.WriteString(BorderStyle.Render(mid))
		}
	}
	sb.WriteString(BorderStyle.Render(right))
	sb.WriteString("\n")
	return sb.String()
}

func (t *boxTable) render(limits map[int]int) string {
	for col, max := range limits {
		t.maxWidth(col, max)
	}

	var sb strings.Builder

	// Top border
	sb.WriteString(t.border(TopLeft, TopT, TopRight))

	// Header row
	sb.WriteString(BorderStyle.Render(Vertical))
	for i, h := range t.headers {
		sb.WriteString(HeaderStyle.Render(" " + padRight(h, t.widths[i]) + " "))
		sb.WriteString(BorderStyle.Render(Vertical))
	}
	sb.WriteString("\n")

	// Header separator
	sb.WriteString(t.border(LeftT, Cross, RightT))

	// Data rows
	for _, row := range t.rows {
		sb.WriteString(BorderStyle.Render(Vertical))
		for i, c := range row {
			sb.WriteString(c.style.Render(" " + padRight(c.text, t.widths[i]) + " "))
			sb.WriteString(BorderStyle.Render(Vertical))
		}
		sb.WriteString("\n")
	}

	// Bottom border
	sb.WriteString(t.border(BottomLeft, BottomT, BottomRight))

	return sb.String()
}

// PrintInstanceTable prints instances in a styled box table
func PrintInstanceTable(w io.Writer, instances []pkgtypes.Instance) {
	tbl := newBoxTable("ID", "Name", "Region", "State", "Type", "Private IP", "Public IP")

	for _, inst := range instances {
		tbl.addRow(
			cell{inst.ID, IDStyle},
			cell{inst.Name, NameStyle},
			cell{inst.Region, RegionStyle},
			cell{StateIndicator(inst.State) + " " + inst.State, StateStyle(inst.State)},
			cell{inst.Type, TypeStyle},
			cell{formatOptional(inst.PrivateIP), IPStyle},
			cell{formatOptional(inst.PublicIP), IPStyle},
		)
	}

	fmt.Fprint(w, tbl.render(map[int]int{1: 30}))
	fmt.Fprintln(w, instanceSummary(instances))
}

func instanceSummary(instances []pkgtypes.Instance) string {
	counts := make(map[string]int)
	for _, inst := range instances {
		counts[inst.State]++
	}

	var parts []string
	for _, state := range []string{pkgtypes.StateRunning, pkgtypes.StateStopped, pkgtypes.StatePending, pkgtypes.StateStopping} {
		if c := counts[state]; c > 0 {
			parts = append(parts, StateStyle(state).Render(fmt.Sprintf("%d %s", c, state)))
		}
	}

	summary := fmt.Sprintf("  %d instances", len(instances))
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	return summary
}

// PrintProfileTable prints profiles in a styled table
func PrintProfileTable(w io.Writer, profiles []pkgtypes.AWSProfile, activeProfile string) {
	tbl := newBoxTable("", "Name", "Region", "Source")

	for _, profile := range profiles {
		marker, nameStyle := "", NameStyle
		if profile.Name == activeProfile {
			marker, nameStyle = "●", RunningStyle
		}
		tbl.addRow(
			cell{marker, RunningStyle},
			cell{profile.Name, nameStyle},
			cell{formatOptional(profile.Region), MutedStyle},
			cell{profile.Source, MutedStyle},
		)
	}

	fmt.Fprint(w, tbl.render(nil))
	fmt.Fprintf(w, "  %d profiles\n", len(profiles))
}

// PrintRegionList prints the active region set, one region per line
func PrintRegionList(w io.Writer, regions []string) {
	if len(regions) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("No regions configured"))
		return
	}
	for _, r := range regions {
		fmt.Fprintf(w, "  %s %s\n", MutedStyle.Render("•"), RegionStyle.Render(r))
	}
	fmt.Fprintf(w, "  %d regions\n", len(regions))
}
