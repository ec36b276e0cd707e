package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"

	"setlint/internal/analysis"
	"setlint/internal/session"
)

// failingPreviewLimit caps the failing-track table; the full report carries
// the rest.
const failingPreviewLimit = 15

func renderRunSummary(out io.Writer, res *analysis.Result) {
	sum := res.Summary

	rows := [][]string{
		{"Tracks", strconv.Itoa(sum.TotalTracks)},
		{"Tracks with issues", strconv.Itoa(sum.IssueTracks)},
		{"Tracks with warnings", strconv.Itoa(sum.WarningTracks)},
		{"Deactivated", strconv.Itoa(sum.Deactivated)},
		{"Muted", strconv.Itoa(sum.Muted)},
		{"Silent guess", strconv.Itoa(sum.Silent)},
		{"Routing breaks", strconv.Itoa(sum.RoutingBreaks)},
		{"Missing routes", strconv.Itoa(sum.MissingRoutes)},
		{"Dead buses", strconv.Itoa(sum.DeadBuses)},
		{"Orphan buses", strconv.Itoa(sum.OrphanBuses)},
		{"Devices", strconv.Itoa(sum.Devices)},
		{"Devices off (unexplained)", strconv.Itoa(sum.DevicesOffUnexplained)},
		{"Devices off (automated)", strconv.Itoa(sum.DevicesOffAutomated)},
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Metric", "Count"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	))

	failing := failingRows(res)
	if len(failing) == 0 {
		fmt.Fprintln(out, paint(text.FgGreen, "No failing tracks."))
		return
	}

	shown := failing
	truncated := 0
	if len(shown) > failingPreviewLimit {
		truncated = len(shown) - failingPreviewLimit
		shown = shown[:failingPreviewLimit]
	}
	fmt.Fprintln(out, paint(text.FgRed, fmt.Sprintf("%d failing track(s):", len(failing))))
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Kind", "Codes", "Break"},
		shown,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	if truncated > 0 {
		fmt.Fprintf(out, "...and %d more; see the full report.\n", truncated)
	}
}

func failingRows(res *analysis.Result) [][]string {
	byID := session.ByID(res.Tracks)
	var rows [][]string
	for _, id := range res.SortedIDs() {
		finding := res.Findings[id]
		if !finding.Fail {
			continue
		}
		t := byID[id]
		brk := ""
		if ann, ok := res.Breaks[id]; ok && ann.Impacted() {
			brk = fmt.Sprintf("depth %d via %v", ann.Depth, ann.Sources)
		}
		rows = append(rows, []string{
			string(id), t.Name, string(t.Kind), finding.PackedReasons(), brk,
		})
	}
	return rows
}
