package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	doneColor     = color.New(color.FgGreen, color.Bold)
	degradedColor = color.New(color.FgYellow, color.Bold)
	failedColor   = color.New(color.FgRed, color.Bold)
)

// Reporter prints run outcomes and history as console tables.
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

// Status is the coloured state of a run: failed, done with degraded sections, or done.
func Status(run domain.RunSummary) string {
	switch {
	case run.State == "failed":
		return failedColor.Sprint(run.State)
	case run.BuildError != "":
		return failedColor.Sprint("build failed")
	case run.Degraded() > 0:
		return degradedColor.Sprintf("%s (%d degraded)", run.State, run.Degraded())
	default:
		return doneColor.Sprint(run.State)
	}
}

func (r *Reporter) newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(r.writer)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	return table
}

// Runs prints one row per run, newest first as given.
func (r *Reporter) Runs(runs []domain.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(r.writer, "No report runs recorded.")
		return err
	}

	table := r.newTable([]string{"Report", "Run ID", "Status", "Sections", "Charts", "Duration", "Output"})
	for _, run := range runs {
		table.Append([]string{
			run.Report,
			run.RunID,
			Status(run),
			strconv.Itoa(len(run.Sections)),
			strconv.Itoa(run.Charts),
			duration(run),
			run.Output,
		})
	}
	table.Render()
	return nil
}

// Sections prints the per-section breakdown of a single run.
func (r *Reporter) Sections(run domain.RunSummary) error {
	if _, err := fmt.Fprintf(r.writer, "\n%s (%s)\n", run.Title, run.RunID); err != nil {
		return err
	}
	table := r.newTable([]string{"Section", "Elements", "Placeholders", "Status"})
	for _, s := range run.Sections {
		status := doneColor.Sprint("ok")
		switch {
		case s.Degraded:
			status = failedColor.Sprint("unavailable")
		case s.Placeholders > 0:
			status = degradedColor.Sprint("partial")
		}
		title := s.Title
		if title == "" {
			title = "-"
		}
		table.Append([]string{title, strconv.Itoa(s.Elements), strconv.Itoa(s.Placeholders), status})
	}
	table.Render()
	return nil
}

// Reports prints the registered report names.
func (r *Reporter) Reports(names []string) error {
	table := r.newTable([]string{"Report"})
	for _, name := range names {
		table.Append([]string{name})
	}
	table.Render()
	return nil
}

func duration(run domain.RunSummary) string {
	if run.FinishedAt.IsZero() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
