package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteQuality outputs the issue-quality report, dispatching based on the output format configured.
func WriteQuality(report *schema.QualityReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForQuality(csvWriter, report)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeQualityText(w, report, fmtFloat, duration)
		}, "Wrote text")
	}
}

// writeQualityText displays the quality report in human-readable text format.
func writeQualityText(w io.Writer, report *schema.QualityReport, fmtFloat func(float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "🩺 Failing-Test Issue Quality\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "=============================\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Analyzed %d closed issues\n", report.Analyzed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Average resolution time:     %s\n", formatDuration(report.AvgResolution)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Average first response time: %s\n", formatDuration(report.AvgFirstResponse)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Average comments:            %s\n", fmtFloat(report.AvgComments)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Average reactions:           %s\n\n", fmtFloat(report.AvgReactions)); err != nil {
		return err
	}

	sections := []struct {
		title     string
		stats     []schema.IssueStat
		valueName string
		duration  bool
	}{
		{"Slowest to resolve", report.SlowestResolved, "Resolution", true},
		{"Slowest first response", report.SlowestResponse, "Response", true},
		{"Most commented", report.MostCommented, "Comments", false},
		{"Most engaging", report.MostEngaging, "Reactions", false},
	}
	for _, s := range sections {
		if len(s.stats) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s:\n", s.title); err != nil {
			return err
		}
		if err := writeQualityStatTable(w, s.stats, s.valueName, s.duration); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Analysis completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeQualityStatTable renders one top-N section of the quality report.
func writeQualityStatTable(w io.Writer, stats []schema.IssueStat, valueName string, asDuration bool) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Issue", "Title", valueName})
	table.Configure(func(tblCfg *tablewriter.Config) {
		tblCfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, s := range stats {
		value := strconv.Itoa(s.Count)
		if asDuration {
			value = formatDuration(s.Value)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("#%d", s.Number),
			contract.TruncatePath(s.Title, 50),
			value,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeCSVResultsForQuality writes the quality report in CSV format, one row
// per top-N entry with a section discriminator.
func writeCSVResultsForQuality(w *csv.Writer, report *schema.QualityReport) error {
	header := []string{"section", "rank", "number", "title", "url", "value_seconds", "count"}
	if err := w.Write(header); err != nil {
		return err
	}

	writeSection := func(section string, stats []schema.IssueStat) error {
		for i, s := range stats {
			rec := []string{
				section,
				strconv.Itoa(i + 1),
				strconv.Itoa(s.Number),
				s.Title,
				s.URL,
				strconv.FormatInt(int64(s.Value.Seconds()), 10),
				strconv.Itoa(s.Count),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeSection("slowest_resolved", report.SlowestResolved); err != nil {
		return err
	}
	if err := writeSection("slowest_response", report.SlowestResponse); err != nil {
		return err
	}
	if err := writeSection("most_commented", report.MostCommented); err != nil {
		return err
	}
	return writeSection("most_engaging", report.MostEngaging)
}

// formatDuration renders a duration in whole days and hours for readability.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "n/a"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
