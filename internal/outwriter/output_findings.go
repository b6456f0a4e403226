package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/internal/parquet"
	"github.com/nkaminski/deeprepo/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteFindings outputs the correlation results, dispatching based on the output format configured.
func WriteFindings(output *schema.AnalysisOutput, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeFindingsJSONResults(output, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeFindingsCSVResults(output, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		rows := parquet.ConvertFindings(output.Findings)
		if err := parquet.WriteFindingsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFindingsTable(output, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeFindingsJSONResults handles opening the file and calling the JSON writer.
func writeFindingsJSONResults(output *schema.AnalysisOutput, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForFindings(w, output)
	}, "Wrote JSON")
}

// writeFindingsCSVResults handles opening the file and calling the CSV writer.
func writeFindingsCSVResults(output *schema.AnalysisOutput, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForFindings(csvWriter, output.Findings, fmtFloat)
	}, "Wrote CSV")
}

// writeFindingsTable generates and writes the human-readable table.
func writeFindingsTable(output *schema.AnalysisOutput, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	// 1. Define Headers
	headers := []string{"Rank", "Test", "Category", "Confidence", "Label", "Cycles"}
	if cfg.Detail {
		headers = append(headers, "First Seen", "Last Seen")
	}
	if cfg.Explain {
		headers = append(headers, "Explain")
	}
	table.Header(headers)

	// 2. Configure Separators/Borders to match a minimal look
	table.Configure(func(tblCfg *tablewriter.Config) {
		tblCfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	maxTestWidth := getMaxTableTestWidth(cfg.Detail, cfg.Explain)
	var data [][]string
	for i, f := range output.Findings {
		row := []string{
			strconv.Itoa(i + 1), // Rank
			contract.TruncatePath(f.Test.String(), maxTestWidth), // Test
			string(f.Category),                    // Category
			fmtFloat(f.Confidence),                // Confidence
			contract.GetColorLabel(f.Confidence),  // Label
			fmt.Sprintf("%d", f.Recurrences),      // Cycles
		}
		if cfg.Detail {
			first, last := eventSpan(f.Events)
			row = append(row, first, last)
		}
		if cfg.Explain {
			row = append(row, formatSignalBreakdown(&f, fmtFloat)) // Signal explanation
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Compute summary stats
	numBoomerangs := 0
	for _, f := range output.Findings {
		if f.Category == schema.BoomerangCategory {
			numBoomerangs++
		}
	}
	diag := output.Diagnostics
	if _, err := fmt.Fprintf(writer, "Showing %d findings (%d boomerangs, %d persistent failures)\n",
		len(output.Findings), numBoomerangs, len(output.Findings)-numBoomerangs); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Processed %d records (%d malformed, %d tests skipped, %d sparse)\n",
		diag.RawRecords, diag.MalformedRecords, diag.SkippedTests, diag.SparseTests); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// eventSpan returns the formatted timestamps of the first and last supporting events.
func eventSpan(events []schema.RunEvent) (string, string) {
	if len(events) == 0 {
		return "", ""
	}
	first := events[0].Timestamp.Format(contract.DateTimeFormat)
	last := events[len(events)-1].Timestamp.Format(contract.DateTimeFormat)
	return first, last
}

// formatSignalBreakdown renders the per-signal contributions for a finding,
// highest contribution first.
func formatSignalBreakdown(f *schema.Finding, fmtFloat func(float64) string) string {
	if len(f.Breakdown) == 0 {
		return "-"
	}
	keys := make([]schema.SignalKey, 0, len(f.Breakdown))
	for k := range f.Breakdown {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if f.Breakdown[keys[i]] != f.Breakdown[keys[j]] {
			return f.Breakdown[keys[i]] > f.Breakdown[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, fmtFloat(f.Breakdown[k])))
	}
	return strings.Join(parts, " ")
}

// writeCSVResultsForFindings writes the correlation results in CSV format.
func writeCSVResultsForFindings(w *csv.Writer, findings []schema.Finding, fmtFloat func(float64) string) error {
	// CSV header
	header := []string{
		"rank",
		"package",
		"test",
		"category",
		"confidence",
		"label",
		"recurrences",
		"first_event",
		"last_event",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, f := range findings {
		first, last := eventSpan(f.Events)
		rec := []string{
			strconv.Itoa(i + 1),                  // Rank
			f.Test.Package,                       // Package
			f.Test.Name,                          // Test Name
			string(f.Category),                   // Category
			fmtFloat(f.Confidence),               // Confidence
			contract.GetPlainLabel(f.Confidence), // Label
			strconv.Itoa(f.Recurrences),          // Recurrences
			first,                                // First supporting event
			last,                                 // Last supporting event
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONResultsForFindings writes the correlation results in JSON format.
func writeJSONResultsForFindings(w io.Writer, output *schema.AnalysisOutput) error {
	// 1. Prepare the data structure for JSON with rank and label added
	type JSONFinding struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.Finding
	}

	findings := make([]JSONFinding, len(output.Findings))
	for i, f := range output.Findings {
		findings[i] = JSONFinding{
			Rank:    i + 1,
			Label:   contract.GetPlainLabel(f.Confidence),
			Finding: f,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, struct {
		Findings    []JSONFinding      `json:"findings"`
		Diagnostics schema.Diagnostics `json:"diagnostics"`
	}{Findings: findings, Diagnostics: output.Diagnostics})
}
