package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nkaminski/deeprepo/internal/contract"
	"github.com/nkaminski/deeprepo/schema"
)

// WriteTodos outputs the TODO debt report, dispatching based on the output format configured.
func WriteTodos(report *schema.TodoReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"file", "line", "text", "permalink"}, func(csvWriter *csv.Writer) error {
				for _, f := range report.Files {
					for _, m := range f.Matches {
						rec := []string{
							f.Path,
							strconv.Itoa(m.Line),
							m.Text,
							todoPermalink(report.HeadCommit, f.Path, m.Line),
						}
						if err := csvWriter.Write(rec); err != nil {
							return err
						}
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTodosText(w, report, duration)
		}, "Wrote text")
	}
}

// writeTodosText displays the TODO report in human-readable text format.
func writeTodosText(w io.Writer, report *schema.TodoReport, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "🧹 TODO Debt in Generated Resources\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "===================================\n\n"); err != nil {
		return err
	}

	totalMatches := 0
	for _, f := range report.Files {
		totalMatches += len(f.Matches)
	}
	if _, err := fmt.Fprintf(w, "Scanned %d files, %d with TODOs (%d total)\n\n",
		report.ScannedFiles, len(report.Files), totalMatches); err != nil {
		return err
	}

	for _, f := range report.Files {
		if _, err := fmt.Fprintf(w, "%s (%d):\n", f.Path, len(f.Matches)); err != nil {
			return err
		}
		for _, m := range f.Matches {
			line := fmt.Sprintf("  L%d: %s", m.Line, contract.TruncatePath(m.Text, 100))
			if link := todoPermalink(report.HeadCommit, f.Path, m.Line); link != "" {
				line += "\n       " + link
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "\nScan completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// todoPermalink builds a commit-pinned source reference when the head commit
// is known. It is host-relative so it can be appended to any forge base URL.
func todoPermalink(headCommit, path string, line int) string {
	if headCommit == "" {
		return ""
	}
	return fmt.Sprintf("tree/%s/%s#L%d", headCommit, path, line)
}
