package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Confidence label constants.
const (
	StrongValue   = "Strong"   // Strong regression evidence
	LikelyValue   = "Likely"   // Likely regression
	PossibleValue = "Possible" // Possible regression, worth a look
	WeakValue     = "Weak"     // Weak or coincidental signal
)

// Color variables for console output.
var (
	StrongColor   = color.New(color.FgRed, color.Bold)     // strong evidence reads as danger
	LikelyColor   = color.New(color.FgMagenta, color.Bold) // distinct warning
	PossibleColor = color.New(color.FgYellow)              // standard caution, not bold
	WeakColor     = color.New(color.FgCyan)                // informational / low-priority signal
)

// SetColorEnabled toggles colored console output globally.
func SetColorEnabled(enabled bool) {
	color.NoColor = !enabled
}

// GetPlainLabel returns a plain text label for a confidence score in [0,1].
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return StrongValue
	case confidence >= 0.6:
		return LikelyValue
	case confidence >= 0.4:
		return PossibleValue
	default:
		return WeakValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, then applies the color.
func GetColorLabel(confidence float64) string {
	text := GetPlainLabel(confidence)

	switch text {
	case StrongValue:
		return StrongColor.Sprint(text)
	case LikelyValue:
		return LikelyColor.Sprint(text)
	case PossibleValue:
		return PossibleColor.Sprint(text)
	default: // "Weak"
		return WeakColor.Sprint(text)
	}
}

// SelectOutputFile returns the file handle for output based on the provided
// path, falling back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for feed caching.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".deeprepo_cache.db"
	}
	return filepath.Join(homeDir, ".deeprepo_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for findings history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".deeprepo_history.db"
	}
	return filepath.Join(homeDir, ".deeprepo_history.db")
}

// TruncatePath truncates a path or identifier to a maximum width with an
// ellipsis prefix. Requires maxWidth > 3 so there is room for the "..."
// prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
