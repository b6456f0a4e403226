package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nkaminski/deeprepo/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultPrecision   = 2
	DefaultTopCount    = 10
	DefaultSinceDays   = 30
)

// DefaultWorkers is the default number of concurrent detection workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the validated runtime configuration for an audit.
// Fields are populated by ProcessAndValidate from raw inputs; nothing in the
// pipeline reads process-wide state after that point.
type Config struct {
	RepoPath        string // Absolute path to the provider repository checkout
	CIResultsPath   string // JSON feed of raw CI run records
	IssueEventsPath string // JSON feed of raw issue events
	IssuesPath      string // JSON feed of closed issues (quality analysis)
	ResultLimit     int    // Maximum number of findings to show
	Workers         int    // Number of concurrent detection workers
	Detector        schema.DetectorConfig

	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Detail     bool // Show supporting event columns
	Explain    bool // Show confidence signal breakdown

	CacheBackend     schema.DatabaseBackend
	CacheDBConnect   string
	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string

	QualityLabels []string // Optional label filter for the quality analysis
	QualitySince  int      // Days of closed issues to analyze when no label filter
	TopCount      int      // Size of quality top-N lists

	TodoDir string // Directory of generated resource files, relative to RepoPath
}

// Clone returns a shallow copy safe to tweak per invocation (MCP handlers).
func (c *Config) Clone() *Config {
	clone := *c
	clone.QualityLabels = append([]string(nil), c.QualityLabels...)
	return &clone
}

// WeightsRawInput holds optional confidence-weight overrides from the config
// file. Pointers distinguish "not set" from zero.
type WeightsRawInput struct {
	Recency   *float64 `mapstructure:"recency"`
	Linkage   *float64 `mapstructure:"linkage"`
	Isolation *float64 `mapstructure:"isolation"`
}

// ConfigRawInput holds the raw, unvalidated inputs from all sources
// (file, env, flags). Viper unmarshals into this struct.
type ConfigRawInput struct {
	RepoPathStr      string           `mapstructure:"repo"`
	CIResultsStr     string           `mapstructure:"ci-results"`
	IssueEventsStr   string           `mapstructure:"issue-events"`
	IssuesStr        string           `mapstructure:"issues"`
	ResultLimit      int              `mapstructure:"limit"`
	Workers          int              `mapstructure:"workers"`
	PassStreak       int              `mapstructure:"pass-streak"`
	RecencyWindowStr string           `mapstructure:"recency-window"`
	MaxIntervening   int              `mapstructure:"max-intervening"`
	Weights          *WeightsRawInput `mapstructure:"weights"`
	Output           string           `mapstructure:"output"`
	OutputFile       string           `mapstructure:"output-file"`
	Precision        int              `mapstructure:"precision"`
	Detail           bool             `mapstructure:"detail"`
	Explain          bool             `mapstructure:"explain"`
	Color            string           `mapstructure:"color"`
	CacheBackend     string           `mapstructure:"cache-backend"`
	CacheDBConnect   string           `mapstructure:"cache-db-connect"`
	HistoryBackend   string           `mapstructure:"history-backend"`
	HistoryDBConnect string           `mapstructure:"history-db-connect"`
	LabelsStr        string           `mapstructure:"labels"`
	SinceDays        int              `mapstructure:"since-days"`
	TopCount         int              `mapstructure:"top"`
	TodoDir          string           `mapstructure:"todo-dir"`
}

// ProcessAndValidate performs all complex parsing and validation on the raw
// inputs and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. ResultLimit Validation ---
	if input.ResultLimit <= 0 || input.ResultLimit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.ResultLimit)
	}
	cfg.ResultLimit = input.ResultLimit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Detector Tuning ---
	det := schema.DefaultDetectorConfig()
	if input.PassStreak > 0 {
		det.PassStreak = input.PassStreak
	}
	if input.RecencyWindowStr != "" {
		window, err := ParseWindowDuration(input.RecencyWindowStr)
		if err != nil {
			return fmt.Errorf("invalid recency window: %w", err)
		}
		det.RecencyWindow = window
	}
	if input.MaxIntervening > 0 {
		det.MaxIntervening = input.MaxIntervening
	}
	if input.Weights != nil {
		if input.Weights.Recency != nil {
			det.Weights.Recency = *input.Weights.Recency
		}
		if input.Weights.Linkage != nil {
			det.Weights.Linkage = *input.Weights.Linkage
		}
		if input.Weights.Isolation != nil {
			det.Weights.Isolation = *input.Weights.Isolation
		}
		if det.Weights.Recency < 0 || det.Weights.Linkage < 0 || det.Weights.Isolation < 0 {
			return fmt.Errorf("signal weights must be non-negative (received %+v)", det.Weights)
		}
		if det.Weights.Total() == 0 {
			return fmt.Errorf("at least one signal weight must be positive")
		}
	}
	cfg.Detector = det

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 3 {
		return fmt.Errorf("precision must be between 1 and 3 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	switch cfg.Output {
	case schema.TextOut, schema.CSVOut, schema.JSONOut, schema.ParquetOut:
	default:
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain

	// --- 5. Color Handling ---
	if input.Color != "" {
		useColor, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid color setting: %w", err)
		}
		SetColorEnabled(useColor)
	}

	// --- 6. Repo Path Resolution ---
	if input.RepoPathStr != "" {
		absPath, err := filepath.Abs(input.RepoPathStr)
		if err != nil {
			return fmt.Errorf("cannot resolve repo path %q: %w", input.RepoPathStr, err)
		}
		if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
			return fmt.Errorf("repo path %q is not a directory", input.RepoPathStr)
		}
		cfg.RepoPath = absPath
	}

	// --- 7. Feed Paths ---
	cfg.CIResultsPath = input.CIResultsStr
	cfg.IssueEventsPath = input.IssueEventsStr
	cfg.IssuesPath = input.IssuesStr

	// --- 8. Persistence Backends ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if cfg.HistoryBackend != "" {
		if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
			return err
		}
	}

	// --- 9. Quality Analysis Inputs ---
	if input.LabelsStr != "" {
		for _, label := range strings.Split(input.LabelsStr, ",") {
			if trimmed := strings.TrimSpace(label); trimmed != "" {
				cfg.QualityLabels = append(cfg.QualityLabels, trimmed)
			}
		}
	}
	cfg.QualitySince = input.SinceDays
	if cfg.QualitySince <= 0 {
		cfg.QualitySince = DefaultSinceDays
	}
	cfg.TopCount = input.TopCount
	if cfg.TopCount <= 0 {
		cfg.TopCount = DefaultTopCount
	}

	// --- 10. Todo Scan Directory ---
	cfg.TodoDir = input.TodoDir

	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ValidateDatabaseConnectionString performs basic validation on backend and
// connection string combinations before a store is opened.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend, "":
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("mysql backend requires a connection string (user:password@tcp(host:port)/dbname)")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("postgresql backend requires a connection string (host=... port=... user=... dbname=...)")
		}
	default:
		return fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
	return nil
}
