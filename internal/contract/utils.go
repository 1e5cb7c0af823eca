package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Check outcome labels.
const (
	PassValue = "PASS"
	FailValue = "FAIL"
)

// Color variables for console output.
var (
	RegressedColor = color.New(color.FgRed, color.Bold) // RegressedColor marks a metric that got slower.
	ImprovedColor  = color.New(color.FgGreen)           // ImprovedColor marks a metric that got faster.
	NeutralColor   = color.New(color.FgCyan)            // NeutralColor marks informational values.
)

// GetPlainCheckLabel returns the plain label for a threshold check outcome.
func GetPlainCheckLabel(passed bool) string {
	if passed {
		return PassValue
	}
	return FailValue
}

// GetColorCheckLabel returns a colored label for a threshold check outcome.
func GetColorCheckLabel(passed bool) string {
	text := GetPlainCheckLabel(passed)
	if passed {
		return ImprovedColor.Sprint(text)
	}
	return RegressedColor.Sprint(text)
}

// SelectOutputFile returns the file handle for output: os.Stdout when no path is given.
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

// GetCacheDBFilePath returns the path to the SQLite DB file for the result cache.
func GetCacheDBFilePath() string {
	return homeFile(".wpperf_cache.db")
}

// GetBadgerDirPath returns the directory of the Badger result cache.
func GetBadgerDirPath() string {
	return homeFile(".wpperf_cache.badger")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for report history.
func GetHistoryDBFilePath() string {
	return homeFile(".wpperf_history.db")
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// TruncateLabel shortens a label such as a URL to maxWidth runes with an ellipsis prefix.
// Requires maxWidth > 3 so that at least one rune of content survives.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
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
