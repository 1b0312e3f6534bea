package errors

import (
	"fmt"
	"strings"
)

// FormatUserError returns a user-friendly error message with actionable guidance.
// It examines the error chain and provides context-appropriate help text.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	// Check for ConfigError
	var configErr *ConfigError
	if As(err, &configErr) {
		return formatConfigError(configErr)
	}

	// Check for ScanError
	var scanErr *ScanError
	if As(err, &scanErr) {
		return formatScanError(scanErr)
	}

	// Default: return the error message as-is
	return err.Error()
}

// formatConfigError formats a ConfigError with actionable guidance.
func formatConfigError(err *ConfigError) string {
	var b strings.Builder

	if err.Field != "" {
		fmt.Fprintf(&b, "Configuration error in '%s': %s\n", err.Field, err.Message)
	} else {
		fmt.Fprintf(&b, "Configuration error: %s\n", err.Message)
	}

	b.WriteString("\nTo fix this:\n")
	b.WriteString("  • Check your config file: ~/.config/dirty/config.toml\n")
	b.WriteString("  • Run 'dirty config show' to see the effective configuration\n")

	if err.Cause != nil {
		fmt.Fprintf(&b, "\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}

// formatScanError formats a ScanError. The first line matches Error() so that
// scripts grepping stderr keep working.
func formatScanError(err *ScanError) string {
	var b strings.Builder

	b.WriteString(err.Error())

	if err.Cause != nil {
		fmt.Fprintf(&b, "\n\nUnderlying error: %v", err.Cause)
	}

	return b.String()
}
