// Package output renders option listings for the CLI. The email body has its
// own fixed-width format in internal/notify; these formatters are for
// operators inspecting the load board from a terminal.
package output

import (
	"fmt"
	"strings"

	"github.com/optionsmailer/optionsmailer/internal/loadboard"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders option listings.
type Formatter interface {
	FormatOptions(options []loadboard.Option) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown):
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func loadNumber(opt loadboard.Option) string {
	if opt.Load != nil && opt.Load.CustomLoadID != "" {
		return opt.Load.CustomLoadID
	}
	return "Unknown"
}

func lane(opt loadboard.Option) string {
	if opt.Load == nil {
		return "N/A"
	}
	origin := opt.Load.Origin
	destination := opt.Load.Destination
	if origin == "" && destination == "" {
		return "N/A"
	}
	if origin == "" {
		origin = "N/A"
	}
	if destination == "" {
		destination = "N/A"
	}
	return origin + " -> " + destination
}

func carrier(opt loadboard.Option) string {
	if opt.CarrierName != "" {
		return opt.CarrierName
	}
	return "N/A"
}
