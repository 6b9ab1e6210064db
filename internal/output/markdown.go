package output

import (
	"fmt"
	"strings"

	"github.com/optionsmailer/optionsmailer/internal/loadboard"
	"github.com/optionsmailer/optionsmailer/internal/notify"
)

// MarkdownFormatter renders options as a markdown table.
type MarkdownFormatter struct{}

// FormatOptions renders the option list as Markdown.
func (f *MarkdownFormatter) FormatOptions(options []loadboard.Option) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Options\n\n")
	sb.WriteString("| Load | Lane | Rate | Carrier | Phone | Received |\n")
	sb.WriteString("|------|------|------|---------|-------|----------|\n")

	for _, opt := range options {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			escapeMarkdownCell(loadNumber(opt)),
			escapeMarkdownCell(lane(opt)),
			escapeMarkdownCell(notify.FormatRate(opt.OfferedRate)),
			escapeMarkdownCell(carrier(opt)),
			escapeMarkdownCell(notify.FormatPhone(opt.Phone)),
			escapeMarkdownCell(notify.FormatCentral(opt.CreatedAt)),
		))
	}

	label := "options"
	if len(options) == 1 {
		label = "option"
	}
	sb.WriteString(fmt.Sprintf("\n**Total**: %d %s\n", len(options), label))

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
