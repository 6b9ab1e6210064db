package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/optionsmailer/optionsmailer/internal/loadboard"
	"github.com/optionsmailer/optionsmailer/internal/notify"
)

// TableFormatter renders options as an ASCII table.
type TableFormatter struct{}

// FormatOptions renders one row per option, grouped the way the email
// report orders them.
func (f *TableFormatter) FormatOptions(options []loadboard.Option) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Load", "Lane", "Rate", "Carrier", "MC", "Phone", "Received"})

	for _, opt := range options {
		t.AppendRow(table.Row{
			loadNumber(opt),
			lane(opt),
			notify.FormatRate(opt.OfferedRate),
			carrier(opt),
			orNA(opt.CarrierMC),
			notify.FormatPhone(opt.Phone),
			notify.FormatCentral(opt.CreatedAt),
		})
	}

	label := "options"
	if len(options) == 1 {
		label = "option"
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d %s", len(options), label),
		"", "", "", "", "", "",
	})

	return t.Render(), nil
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
