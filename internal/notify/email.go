package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/optionsmailer/optionsmailer/internal/loadboard"
)

var centralTime = loadCentral()

func loadCentral() *time.Location {
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

// Report is a rendered options report ready to mail.
type Report struct {
	Subject     string
	Body        string
	OptionCount int
}

// BuildReport renders the plaintext options report: a summary, then one
// section per load with its options newest-first.
func BuildReport(options []loadboard.Option, now time.Time) Report {
	count := len(options)

	plural := "s"
	if count == 1 {
		plural = ""
	}
	subject := fmt.Sprintf("Options Report - %d Option%s Available", count, plural)

	var b strings.Builder
	fmt.Fprintf(&b, "OPTIONS REPORT\nGenerated at %s\n\n", now.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "SUMMARY\nTotal Options: %d\n\n", count)

	if count == 0 {
		b.WriteString("No options found matching the criteria.\n")
		return Report{Subject: subject, Body: b.String()}
	}

	for _, group := range groupByLoad(options) {
		lane := "N/A"
		if group.origin != "" && group.destination != "" {
			lane = group.origin + " -> " + group.destination
		}

		fmt.Fprintf(&b, "\n%s\n", strings.Repeat("=", 60))
		fmt.Fprintf(&b, "LOAD NUMBER: %s\n", group.loadID)
		fmt.Fprintf(&b, "LANE: %s\n", lane)
		fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 60))

		fmt.Fprintf(&b, "%-16s %-16s %-16s %-20s %s\n", "Carrier MC", "Carrier DOT", "Offer Amount", "Phone Number", "Option Logged Time")
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", 80))

		for _, opt := range group.options {
			fmt.Fprintf(&b, "%-16s %-16s %-16s %-20s %s\n",
				orNA(opt.CarrierMC),
				orNA(opt.CarrierDOT),
				FormatRate(opt.OfferedRate),
				FormatPhone(opt.Phone),
				FormatCentral(opt.CreatedAt),
			)
		}
		b.WriteString("\n")
	}

	return Report{Subject: subject, Body: b.String(), OptionCount: count}
}

type loadGroup struct {
	loadID      string
	origin      string
	destination string
	options     []loadboard.Option
}

// groupByLoad buckets options by load number in first-seen order and sorts
// each bucket newest-first.
func groupByLoad(options []loadboard.Option) []loadGroup {
	index := map[string]int{}
	groups := []loadGroup{}

	for _, opt := range options {
		loadID := "Unknown"
		origin, destination := "", ""
		if opt.Load != nil {
			if opt.Load.CustomLoadID != "" {
				loadID = opt.Load.CustomLoadID
			}
			origin = opt.Load.Origin
			destination = opt.Load.Destination
		}

		i, ok := index[loadID]
		if !ok {
			i = len(groups)
			index[loadID] = i
			groups = append(groups, loadGroup{loadID: loadID, origin: origin, destination: destination})
		}
		groups[i].options = append(groups[i].options, opt)
	}

	for i := range groups {
		opts := groups[i].options
		sort.SliceStable(opts, func(a, b int) bool {
			return createdAt(opts[a]).After(createdAt(opts[b]))
		})
	}

	return groups
}

func createdAt(opt loadboard.Option) time.Time {
	if opt.CreatedAt == nil {
		return time.Time{}
	}
	return *opt.CreatedAt
}

// FormatPhone renders a US phone number as (XXX) XXX-XXXX, passing through
// anything it cannot normalize.
func FormatPhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "N/A" {
		return "N/A"
	}

	digits := make([]rune, 0, len(trimmed))
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}

	switch {
	case len(digits) == 11 && digits[0] == '1':
		digits = digits[1:]
		fallthrough
	case len(digits) >= 10:
		return fmt.Sprintf("(%s) %s-%s", string(digits[0:3]), string(digits[3:6]), string(digits[6:10]))
	case len(digits) > 0:
		return trimmed
	default:
		return "N/A"
	}
}

// FormatRate renders an offer amount as dollars.
func FormatRate(rate *float64) string {
	if rate == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", *rate)
}

// FormatCentral renders a timestamp in the dispatch desk's timezone.
func FormatCentral(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.In(centralTime).Format("2006-01-02 15:04:05") + " Central"
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
