package output

import (
	"encoding/json"

	"github.com/optionsmailer/optionsmailer/internal/loadboard"
)

// JSONFormatter renders options as JSON.
type JSONFormatter struct {
	Indent bool
}

// optionRecord is the JSON row shape, flattening the enrichment fields that
// carry json:"-" on the wire type.
type optionRecord struct {
	ID          string   `json:"id"`
	Load        string   `json:"load"`
	Lane        string   `json:"lane"`
	OfferedRate *float64 `json:"offered_rate"`
	Carrier     string   `json:"carrier"`
	MCNumber    string   `json:"mc_number,omitempty"`
	DOTNumber   string   `json:"dot_number,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// FormatOptions renders the option list as JSON.
func (f *JSONFormatter) FormatOptions(options []loadboard.Option) (string, error) {
	records := make([]optionRecord, 0, len(options))
	for _, opt := range options {
		rec := optionRecord{
			ID:          opt.ID,
			Load:        loadNumber(opt),
			Lane:        lane(opt),
			OfferedRate: opt.OfferedRate,
			Carrier:     carrier(opt),
			MCNumber:    opt.CarrierMC,
			DOTNumber:   opt.CarrierDOT,
			Phone:       opt.Phone,
		}
		if opt.CreatedAt != nil {
			rec.CreatedAt = opt.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		records = append(records, rec)
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
