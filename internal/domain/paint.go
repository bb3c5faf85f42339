package domain

// Outcome is the result of an availability lookup.
type Outcome string

const (
	OutcomeAvailable   Outcome = "available"
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeUnknown     Outcome = "unknown"
)

// Style is the polygon style handed to the map renderer.
type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fillColor,omitempty"`
	FillOpacity float64 `json:"fillOpacity"`
	Weight      int     `json:"weight"`
}

var (
	NeutralStyle     = Style{Color: "#888", Weight: 1, FillOpacity: 0}
	AvailableStyle   = Style{Color: "#535353", FillColor: "#4caf50", FillOpacity: 0.35, Weight: 1}
	UnavailableStyle = Style{Color: "#535353", FillColor: "#e53935", FillOpacity: 0.35, Weight: 1}
)

// Lookup returns the availability outcome for a ZIP under brand. Any recorded
// status other than available paints as unavailable.
func Lookup(t Table, b Brand, zip string) Outcome {
	s, ok := t.Status(b, zip)
	switch {
	case !ok:
		return OutcomeUnknown
	case s == StatusAvailable:
		return OutcomeAvailable
	default:
		return OutcomeUnavailable
	}
}

// StyleFor maps an outcome to its polygon style.
func StyleFor(o Outcome) Style {
	switch o {
	case OutcomeAvailable:
		return AvailableStyle
	case OutcomeUnavailable:
		return UnavailableStyle
	default:
		return NeutralStyle
	}
}

// Paint styles every ZIP for the active brand. An empty brand paints
// everything neutral.
func Paint(t Table, active Brand, zips []string) map[string]Style {
	out := make(map[string]Style, len(zips))
	for _, zip := range zips {
		if active == "" {
			out[zip] = NeutralStyle
			continue
		}
		out[zip] = StyleFor(Lookup(t, active, zip))
	}
	return out
}
