package models

// Presentation is how a status string should be rendered: a human label and
// an abstract color token the UI maps to its palette.
type Presentation struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Color tokens shared with the frontends.
const (
	ColorDefault = "default"
	ColorInfo    = "info"
	ColorPrimary = "primary"
	ColorWarning = "warning"
	ColorSuccess = "success"
)

// StatusPresentation maps a tournament or match status to its display form.
// It is total: any string outside the known domain comes back unchanged as
// the label with the default color, so new server-side statuses degrade
// gracefully instead of breaking rendering.
func StatusPresentation(status string) Presentation {
	switch status {
	case string(TournamentStatusUpcoming):
		return Presentation{Label: "Upcoming", Color: ColorInfo}
	case string(TournamentStatusPoolPlay):
		return Presentation{Label: "Pool Play", Color: ColorPrimary}
	case string(TournamentStatusBracketPlay):
		return Presentation{Label: "Bracket Play", Color: ColorWarning}
	case string(TournamentStatusCompleted):
		return Presentation{Label: "Completed", Color: ColorSuccess}
	case string(MatchStatusScheduled):
		return Presentation{Label: "Scheduled", Color: ColorDefault}
	case string(MatchStatusInProgress):
		// Also covers the legacy tournament vocabulary.
		return Presentation{Label: "In Progress", Color: ColorWarning}
	default:
		return Presentation{Label: status, Color: ColorDefault}
	}
}
