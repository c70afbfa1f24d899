package outcome

import "strings"

// Outcome is the 3-way result of a football match.
type Outcome string

const (
	Home Outcome = "HOME"
	Draw Outcome = "DRAW"
	Away Outcome = "AWAY"
)

func (o Outcome) Valid() bool {
	switch o {
	case Home, Draw, Away:
		return true
	default:
		return false
	}
}

// Parse normalizes an outcome code. Unknown codes yield ok=false, not an error:
// callers treat them the same as a missing code.
func Parse(value string) (Outcome, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "HOME", "H", "1":
		return Home, true
	case "DRAW", "D", "X":
		return Draw, true
	case "AWAY", "A", "2":
		return Away, true
	default:
		return "", false
	}
}
