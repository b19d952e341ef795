package model

// ClassificationMode identifies which routing strategy produced a result.
type ClassificationMode string

// Classification modes.
const (
	ModeBasic    ClassificationMode = "basic"
	ModeAdvanced ClassificationMode = "advanced"
)

// ProgressFunc receives completion fractions in [0, 1].
type ProgressFunc func(fraction float64)

// MovedFile records one file move and the rule that routed it.
type MovedFile struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Rule        string `json:"rule"`
}

// ClassificationResult summarizes one classification run.
type ClassificationResult struct {
	Mode            ClassificationMode `json:"mode"`
	Moves           []MovedFile        `json:"moves"`
	RulesConsidered []string           `json:"rules_considered"`
	FilesMoved      int                `json:"files_moved"`
	FilesScanned    int                `json:"files_scanned"`
	FilesSkipped    int                `json:"files_skipped"`
	FilesFailed     int                `json:"files_failed"`
	Cancelled       bool               `json:"cancelled"`
}

// MovedByRule counts moves per routing rule name.
func (r *ClassificationResult) MovedByRule() map[string]int {
	counts := make(map[string]int)
	for _, m := range r.Moves {
		counts[m.Rule]++
	}
	return counts
}
