package model

import "time"

// EmptyDirectoryCandidate is a directory that had no entries when it was detected.
type EmptyDirectoryCandidate struct {
	DetectedAt time.Time
	Path       string
	Name       string
	Selected   bool
}

// SelectedCandidates returns the candidates the caller left selected.
func SelectedCandidates(candidates []EmptyDirectoryCandidate) []EmptyDirectoryCandidate {
	var out []EmptyDirectoryCandidate
	for _, c := range candidates {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}

// QuarantinedDirectory is a removed directory held in quarantine storage.
type QuarantinedDirectory struct {
	RemovedAt time.Time
	Slot      string
	Path      string
	Name      string
}
