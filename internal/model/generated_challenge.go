package model

// GeneratedChallenge is a challenge backed by a directory on disk.
type GeneratedChallenge struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	HasReadme   bool     `json:"has_readme"`
	Files       []string `json:"files,omitempty"`
}
