package models

// Song represents one audio file in the catalog. Optional fields are
// pointers (or a nil-able byte slice) so that absent values serialize
// as JSON null; Cover is base64-encoded by encoding/json when present.
type Song struct {
	Filename string   `json:"filename"`
	Title    string   `json:"title"`
	Artist   *string  `json:"artist"`
	Album    *string  `json:"album"`
	Duration *float64 `json:"duration"` // in seconds
	Cover    []byte   `json:"cover"`
}

// SortTitle returns the case-folded ordering key for catalog sorting.
// Title is never empty after assembly, but the filename stands in if a
// caller builds a Song by hand.
func (s Song) SortTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Filename
}
