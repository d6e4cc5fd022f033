package metadata

// Tags is the partial record a format extractor produces. Every field is
// optional: an extractor that cannot read a value leaves it nil, and the
// assembler fills in whatever fallback applies. "Failed to parse" and
// "fields absent" are deliberately the same thing here.
type Tags struct {
	Title    *string
	Artist   *string
	Album    *string
	Duration *float64 // seconds
	Cover    []byte   // raw embedded image bytes
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
