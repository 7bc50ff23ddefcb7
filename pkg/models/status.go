package models

// Origin tells where a document came from and whether it is persisted.
type Origin string

const (
	OriginUnset    Origin = ""         // Zero value = unset/unknown
	OriginBuiltIn  Origin = "built-in" // Declared in configuration, re-seeded every run
	OriginUploaded Origin = "uploaded" // Supplied at runtime, persisted across sessions
)

// String implements fmt.Stringer for logging
func (o Origin) String() string {
	if o == "" {
		return "unset"
	}
	return string(o)
}

// Persisted reports whether documents of this origin are written to storage.
func (o Origin) Persisted() bool {
	return o == OriginUploaded
}
