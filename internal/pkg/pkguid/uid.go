package pkguid

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}

// StringFunc lets a plain function act as a StringID.
type StringFunc func() string

// Generate calls f.
func (f StringFunc) Generate() string {
	return f()
}
