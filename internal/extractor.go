package internal

// ExtractorSource reads a value from the request.
// It returns ("", false) when the value is absent.
type ExtractorSource = func(Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func FromHeader(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Header(name) })
}

func FromQuery(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Query(name) })
}

func FromParam(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Param(name) })
}

func FromForm(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Form(name) })
}

func nonEmpty(get func(Context) string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := get(c)
		return v, v != ""
	}
}
