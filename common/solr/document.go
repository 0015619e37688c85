package solr

// Document is a flat Solr input document. Single-valued fields hold a
// scalar, multi-valued fields hold a slice; both serialize directly into
// the Solr JSON update format.
type Document map[string]any

// NewDocument creates an empty document
func NewDocument() Document {
	return Document{}
}

// SetField sets a single-valued field, replacing any previous value.
// Nil values are dropped so absent attributes never reach the index.
func (d Document) SetField(name string, value any) {
	if value == nil {
		return
	}
	if s, ok := value.(*string); ok {
		if s == nil {
			return
		}
		value = *s
	}
	d[name] = value
}

// AddField appends a value to a multi-valued field
func (d Document) AddField(name string, value any) {
	if value == nil {
		return
	}
	if s, ok := value.(*string); ok {
		if s == nil {
			return
		}
		value = *s
	}

	switch existing := d[name].(type) {
	case nil:
		d[name] = []any{value}
	case []any:
		d[name] = append(existing, value)
	default:
		d[name] = []any{existing, value}
	}
}
