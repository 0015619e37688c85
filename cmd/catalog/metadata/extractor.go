// Package metadata flattens the linked-data document embedded in an OCFL
// object version into a deterministic set of search fields.
package metadata

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/piprate/json-gold/ld"
)

// Well-known vocabulary IRIs
const (
	rdfType            = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	oreAggregation     = "http://www.openarchives.org/ore/terms/Aggregation"
	dcTermsTitle       = "http://purl.org/dc/terms/title"
	dsDescription      = "https://dataverse.org/schema/citation/dsDescription"
	dsDescriptionValue = "https://dataverse.org/schema/citation/dsDescriptionValue"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// ExtractedMetadata is the flattened form of a linked-data document.
// Fields maps derived field names to sorted, de-duplicated value sets.
// Title and Description are nil when the document has no aggregation node
// or the aggregation carries no such property.
type ExtractedMetadata struct {
	Fields      map[string][]string
	Title       *string
	Description *string
}

// Extract parses a JSON-LD document and flattens every literal statement
// into a (field name, value set) pair. Malformed or empty input yields an
// empty result, never an error: the catalog must keep accepting records
// whose metadata cannot be parsed.
//
// Multi-valued properties are sorted before any join so that repeated
// extraction of the same document is byte-identical even though the
// underlying graph enumerates statements in unstable order.
func Extract(document string) ExtractedMetadata {
	result := ExtractedMetadata{Fields: map[string][]string{}}

	var parsed any
	if err := json.Unmarshal([]byte(document), &parsed); err != nil {
		return result
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")

	raw, err := proc.ToRDF(parsed, opts)
	if err != nil {
		return result
	}

	dataset, ok := raw.(*ld.RDFDataset)
	if !ok {
		return result
	}

	quads := allQuads(dataset)

	values := map[string]map[string]bool{}
	for _, quad := range quads {
		literal, ok := quad.Object.(*ld.Literal)
		if !ok {
			continue
		}

		name := fieldName(quad.Predicate.GetValue())
		if values[name] == nil {
			values[name] = map[string]bool{}
		}
		values[name][literal.GetValue()] = true
	}

	for name, set := range values {
		result.Fields[name] = sortedValues(set)
	}

	if aggregation, ok := findAggregation(quads); ok {
		result.Title = joinedProperty(quads, aggregation, dcTermsTitle)
		result.Description = joinedEmbeddedProperty(quads, aggregation, dsDescription, dsDescriptionValue)
	}

	return result
}

// allQuads enumerates the dataset in a stable order: graphs sorted by
// name, quads in dataset order within each graph.
func allQuads(dataset *ld.RDFDataset) []*ld.Quad {
	names := make([]string, 0, len(dataset.Graphs))
	for name := range dataset.Graphs {
		names = append(names, name)
	}
	sort.Strings(names)

	var quads []*ld.Quad
	for _, name := range names {
		quads = append(quads, dataset.Graphs[name]...)
	}
	return quads
}

// findAggregation returns the subject of the first statement typing a
// node as an ORE aggregation.
func findAggregation(quads []*ld.Quad) (string, bool) {
	for _, quad := range quads {
		if quad.Predicate.GetValue() == rdfType && quad.Object.GetValue() == oreAggregation {
			return quad.Subject.GetValue(), true
		}
	}
	return "", false
}

// joinedProperty collects all literal values of predicate directly on
// subject, sorted and joined with "; ". Nil if there are none.
func joinedProperty(quads []*ld.Quad, subject, predicate string) *string {
	values := map[string]bool{}
	for _, quad := range quads {
		if quad.Subject.GetValue() != subject || quad.Predicate.GetValue() != predicate {
			continue
		}
		if literal, ok := quad.Object.(*ld.Literal); ok {
			values[literal.GetValue()] = true
		}
	}

	return joined(values)
}

// joinedEmbeddedProperty collects literal values reachable through one
// level of indirection: subject -> parent predicate -> node -> child
// predicate -> literal.
func joinedEmbeddedProperty(quads []*ld.Quad, subject, parent, child string) *string {
	values := map[string]bool{}
	for _, quad := range quads {
		if quad.Subject.GetValue() != subject || quad.Predicate.GetValue() != parent {
			continue
		}
		if _, ok := quad.Object.(*ld.Literal); ok {
			continue
		}

		node := quad.Object.GetValue()
		for _, inner := range quads {
			if inner.Subject.GetValue() != node || inner.Predicate.GetValue() != child {
				continue
			}
			if literal, ok := inner.Object.(*ld.Literal); ok {
				values[literal.GetValue()] = true
			}
		}
	}

	return joined(values)
}

func joined(values map[string]bool) *string {
	if len(values) == 0 {
		return nil
	}

	result := strings.Join(sortedValues(values), "; ")
	return &result
}

func sortedValues(set map[string]bool) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

// fieldName derives a flat field name from a predicate IRI: the
// scheme-specific part plus "#fragment" if present, lowercased, one
// leading "//" stripped, every other non-alphanumeric rune replaced by an
// underscore. http://purl.org/dc/terms/title -> purl_org_dc_terms_title.
func fieldName(iri string) string {
	rest := iri
	if i := strings.Index(rest, ":"); i >= 0 {
		rest = rest[i+1:]
	}

	fragment := ""
	if i := strings.Index(rest, "#"); i >= 0 {
		fragment = rest[i+1:]
		rest = rest[:i]
	}

	name := rest
	if fragment != "" {
		name += "#" + fragment
	}

	name = strings.ToLower(name)
	name = strings.TrimPrefix(name, "//")

	return nonAlphanumeric.ReplaceAllString(name, "_")
}
