// Package output encodes and decodes mapping output records as text.
//
// Each output kind has a one-entry-per-line text form, used by editing
// surfaces where a whole block is edited at once:
//
//	nodes:     key uid [label|tag]
//	triples:   s p o            (URI object)
//	           s p "literal"    (literal object)
//	metadata:  key=value
//
// Inside persisted documents nodes use a second form, keyed by the JSON
// property name, whose value reads "uid label [tag]". Triples keep their
// line form and metadata stay a plain object.
//
// Parsers are lenient by default: lines that do not match their grammar
// are dropped. The Strict variants instead fail with a
// *domain.MalformedLineError listing every rejected line. Empty text
// always decodes to nil so that "no data" differs from "empty".
package output
