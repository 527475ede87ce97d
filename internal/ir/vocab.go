package ir

import (
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
)

// RDFType is the full rdf:type IRI, the predicate SPARQL abbreviates as "a".
var RDFType = string(quad.IRI(rdf.Type).Full())

// Well-known namespaces available as prefixes in template files.
var DefaultPrefixes = map[string]string{
	"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
	"xsd":  "http://www.w3.org/2001/XMLSchema#",
	"owl":  "http://www.w3.org/2002/07/owl#",
	"dbo":  "http://dbpedia.org/ontology/",
	"dbr":  "http://dbpedia.org/resource/",
}

// TypeTriple returns the pattern (subject rdf:type class).
func TypeTriple(subject Term, class string) TriplePattern {
	return TriplePattern{Subject: subject, Predicate: IRI{Value: RDFType}, Object: IRI{Value: class}}
}
