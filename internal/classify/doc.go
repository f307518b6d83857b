// Package classify turns one raw fiscal XML file into a fiscal.Document.
//
// Extraction is pattern based rather than a full XML parse: only the head of
// each payload is decoded, malformed documents still yield whatever fields
// are present, and anything unrecognizable is rejected quietly. Every pattern
// lives behind a named Extractor, and every precedence decision (void versus
// issued, family, status, direction) is an ordered RuleSet with an explicit
// default, so each rule can be tested on its own.
package classify
