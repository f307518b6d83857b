// Package fiscal defines the document record shared by the classifier, the
// corpus store, and the reconciliation engine.
//
// A Document is produced once per accepted XML file. Identity keys are either
// the 44-digit national access key or a synthetic INUT_ key for void-range
// declarations; the two spaces never collide because synthetic keys always
// carry a letter prefix. Monetary values are kept as integer centavos so
// accumulation and rounding are exact.
package fiscal
