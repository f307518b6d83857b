// Package textutil provides small text helpers shared by the classifier, the
// ledger loader, and the archive exporter.
//
// The primary use cases are:
//   - Reducing taxpayer identifiers to their digits for comparison
//   - Folding free-text status labels to accent-free upper case
//   - Sanitizing filenames and path segments for archive entries
package textutil
