package classify

import (
	"html"
	"path"
	"strconv"
	"strings"

	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/textutil"
	"garimpeiro/internal/unpack"
)

// DefaultHeadBytes is the size of the payload prefix that is decoded.
// Identifying fields always sit near the top of a document.
const DefaultHeadBytes = 45000

// Rejection reasons returned by Inspect.
const (
	RejectExtension   = "extension"
	RejectHidden      = "hidden"
	RejectNoMarker    = "no_marker"
	RejectNoAccessKey = "no_access_key"
	RejectInvalid     = "invalid"
	RejectPanic       = "panic"
)

// Options configures a Classifier.
type Options struct {
	HeadBytes int
}

// Classifier extracts fiscal documents from raw payloads.
type Classifier struct {
	headBytes int
}

// New returns a Classifier, defaulting unset options.
func New(opts Options) *Classifier {
	c := &Classifier{headBytes: opts.HeadBytes}
	if c.headBytes <= 0 {
		c.headBytes = DefaultHeadBytes
	}
	return c
}

// Classify classifies data with default options.
func Classify(data []byte, referenceID, fileName string) (fiscal.Document, bool) {
	return New(Options{}).Classify(data, referenceID, fileName)
}

// Classify returns the document and true, or a zero document and false when
// the payload is rejected.
func (c *Classifier) Classify(data []byte, referenceID, fileName string) (fiscal.Document, bool) {
	doc, reason := c.Inspect(data, referenceID, fileName)
	return doc, reason == ""
}

// Inspect behaves like Classify but reports why a payload was rejected. The
// reason is empty for accepted documents.
func (c *Classifier) Inspect(data []byte, referenceID, fileName string) (doc fiscal.Document, reason string) {
	defer func() {
		if r := recover(); r != nil {
			doc, reason = fiscal.Document{}, RejectPanic
		}
	}()

	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if !unpack.HasExt(base, unpack.DocumentExt) {
		return fiscal.Document{}, RejectExtension
	}
	if unpack.IsHidden(base) {
		return fiscal.Document{}, RejectHidden
	}

	h := NewHead(decodeHead(data, c.headBytes))
	if !h.has(StructuralMarkers...) {
		return fiscal.Document{}, RejectNoMarker
	}

	doc = fiscal.Document{
		FileName: base,
		Series:   "0",
		Year:     "0000",
		Month:    "00",
		Content:  data,
	}
	if kind, _ := KindRules.Resolve(h); kind == KindVoid {
		fillVoid(h, &doc)
	} else if !fillIssued(h, &doc) {
		return fiscal.Document{}, RejectNoAccessKey
	}

	doc.Direction, _ = DirectionRules.Resolve(h)
	fillParties(h, &doc)
	doc.OwnEmission = IsOwnEmission(doc.IssuerID, referenceID)
	doc.StoragePath = StoragePath(doc)

	if err := doc.Validate(); err != nil {
		return fiscal.Document{}, RejectInvalid
	}
	return doc, ""
}

func decodeHead(data []byte, limit int) string {
	if len(data) > limit {
		data = data[:limit]
	}
	return strings.ToValidUTF8(string(data), "")
}

func fillVoid(h *Head, doc *fiscal.Document) {
	doc.Family, _ = VoidFamilyRules.Resolve(h)
	if series, ok := Series.Find(h.Text); ok {
		doc.Series = normalizeSeries(series)
	}
	first := 0
	if value, ok := VoidFirst.Find(h.Text); ok {
		first = atoi(value)
	}
	last := first
	if value, ok := VoidLast.Find(h.Text); ok {
		last = atoi(value)
	}
	if last < first {
		last = first
	}
	if year, ok := VoidYear.Find(h.Text); ok {
		doc.Year = normalizeYear(year)
	}
	doc.Number = first
	doc.VoidRange = &fiscal.Range{First: first, Last: last}
	doc.Status = fiscal.StatusVoided
	doc.IdentityKey = fiscal.VoidKey(doc.Family, doc.Series, first)
}

func fillIssued(h *Head, doc *fiscal.Document) bool {
	key, ok := FindFirst(h.Text, AccessKeyTag, AccessKeyAttribute)
	if !ok {
		return false
	}
	h.Key = key
	doc.IdentityKey = key
	doc.Year = "20" + key[2:4]
	doc.Month = key[4:6]
	doc.Series = normalizeSeries(key[22:25])
	doc.Number = atoi(key[25:34])
	doc.Family, _ = FamilyRules.Resolve(h)
	doc.Status, _ = StatusRules.Resolve(h)
	if doc.Status == fiscal.StatusNormal {
		if raw, ok := Value.Find(h.Text); ok {
			if amount, err := fiscal.ParseAmount(raw); err == nil {
				doc.Value = amount
			}
		}
	}
	return true
}

func fillParties(h *Head, doc *fiscal.Document) {
	if len(h.Key) == 44 && h.has(EventMarkers...) {
		doc.IssuerID = h.Key[6:20]
	}
	if scope, ok := IssuerScope.Find(h.Text); ok && doc.IssuerID == "" {
		doc.IssuerID, _ = FindFirst(scope, CNPJ, CPF)
		doc.IssuerName = cleanName(scope)
	}
	if doc.IssuerID == "" {
		doc.IssuerID, _ = CNPJ.Find(h.Text)
	}
	if doc.IssuerID == "" && len(h.Key) == 44 {
		doc.IssuerID = h.Key[6:20]
	}
	for _, extractor := range CounterpartScopes {
		scope, ok := extractor.Find(h.Text)
		if !ok {
			continue
		}
		doc.CounterpartyID, _ = FindFirst(scope, CNPJ, CPF)
		doc.CounterpartyName = cleanName(scope)
		break
	}
	doc.IssueDate, _ = IssueDate.Find(h.Text)
}

// IsOwnEmission compares issuer and reference after reducing both to digits.
func IsOwnEmission(issuerID, referenceID string) bool {
	ref := textutil.DigitsOnly(referenceID)
	return ref != "" && textutil.DigitsOnly(issuerID) == ref
}

// StoragePath derives the archive folder of a classified document.
func StoragePath(doc fiscal.Document) string {
	if doc.OwnEmission {
		return path.Join(
			"EMITIDOS_CLIENTE",
			doc.Family.String(),
			doc.Direction.Folder(),
			doc.Status.Folder(),
			doc.Year,
			doc.Month,
			"Serie_"+doc.Series,
		)
	}
	return path.Join("RECEBIDOS_TERCEIROS", doc.Family.String(), doc.Year, doc.Month)
}

func cleanName(scope string) string {
	name, ok := Name.Find(scope)
	if !ok {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(name))
}

func normalizeSeries(value string) string {
	return strconv.Itoa(atoi(value))
}

func normalizeYear(value string) string {
	if len(value) < 2 {
		value = strings.Repeat("0", 2-len(value)) + value
	}
	return "20" + value[len(value)-2:]
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
