package classify

import (
	"regexp"
	"strings"

	"garimpeiro/internal/fiscal"
)

// Extractor is a named pattern whose first capture group is the extracted value.
type Extractor struct {
	Name    string
	pattern *regexp.Regexp
}

func newExtractor(name, pattern string) Extractor {
	return Extractor{Name: name, pattern: regexp.MustCompile(pattern)}
}

// Find returns the first captured value in text.
func (e Extractor) Find(text string) (string, bool) {
	match := e.pattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// FindFirst returns the value of the first extractor that matches.
func FindFirst(text string, extractors ...Extractor) (string, bool) {
	for _, e := range extractors {
		if value, ok := e.Find(text); ok {
			return value, true
		}
	}
	return "", false
}

var (
	AccessKeyTag       = newExtractor("access_key_tag", `(?i)<(?:chNFe|chCTe|chMDFe)>(\d{44})</`)
	AccessKeyAttribute = newExtractor("access_key_attribute", `(?i)Id=["'](?:NFe|CTe|MDFe)?(\d{44})["']`)
	Series             = newExtractor("series", `(?i)<serie>(\d+)</`)
	VoidFirst          = newExtractor("void_first", `(?i)<nNFIni>(\d+)</`)
	VoidLast           = newExtractor("void_last", `(?i)<nNFFin>(\d+)</`)
	VoidYear           = newExtractor("void_year", `(?i)<ano>(\d+)</`)
	OperationType      = newExtractor("operation_type", `(?i)<tpNF>([01])</tpNF>`)
	Value              = newExtractor("value", `(?i)<(?:vNF|vTPrest|vReceb)>([\d.]+)</`)
	CNPJ               = newExtractor("cnpj", `(?i)<CNPJ>(\d+)</CNPJ>`)
	CPF                = newExtractor("cpf", `(?i)<CPF>(\d+)</CPF>`)
	Name               = newExtractor("name", `(?i)<xNome>([^<]*)</xNome>`)
	IssueDate          = newExtractor("issue_date", `(?i)<(?:dhEmi|dEmi|dhEvento|dhRecbto)>(\d{4}-\d{2}-\d{2})`)

	IssuerScope       = newExtractor("issuer_scope", `(?is)<emit[\s>](.*?)</emit>`)
	RecipientScope    = newExtractor("recipient_scope", `(?is)<dest[\s>](.*?)</dest>`)
	SenderScope       = newExtractor("sender_scope", `(?is)<rem[\s>](.*?)</rem>`)
	TakerScope        = newExtractor("taker_scope", `(?is)<toma[\s>](.*?)</toma>`)
	CounterpartScopes = []Extractor{RecipientScope, SenderScope, TakerScope}
)

// Head is the decoded head window of one document. Key is filled once the
// access key has been located.
type Head struct {
	Text  string
	Lower string
	Key   string
}

// NewHead prepares text for rule evaluation.
func NewHead(text string) *Head {
	return &Head{Text: text, Lower: strings.ToLower(text)}
}

func (h *Head) has(markers ...string) bool {
	for _, marker := range markers {
		if strings.Contains(h.Lower, marker) {
			return true
		}
	}
	return false
}

// StructuralMarkers are the lowercase substrings of which at least one must
// appear for a payload to be treated as a fiscal document.
var StructuralMarkers = []string{
	"<nfe", "<cte", "<mdfe",
	"<inutnfe", "<retinutnfe", "<procinut",
	"<procevento", "<evento", "<resnfe", "<resevento",
}

// VoidMarkers identify void-range declarations.
var VoidMarkers = []string{"<inutnfe", "<retinutnfe", "<procinut"}

// EventMarkers identify events. Their document-level CNPJ is the event
// author, not the issuer of the referenced document.
var EventMarkers = []string{"<procevento", "<evento"}

// Rule maps a predicate over the document head to a value.
type Rule[T any] struct {
	Name  string
	Match func(h *Head) bool
	Value T
}

// RuleSet evaluates rules in order and falls back to Default.
type RuleSet[T any] struct {
	Name    string
	Rules   []Rule[T]
	Default T
}

// DefaultRuleName is reported by Resolve when no rule matched.
const DefaultRuleName = "default"

// Resolve returns the value of the first matching rule and its name.
func (s RuleSet[T]) Resolve(h *Head) (T, string) {
	for _, rule := range s.Rules {
		if rule.Match(h) {
			return rule.Value, rule.Name
		}
	}
	return s.Default, DefaultRuleName
}

func contains(markers ...string) func(h *Head) bool {
	return func(h *Head) bool { return h.has(markers...) }
}

func keyModel(model string) func(h *Head) bool {
	return func(h *Head) bool { return len(h.Key) == 44 && h.Key[20:22] == model }
}

// Kind separates void declarations from issued documents.
type Kind int

const (
	KindIssued Kind = iota
	KindVoid
)

// KindRules decides the classification path. Void detection outranks
// everything else.
var KindRules = RuleSet[Kind]{
	Name: "kind",
	Rules: []Rule[Kind]{
		{Name: "void_declaration", Match: contains(VoidMarkers...), Value: KindVoid},
	},
	Default: KindIssued,
}

// VoidFamilyRules infer the family of a void declaration.
var VoidFamilyRules = RuleSet[fiscal.Family]{
	Name: "void_family",
	Rules: []Rule[fiscal.Family]{
		{Name: "model_65", Match: contains("<mod>65</mod>"), Value: fiscal.FamilyInvoiceConsumer},
		{Name: "model_57", Match: contains("<mod>57</mod>"), Value: fiscal.FamilyFreightBill},
	},
	Default: fiscal.FamilyInvoiceFull,
}

// FamilyRules infer the family of an issued document.
var FamilyRules = RuleSet[fiscal.Family]{
	Name: "family",
	Rules: []Rule[fiscal.Family]{
		{Name: "model_65", Match: contains("<mod>65</mod>"), Value: fiscal.FamilyInvoiceConsumer},
		{Name: "model_57", Match: contains("<mod>57</mod>", "<infcte"), Value: fiscal.FamilyFreightBill},
		{Name: "model_58", Match: contains("<mod>58</mod>", "<infmdfe"), Value: fiscal.FamilyManifestMultiModal},
		{Name: "key_model_65", Match: keyModel("65"), Value: fiscal.FamilyInvoiceConsumer},
		{Name: "key_model_57", Match: keyModel("57"), Value: fiscal.FamilyFreightBill},
		{Name: "key_model_58", Match: keyModel("58"), Value: fiscal.FamilyManifestMultiModal},
	},
	Default: fiscal.FamilyInvoiceFull,
}

// StatusRules infer the status of an issued document. Cancellation wins over
// a correction letter.
var StatusRules = RuleSet[fiscal.Status]{
	Name: "status",
	Rules: []Rule[fiscal.Status]{
		{Name: "cancellation_event", Match: contains("<tpevento>110111</tpevento>"), Value: fiscal.StatusCancelled},
		{Name: "cancelled_protocol", Match: contains("<cstat>101</cstat>"), Value: fiscal.StatusCancelled},
		{Name: "correction_event", Match: contains("<tpevento>110110</tpevento>"), Value: fiscal.StatusCorrectionLetter},
	},
	Default: fiscal.StatusNormal,
}

// DirectionRules read the operation type; documents without one are outbound.
var DirectionRules = RuleSet[fiscal.Direction]{
	Name: "direction",
	Rules: []Rule[fiscal.Direction]{
		{Name: "operation_inbound", Match: operationType("0"), Value: fiscal.DirectionInbound},
		{Name: "operation_outbound", Match: operationType("1"), Value: fiscal.DirectionOutbound},
	},
	Default: fiscal.DirectionOutbound,
}

func operationType(code string) func(h *Head) bool {
	return func(h *Head) bool {
		value, ok := OperationType.Find(h.Text)
		return ok && value == code
	}
}
