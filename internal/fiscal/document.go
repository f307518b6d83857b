package fiscal

import (
	"fmt"
	"strings"
)

// Family identifies the fiscal document model.
type Family string

const (
	FamilyInvoiceFull        Family = "NF-e"
	FamilyInvoiceConsumer    Family = "NFC-e"
	FamilyFreightBill        Family = "CT-e"
	FamilyManifestMultiModal Family = "MDF-e"
	FamilyOther              Family = "Outros"
)

var allFamilies = []Family{
	FamilyInvoiceFull,
	FamilyInvoiceConsumer,
	FamilyFreightBill,
	FamilyManifestMultiModal,
	FamilyOther,
}

// Families returns every family in report order.
func Families() []Family {
	return append([]Family(nil), allFamilies...)
}

// ParseFamily maps a stored label back to a Family. Unknown labels map to
// FamilyOther.
func ParseFamily(value string) Family {
	value = strings.TrimSpace(value)
	for _, f := range allFamilies {
		if strings.EqualFold(string(f), value) {
			return f
		}
	}
	return FamilyOther
}

// Order returns the position of the family in report order.
func (f Family) Order() int {
	for idx, candidate := range allFamilies {
		if candidate == f {
			return idx
		}
	}
	return len(allFamilies)
}

// Code returns the compact token used inside synthetic identity keys.
func (f Family) Code() string {
	switch f {
	case FamilyInvoiceFull:
		return "NFE"
	case FamilyInvoiceConsumer:
		return "NFCE"
	case FamilyFreightBill:
		return "CTE"
	case FamilyManifestMultiModal:
		return "MDFE"
	default:
		return "OUT"
	}
}

func (f Family) String() string { return string(f) }

// Status is the document status inferred from its XML content.
type Status string

const (
	StatusNormal           Status = "Normal"
	StatusCancelled        Status = "Cancelled"
	StatusVoided           Status = "Voided"
	StatusCorrectionLetter Status = "CorrectionLetter"
)

// ParseStatus maps a stored label back to a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.TrimSpace(value)) {
	case StatusNormal:
		return StatusNormal, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusVoided:
		return StatusVoided, nil
	case StatusCorrectionLetter:
		return StatusCorrectionLetter, nil
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// Terminal reports whether the status retires the document number. Terminal
// statuses win deduplication and never contribute value.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusVoided
}

// Folder returns the archive folder name used in storage paths.
func (s Status) Folder() string {
	switch s {
	case StatusCancelled:
		return "CANCELADOS"
	case StatusVoided:
		return "INUTILIZADOS"
	case StatusCorrectionLetter:
		return "CARTA_CORRECAO"
	default:
		return "NORMAIS"
	}
}

func (s Status) String() string { return string(s) }

// Direction is the operation direction declared by the issuer.
type Direction string

const (
	DirectionInbound  Direction = "Inbound"
	DirectionOutbound Direction = "Outbound"
)

// ParseDirection maps a stored label back to a Direction, defaulting to outbound.
func ParseDirection(value string) Direction {
	if Direction(strings.TrimSpace(value)) == DirectionInbound {
		return DirectionInbound
	}
	return DirectionOutbound
}

// Folder returns the archive folder name used in storage paths.
func (d Direction) Folder() string {
	if d == DirectionInbound {
		return "ENTRADA"
	}
	return "SAIDA"
}

func (d Direction) String() string { return string(d) }

// Range is an inclusive span of document numbers retired by a void declaration.
type Range struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

// Len returns the number of document numbers covered by the range.
func (r Range) Len() int {
	if r.Last < r.First {
		return 0
	}
	return r.Last - r.First + 1
}

// MaxRangeLen bounds how many numbers a single void declaration may cover.
// Larger ranges come from corrupt or hostile input and are rejected.
const MaxRangeLen = 1_000_000

// VoidKeyPrefix marks synthetic identity keys built for void declarations.
const VoidKeyPrefix = "INUT_"

// VoidKey builds the synthetic identity key of a void declaration.
func VoidKey(family Family, series string, first int) string {
	return fmt.Sprintf("%s%s_%s_%d", VoidKeyPrefix, family.Code(), series, first)
}

// IsVoidKey reports whether key was produced by VoidKey.
func IsVoidKey(key string) bool {
	return strings.HasPrefix(key, VoidKeyPrefix)
}

// Document is one classified fiscal XML file.
type Document struct {
	IdentityKey      string    `json:"identity_key"`
	FileName         string    `json:"file_name"`
	Family           Family    `json:"family"`
	Series           string    `json:"series"`
	Number           int       `json:"number"`
	VoidRange        *Range    `json:"void_range,omitempty"`
	Status           Status    `json:"status"`
	Value            Amount    `json:"value"`
	Direction        Direction `json:"direction"`
	Year             string    `json:"year"`
	Month            string    `json:"month"`
	IssueDate        string    `json:"issue_date,omitempty"`
	IssuerID         string    `json:"issuer_id,omitempty"`
	IssuerName       string    `json:"issuer_name,omitempty"`
	CounterpartyID   string    `json:"counterparty_id,omitempty"`
	CounterpartyName string    `json:"counterparty_name,omitempty"`
	OwnEmission      bool      `json:"own_emission"`
	StoragePath      string    `json:"storage_path"`
	Content          []byte    `json:"-"`
}

// Numbers returns every document number the record accounts for: the whole
// range for void declarations, otherwise the single sequence number.
func (d Document) Numbers() []int {
	if d.VoidRange == nil {
		return []int{d.Number}
	}
	out := make([]int, 0, d.VoidRange.Len())
	for n := d.VoidRange.First; n <= d.VoidRange.Last; n++ {
		out = append(out, n)
	}
	return out
}

// Validate checks the record invariants that must hold before a document is
// accepted into the corpus.
func (d Document) Validate() error {
	if strings.TrimSpace(d.IdentityKey) == "" {
		return fmt.Errorf("document %q: empty identity key", d.FileName)
	}
	if d.Number < 0 {
		return fmt.Errorf("document %q: negative number %d", d.FileName, d.Number)
	}
	if d.VoidRange != nil {
		if d.Status != StatusVoided {
			return fmt.Errorf("document %q: void range on %s document", d.FileName, d.Status)
		}
		if d.VoidRange.First != d.Number {
			return fmt.Errorf("document %q: void range starts at %d, number is %d", d.FileName, d.VoidRange.First, d.Number)
		}
		if d.VoidRange.Last < d.VoidRange.First {
			return fmt.Errorf("document %q: void range %d..%d is inverted", d.FileName, d.VoidRange.First, d.VoidRange.Last)
		}
		if d.VoidRange.Len() > MaxRangeLen {
			return fmt.Errorf("document %q: void range %d..%d exceeds %d numbers", d.FileName, d.VoidRange.First, d.VoidRange.Last, MaxRangeLen)
		}
	}
	if d.Value < 0 {
		return fmt.Errorf("document %q: negative value", d.FileName)
	}
	return nil
}
