package testsupport

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TaxpayerCNPJ is the reference taxpayer used by fixtures unless overridden.
const TaxpayerCNPJ = "12345678000190"

// ThirdPartyCNPJ issues documents that do not belong to the taxpayer.
const ThirdPartyCNPJ = "98765432000110"

// AccessKey assembles a 44-digit access key from its components. The check
// digit is not computed; nothing in the pipeline verifies it.
func AccessKey(state, yearMonth, cnpj, model string, series, number int) string {
	return fmt.Sprintf("%s%s%s%s%03d%09d1%08d0", state, yearMonth, cnpj, model, series, number, number%100000000)
}

// Invoice describes an issued document fixture. Zero fields take defaults:
// model 55, state 35, period 2401, series 1, issuer TaxpayerCNPJ.
type Invoice struct {
	Model         string
	State         string
	YearMonth     string
	IssuerCNPJ    string
	IssuerName    string
	RecipientCNPJ string
	Series        int
	Number        int
	Value         string
	Inbound       bool
	Cancelled     bool
}

func (inv Invoice) withDefaults() Invoice {
	if inv.Model == "" {
		inv.Model = "55"
	}
	if inv.State == "" {
		inv.State = "35"
	}
	if inv.YearMonth == "" {
		inv.YearMonth = "2401"
	}
	if inv.IssuerCNPJ == "" {
		inv.IssuerCNPJ = TaxpayerCNPJ
	}
	if inv.IssuerName == "" {
		inv.IssuerName = "EMPRESA TESTE LTDA"
	}
	if inv.RecipientCNPJ == "" {
		inv.RecipientCNPJ = ThirdPartyCNPJ
	}
	if inv.Series == 0 {
		inv.Series = 1
	}
	return inv
}

// Key returns the access key of the fixture.
func (inv Invoice) Key() string {
	inv = inv.withDefaults()
	return AccessKey(inv.State, inv.YearMonth, inv.IssuerCNPJ, inv.Model, inv.Series, inv.Number)
}

// FileName returns a conventional file name for the fixture.
func (inv Invoice) FileName() string {
	return inv.Key() + "-proc.xml"
}

// XML renders the fixture as an authorized document with its protocol.
func (inv Invoice) XML() []byte {
	inv = inv.withDefaults()
	key := inv.Key()
	status := "100"
	if inv.Cancelled {
		status = "101"
	}
	date := fmt.Sprintf("20%s-%s-15T10:00:00-03:00", inv.YearMonth[:2], inv.YearMonth[2:])

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	switch inv.Model {
	case "57":
		fmt.Fprintf(&b, `<cteProc versao="4.00"><CTe><infCte Id="CTe%s" versao="4.00">`, key)
		fmt.Fprintf(&b, `<ide><mod>57</mod><serie>%d</serie><nCT>%d</nCT><dhEmi>%s</dhEmi></ide>`, inv.Series, inv.Number, date)
		fmt.Fprintf(&b, `<emit><CNPJ>%s</CNPJ><xNome>%s</xNome></emit>`, inv.IssuerCNPJ, inv.IssuerName)
		fmt.Fprintf(&b, `<rem><CNPJ>%s</CNPJ><xNome>REMETENTE</xNome></rem>`, inv.RecipientCNPJ)
		if inv.Value != "" {
			fmt.Fprintf(&b, `<vPrest><vTPrest>%s</vTPrest></vPrest>`, inv.Value)
		}
		fmt.Fprintf(&b, `</infCte></CTe><protCTe><infProt><chCTe>%s</chCTe><cStat>%s</cStat></infProt></protCTe></cteProc>`, key, status)
	case "58":
		fmt.Fprintf(&b, `<mdfeProc versao="3.00"><MDFe><infMDFe Id="MDFe%s" versao="3.00">`, key)
		fmt.Fprintf(&b, `<ide><mod>58</mod><serie>%d</serie><nMDF>%d</nMDF><dhEmi>%s</dhEmi></ide>`, inv.Series, inv.Number, date)
		fmt.Fprintf(&b, `<emit><CNPJ>%s</CNPJ><xNome>%s</xNome></emit>`, inv.IssuerCNPJ, inv.IssuerName)
		fmt.Fprintf(&b, `</infMDFe></MDFe><protMDFe><infProt><chMDFe>%s</chMDFe><cStat>%s</cStat></infProt></protMDFe></mdfeProc>`, key, status)
	default:
		tpNF := "1"
		if inv.Inbound {
			tpNF = "0"
		}
		fmt.Fprintf(&b, `<nfeProc versao="4.00"><NFe xmlns="http://www.portalfiscal.inf.br/nfe"><infNFe Id="NFe%s" versao="4.00">`, key)
		fmt.Fprintf(&b, `<ide><mod>%s</mod><serie>%d</serie><nNF>%d</nNF><dhEmi>%s</dhEmi><tpNF>%s</tpNF></ide>`, inv.Model, inv.Series, inv.Number, date, tpNF)
		fmt.Fprintf(&b, `<emit><CNPJ>%s</CNPJ><xNome>%s</xNome></emit>`, inv.IssuerCNPJ, inv.IssuerName)
		fmt.Fprintf(&b, `<dest><CNPJ>%s</CNPJ><xNome>CLIENTE</xNome></dest>`, inv.RecipientCNPJ)
		if inv.Value != "" {
			fmt.Fprintf(&b, `<total><ICMSTot><vNF>%s</vNF></ICMSTot></total>`, inv.Value)
		}
		fmt.Fprintf(&b, `</infNFe></NFe><protNFe><infProt><chNFe>%s</chNFe><cStat>%s</cStat></infProt></protNFe></nfeProc>`, key, status)
	}
	return []byte(b.String())
}

// CancellationEvent renders a cancellation event for key.
func CancellationEvent(key, authorCNPJ string) []byte {
	return event(key, authorCNPJ, "110111", "Cancelamento")
}

// CorrectionLetter renders a correction-letter event for key.
func CorrectionLetter(key, authorCNPJ string) []byte {
	return event(key, authorCNPJ, "110110", "Carta de Correcao")
}

func event(key, authorCNPJ, code, description string) []byte {
	if authorCNPJ == "" {
		authorCNPJ = TaxpayerCNPJ
	}
	return fmt.Appendf(nil, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<procEventoNFe versao="1.00"><evento versao="1.00"><infEvento Id="ID%s%s01">`+
		`<cOrgao>35</cOrgao><CNPJ>%s</CNPJ><chNFe>%s</chNFe><dhEvento>2024-02-01T09:00:00-03:00</dhEvento>`+
		`<tpEvento>%s</tpEvento><nSeqEvento>1</nSeqEvento><detEvento><descEvento>%s</descEvento></detEvento>`+
		`</infEvento></evento><retEvento><infEvento><cStat>135</cStat></infEvento></retEvento></procEventoNFe>`,
		code, key, authorCNPJ, key, code, description)
}

// Void describes a void-range declaration fixture. Zero fields take defaults:
// model 55, year 24, series 1, issuer TaxpayerCNPJ.
type Void struct {
	Model  string
	Year   string
	CNPJ   string
	Series int
	First  int
	Last   int
}

// XML renders the declaration together with its response.
func (v Void) XML() []byte {
	if v.Model == "" {
		v.Model = "55"
	}
	if v.Year == "" {
		v.Year = "24"
	}
	if v.CNPJ == "" {
		v.CNPJ = TaxpayerCNPJ
	}
	if v.Series == 0 {
		v.Series = 1
	}
	return fmt.Appendf(nil, `<?xml version="1.0" encoding="UTF-8"?>`+
		`<procInutNFe versao="4.00"><inutNFe versao="4.00"><infInut Id="ID35%s%s%s%03d%09d%09d">`+
		`<tpAmb>1</tpAmb><xServ>INUTILIZAR</xServ><cUF>35</cUF><ano>%s</ano><CNPJ>%s</CNPJ>`+
		`<mod>%s</mod><serie>%d</serie><nNFIni>%d</nNFIni><nNFFin>%d</nNFFin><xJust>Falha de sistema</xJust>`+
		`</infInut></inutNFe><retInutNFe versao="4.00"><infInut><cStat>102</cStat>`+
		`<dhRecbto>20%s-03-01T08:00:00-03:00</dhRecbto></infInut></retInutNFe></procInutNFe>`,
		v.Year, v.CNPJ, v.Model, v.Series, v.First, v.Last,
		v.Year, v.CNPJ, v.Model, v.Series, v.First, v.Last, v.Year)
}

// ZipEntry is one member of a fixture archive.
type ZipEntry struct {
	Name string
	Data []byte
}

// Zip builds an in-memory archive from entries.
func Zip(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		w, err := zw.Create(entry.Name)
		if err != nil {
			t.Fatalf("zip create %s: %v", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			t.Fatalf("zip write %s: %v", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// WriteBytes stores data at path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
