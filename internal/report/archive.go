package report

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"time"

	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/textutil"
)

// Archive file names written by export.
const (
	OrganizedArchiveName = "xmls_organizados.zip"
	FlatArchiveName      = "todos_xmls.zip"
	WorkbookName         = "relatorio_auditoria.xlsx"
)

// WriteOrganizedArchive writes each document's content under its storage
// path. It returns the number of entries written; repeated paths and
// documents without content are left out.
func WriteOrganizedArchive(w io.Writer, docs []fiscal.Document) (int, error) {
	return writeArchive(w, docs, func(doc fiscal.Document) string {
		return path.Join(doc.StoragePath, entryName(doc))
	})
}

// WriteFlatArchive writes every document at the archive root by file name.
func WriteFlatArchive(w io.Writer, docs []fiscal.Document) (int, error) {
	return writeArchive(w, docs, entryName)
}

func entryName(doc fiscal.Document) string {
	name := textutil.SanitizeFileName(doc.FileName)
	if name == "" {
		name = textutil.SanitizeFileName(doc.IdentityKey) + ".xml"
	}
	return name
}

func writeArchive(w io.Writer, docs []fiscal.Document, nameFor func(fiscal.Document) string) (int, error) {
	zw := zip.NewWriter(w)
	seen := make(map[string]struct{}, len(docs))
	written := 0
	for _, doc := range docs {
		if len(doc.Content) == 0 {
			continue
		}
		name := nameFor(doc)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return written, fmt.Errorf("archive entry %s: %w", name, err)
		}
		if _, err := entry.Write(doc.Content); err != nil {
			return written, fmt.Errorf("archive entry %s: %w", name, err)
		}
		written++
	}
	if err := zw.Close(); err != nil {
		return written, fmt.Errorf("close archive: %w", err)
	}
	return written, nil
}
