package report

import (
	"io"
	"path/filepath"

	"garimpeiro/internal/fileutil"
	"garimpeiro/internal/fiscal"
	"garimpeiro/internal/reconcile"
)

// Exported lists the artifacts written by Export.
type Exported struct {
	Workbook         fileutil.Written `json:"workbook"`
	Organized        fileutil.Written `json:"organized"`
	Flat             fileutil.Written `json:"flat"`
	OrganizedEntries int              `json:"organized_entries"`
	FlatEntries      int              `json:"flat_entries"`
}

// Export writes the workbook and both archives into dir. docs are the raw
// corpus records with content; each keeps the storage path assigned when it
// was classified.
func Export(dir string, res reconcile.Result, docs []fiscal.Document) (Exported, error) {
	var out Exported
	var err error

	out.Workbook, err = fileutil.WriteAtomic(filepath.Join(dir, WorkbookName), 0o644, func(w io.Writer) error {
		return WriteWorkbook(w, res)
	})
	if err != nil {
		return out, err
	}

	out.Organized, err = fileutil.WriteAtomic(filepath.Join(dir, OrganizedArchiveName), 0o644, func(w io.Writer) error {
		n, err := WriteOrganizedArchive(w, docs)
		out.OrganizedEntries = n
		return err
	})
	if err != nil {
		return out, err
	}

	out.Flat, err = fileutil.WriteAtomic(filepath.Join(dir, FlatArchiveName), 0o644, func(w io.Writer) error {
		n, err := WriteFlatArchive(w, docs)
		out.FlatEntries = n
		return err
	})
	return out, err
}
