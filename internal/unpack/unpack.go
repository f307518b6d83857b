package unpack

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"path"
	"strings"
)

const (
	// ContainerExt is the extension of recursively expanded archives.
	ContainerExt = ".zip"
	// DocumentExt is the extension of fiscal documents.
	DocumentExt = ".xml"

	// DefaultMaxDepth bounds container nesting.
	DefaultMaxDepth = 25
	// DefaultMaxEntryBytes bounds the decompressed size of a single member.
	DefaultMaxEntryBytes int64 = 64 << 20
)

// DefaultSkipFolders lists folder names produced by archivers that never hold
// documents.
var DefaultSkipFolders = []string{"__MACOSX"}

// Skip reasons reported to Options.OnSkip.
const (
	SkipCorrupt  = "corrupt"
	SkipDepth    = "depth"
	SkipTooLarge = "too_large"
	SkipHidden   = "hidden"
)

// Entry is one document extracted from an input.
type Entry struct {
	Name string
	Data []byte
}

// Skip describes an input member that was not expanded.
type Skip struct {
	Name   string
	Reason string
	Err    error
}

// Options configures an Unpacker. Zero values select the defaults.
type Options struct {
	MaxDepth      int
	MaxEntryBytes int64
	SkipFolders   []string
	OnSkip        func(Skip)
}

// Unpacker expands containers according to its options.
type Unpacker struct {
	maxDepth      int
	maxEntryBytes int64
	skipFolders   []string
	onSkip        func(Skip)
}

// New returns an Unpacker, filling unset options with defaults.
func New(opts Options) *Unpacker {
	u := &Unpacker{
		maxDepth:      opts.MaxDepth,
		maxEntryBytes: opts.MaxEntryBytes,
		skipFolders:   opts.SkipFolders,
		onSkip:        opts.OnSkip,
	}
	if u.maxDepth <= 0 {
		u.maxDepth = DefaultMaxDepth
	}
	if u.maxEntryBytes <= 0 {
		u.maxEntryBytes = DefaultMaxEntryBytes
	}
	if u.skipFolders == nil {
		u.skipFolders = DefaultSkipFolders
	}
	return u
}

// Expand flattens a single input using default options.
func Expand(name string, data []byte) iter.Seq[Entry] {
	return New(Options{}).Expand(name, data)
}

// Expand yields every document contained in the named input. A bare document
// yields itself; a container yields its documents depth-first in archive
// order; anything else yields nothing.
func (u *Unpacker) Expand(name string, data []byte) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		switch {
		case HasExt(name, ContainerExt):
			u.walk(name, data, 1, yield)
		case HasExt(name, DocumentExt):
			yield(Entry{Name: baseName(name), Data: data})
		}
	}
}

func (u *Unpacker) walk(name string, data []byte, depth int, yield func(Entry) bool) bool {
	if depth > u.maxDepth {
		u.skip(name, SkipDepth, fmt.Errorf("nesting exceeds %d levels", u.maxDepth))
		return true
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		u.skip(name, SkipCorrupt, err)
		return true
	}
	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		member := normalizeName(file.Name)
		if u.inSkippedFolder(member) || IsHidden(member) {
			u.skip(member, SkipHidden, nil)
			continue
		}
		nested := HasExt(member, ContainerExt)
		if !nested && !HasExt(member, DocumentExt) {
			continue
		}
		content, err := u.readMember(file)
		if err != nil {
			reason := SkipCorrupt
			if errors.Is(err, errTooLarge) {
				reason = SkipTooLarge
			}
			u.skip(member, reason, err)
			continue
		}
		if nested {
			if !u.walk(member, content, depth+1, yield) {
				return false
			}
			continue
		}
		if !yield(Entry{Name: baseName(member), Data: content}) {
			return false
		}
	}
	return true
}

var errTooLarge = errors.New("member exceeds size limit")

func (u *Unpacker) readMember(file *zip.File) ([]byte, error) {
	if file.UncompressedSize64 > uint64(u.maxEntryBytes) {
		return nil, errTooLarge
	}
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	// Declared sizes can lie; cap the actual read as well.
	content, err := io.ReadAll(io.LimitReader(rc, u.maxEntryBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > u.maxEntryBytes {
		return nil, errTooLarge
	}
	return content, nil
}

func (u *Unpacker) inSkippedFolder(member string) bool {
	dir := path.Dir(member)
	if dir == "." || dir == "/" {
		return false
	}
	for _, segment := range strings.Split(dir, "/") {
		for _, folder := range u.skipFolders {
			if strings.EqualFold(segment, folder) {
				return true
			}
		}
	}
	return false
}

func (u *Unpacker) skip(name, reason string, err error) {
	if u.onSkip != nil {
		u.onSkip(Skip{Name: name, Reason: reason, Err: err})
	}
}

// HasExt reports whether name ends with ext, ignoring case.
func HasExt(name, ext string) bool {
	return strings.HasSuffix(strings.ToLower(name), ext)
}

// IsHidden reports whether the base name marks a hidden or temporary file.
func IsHidden(name string) bool {
	base := baseName(name)
	return strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~")
}

func normalizeName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}

func baseName(name string) string {
	return path.Base(normalizeName(name))
}
