// Package irio reads and writes compilation units as JSON.
//
// A document carries a format name and a semantic version. Readers accept any
// version satisfying SupportedVersions. Variables and loops are written once at
// their declaration with a document-local id and referenced by that id; functions
// are referenced by signature and resolved against the builtin registry and the
// unit's own extern declarations.
package irio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Masterminds/semver/v3"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
	"github.com/orizon-lang/rangeloop/internal/position"
)

const (
	// Format identifies rangeloop HIR documents.
	Format = "rangeloop-hir"
	// Version is the version written by this package.
	Version = "1.0.0"
	// SupportedVersions is the constraint a document's version must satisfy.
	SupportedVersions = ">= 1.0.0, < 2.0.0"
)

type document struct {
	Format  string    `json:"format"`
	Version string    `json:"version"`
	Unit    *unitJSON `json:"unit"`
}

type unitJSON struct {
	Name      string         `json:"name"`
	Externs   []externJSON   `json:"externs,omitempty"`
	Functions []functionJSON `json:"functions"`
	Span      *position.Span `json:"span,omitempty"`
}

type externJSON struct {
	Name   string   `json:"name"`
	Params []string `json:"params,omitempty"`
	Return string   `json:"return"`
}

type functionJSON struct {
	Name string         `json:"name"`
	Body *node          `json:"body,omitempty"`
	Span *position.Span `json:"span,omitempty"`
}

// node is the union of every HIR node; Kind selects the fields in use.
type node struct {
	Kind       string         `json:"kind"`
	ID         int            `json:"id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Type       string         `json:"type,omitempty"`
	Mutable    bool           `json:"mutable,omitempty"`
	Origin     string         `json:"origin,omitempty"`
	Label      string         `json:"label,omitempty"`
	Const      *int64         `json:"const,omitempty"`
	Function   string         `json:"function,omitempty"`
	Variable   int            `json:"variable,omitempty"`
	Loop       int            `json:"loop,omitempty"`
	Receiver   *node          `json:"receiver,omitempty"`
	Args       []*node        `json:"args,omitempty"`
	Value      *node          `json:"value,omitempty"`
	Condition  *node          `json:"condition,omitempty"`
	Then       *node          `json:"then,omitempty"`
	Else       *node          `json:"else,omitempty"`
	Body       *node          `json:"body,omitempty"`
	Statements []*node        `json:"statements,omitempty"`
	Span       *position.Span `json:"span,omitempty"`
}

const (
	kindBlock     = "block"
	kindComposite = "composite"
	kindVar       = "var"
	kindGet       = "get"
	kindSet       = "set"
	kindConst     = "const"
	kindCall      = "call"
	kindNotNull   = "notnull"
	kindIf        = "if"
	kindWhile     = "while"
	kindDoWhile   = "dowhile"
	kindBreak     = "break"
	kindContinue  = "continue"
)

// Encode writes f to w as an indented JSON document.
func Encode(w io.Writer, f *hir.File) error {
	doc, err := encodeFile(f)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Marshal returns the JSON document for f.
func Marshal(f *hir.File) ([]byte, error) {
	doc, err := encodeFile(f)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Decode reads one document from r. Builtin functions are resolved through reg.
func Decode(r io.Reader, reg *intrinsics.IntrinsicRegistry) (*hir.File, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Decode("", "malformed document: "+err.Error())
	}
	return decodeFile(&doc, reg)
}

// Unmarshal decodes a document held in memory.
func Unmarshal(data []byte, reg *intrinsics.IntrinsicRegistry) (*hir.File, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Decode("", "malformed document: "+err.Error())
	}
	return decodeFile(&doc, reg)
}

// CheckVersion reports whether a document version can be read.
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("version %s does not satisfy %s", v, SupportedVersions)
	}
	return nil
}

func spanOf(s position.Span) *position.Span {
	if !s.IsValid() {
		return nil
	}
	return &s
}

func spanFrom(s *position.Span) position.Span {
	if s == nil {
		return position.NoSpan
	}
	return *s
}
