package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"lstree/internal/model"
)

// Document is the exported form of a walk.
type Document struct {
	Root     string          `json:"root" cbor:"root"`
	Order    string          `json:"order" cbor:"order"`
	Version  string          `json:"version" cbor:"version"`
	Summary  model.Summary   `json:"summary" cbor:"summary"`
	Listings []model.Listing `json:"listings" cbor:"listings"`
}

// NewDocument bundles listings with their summary.
func NewDocument(root, order string, listings []model.Listing) Document {
	if listings == nil {
		listings = []model.Listing{}
	}
	return Document{
		Root:     root,
		Order:    order,
		Version:  model.Version,
		Summary:  model.Summarize(listings),
		Listings: listings,
	}
}

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat accepts "json" and "cbor".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCBOR:
		return f, nil
	}
	return "", fmt.Errorf("report: unknown format %q", s)
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(doc)
	case FormatCBOR:
		b, err := cbor.Marshal(doc)
		if err != nil {
			return fmt.Errorf("report: cbor marshal: %w", err)
		}
		_, err = w.Write(b)
		return err
	}
	return fmt.Errorf("report: unknown format %q", string(f))
}

// DecodeCBOR reads a document written by Encode with FormatCBOR.
func DecodeCBOR(b []byte) (Document, error) {
	var doc Document
	if err := cbor.Unmarshal(b, &doc); err != nil {
		return Document{}, fmt.Errorf("report: cbor unmarshal: %w", err)
	}
	return doc, nil
}
