package attack

import (
	"strconv"
	"strings"
)

// Version stamps written into every layer document, independent of the
// content actually fetched.
const (
	LayerFormatVersion   = "4.2"
	NavigatorVersion     = "4.3"
	AttackContentVersion = "9"
)

// The named columns read from a layer input sheet.
const (
	techniqueIDColumn = "techniqueID"
	colorColumn       = "color"
	enabledColumn     = "enabled"
	scoreColumn       = "score"
	commentColumn     = "comment"
)

// Versions is the fixed version triple of a layer document.
type Versions struct {
	Layer     string `json:"layer"`
	Navigator string `json:"navigator"`
	Attack    string `json:"attack"`
}

// LayerTechnique is one technique entry in a layer document. Optional fields
// absent from the source row are omitted from the JSON, never emitted as null.
type LayerTechnique struct {
	TechniqueID string   `json:"techniqueID"`
	Color       string   `json:"color,omitempty"`
	Enabled     *bool    `json:"enabled,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Comment     string   `json:"comment,omitempty"`
}

// Layer is the document consumed by the ATT&CK Navigator.
type Layer struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Domain      string           `json:"domain"`
	Versions    Versions         `json:"versions"`
	Techniques  []LayerTechnique `json:"techniques"`
	Platforms   []string         `json:"platforms"`
}

// Metadata carries the user-supplied layer name and description.
type Metadata struct {
	Name        string
	Description string
}

// Assemble builds a layer document from a sheet's named columns and rows.
// Rows without a techniqueID value are skipped; every other qualifying row is
// emitted as its own entry, duplicates included, in input order. The platform
// filter only shapes the document's platforms array, never the technique
// entries. Column lookups are catalog-agnostic: IDs are passed through
// without validation against the real ATT&CK catalog.
func Assemble(columns []string, rows []map[string]string, meta Metadata, domain string, filter FilterSpec) (*Layer, error) {
	platforms, err := filter.Resolve(domain)
	if err != nil {
		return nil, err
	}

	hasIDColumn := false
	for _, c := range columns {
		if c == techniqueIDColumn {
			hasIDColumn = true
			break
		}
	}
	if !hasIDColumn {
		return nil, ErrNoTechniqueIDColumn
	}

	techniques := make([]LayerTechnique, 0, len(rows))
	for _, row := range rows {
		id := strings.TrimSpace(row[techniqueIDColumn])
		if id == "" {
			continue
		}

		entry := LayerTechnique{TechniqueID: id}
		entry.Color = strings.TrimSpace(row[colorColumn])
		entry.Comment = row[commentColumn]

		// A missing enabled value is left out of the entry; the Navigator
		// treats an absent enabled as true, so the default needs no key.
		if v := strings.TrimSpace(row[enabledColumn]); v != "" {
			if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
				entry.Enabled = &b
			}
		}

		if v := strings.TrimSpace(row[scoreColumn]); v != "" {
			if score, err := strconv.ParseFloat(v, 64); err == nil {
				entry.Score = &score
			}
		}

		techniques = append(techniques, entry)
	}

	return &Layer{
		Name:        meta.Name,
		Description: meta.Description,
		Domain:      domain,
		Versions: Versions{
			Layer:     LayerFormatVersion,
			Navigator: NavigatorVersion,
			Attack:    AttackContentVersion,
		},
		Techniques: techniques,
		Platforms:  platforms,
	}, nil
}
