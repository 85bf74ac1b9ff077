package attack

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Bundle is the top-level STIX 2.x envelope as published in the mitre/cti
// repository, one bundle per domain.
type Bundle struct {
	Type    string            `json:"type"`
	ID      string            `json:"id"`
	Objects []json.RawMessage `json:"objects"`
}

// ExternalReference links a STIX object to an external catalog entry. The
// "mitre-attack" reference carries the human-readable ATT&CK ID.
type ExternalReference struct {
	SourceName string `json:"source_name"`
	ExternalID string `json:"external_id,omitempty"`
	URL        string `json:"url,omitempty"`
}

// KillChainPhase associates a technique with a tactic. PhaseName is the
// tactic short-name (e.g. "execution").
type KillChainPhase struct {
	KillChainName string `json:"kill_chain_name"`
	PhaseName     string `json:"phase_name"`
}

// AttackPattern is a technique or sub-technique.
type AttackPattern struct {
	Type               string              `json:"type"`
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	ExternalReferences []ExternalReference `json:"external_references"`
	KillChainPhases    []KillChainPhase    `json:"kill_chain_phases"`
	Revoked            bool                `json:"revoked,omitempty"`
	Deprecated         bool                `json:"x_mitre_deprecated,omitempty"`
	IsSubtechniqueFlag bool                `json:"x_mitre_is_subtechnique,omitempty"`
	Platforms          []string            `json:"x_mitre_platforms,omitempty"`
}

// Tactic is an x-mitre-tactic object.
type Tactic struct {
	Type               string              `json:"type"`
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	ShortName          string              `json:"x_mitre_shortname"`
	ExternalReferences []ExternalReference `json:"external_references"`
	Deprecated         bool                `json:"x_mitre_deprecated,omitempty"`
}

// DataSource is an x-mitre-data-source object.
type DataSource struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Revoked    bool   `json:"revoked,omitempty"`
	Deprecated bool   `json:"x_mitre_deprecated,omitempty"`
}

// DataComponent is an x-mitre-data-component object. Detection relationships
// point at components, which in turn reference their parent data source.
type DataComponent struct {
	Type          string `json:"type"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	DataSourceRef string `json:"x_mitre_data_source_ref"`
	Revoked       bool   `json:"revoked,omitempty"`
	Deprecated    bool   `json:"x_mitre_deprecated,omitempty"`
}

// Relationship is a typed edge between two STIX objects.
type Relationship struct {
	Type             string `json:"type"`
	ID               string `json:"id"`
	RelationshipType string `json:"relationship_type"`
	SourceRef        string `json:"source_ref"`
	TargetRef        string `json:"target_ref"`
}

// ExternalID returns the ATT&CK ID (e.g. "T1059.001") from the object's
// external references.
func (ap *AttackPattern) ExternalID() string {
	return mitreExternalID(ap.ExternalReferences)
}

// IsSubtechnique reports whether the technique refines a parent technique,
// either via the explicit STIX flag or a dotted ID suffix.
func (ap *AttackPattern) IsSubtechnique() bool {
	return ap.IsSubtechniqueFlag || strings.Contains(ap.ExternalID(), ".")
}

// TacticShortNames returns the tactic short-names the technique is associated
// with for the given kill chain, deduplicated.
func (ap *AttackPattern) TacticShortNames(killChain string) []string {
	seen := make(map[string]bool)
	var tactics []string
	for _, kc := range ap.KillChainPhases {
		if kc.KillChainName != killChain || kc.PhaseName == "" {
			continue
		}
		if !seen[kc.PhaseName] {
			seen[kc.PhaseName] = true
			tactics = append(tactics, kc.PhaseName)
		}
	}
	return tactics
}

func mitreExternalID(refs []ExternalReference) string {
	for _, r := range refs {
		if strings.HasPrefix(r.SourceName, "mitre-") && r.ExternalID != "" {
			return r.ExternalID
		}
	}
	return ""
}

// envelope is the first-pass view of a raw object, just enough to classify it.
type envelope struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ParseObject classifies a raw STIX object by its type tag and unmarshals it
// into the matching record type. Unrecognized kinds yield (nil, nil) and are
// ignored by callers. An object without both a type and an id cannot be
// classified and fails with ErrMalformedObject.
func ParseObject(raw json.RawMessage) (any, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedObject, err)
	}
	if env.Type == "" || env.ID == "" {
		return nil, fmt.Errorf("%w: missing type or id", ErrMalformedObject)
	}

	switch env.Type {
	case "attack-pattern":
		var ap AttackPattern
		if err := json.Unmarshal(raw, &ap); err != nil {
			return nil, fmt.Errorf("parse attack-pattern %s: %w", env.ID, err)
		}
		return ap, nil
	case "x-mitre-tactic":
		var t Tactic
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("parse tactic %s: %w", env.ID, err)
		}
		return t, nil
	case "x-mitre-data-source":
		var ds DataSource
		if err := json.Unmarshal(raw, &ds); err != nil {
			return nil, fmt.Errorf("parse data source %s: %w", env.ID, err)
		}
		return ds, nil
	case "x-mitre-data-component":
		var dc DataComponent
		if err := json.Unmarshal(raw, &dc); err != nil {
			return nil, fmt.Errorf("parse data component %s: %w", env.ID, err)
		}
		return dc, nil
	case "relationship":
		var r Relationship
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("parse relationship %s: %w", env.ID, err)
		}
		return r, nil
	default:
		// identity, marking-definition, x-mitre-collection, and the rest
		return nil, nil
	}
}
