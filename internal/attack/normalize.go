package attack

import (
	"sort"
)

// Technique is one row of the normalized techniques table.
type Technique struct {
	ID             string
	Name           string
	Description    string
	IsSubtechnique bool
	Tactics        []string
	Platforms      []string
}

// Link is one row of the technique/data-source join table. Pairs are unique.
type Link struct {
	TechniqueID    string
	DataSourceName string
}

// Tables is the relational form of a domain's technique graph. An empty
// Techniques table is valid output, not an error.
type Tables struct {
	Techniques  []Technique
	DataSources []string
	Links       []Link
}

// Normalize flattens a domain-scoped collection of knowledge objects into the
// three relational tables. The caller is responsible for handing over a
// collection already scoped to one matrix with revoked and deprecated objects
// removed; Normalize trusts that contract.
func Normalize(objects []any, domain string, includeSubtechniques bool, filter FilterSpec) (*Tables, error) {
	killChain, ok := domainKillChains[domain]
	if !ok {
		return nil, ErrUnknownDomain
	}
	if err := filter.Validate(domain); err != nil {
		return nil, err
	}

	// Partition by kind and build id-indexed maps once, so relationship
	// resolution is a lookup rather than a graph search.
	var (
		techniques    []AttackPattern
		relationships []Relationship
		components    = make(map[string]DataComponent)
		sources       = make(map[string]DataSource)
	)
	for _, obj := range objects {
		switch o := obj.(type) {
		case AttackPattern:
			techniques = append(techniques, o)
		case Relationship:
			relationships = append(relationships, o)
		case DataComponent:
			components[o.ID] = o
		case DataSource:
			sources[o.ID] = o
		}
	}

	tables := &Tables{}

	// surviving maps technique STIX id to its external ID for link resolution.
	surviving := make(map[string]string)
	seenIDs := make(map[string]bool)

	for _, ap := range techniques {
		extID := ap.ExternalID()
		if extID == "" || seenIDs[extID] {
			continue
		}
		if !includeSubtechniques && ap.IsSubtechnique() {
			continue
		}
		if len(ap.Platforms) == 0 || !filter.Match(ap.Platforms) {
			continue
		}

		platforms := append([]string{}, ap.Platforms...)
		sort.Strings(platforms)
		tactics := ap.TacticShortNames(killChain)
		sort.Strings(tactics)

		tables.Techniques = append(tables.Techniques, Technique{
			ID:             extID,
			Name:           ap.Name,
			Description:    ap.Description,
			IsSubtechnique: ap.IsSubtechnique(),
			Tactics:        tactics,
			Platforms:      platforms,
		})
		surviving[ap.ID] = extID
		seenIDs[extID] = true
	}

	// Walk detection edges. A relationship may point technique->component or
	// component->technique depending on the edge family; resolve either end
	// through the component's parent data source. Unresolvable targets are
	// dropped, never fatal, and redundant edges collapse into one pair.
	linkSet := make(map[Link]bool)
	for _, rel := range relationships {
		if rel.RelationshipType != "detects" && rel.RelationshipType != "uses" {
			continue
		}

		techID, other := "", ""
		if ext, ok := surviving[rel.TargetRef]; ok {
			techID, other = ext, rel.SourceRef
		} else if ext, ok := surviving[rel.SourceRef]; ok {
			techID, other = ext, rel.TargetRef
		} else {
			continue
		}

		name := resolveDataSourceName(other, components, sources)
		if name == "" {
			continue
		}
		linkSet[Link{TechniqueID: techID, DataSourceName: name}] = true
	}

	sourceSet := make(map[string]bool)
	for link := range linkSet {
		tables.Links = append(tables.Links, link)
		sourceSet[link.DataSourceName] = true
	}
	for name := range sourceSet {
		tables.DataSources = append(tables.DataSources, name)
	}

	// Deterministic output, same reason attack tooling sorts before CSV/JSON
	// emission: stable diffs between runs.
	sort.Slice(tables.Techniques, func(i, j int) bool {
		return tables.Techniques[i].ID < tables.Techniques[j].ID
	})
	sort.Slice(tables.Links, func(i, j int) bool {
		if tables.Links[i].TechniqueID != tables.Links[j].TechniqueID {
			return tables.Links[i].TechniqueID < tables.Links[j].TechniqueID
		}
		return tables.Links[i].DataSourceName < tables.Links[j].DataSourceName
	})
	sort.Strings(tables.DataSources)

	return tables, nil
}

// resolveDataSourceName maps a relationship endpoint to a data source name,
// either directly or through a data component's parent reference. An empty
// result means the endpoint is unresolvable in this collection.
func resolveDataSourceName(ref string, components map[string]DataComponent, sources map[string]DataSource) string {
	if dc, ok := components[ref]; ok {
		if ds, ok := sources[dc.DataSourceRef]; ok {
			return ds.Name
		}
		return ""
	}
	if ds, ok := sources[ref]; ok {
		return ds.Name
	}
	return ""
}
