package attack

import (
	"fmt"
)

// ATT&CK domain identifiers, matching the bundle names in mitre/cti.
const (
	DomainEnterprise = "enterprise-attack"
	DomainMobile     = "mobile-attack"
	DomainICS        = "ics-attack"
)

// domainPlatforms holds the fixed platform enumeration per domain. These
// tables are never mutated at runtime; validation always uses the list for
// the active domain, not a union.
var domainPlatforms = map[string][]string{
	DomainEnterprise: {
		"PRE",
		"Windows",
		"macOS",
		"Linux",
		"Network",
		"Containers",
		"Office 365",
		"SaaS",
		"Google Workspace",
		"IaaS",
		"Azure AD",
	},
	DomainMobile: {
		"Android",
		"iOS",
	},
	DomainICS: {
		"Control Server",
		"Data Historian",
		"Engineering Workstation",
		"Field Controller/RTU/PLC/IED",
		"Human-Machine Interface",
		"Input/Output Server",
		"Safety Instrumented System/Protection Relay",
		"Device Configuration/Parameters",
		"Windows",
		"None",
	},
}

// domainKillChains maps each domain to the kill chain name used in its
// techniques' kill_chain_phases.
var domainKillChains = map[string]string{
	DomainEnterprise: "mitre-attack",
	DomainMobile:     "mitre-mobile-attack",
	DomainICS:        "mitre-ics-attack",
}

// Domains returns the recognized domain identifiers.
func Domains() []string {
	return []string{DomainEnterprise, DomainMobile, DomainICS}
}

// Platforms returns the fixed platform enumeration for a domain.
func Platforms(domain string) ([]string, error) {
	platforms, ok := domainPlatforms[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	return platforms, nil
}

// FilterSpec selects techniques by platform. At most one of Include and
// Exclude may be set; with both empty every technique survives.
type FilterSpec struct {
	Include []string
	Exclude []string
}

// IsZero reports whether no filtering was requested.
func (f FilterSpec) IsZero() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// Validate fails fast with ErrInvalidFilter when both lists are supplied, and
// with ErrUnknownPlatform for any list value outside the domain's fixed
// enumeration. It must be called before any filtering occurs.
func (f FilterSpec) Validate(domain string) error {
	platforms, err := Platforms(domain)
	if err != nil {
		return err
	}
	if len(f.Include) > 0 && len(f.Exclude) > 0 {
		return ErrInvalidFilter
	}

	known := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		known[p] = true
	}
	for _, p := range append(append([]string{}, f.Include...), f.Exclude...) {
		if !known[p] {
			return fmt.Errorf("%w: %q is not a %s platform", ErrUnknownPlatform, p, domain)
		}
	}
	return nil
}

// Match reports whether a technique with the given platform set survives the
// filter: include keeps techniques intersecting the list, exclude keeps
// techniques disjoint from it, and an empty spec keeps everything.
func (f FilterSpec) Match(platforms []string) bool {
	switch {
	case len(f.Include) > 0:
		return intersects(platforms, f.Include)
	case len(f.Exclude) > 0:
		return !intersects(platforms, f.Exclude)
	default:
		return true
	}
}

// Resolve returns the platform list a layer document should advertise: the
// include list, the enumeration minus the exclude list, or the full
// enumeration when no filter was supplied. Enumeration order is preserved.
func (f FilterSpec) Resolve(domain string) ([]string, error) {
	if err := f.Validate(domain); err != nil {
		return nil, err
	}
	platforms, _ := Platforms(domain)

	switch {
	case len(f.Include) > 0:
		included := make(map[string]bool, len(f.Include))
		for _, p := range f.Include {
			included[p] = true
		}
		var resolved []string
		for _, p := range platforms {
			if included[p] {
				resolved = append(resolved, p)
			}
		}
		return resolved, nil
	case len(f.Exclude) > 0:
		excluded := make(map[string]bool, len(f.Exclude))
		for _, p := range f.Exclude {
			excluded[p] = true
		}
		var resolved []string
		for _, p := range platforms {
			if !excluded[p] {
				resolved = append(resolved, p)
			}
		}
		return resolved, nil
	default:
		return append([]string{}, platforms...), nil
	}
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[s] = true
	}
	for _, s := range a {
		if set[s] {
			return true
		}
	}
	return false
}
