package domain

import (
	"fmt"
	"strings"
)

// Requirement identifies one development requirement category.
type Requirement string

const (
	RequirementEngineering     Requirement = "Engineering"
	RequirementPermitting      Requirement = "Permitting/Compliance"
	RequirementFinancing       Requirement = "Financing"
	RequirementInterconnection Requirement = "Interconnection"
	RequirementSiteControl     Requirement = "Site Control"
	RequirementConstruction    Requirement = "Construction/Execution"
)

// requirementOrder fixes the canonical serialization order.
var requirementOrder = []Requirement{
	RequirementEngineering,
	RequirementPermitting,
	RequirementFinancing,
	RequirementInterconnection,
	RequirementSiteControl,
	RequirementConstruction,
}

// RequirementOptions returns the selectable requirement categories in canonical order.
func RequirementOptions() []Requirement {
	return append([]Requirement(nil), requirementOrder...)
}

// RequirementSet holds a canonical, duplicate-free subset of requirement categories.
type RequirementSet []Requirement

// ParseRequirementSet parses a comma-delimited requirement string.
// Parsing is whitespace-insensitive and collapses duplicates; unknown labels fail.
func ParseRequirementSet(raw string) (RequirementSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	seen := map[Requirement]struct{}{}
	for _, part := range strings.Split(raw, ",") {
		label := strings.TrimSpace(part)
		if label == "" {
			continue
		}
		req, ok := matchRequirement(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRequirement, label)
		}
		seen[req] = struct{}{}
	}
	return canonicalRequirements(seen), nil
}

// String serializes the set in canonical order.
func (s RequirementSet) String() string {
	parts := make([]string, 0, len(s))
	for _, req := range s {
		parts = append(parts, string(req))
	}
	return strings.Join(parts, ", ")
}

// Has reports whether the expected condition is satisfied.
func (s RequirementSet) Has(req Requirement) bool {
	for _, member := range s {
		if member == req {
			return true
		}
	}
	return false
}

// With returns a new set including req.
func (s RequirementSet) With(req Requirement) RequirementSet {
	seen := s.memberSet()
	seen[req] = struct{}{}
	return canonicalRequirements(seen)
}

// Without returns a new set excluding req.
func (s RequirementSet) Without(req Requirement) RequirementSet {
	seen := s.memberSet()
	delete(seen, req)
	return canonicalRequirements(seen)
}

// Toggle returns a new set with req flipped.
func (s RequirementSet) Toggle(req Requirement) RequirementSet {
	if s.Has(req) {
		return s.Without(req)
	}
	return s.With(req)
}

// Equal compares sets by membership.
func (s RequirementSet) Equal(other RequirementSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// memberSet handles member set.
func (s RequirementSet) memberSet() map[Requirement]struct{} {
	seen := make(map[Requirement]struct{}, len(s))
	for _, member := range s {
		seen[member] = struct{}{}
	}
	return seen
}

// canonicalRequirements orders members by the fixed category order.
func canonicalRequirements(seen map[Requirement]struct{}) RequirementSet {
	if len(seen) == 0 {
		return nil
	}
	out := make(RequirementSet, 0, len(seen))
	for _, req := range requirementOrder {
		if _, ok := seen[req]; ok {
			out = append(out, req)
		}
	}
	return out
}

// matchRequirement resolves loosely spelled labels to canonical categories.
func matchRequirement(label string) (Requirement, bool) {
	normalized := strings.ToLower(strings.ReplaceAll(label, " ", ""))
	for _, req := range requirementOrder {
		if strings.ToLower(strings.ReplaceAll(string(req), " ", "")) == normalized {
			return req, true
		}
	}
	return "", false
}
