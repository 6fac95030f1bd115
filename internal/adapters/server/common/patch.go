package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/landcharge/devtrack/internal/domain"
)

// EncodeStepPatch serializes a partial update into its wire form. Only the
// fields the patch carries appear; cleared dates and spends are sent as
// explicit nulls. Derived fields such as duration_days are never emitted.
func EncodeStepPatch(p domain.Patch) map[string]any {
	body := map[string]any{}
	if p.Name != nil {
		body["name"] = *p.Name
	}
	if p.DevType != nil {
		body["dev_type"] = *p.DevType
	}
	if p.Phase != nil {
		body["phase"] = *p.Phase
	}
	if p.Status != nil {
		body["status"] = string(*p.Status)
	}
	if p.StartDate != nil {
		body["start_date"] = datePatchValue(p.StartDate)
	}
	if p.EndDate != nil {
		body["end_date"] = datePatchValue(p.EndDate)
	}
	if p.PlannedSpend != nil {
		body["planned_spend"] = spendPatchValue(p.PlannedSpend)
	}
	if p.ActualSpend != nil {
		body["actual_spend"] = spendPatchValue(p.ActualSpend)
	}
	if p.Agency != nil {
		body["agency"] = *p.Agency
	}
	if p.Owner != nil {
		body["owner"] = string(*p.Owner)
	}
	if p.ResponsibleParty != nil {
		body["responsible_party"] = *p.ResponsibleParty
	}
	if p.ResponsibleIndividual != nil {
		body["responsible_individual"] = *p.ResponsibleIndividual
	}
	if p.Process != nil {
		body["process"] = *p.Process
	}
	if p.Link != nil {
		body["link"] = *p.Link
	}
	if p.Requirements != nil {
		body["requirement"] = p.Requirements.String()
	}
	if p.StorageHybridImpact != nil {
		body["storage_hybrid_impact"] = *p.StorageHybridImpact
	}
	if p.MilestoneGates != nil {
		body["milestones_ntp_gates"] = *p.MilestoneGates
	}
	if p.RiskLevel != nil {
		body["risk_heatmap"] = string(*p.RiskLevel)
	}
	if p.Sequence != nil {
		body["sequence"] = *p.Sequence
	}
	return body
}

// datePatchValue renders an optional date write for the wire.
func datePatchValue(c *domain.DateChange) any {
	if c.Value == nil {
		return nil
	}
	return c.Value.String()
}

// spendPatchValue renders an optional spend write for the wire.
func spendPatchValue(c *domain.SpendChange) any {
	if c.Value == nil {
		return nil
	}
	return *c.Value
}

// DecodeStepPatch parses a partial update body. Unknown keys fail closed;
// duration_days is tolerated but discarded since the server recomputes it.
func DecodeStepPatch(raw map[string]json.RawMessage) (domain.Patch, error) {
	var patch domain.Patch
	for key, value := range raw {
		var err error
		switch key {
		case "name":
			patch.Name, err = decodeString(value)
		case "dev_type":
			patch.DevType, err = decodeString(value)
		case "phase":
			patch.Phase, err = decodeInt(value)
		case "status":
			var s *string
			if s, err = decodeString(value); err == nil && s != nil {
				status := domain.Status(*s)
				patch.Status = &status
			}
		case "start_date":
			patch.StartDate, err = decodeDateChange(value)
		case "end_date":
			patch.EndDate, err = decodeDateChange(value)
		case "planned_spend":
			patch.PlannedSpend, err = decodeSpendChange(value)
		case "actual_spend":
			patch.ActualSpend, err = decodeSpendChange(value)
		case "agency":
			patch.Agency, err = decodeString(value)
		case "owner":
			var s *string
			if s, err = decodeString(value); err == nil && s != nil {
				owner := domain.OwnerType(*s)
				patch.Owner = &owner
			}
		case "responsible_party":
			patch.ResponsibleParty, err = decodeString(value)
		case "responsible_individual":
			patch.ResponsibleIndividual, err = decodeString(value)
		case "process":
			patch.Process, err = decodeString(value)
		case "link":
			patch.Link, err = decodeString(value)
		case "requirement":
			var s *string
			if s, err = decodeString(value); err == nil && s != nil {
				var reqs domain.RequirementSet
				if reqs, err = domain.ParseRequirementSet(*s); err == nil {
					patch.Requirements = &reqs
				}
			}
		case "storage_hybrid_impact":
			patch.StorageHybridImpact, err = decodeString(value)
		case "milestones_ntp_gates":
			patch.MilestoneGates, err = decodeString(value)
		case "risk_heatmap":
			var s *string
			if s, err = decodeString(value); err == nil && s != nil {
				risk := domain.RiskLevel(*s)
				patch.RiskLevel = &risk
			}
		case "sequence":
			patch.Sequence, err = decodeInt(value)
		case "duration_days":
			// Derived on the server; a submitted value carries no meaning.
		default:
			return domain.Patch{}, fmt.Errorf("%w: unknown field %q", ErrInvalidRequest, key)
		}
		if err != nil {
			return domain.Patch{}, fmt.Errorf("%w: field %q: %v", ErrInvalidRequest, key, err)
		}
	}
	return patch, nil
}

// decodeString parses one JSON string value; null yields an empty string.
func decodeString(raw json.RawMessage) (*string, error) {
	if isJSONNull(raw) {
		empty := ""
		return &empty, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// decodeInt parses one JSON integer value.
func decodeInt(raw json.RawMessage) (*int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// decodeDateChange parses one optional date write; null clears the field.
func decodeDateChange(raw json.RawMessage) (*domain.DateChange, error) {
	if isJSONNull(raw) {
		return &domain.DateChange{}, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if strings.TrimSpace(s) == "" {
		return &domain.DateChange{}, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &domain.DateChange{Value: &d}, nil
}

// decodeSpendChange parses one optional spend write; null clears the field.
func decodeSpendChange(raw json.RawMessage) (*domain.SpendChange, error) {
	if isJSONNull(raw) {
		return &domain.SpendChange{}, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &domain.SpendChange{Value: &v}, nil
}

// isJSONNull reports whether the expected condition is satisfied.
func isJSONNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
