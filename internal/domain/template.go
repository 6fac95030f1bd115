package domain

import "strings"

// TemplateStep is one seed activity within a project-type template.
type TemplateStep struct {
	Name         string
	Phase        int
	DevType      string
	Requirements RequirementSet
}

var stepTemplates = map[ProjectType][]TemplateStep{
	ProjectBTMGround: {
		{Name: "Site Identification & Screening", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Landowner Outreach & Lease Negotiation", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Site Control Agreement Executed", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Preliminary Fatal Flaw Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering, RequirementSiteControl}},
		{Name: "ALTA Survey & Title Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Geotechnical Investigation", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Environmental Desktop Review", Phase: PhaseEarly, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Wetlands Delineation", Phase: PhaseEarly, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Preliminary System Design", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Interconnection Pre-Application Report", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Utility Interconnection Application", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "System Impact Study", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Interconnection Agreement Executed", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementFinancing, RequirementInterconnection}},
		{Name: "Zoning / Special Use Permit", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementSiteControl}},
		{Name: "Stormwater & Erosion Control Permit", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Building Permit Application", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "60% Design Package", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Host Energy Services Agreement", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "Incentive Program Reservation", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "Financing Close", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "90% Design Package", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "EPC Contract Execution", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Major Equipment Procurement", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementConstruction}},
		{Name: "Notice to Proceed", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Utility Witness Test", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection, RequirementConstruction}},
		{Name: "Permission to Operate", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Final Inspections & Certificate of Completion", Phase: PhaseLate, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementConstruction}},
	},
	ProjectBTMRooftop: {
		{Name: "Site Identification & Screening", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Host Outreach & Roof Lease Negotiation", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Site Control Agreement Executed", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Preliminary Fatal Flaw Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering, RequirementSiteControl}},
		{Name: "Structural Roof Assessment", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Roof Warranty Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering, RequirementSiteControl}},
		{Name: "Preliminary System Design", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Utility Interconnection Application", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "System Impact Study", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Interconnection Agreement Executed", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementFinancing, RequirementInterconnection}},
		{Name: "Building Permit Application", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Fire Code Review", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "60% Design Package", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Host Energy Services Agreement", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "Incentive Program Reservation", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "Financing Close", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "90% Design Package", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "EPC Contract Execution", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Major Equipment Procurement", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementConstruction}},
		{Name: "Notice to Proceed", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Utility Witness Test", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection, RequirementConstruction}},
		{Name: "Permission to Operate", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Final Inspections & Certificate of Completion", Phase: PhaseLate, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementConstruction}},
	},
	ProjectFTMGroundCommSol: {
		{Name: "Site Identification & Screening", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Landowner Outreach & Lease Negotiation", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Site Control Agreement Executed", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Preliminary Fatal Flaw Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering, RequirementSiteControl}},
		{Name: "ALTA Survey & Title Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Geotechnical Investigation", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Environmental Desktop Review", Phase: PhaseEarly, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Wetlands Delineation", Phase: PhaseEarly, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Preliminary System Design", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Interconnection Pre-Application Report", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Utility Interconnection Application", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Community Solar Program Application", Phase: PhaseEarly, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementFinancing}},
		{Name: "System Impact Study", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Facilities Study", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Interconnection Agreement Executed", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementFinancing, RequirementInterconnection}},
		{Name: "Zoning / Special Use Permit", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementSiteControl}},
		{Name: "Stormwater & Erosion Control Permit", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Building Permit Application", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "60% Design Package", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Program Capacity Award", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementFinancing}},
		{Name: "Subscriber Acquisition Plan", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "Financing Close", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "90% Design Package", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "EPC Contract Execution", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Major Equipment Procurement", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementConstruction}},
		{Name: "Notice to Proceed", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Utility Witness Test", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection, RequirementConstruction}},
		{Name: "Permission to Operate", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Final Inspections & Certificate of Completion", Phase: PhaseLate, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementConstruction}},
	},
	ProjectFTMRooftopCommSol: {
		{Name: "Site Identification & Screening", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Host Outreach & Roof Lease Negotiation", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Site Control Agreement Executed", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementSiteControl}},
		{Name: "Preliminary Fatal Flaw Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering, RequirementSiteControl}},
		{Name: "Structural Roof Assessment", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Roof Warranty Review", Phase: PhaseEarly, DevType: "Due Diligence", Requirements: RequirementSet{RequirementEngineering, RequirementSiteControl}},
		{Name: "Preliminary System Design", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Utility Interconnection Application", Phase: PhaseEarly, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Community Solar Program Application", Phase: PhaseEarly, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementFinancing}},
		{Name: "System Impact Study", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Interconnection Agreement Executed", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementFinancing, RequirementInterconnection}},
		{Name: "Building Permit Application", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "Fire Code Review", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting}},
		{Name: "60% Design Package", Phase: PhaseMid, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "Program Capacity Award", Phase: PhaseMid, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementFinancing}},
		{Name: "Subscriber Acquisition Plan", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "Financing Close", Phase: PhaseMid, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing}},
		{Name: "90% Design Package", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementEngineering}},
		{Name: "EPC Contract Execution", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Major Equipment Procurement", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementConstruction}},
		{Name: "Notice to Proceed", Phase: PhaseLate, DevType: "Due Diligence", Requirements: RequirementSet{RequirementFinancing, RequirementConstruction}},
		{Name: "Utility Witness Test", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection, RequirementConstruction}},
		{Name: "Permission to Operate", Phase: PhaseLate, DevType: "Interconnection", Requirements: RequirementSet{RequirementInterconnection}},
		{Name: "Final Inspections & Certificate of Completion", Phase: PhaseLate, DevType: "Permitting", Requirements: RequirementSet{RequirementPermitting, RequirementConstruction}},
	},
}

// BootstrapSteps returns the seed activities for one project type.
func BootstrapSteps(projectType ProjectType) []TemplateStep {
	steps, ok := stepTemplates[projectType]
	if !ok {
		return nil
	}
	out := make([]TemplateStep, len(steps))
	for i, s := range steps {
		s.Requirements = append(RequirementSet(nil), s.Requirements...)
		out[i] = s
	}
	return out
}

// NormalizeActivityName reduces an activity name to a comparable form.
// Lowercased, ampersands spelled out, slashes and punctuation collapsed
// to single spaces.
func NormalizeActivityName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "&", "and")
	name = strings.ReplaceAll(name, "/", " ")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// RequirementTemplate returns the normalized activity name to requirement
// set lookup for one project type, or nil when the type is unknown.
func RequirementTemplate(projectType ProjectType) map[string]RequirementSet {
	steps, ok := stepTemplates[projectType]
	if !ok {
		return nil
	}
	lookup := make(map[string]RequirementSet, len(steps))
	for _, s := range steps {
		lookup[NormalizeActivityName(s.Name)] = append(RequirementSet(nil), s.Requirements...)
	}
	return lookup
}

// FindTemplateRequirements resolves the requirement set for an activity
// name against a template lookup. Exact normalized matches win, then
// substring containment either way, then token overlap above one half.
func FindTemplateRequirements(lookup map[string]RequirementSet, activityName string) (RequirementSet, bool) {
	if len(lookup) == 0 {
		return nil, false
	}
	norm := NormalizeActivityName(activityName)
	if norm == "" {
		return nil, false
	}
	if reqs, ok := lookup[norm]; ok {
		return append(RequirementSet(nil), reqs...), true
	}

	for key, reqs := range lookup {
		if len(reqs) == 0 {
			continue
		}
		if strings.Contains(key, norm) || strings.Contains(norm, key) {
			return append(RequirementSet(nil), reqs...), true
		}
	}

	target := strings.Fields(norm)
	targetSet := make(map[string]struct{}, len(target))
	for _, tok := range target {
		targetSet[tok] = struct{}{}
	}
	var best RequirementSet
	bestScore := 0.5
	for key, reqs := range lookup {
		if len(reqs) == 0 {
			continue
		}
		shared := 0
		for _, tok := range strings.Fields(key) {
			if _, ok := targetSet[tok]; ok {
				shared++
			}
		}
		score := float64(shared) / float64(max(1, len(targetSet)))
		if score > bestScore {
			bestScore = score
			best = reqs
		}
	}
	if best == nil {
		return nil, false
	}
	return append(RequirementSet(nil), best...), true
}

// ResolveProjectType maps a free-form project type string onto a known
// template key, matching case-insensitively and by containment.
func ResolveProjectType(s string) (ProjectType, bool) {
	requested := strings.ToLower(strings.TrimSpace(s))
	if requested == "" {
		return "", false
	}
	for _, pt := range validProjectTypes {
		if strings.ToLower(string(pt)) == requested {
			return pt, true
		}
	}
	for _, pt := range validProjectTypes {
		if strings.Contains(requested, strings.ToLower(string(pt))) {
			return pt, true
		}
	}
	return "", false
}
