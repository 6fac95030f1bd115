package domain

import (
	"math"
	"slices"
	"strings"
)

// Status tracks completion state for one development activity.
type Status string

const (
	StatusUnset         Status = ""
	StatusNotStarted    Status = "Not Started"
	StatusInProgress    Status = "In Progress"
	StatusCompleted     Status = "Completed"
	StatusNotApplicable Status = "Not Applicable"
)

var validStatuses = []Status{StatusUnset, StatusNotStarted, StatusInProgress, StatusCompleted, StatusNotApplicable}

// StatusOptions returns the selectable status values in display order.
func StatusOptions() []Status {
	return append([]Status(nil), validStatuses...)
}

// OwnerType classifies who owns one development activity.
type OwnerType string

const (
	OwnerUnset      OwnerType = ""
	OwnerInternal   OwnerType = "Internal"
	OwnerConsultant OwnerType = "Consultant"
	OwnerExternal   OwnerType = "External"
	OwnerEPC        OwnerType = "EPC"
)

var validOwners = []OwnerType{OwnerUnset, OwnerInternal, OwnerConsultant, OwnerExternal, OwnerEPC}

// OwnerOptions returns the selectable owner types in display order.
func OwnerOptions() []OwnerType {
	return append([]OwnerType(nil), validOwners...)
}

// RiskLevel holds the heatmap rating for one activity.
type RiskLevel string

const (
	RiskUnset  RiskLevel = ""
	RiskRed    RiskLevel = "Red"
	RiskYellow RiskLevel = "Yellow"
	RiskGreen  RiskLevel = "Green"
)

var validRisks = []RiskLevel{RiskUnset, RiskRed, RiskYellow, RiskGreen}

// RiskOptions returns the selectable risk levels in display order.
func RiskOptions() []RiskLevel {
	return append([]RiskLevel(nil), validRisks...)
}

// Development phase bounds; 0 means unset.
const (
	PhaseUnset = 0
	PhaseEarly = 1
	PhaseMid   = 2
	PhaseLate  = 3
)

// PhaseLabel returns the display label for one phase number.
func PhaseLabel(phase int) string {
	switch phase {
	case PhaseEarly:
		return "Early Stage"
	case PhaseMid:
		return "Mid Stage"
	case PhaseLate:
		return "Late Stage"
	default:
		return ""
	}
}

// DefaultDevTypes returns the built-in development type options; projects may add custom ones.
func DefaultDevTypes() []string {
	return []string{"Interconnection", "Permitting", "Due Diligence"}
}

// Field identifies one editable activity field on the wire.
type Field string

const (
	FieldName                  Field = "name"
	FieldDevType               Field = "dev_type"
	FieldPhase                 Field = "phase"
	FieldStatus                Field = "status"
	FieldStartDate             Field = "start_date"
	FieldEndDate               Field = "end_date"
	FieldDuration              Field = "duration_days"
	FieldPlannedSpend          Field = "planned_spend"
	FieldActualSpend           Field = "actual_spend"
	FieldAgency                Field = "agency"
	FieldOwner                 Field = "owner"
	FieldResponsibleParty      Field = "responsible_party"
	FieldResponsibleIndividual Field = "responsible_individual"
	FieldProcess               Field = "process"
	FieldLink                  Field = "link"
	FieldRequirements          Field = "requirement"
	FieldStorageHybridImpact   Field = "storage_hybrid_impact"
	FieldMilestoneGates        Field = "milestones_ntp_gates"
	FieldRiskLevel             Field = "risk_heatmap"
	FieldSequence              Field = "sequence"
)

// Activity is one development step within a project.
type Activity struct {
	ID                    string
	ProjectID             string
	Sequence              int
	Name                  string
	DevType               string
	Phase                 int
	Status                Status
	StartDate             *Date
	EndDate               *Date
	DurationDays          int
	PlannedSpend          *float64
	ActualSpend           *float64
	Agency                string
	Owner                 OwnerType
	ResponsibleParty      string
	ResponsibleIndividual string
	Process               string
	Link                  string
	Requirements          RequirementSet
	StorageHybridImpact   string
	MilestoneGates        string
	RiskLevel             RiskLevel
	Custom                bool
}

// ActivityInput holds input values for new activities.
type ActivityInput struct {
	ID        string
	ProjectID string
	Sequence  int
	Name      string
	DevType   string
	Phase     int
	Custom    bool
}

// NewActivity constructs a new value for this package.
func NewActivity(in ActivityInput) (Activity, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.ProjectID = strings.TrimSpace(in.ProjectID)
	in.Name = strings.TrimSpace(in.Name)
	in.DevType = strings.TrimSpace(in.DevType)

	if in.ID == "" {
		return Activity{}, ErrInvalidID
	}
	if in.ProjectID == "" {
		return Activity{}, ErrInvalidID
	}
	if in.Name == "" {
		return Activity{}, ErrInvalidName
	}
	if in.Phase < PhaseUnset || in.Phase > PhaseLate {
		return Activity{}, ErrInvalidPhase
	}
	if in.Sequence < 0 {
		return Activity{}, ErrInvalidSequence
	}

	return Activity{
		ID:        in.ID,
		ProjectID: in.ProjectID,
		Sequence:  in.Sequence,
		Name:      in.Name,
		DevType:   in.DevType,
		Phase:     in.Phase,
		Custom:    in.Custom,
	}, nil
}

// Clone returns a deep copy of the activity.
func (a Activity) Clone() Activity {
	out := a
	out.StartDate = cloneDatePtr(a.StartDate)
	out.EndDate = cloneDatePtr(a.EndDate)
	out.PlannedSpend = cloneFloatPtr(a.PlannedSpend)
	out.ActualSpend = cloneFloatPtr(a.ActualSpend)
	out.Requirements = append(RequirementSet(nil), a.Requirements...)
	return out
}

// RefreshDuration recomputes the derived day count from the current dates.
// Duration is a read model; no write path ever supplies it.
func (a *Activity) RefreshDuration() {
	if a.StartDate == nil || a.EndDate == nil {
		a.DurationDays = 0
		return
	}
	a.DurationDays = a.StartDate.DaysUntil(*a.EndDate)
}

// DateChange wraps an optional date write; a nil Value clears the field.
type DateChange struct {
	Value *Date
}

// SpendChange wraps an optional spend write; a nil Value clears the field.
type SpendChange struct {
	Value *float64
}

// Patch carries a partial field-level update. Unset pointers leave the
// corresponding field untouched. DurationDays has no patch representation.
type Patch struct {
	Name                  *string
	DevType               *string
	Phase                 *int
	Status                *Status
	StartDate             *DateChange
	EndDate               *DateChange
	PlannedSpend          *SpendChange
	ActualSpend           *SpendChange
	Agency                *string
	Owner                 *OwnerType
	ResponsibleParty      *string
	ResponsibleIndividual *string
	Process               *string
	Link                  *string
	Requirements          *RequirementSet
	StorageHybridImpact   *string
	MilestoneGates        *string
	RiskLevel             *RiskLevel
	Sequence              *int
}

// IsEmpty reports whether the expected condition is satisfied.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.DevType == nil && p.Phase == nil && p.Status == nil &&
		p.StartDate == nil && p.EndDate == nil && p.PlannedSpend == nil && p.ActualSpend == nil &&
		p.Agency == nil && p.Owner == nil && p.ResponsibleParty == nil && p.ResponsibleIndividual == nil &&
		p.Process == nil && p.Link == nil && p.Requirements == nil && p.StorageHybridImpact == nil &&
		p.MilestoneGates == nil && p.RiskLevel == nil && p.Sequence == nil
}

// Validate checks every field carried by the patch.
func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidName
	}
	if p.Phase != nil && (*p.Phase < PhaseUnset || *p.Phase > PhaseLate) {
		return ErrInvalidPhase
	}
	if p.Status != nil && !slices.Contains(validStatuses, *p.Status) {
		return ErrInvalidStatus
	}
	if p.Owner != nil && !slices.Contains(validOwners, *p.Owner) {
		return ErrInvalidOwner
	}
	if p.RiskLevel != nil && !slices.Contains(validRisks, *p.RiskLevel) {
		return ErrInvalidRisk
	}
	if p.PlannedSpend != nil && p.PlannedSpend.Value != nil && *p.PlannedSpend.Value < 0 {
		return ErrInvalidSpend
	}
	if p.ActualSpend != nil && p.ActualSpend.Value != nil && *p.ActualSpend.Value < 0 {
		return ErrInvalidSpend
	}
	if p.Sequence != nil && *p.Sequence < 0 {
		return ErrInvalidSequence
	}
	return nil
}

// Apply validates the patch and writes its fields onto the activity.
// The derived duration is untouched; callers that own the read model
// call RefreshDuration afterwards.
func (a *Activity) Apply(p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
	}
	if p.DevType != nil {
		a.DevType = strings.TrimSpace(*p.DevType)
	}
	if p.Phase != nil {
		a.Phase = *p.Phase
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.StartDate != nil {
		a.StartDate = cloneDatePtr(p.StartDate.Value)
	}
	if p.EndDate != nil {
		a.EndDate = cloneDatePtr(p.EndDate.Value)
	}
	if p.PlannedSpend != nil {
		a.PlannedSpend = roundedSpend(p.PlannedSpend.Value)
	}
	if p.ActualSpend != nil {
		a.ActualSpend = roundedSpend(p.ActualSpend.Value)
	}
	if p.Agency != nil {
		a.Agency = strings.TrimSpace(*p.Agency)
	}
	if p.Owner != nil {
		a.Owner = *p.Owner
	}
	if p.ResponsibleParty != nil {
		a.ResponsibleParty = strings.TrimSpace(*p.ResponsibleParty)
	}
	if p.ResponsibleIndividual != nil {
		a.ResponsibleIndividual = strings.TrimSpace(*p.ResponsibleIndividual)
	}
	if p.Process != nil {
		a.Process = strings.TrimSpace(*p.Process)
	}
	if p.Link != nil {
		a.Link = strings.TrimSpace(*p.Link)
	}
	if p.Requirements != nil {
		a.Requirements = append(RequirementSet(nil), (*p.Requirements)...)
	}
	if p.StorageHybridImpact != nil {
		a.StorageHybridImpact = strings.TrimSpace(*p.StorageHybridImpact)
	}
	if p.MilestoneGates != nil {
		a.MilestoneGates = strings.TrimSpace(*p.MilestoneGates)
	}
	if p.RiskLevel != nil {
		a.RiskLevel = *p.RiskLevel
	}
	if p.Sequence != nil {
		a.Sequence = *p.Sequence
	}
	return nil
}

// cloneDatePtr handles clone date ptr.
func cloneDatePtr(d *Date) *Date {
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

// cloneFloatPtr handles clone float ptr.
func cloneFloatPtr(f *float64) *float64 {
	if f == nil {
		return nil
	}
	out := *f
	return &out
}

// roundedSpend normalizes spend amounts to two decimal places.
func roundedSpend(f *float64) *float64 {
	if f == nil {
		return nil
	}
	out := math.Round(*f*100) / 100
	return &out
}
