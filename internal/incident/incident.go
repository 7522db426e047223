// Package incident defines the oilfield incident domain model shared by the
// triage core, the search collaborator, and the demo tooling.
package incident

import "time"

// The fixed set of incident categories the triage agent classifies into.
const (
	TypeWellBlowout          = "WELL_BLOWOUT"
	TypePipelineLeak         = "PIPELINE_LEAK"
	TypeEquipmentFailure     = "EQUIPMENT_FAILURE"
	TypeFireExplosion        = "FIRE_EXPLOSION"
	TypeChemicalSpill        = "CHEMICAL_SPILL"
	TypePersonnelInjury      = "PERSONNEL_INJURY"
	TypeEnvironmentalRelease = "ENVIRONMENTAL_RELEASE"
	TypeH2SGasRelease        = "H2S_GAS_RELEASE"
	TypePressureAnomaly      = "PRESSURE_ANOMALY"
	TypeStructuralFailure    = "STRUCTURAL_FAILURE"
	TypeElectricalFault      = "ELECTRICAL_FAULT"
	TypeNearMiss             = "NEAR_MISS"
	TypeProceduralViolation  = "PROCEDURAL_VIOLATION"
	TypeContractorIncident   = "CONTRACTOR_INCIDENT"
)

var knownTypes = []string{
	TypeWellBlowout,
	TypePipelineLeak,
	TypeEquipmentFailure,
	TypeFireExplosion,
	TypeChemicalSpill,
	TypePersonnelInjury,
	TypeEnvironmentalRelease,
	TypeH2SGasRelease,
	TypePressureAnomaly,
	TypeStructuralFailure,
	TypeElectricalFault,
	TypeNearMiss,
	TypeProceduralViolation,
	TypeContractorIncident,
}

// KnownTypes returns the full ordered list of incident type labels.
func KnownTypes() []string {
	out := make([]string, len(knownTypes))
	copy(out, knownTypes)
	return out
}

// ValidType reports whether t is one of the known incident type labels.
func ValidType(t string) bool {
	for _, k := range knownTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Coordinates is a lat/lon pair for a field location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location identifies where an incident occurred.
type Location struct {
	FieldName   string      `json:"field_name"`
	WellID      string      `json:"well_id"`
	Region      string      `json:"region,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

// Record is a historical incident document as stored in the incident index.
type Record struct {
	IncidentID          string    `json:"incident_id"`
	Timestamp           time.Time `json:"timestamp"`
	Location            Location  `json:"location"`
	IncidentType        string    `json:"incident_type"`
	Severity            string    `json:"severity"`
	SeverityScore       int       `json:"severity_score"`
	Description         string    `json:"description"`
	EquipmentInvolved   string    `json:"equipment_involved"`
	PersonnelCount      int       `json:"personnel_count"`
	Injuries            int       `json:"injuries"`
	Fatalities          int       `json:"fatalities"`
	FinancialImpact     float64   `json:"financial_impact"`
	RootCause           string    `json:"root_cause"`
	CorrectiveActions   string    `json:"corrective_actions"`
	Status              string    `json:"status"`
	AssignedTeam        string    `json:"assigned_team"`
	ResolutionTimeHours *float64  `json:"resolution_time_hours"`
	Tags                []string  `json:"tags"`
}
