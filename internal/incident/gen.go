package incident

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Field is a producing asset synthetic incidents are placed at.
type Field struct {
	FieldName string
	Region    string
	Lat       float64
	Lon       float64
}

// DemoFields are the producing assets used by the synthetic generator.
var DemoFields = []Field{
	{FieldName: "Permian Basin Alpha", Region: "West Texas", Lat: 31.9, Lon: -102.3},
	{FieldName: "Gulf Coast Platform B7", Region: "Gulf of Mexico", Lat: 28.5, Lon: -90.1},
	{FieldName: "Eagle Ford Shale", Region: "South Texas", Lat: 28.8, Lon: -98.5},
	{FieldName: "Bakken North", Region: "North Dakota", Lat: 47.9, Lon: -103.1},
	{FieldName: "Marcellus Appalachian", Region: "Pennsylvania", Lat: 41.2, Lon: -77.8},
}

// scenario couples an incident type with realistic descriptions. Each
// description carries its own severity so narratives and outcomes stay
// plausible together.
type scenario struct {
	incidentType string
	descriptions []string
	equipment    []string
	severities   []string
}

var scenarios = []scenario{
	{
		incidentType: TypePipelineLeak,
		descriptions: []string{
			"8-inch crude oil pipeline developed a pinhole leak at weld joint. Approximately 10 barrels of crude oil released before isolation. Containment booms deployed.",
			"Corrosion-induced pipeline failure detected by pressure monitoring system. 6-inch gas pipeline section isolated. No injuries reported.",
			"Pipeline pigging operation revealed internal corrosion. Precautionary shutdown of 2km section. Inspection team dispatched.",
		},
		equipment:  []string{"Pipeline", "Pig Launcher", "Control Valve", "Pressure Transmitter"},
		severities: []string{"HIGH", "HIGH", "MEDIUM"},
	},
	{
		incidentType: TypeEquipmentFailure,
		descriptions: []string{
			"Centrifugal pump bearing failure causing production shutdown on Well-12. Replacement parts ordered, estimated 48-hour downtime.",
			"Gas compressor unit C3 experienced unplanned shutdown due to high vibration alarm. Production reduced by 15%.",
			"Wellhead control panel malfunctioned during routine operations. Manual override engaged. Root cause investigation initiated.",
			"Blowout preventer (BOP) stack pressure test failed. Well operations suspended pending BOP inspection and certification.",
		},
		equipment:  []string{"Centrifugal Pump", "Gas Compressor", "Wellhead Control Panel", "BOP Stack"},
		severities: []string{"MEDIUM", "MEDIUM", "MEDIUM", "HIGH"},
	},
	{
		incidentType: TypeH2SGasRelease,
		descriptions: []string{
			"H2S gas detector alarmed at 15 ppm in production facility. Non-essential personnel evacuated. Ventilation system activated.",
			"Sour crude oil spill in tank battery area triggered H2S monitors. Emergency response team deployed with SCBA equipment.",
			"H2S concentration reached 50 ppm during workover operations. Operations halted, wind direction assessed, muster point activated.",
		},
		equipment:  []string{"H2S Monitor", "Gas Detector", "SCBA Equipment", "Ventilation System"},
		severities: []string{"HIGH", "HIGH", "CRITICAL"},
	},
	{
		incidentType: TypePersonnelInjury,
		descriptions: []string{
			"Rig floor worker sustained hand laceration while making pipe connection. First aid administered on site. No lost time incident.",
			"Operator slipped on wet deck surface causing ankle sprain. Medical evaluation completed. OSHA recordable incident.",
			"Worker struck by dropped wrench from elevated work platform. Hard hat prevented serious injury. Near-miss investigation initiated.",
		},
		equipment:  []string{"Drill Pipe", "Slips", "Tongs", "Safety Harness"},
		severities: []string{"MEDIUM", "LOW", "HIGH"},
	},
	{
		incidentType: TypeWellBlowout,
		descriptions: []string{
			"Uncontrolled well flow detected during drilling operations at 8500ft depth. BOP closed, well kill operation initiated with kill fluid circulation.",
			"Gas kick encountered during tripping operations. Pit gain observed. Well shut in with annular preventer. Well control team mobilized.",
		},
		equipment:  []string{"BOP", "Drill Pipe", "Mud Pump", "Kill Line"},
		severities: []string{"CRITICAL", "CRITICAL"},
	},
	{
		incidentType: TypeFireExplosion,
		descriptions: []string{
			"Flash fire occurred in wellbay area during hot work permit activities. Fire extinguished within 3 minutes. Minor burns to 1 worker.",
			"Gas cloud ignited from flare stack malfunction. Explosion heard within 500m radius. Emergency shutdown system activated automatically.",
		},
		equipment:  []string{"Flare Stack", "Fire Suppression System", "Gas Detector", "ESD System"},
		severities: []string{"CRITICAL", "CRITICAL"},
	},
	{
		incidentType: TypeNearMiss,
		descriptions: []string{
			"Near-miss: truck driver came within 2 meters of open wellbore during routine deliveries. Safety barriers were inadequate.",
			"Near-miss: pressure buildup in separator exceeded 90% of relief valve set point. Operator intervened before relief valve activation.",
			"Near-miss: lifting sling found to be worn beyond inspection limits before crane lift operation. Lift halted, equipment replaced.",
		},
		equipment:  []string{"Crane", "Separator", "Safety Barriers", "Lifting Equipment"},
		severities: []string{"LOW", "MEDIUM", "MEDIUM"},
	},
	{
		incidentType: TypeEnvironmentalRelease,
		descriptions: []string{
			"Produced water overflow from storage pit due to valve failure. Estimated 50 barrels released. Soil remediation commenced.",
			"Chemical spill of scale inhibitor during dosing operation. 20 liters released. Secondary containment contained spill.",
			"Crude oil sheen detected on water surface near platform. Source identified as overboard discharge from separator. Operations adjusted.",
		},
		equipment:  []string{"Storage Tank", "Chemical Injection System", "Separator", "Produced Water System"},
		severities: []string{"HIGH", "MEDIUM", "HIGH"},
	},
}

var demoTeams = []string{"Emergency Response", "Well Control", "HSE Team", "Operations", "Maintenance", "Environmental"}

var rootCauseHints = []string{"mechanical failure", "human error", "process deviation", "equipment degradation", "design deficiency"}

var correctiveFollowups = []string{"Maintenance order raised", "Equipment replaced", "Procedure reviewed", "Training initiated", "Design modification planned"}

// Generate produces n synthetic incident records from a seeded source, so the
// same seed always yields the same dataset.
func Generate(n int, seed int64) []Record {
	rng := rand.New(rand.NewSource(seed))
	now := time.Now()

	records := make([]Record, 0, n)
	for i := range n {
		records = append(records, generateOne(rng, now, i+1))
	}
	return records
}

func generateOne(rng *rand.Rand, now time.Time, num int) Record {
	sc := scenarios[rng.Intn(len(scenarios))]
	pick := rng.Intn(len(sc.descriptions))
	description := sc.descriptions[pick]
	severity := sc.severities[pick]
	field := DemoFields[rng.Intn(len(DemoFields))]

	ts := now.Add(-time.Duration(rng.Intn(731))*24*time.Hour - time.Duration(rng.Intn(24))*time.Hour)

	var injuries, fatalities int
	switch severity {
	case "CRITICAL":
		injuries = rng.Intn(4)
		if rng.Float64() < 0.1 {
			fatalities = rng.Intn(2)
		}
	case "HIGH":
		injuries = rng.Intn(3)
	}

	status := []string{"OPEN", "IN_PROGRESS", "RESOLVED", "RESOLVED"}[rng.Intn(4)]

	var resolution *float64
	if status == "RESOLVED" {
		hours := resolutionHours(rng, severity)
		resolution = &hours
	}

	return Record{
		IncidentID: fmt.Sprintf("INC-%d-%04d", ts.Year(), num),
		Timestamp:  ts,
		Location: Location{
			FieldName: field.FieldName,
			WellID:    fmt.Sprintf("WELL-%03d", rng.Intn(50)+1),
			Region:    field.Region,
			Coordinates: Coordinates{
				Lat: field.Lat + rng.Float64() - 0.5,
				Lon: field.Lon + rng.Float64() - 0.5,
			},
		},
		IncidentType:        sc.incidentType,
		Severity:            severity,
		SeverityScore:       severityScore(rng, severity),
		Description:         description,
		EquipmentInvolved:   sc.equipment[rng.Intn(len(sc.equipment))],
		PersonnelCount:      rng.Intn(24) + 2,
		Injuries:            injuries,
		Fatalities:          fatalities,
		FinancialImpact:     financialImpact(rng, severity),
		RootCause:           "Under investigation - preliminary assessment indicates " + rootCauseHints[rng.Intn(len(rootCauseHints))],
		CorrectiveActions:   "Immediate isolation and assessment. " + correctiveFollowups[rng.Intn(len(correctiveFollowups))] + ".",
		Status:              status,
		AssignedTeam:        demoTeams[rng.Intn(len(demoTeams))],
		ResolutionTimeHours: resolution,
		Tags:                tags(sc.incidentType, severity, field.Region),
	}
}

func severityScore(rng *rand.Rand, severity string) int {
	switch severity {
	case "CRITICAL":
		return 80 + rng.Intn(20)
	case "HIGH":
		return 60 + rng.Intn(20)
	case "MEDIUM":
		return 40 + rng.Intn(20)
	default:
		return 10 + rng.Intn(30)
	}
}

func resolutionHours(rng *rand.Rand, severity string) float64 {
	var lo, hi float64
	switch severity {
	case "CRITICAL":
		lo, hi = 2, 48
	case "HIGH":
		lo, hi = 4, 72
	case "MEDIUM":
		lo, hi = 8, 168
	default:
		lo, hi = 24, 336
	}
	h := lo + rng.Float64()*(hi-lo)
	return float64(int(h*10)) / 10
}

func financialImpact(rng *rand.Rand, severity string) float64 {
	var lo, hi float64
	switch severity {
	case "CRITICAL":
		lo, hi = 500_000, 10_000_000
	case "HIGH":
		lo, hi = 50_000, 500_000
	case "MEDIUM":
		lo, hi = 5_000, 50_000
	default:
		lo, hi = 500, 5_000
	}
	v := lo + rng.Float64()*(hi-lo)
	return float64(int(v*100)) / 100
}

func tags(incidentType, severity, region string) []string {
	lower := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(s), " ", "-")
	}
	return []string{lower(incidentType), lower(severity), lower(region)}
}
