package opentargets

type SearchHit struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

type TargetRef struct {
	ID             string `json:"id"`
	ApprovedSymbol string `json:"approvedSymbol"`
}

type AssociatedTarget struct {
	Score  float64   `json:"score"`
	Target TargetRef `json:"target"`
}

type MechanismOfAction struct {
	MechanismOfAction string      `json:"mechanismOfAction"`
	ActionType        string      `json:"actionType"`
	TargetName        string      `json:"targetName"`
	Targets           []TargetRef `json:"targets"`
}

// DrugInfo is keyed by the caller's input (name or ChEMBL id); Error is set
// when the input could not be resolved.
type DrugInfo struct {
	ID                        string              `json:"id,omitempty"`
	Name                      string              `json:"name,omitempty"`
	Description               string              `json:"description,omitempty"`
	MaximumClinicalTrialPhase *float64            `json:"maximumClinicalTrialPhase,omitempty"`
	MechanismsOfAction        []MechanismOfAction `json:"mechanismsOfAction,omitempty"`
	Error                     string              `json:"error,omitempty"`
}

type Tractability struct {
	Modality string `json:"modality"`
	Value    bool   `json:"value"`
	Label    string `json:"label"`
}

type ProbeURL struct {
	NiceName string `json:"niceName"`
	URL      string `json:"url"`
}

type ChemicalProbe struct {
	ID                 string     `json:"id"`
	Control            string     `json:"control,omitempty"`
	DrugID             string     `json:"drugId,omitempty"`
	IsHighQuality      bool       `json:"isHighQuality"`
	MechanismOfAction  []string   `json:"mechanismOfAction,omitempty"`
	Origin             []string   `json:"origin,omitempty"`
	ProbesDrugsScore   *float64   `json:"probesDrugsScore,omitempty"`
	ProbeMinerScore    *float64   `json:"probeMinerScore,omitempty"`
	ScoreInCells       *float64   `json:"scoreInCells,omitempty"`
	ScoreInOrganisms   *float64   `json:"scoreInOrganisms,omitempty"`
	TargetFromSourceID string     `json:"targetFromSourceId,omitempty"`
	URLs               []ProbeURL `json:"urls,omitempty"`
}

type PrioritisationItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Prioritisation struct {
	Items []PrioritisationItem `json:"items"`
}

type Biosample struct {
	CellFormat  string `json:"cellFormat,omitempty"`
	CellLabel   string `json:"cellLabel,omitempty"`
	TissueLabel string `json:"tissueLabel,omitempty"`
	TissueID    string `json:"tissueId,omitempty"`
}

type SafetyEffect struct {
	Dosing    string `json:"dosing,omitempty"`
	Direction string `json:"direction,omitempty"`
}

type SafetyStudy struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

type SafetyLiability struct {
	Event      string         `json:"event,omitempty"`
	EventID    string         `json:"eventId,omitempty"`
	Biosamples []Biosample    `json:"biosamples,omitempty"`
	Effects    []SafetyEffect `json:"effects,omitempty"`
	Studies    []SafetyStudy  `json:"studies,omitempty"`
	Datasource string         `json:"datasource,omitempty"`
	Literature string         `json:"literature,omitempty"`
	URL        string         `json:"url,omitempty"`
}

// TargetReport is one target's answer to a target-level query. Only the
// section matching the query is populated. Errors holds GraphQL errors for
// this id alone.
type TargetReport struct {
	ID                string            `json:"id"`
	ApprovedSymbol    string            `json:"approvedSymbol,omitempty"`
	Tractability      []Tractability    `json:"tractability,omitempty"`
	ChemicalProbes    []ChemicalProbe   `json:"chemicalProbes,omitempty"`
	Prioritisation    *Prioritisation   `json:"prioritisation,omitempty"`
	SafetyLiabilities []SafetyLiability `json:"safetyLiabilities,omitempty"`
	Errors            []GraphQLError    `json:"errors,omitempty"`
}
