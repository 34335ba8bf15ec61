package starmap

// =============================================================================
// Source Records
// =============================================================================

// Link is one outgoing jump connection of a system.
type Link struct {
	SystemID   int64  `json:"systemId"`
	SystemName string `json:"systemName"`

	// GateRaceID identifies the race maintaining a jump gate on this end of
	// the link. Zero means the jump point is not stabilized.
	GateRaceID int64 `json:"jumpGateRaceId"`
}

// SystemConnection is a surveyed system and its outgoing links.
type SystemConnection struct {
	SystemID        int64  `json:"systemId"`
	SystemName      string `json:"systemName"`
	ConnectedTo     []Link `json:"connectedTo"`
	ConnectionCount int    `json:"connectionCount"`
}

// ColonyRecord is a single populated body.
type ColonyRecord struct {
	PopulationID int64   `json:"PopulationID"`
	Name         string  `json:"PopulationName"`
	Population   float64 `json:"Population"`
	SystemName   string  `json:"SystemName"`
	BodyName     string  `json:"BodyName"`

	// ControllingRaceName is set when the colony belongs to a race other
	// than the one the data was extracted for.
	ControllingRaceID   int64  `json:"ControllingRaceID,omitempty"`
	ControllingRaceName string `json:"ControllingRaceName,omitempty"`
}

// SystemDistribution aggregates the viewing race's colonies in one system.
type SystemDistribution struct {
	SystemName      string   `json:"SystemName"`
	ColonyCount     int      `json:"ColonyCount"`
	TotalPopulation float64  `json:"TotalPopulation"`
	Colonies        []string `json:"Colonies"`
}

// PopulationSummary holds race-wide totals.
type PopulationSummary struct {
	ColonyCount     int     `json:"colonyCount"`
	TotalPopulation float64 `json:"totalPopulation"`
}

// PopulationData is the population aggregate of one race.
type PopulationData struct {
	RaceName           string               `json:"raceName"`
	Summary            PopulationSummary    `json:"summary"`
	Colonies           []ColonyRecord       `json:"colonies"`
	SystemDistribution []SystemDistribution `json:"systemDistribution"`
}

// Dataset is everything needed to build and lay out one star map.
type Dataset struct {
	GameID          int64              `json:"gameId,omitempty"`
	RaceID          int64              `json:"raceId,omitempty"`
	CapitalSystemID int64              `json:"capitalSystemId,omitempty"`
	Systems         []SystemConnection `json:"systems"`
	Population      *PopulationData    `json:"population,omitempty"`
}
