package ergast

// response is the envelope shared by every endpoint.
type response struct {
	MRData mrData `json:"MRData"`
}

type mrData struct {
	Limit  string `json:"limit"`
	Offset string `json:"offset"`
	Total  string `json:"total"`

	RaceTable        *raceTable        `json:"RaceTable,omitempty"`
	DriverTable      *driverTable      `json:"DriverTable,omitempty"`
	ConstructorTable *constructorTable `json:"ConstructorTable,omitempty"`
	CircuitTable     *circuitTable     `json:"CircuitTable,omitempty"`
}

type raceTable struct {
	Season string    `json:"season"`
	Races  []apiRace `json:"Races"`
}

type driverTable struct {
	Season  string      `json:"season"`
	Drivers []apiDriver `json:"Drivers"`
}

type constructorTable struct {
	Season       string           `json:"season"`
	Constructors []apiConstructor `json:"Constructors"`
}

type circuitTable struct {
	Circuits []apiCircuit `json:"Circuits"`
}

type apiRace struct {
	Season   string      `json:"season"`
	Round    string      `json:"round"`
	URL      string      `json:"url"`
	RaceName string      `json:"raceName"`
	Circuit  apiCircuit  `json:"Circuit"`
	Date     string      `json:"date"`
	Time     string      `json:"time"`
	Results  []apiResult `json:"Results"`
}

type apiCircuit struct {
	CircuitID   string      `json:"circuitId"`
	URL         string      `json:"url"`
	CircuitName string      `json:"circuitName"`
	Location    apiLocation `json:"Location"`
}

type apiLocation struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

type apiDriver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	URL             string `json:"url"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

type apiConstructor struct {
	ConstructorID string `json:"constructorId"`
	URL           string `json:"url"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

type apiResult struct {
	Number       string         `json:"number"`
	Position     string         `json:"position"`
	PositionText string         `json:"positionText"`
	Points       string         `json:"points"`
	Driver       apiDriver      `json:"Driver"`
	Constructor  apiConstructor `json:"Constructor"`
	Grid         string         `json:"grid"`
	Laps         string         `json:"laps"`
	Status       string         `json:"status"`
}
