package entity

// SourceStatus classifies each summary source independently.
type SourceStatus string

const (
	StatusMissing SourceStatus = "missing"
	StatusOK      SourceStatus = "ok"
	StatusError   SourceStatus = "error"
)

// Event is a normalized calendar event. Start and End are local wall-clock
// times in HH:MM form; both are empty for all-day events.
type Event struct {
	Summary string
	Start   string
	End     string
	AllDay  bool
}

// Weather is today's forecast snapshot. Pointer fields are nil when the
// upstream response omitted the value.
type Weather struct {
	CurrentTemp   *float64
	MaxTemp       *float64
	MinTemp       *float64
	PrecipProbMax *float64
	Code          *int
	Text          string
}

// GeoResult is a single geocoding hit.
type GeoResult struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// DailySummary combines the calendar and weather sources for one user. Each
// source carries its own status so a failure on one never hides the other.
type DailySummary struct {
	CalendarStatus SourceStatus
	WeatherStatus  SourceStatus
	Events         []Event
	Weather        *Weather
	CalendarErr    string
	WeatherErr     string
}
