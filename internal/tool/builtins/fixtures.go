package builtins

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Fixtures holds the canned datasets backing the builtin tool adapters.
// Production deployments would swap these adapters for real provider APIs;
// the adapter contract stays the same either way.
type Fixtures struct {
	Flights  []FlightOption          `yaml:"flights"`
	Lodging  []LodgingOption         `yaml:"lodging"`
	Events   []EventOption           `yaml:"events"`
	Currency []CurrencyTable         `yaml:"currency"`
	Transit  []TransitRoute          `yaml:"transit"`
	Geocode  []GeocodeEntry          `yaml:"geocode"`
	Weather  map[string][]WeatherDay `yaml:"weather"`
}

// FlightOption is one bookable flight in the flights dataset.
type FlightOption struct {
	Airline          string  `yaml:"airline" json:"airline"`
	FlightNumber     string  `yaml:"flight_number" json:"flight_number"`
	DepartureAirport string  `yaml:"departure_airport" json:"departure_airport"`
	ArrivalAirport   string  `yaml:"arrival_airport" json:"arrival_airport"`
	DepartureTime    string  `yaml:"departure_time" json:"departure_time"`
	ArrivalTime      string  `yaml:"arrival_time" json:"arrival_time"`
	Price            float64 `yaml:"price" json:"price"`
	CO2EmissionsKG   float64 `yaml:"co2_emissions_kg" json:"co2_emissions_kg"`
}

// LodgingOption is one stay in the lodging dataset.
type LodgingOption struct {
	Name               string            `yaml:"name" json:"name"`
	Neighborhood       string            `yaml:"neighborhood" json:"neighborhood"`
	PricePerNight      float64           `yaml:"price_per_night" json:"price_per_night"`
	CancellationPolicy string            `yaml:"cancellation_policy" json:"cancellation_policy"`
	FamilyAmenities    bool              `yaml:"family_amenities" json:"family_amenities"`
	DistanceToPOIs     map[string]string `yaml:"distance_to_pois" json:"distance_to_pois"`
}

// EventOption is one event or attraction in the events dataset.
type EventOption struct {
	Name         string   `yaml:"name" json:"name"`
	Location     string   `yaml:"location" json:"location"`
	OpeningHours string   `yaml:"opening_hours" json:"opening_hours"`
	KidFriendly  bool     `yaml:"kid_friendly" json:"kid_friendly"`
	IsIndoor     bool     `yaml:"is_indoor" json:"is_indoor"`
	Price        float64  `yaml:"price" json:"price"`
	Tags         []string `yaml:"tags" json:"tags"`
}

// CurrencyTable maps a base currency to its exchange rates.
type CurrencyTable struct {
	BaseCurrency string             `yaml:"base_currency" json:"base_currency"`
	Rates        map[string]float64 `yaml:"rates" json:"rates"`
}

// TransitRoute is one origin/destination transit option.
type TransitRoute struct {
	Origin        string  `yaml:"origin" json:"origin"`
	Destination   string  `yaml:"destination" json:"destination"`
	Mode          string  `yaml:"mode" json:"mode"`
	TravelMinutes int     `yaml:"travel_minutes" json:"travel_minutes"`
	Fare          float64 `yaml:"fare" json:"fare"`
}

// GeocodeEntry maps a place query to coordinates.
type GeocodeEntry struct {
	Query       string  `yaml:"query" json:"query"`
	Latitude    float64 `yaml:"latitude" json:"latitude"`
	Longitude   float64 `yaml:"longitude" json:"longitude"`
	DisplayName string  `yaml:"display_name" json:"display_name"`
}

// WeatherDay is one day of a location's climatological pattern. The weather
// adapter cycles through the pattern to produce a forecast for any range.
type WeatherDay struct {
	WeatherCode       int     `yaml:"weather_code" json:"weather_code"`
	MaxTemp           float64 `yaml:"max_temp" json:"max_temp"`
	MinTemp           float64 `yaml:"min_temp" json:"min_temp"`
	PrecipProbability float64 `yaml:"precip_probability" json:"precip_probability"`
}

// LoadFixtures reads fixtures.yaml from dir. Missing file is an error;
// callers that want built-in data should use DefaultFixtures.
func LoadFixtures(dir string) (*Fixtures, error) {
	path := filepath.Join(dir, "fixtures.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures file %s: %w", path, err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures file %s: %w", path, err)
	}
	return &f, nil
}

// DefaultFixtures returns a small built-in dataset centered on Tokyo so the
// CLI runs end to end with no setup.
func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Flights: []FlightOption{
			{Airline: "ANA", FlightNumber: "NH7", DepartureAirport: "SFO", ArrivalAirport: "NRT", DepartureTime: "11:05", ArrivalTime: "14:30+1", Price: 980, CO2EmissionsKG: 710},
			{Airline: "JAL", FlightNumber: "JL1", DepartureAirport: "SFO", ArrivalAirport: "HND", DepartureTime: "13:40", ArrivalTime: "17:05+1", Price: 1040, CO2EmissionsKG: 695},
			{Airline: "ZipAir", FlightNumber: "ZG25", DepartureAirport: "SFO", ArrivalAirport: "NRT", DepartureTime: "21:55", ArrivalTime: "01:25+2", Price: 620, CO2EmissionsKG: 705},
			{Airline: "United", FlightNumber: "UA837", DepartureAirport: "SFO", ArrivalAirport: "NRT", DepartureTime: "10:45", ArrivalTime: "14:10+1", Price: 890, CO2EmissionsKG: 720},
		},
		Lodging: []LodgingOption{
			{Name: "Shibuya Stream Hotel", Neighborhood: "Shibuya", PricePerNight: 210, CancellationPolicy: "free until 48h", FamilyAmenities: false, DistanceToPOIs: map[string]string{"Shibuya Station": "5 min walk"}},
			{Name: "Asakusa View Ryokan", Neighborhood: "Asakusa", PricePerNight: 150, CancellationPolicy: "free until 24h", FamilyAmenities: true, DistanceToPOIs: map[string]string{"Senso-ji": "3 min walk"}},
			{Name: "Shinjuku Granbell", Neighborhood: "Shinjuku", PricePerNight: 180, CancellationPolicy: "non-refundable", FamilyAmenities: false, DistanceToPOIs: map[string]string{"Shinjuku Station": "8 min walk"}},
			{Name: "Ueno Budget Inn", Neighborhood: "Ueno", PricePerNight: 90, CancellationPolicy: "free until 24h", FamilyAmenities: true, DistanceToPOIs: map[string]string{"Ueno Park": "6 min walk"}},
		},
		Events: []EventOption{
			{Name: "Senso-ji Temple Visit", Location: "Tokyo", OpeningHours: "06:00-17:00", KidFriendly: true, IsIndoor: false, Price: 0, Tags: []string{"culture", "temple"}},
			{Name: "Tea Ceremony Experience", Location: "Tokyo", OpeningHours: "10:00-18:00", KidFriendly: false, IsIndoor: true, Price: 45, Tags: []string{"culture", "traditional"}},
			{Name: "teamLab Planets", Location: "Tokyo", OpeningHours: "09:00-22:00", KidFriendly: true, IsIndoor: true, Price: 32, Tags: []string{"art", "modern"}},
			{Name: "Meiji Shrine Walk", Location: "Tokyo", OpeningHours: "05:00-18:00", KidFriendly: true, IsIndoor: false, Price: 0, Tags: []string{"culture", "shrine", "nature"}},
			{Name: "Tsukiji Outer Market Food Tour", Location: "Tokyo", OpeningHours: "08:00-14:00", KidFriendly: true, IsIndoor: false, Price: 60, Tags: []string{"food", "market"}},
			{Name: "Sumo Morning Practice", Location: "Tokyo", OpeningHours: "07:30-10:00", KidFriendly: true, IsIndoor: true, Price: 40, Tags: []string{"culture", "traditional", "sport"}},
		},
		Currency: []CurrencyTable{
			{BaseCurrency: "USD", Rates: map[string]float64{"JPY": 149.50, "EUR": 0.92, "GBP": 0.79}},
			{BaseCurrency: "EUR", Rates: map[string]float64{"JPY": 162.10, "USD": 1.09, "GBP": 0.86}},
		},
		Transit: []TransitRoute{
			{Origin: "Narita Airport", Destination: "Tokyo", Mode: "Train", TravelMinutes: 53, Fare: 21},
			{Origin: "Haneda Airport", Destination: "Tokyo", Mode: "Train", TravelMinutes: 30, Fare: 5},
			{Origin: "Tokyo", Destination: "Kyoto", Mode: "Shinkansen", TravelMinutes: 135, Fare: 95},
			{Origin: "Shibuya", Destination: "Asakusa", Mode: "Metro", TravelMinutes: 35, Fare: 2},
		},
		Geocode: []GeocodeEntry{
			{Query: "Tokyo", Latitude: 35.6895, Longitude: 139.6917, DisplayName: "Tokyo, Japan"},
			{Query: "Kyoto", Latitude: 35.0116, Longitude: 135.7681, DisplayName: "Kyoto, Japan"},
			{Query: "Osaka", Latitude: 34.6937, Longitude: 135.5023, DisplayName: "Osaka, Japan"},
		},
		Weather: map[string][]WeatherDay{
			"tokyo": {
				{WeatherCode: 1, MaxTemp: 22, MinTemp: 14, PrecipProbability: 0.1},
				{WeatherCode: 2, MaxTemp: 21, MinTemp: 13, PrecipProbability: 0.2},
				{WeatherCode: 61, MaxTemp: 18, MinTemp: 12, PrecipProbability: 0.7},
				{WeatherCode: 0, MaxTemp: 23, MinTemp: 15, PrecipProbability: 0.0},
			},
			"kyoto": {
				{WeatherCode: 0, MaxTemp: 24, MinTemp: 13, PrecipProbability: 0.05},
				{WeatherCode: 3, MaxTemp: 20, MinTemp: 12, PrecipProbability: 0.3},
			},
		},
	}
}
