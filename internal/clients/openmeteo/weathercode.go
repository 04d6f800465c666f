package openmeteo

// WMO weather interpretation codes as reported by Open-Meteo.
var weatherCodeText = map[int]string{
	0:  "Clear",
	1:  "Mostly clear",
	2:  "Cloudy",
	3:  "Cloudy",
	45: "Fog",
	48: "Fog",
	51: "Drizzle",
	53: "Drizzle",
	55: "Drizzle",
	56: "Freezing drizzle",
	57: "Freezing drizzle",
	61: "Rain",
	63: "Rain",
	65: "Heavy rain",
	66: "Freezing rain",
	67: "Heavy freezing rain",
	71: "Snow",
	73: "Snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Rain showers",
	81: "Rain showers",
	82: "Violent rain showers",
	85: "Snow showers",
	86: "Snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Severe thunderstorm with hail",
}

// CodeText translates a WMO weather code into a short description.
func CodeText(code *int) string {
	if code == nil {
		return "Unknown"
	}
	if text, ok := weatherCodeText[*code]; ok {
		return text
	}
	return "Unknown"
}
