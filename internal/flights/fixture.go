package flights

import "github.com/GoSim-25-26J-441/runway-core/pkg/models"

// Reference returns the reference traffic sample: four arrivals followed by
// ten departures.
func Reference() []models.Flight {
	return []models.Flight{
		{ID: "A1", Kind: models.Arrival, Category: models.Medium, Target: 100},
		{ID: "A2", Kind: models.Arrival, Category: models.Large, Target: 140},
		{ID: "A3", Kind: models.Arrival, Category: models.Medium, Target: 320},
		{ID: "A4", Kind: models.Arrival, Category: models.Heavy, Target: 400},
		{ID: "D1", Kind: models.Departure, Category: models.Medium, Target: 130},
		{ID: "D2", Kind: models.Departure, Category: models.Medium, Target: 180},
		{ID: "D3", Kind: models.Departure, Category: models.Light, Target: 270},
		{ID: "D4", Kind: models.Departure, Category: models.Medium, Target: 360},
		{ID: "D5", Kind: models.Departure, Category: models.Light, Target: 420},
		{ID: "D6", Kind: models.Departure, Category: models.Large, Target: 560},
		{ID: "D7", Kind: models.Departure, Category: models.Medium, Target: 630},
		{ID: "D8", Kind: models.Departure, Category: models.Medium, Target: 700},
		{ID: "D9", Kind: models.Departure, Category: models.Light, Target: 200},
		{ID: "D10", Kind: models.Departure, Category: models.Heavy, Target: 800},
	}
}
