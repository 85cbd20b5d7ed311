package flights

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/aturgenev/skyreserve/internal/domain"
	"github.com/aturgenev/skyreserve/internal/logger"
	"github.com/aturgenev/skyreserve/internal/repository"
)

var airlineCodes = []string{"BA", "AF", "LH", "AA", "DL"}

var destinations = []domain.Airport{
	{City: "New York", Latitude: 40.7128, Longitude: -74.0060},
	{City: "London", Latitude: 51.5074, Longitude: -0.1278},
	{City: "Paris", Latitude: 48.8566, Longitude: 2.3522},
	{City: "Frankfurt", Latitude: 50.1109, Longitude: 8.6821},
	{City: "Dubai", Latitude: 25.2048, Longitude: 55.2708},
	{City: "Singapore", Latitude: 1.3521, Longitude: 103.8198},
	{City: "Tokyo", Latitude: 35.6762, Longitude: 139.6503},
	{City: "Sydney", Latitude: -33.8688, Longitude: 151.2093},
	{City: "Toronto", Latitude: 43.6532, Longitude: -79.3832},
	{City: "Istanbul", Latitude: 41.0082, Longitude: 28.9784},
}

// Scheduler fills the catalog with randomly generated flights at startup.
type Scheduler struct {
	rng *rand.Rand
}

func NewScheduler(seed int64) *Scheduler {
	return &Scheduler{rng: rand.New(rand.NewSource(seed))}
}

// Populate generates n flights and adds them to the repository. Flight
// numbers that collide with an existing entry are re-rolled.
func (g *Scheduler) Populate(ctx context.Context, repo repository.FlightRepository, n int) error {
	for i := 0; i < n; i++ {
		flight, err := g.generate()
		if err != nil {
			return err
		}
		if err := repo.Add(ctx, flight); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				i-- // number collision, roll again
				continue
			}
			return err
		}
	}
	logger.InfoLogger.WithField("flights", n).Info("flight schedule generated")
	return nil
}

func (g *Scheduler) generate() (*domain.Flight, error) {
	origin := destinations[g.rng.Intn(len(destinations))]
	dest := origin
	for dest.City == origin.City {
		dest = destinations[g.rng.Intn(len(destinations))]
	}

	number, err := domain.NewFlightNumber(
		airlineCodes[g.rng.Intn(len(airlineCodes))],
		1000+g.rng.Intn(9000),
	)
	if err != nil {
		return nil, err
	}

	departure := time.Now().
		Add(time.Duration(g.rng.Intn(24)) * time.Hour).
		Add(time.Duration(g.rng.Intn(60)) * time.Minute)
	arrival := departure.Add(time.Duration(1+g.rng.Intn(12)) * time.Hour)

	seats := domain.MinFlightSeats + g.rng.Intn(domain.MaxFlightSeats-domain.MinFlightSeats+1)

	// price scales with route length
	dist := domain.GreatCircleDistance(origin, dest)
	priceCents := 7500 + int64(dist.Miles*12)

	return domain.NewFlight(number, origin, dest, departure, arrival, g.randomGate(), seats, priceCents)
}

func (g *Scheduler) randomGate() string {
	return fmt.Sprintf("%c%d", 'A'+rune(g.rng.Intn(26)), 1+g.rng.Intn(30))
}
