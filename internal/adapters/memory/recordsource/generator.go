package recordsource

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	clockport "github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/clock"
)

type capital struct {
	city     string
	lat, lon float64
}

var capitals = []capital{
	{"Abuja", 9.0765, 7.3986},
	{"Accra", 5.6037, -0.187},
	{"Addis Ababa", 9.03, 38.74},
	{"Ankara", 39.9334, 32.8597},
	{"Bangkok", 13.7563, 100.5018},
	{"Berlin", 52.52, 13.405},
	{"Bogota", 4.711, -74.0721},
	{"Brasilia", -15.7939, -47.8828},
	{"Buenos Aires", -34.6037, -58.3816},
	{"Cairo", 30.0444, 31.2357},
	{"Canberra", -35.2809, 149.13},
	{"Dhaka", 23.8103, 90.4125},
	{"Hanoi", 21.0278, 105.8342},
	{"Jakarta", -6.2088, 106.8456},
	{"Kampala", 0.3476, 32.5825},
	{"Kyiv", 50.4501, 30.5234},
	{"Lima", -12.0464, -77.0428},
	{"London", 51.5074, -0.1278},
	{"Madrid", 40.4168, -3.7038},
	{"Manila", 14.5995, 120.9842},
	{"Mexico City", 19.4326, -99.1332},
	{"Nairobi", -1.2921, 36.8219},
	{"New Delhi", 28.6139, 77.209},
	{"Ottawa", 45.4215, -75.6972},
	{"Paris", 48.8566, 2.3522},
	{"Quito", -0.1807, -78.4678},
	{"Reykjavik", 64.1466, -21.9426},
	{"Santiago", -33.4489, -70.6693},
	{"Seoul", 37.5665, 126.978},
	{"Tokyo", 35.6762, 139.6503},
	{"Washington", 38.9072, -77.0369},
	{"Wellington", -41.2865, 174.7762},
}

var projectTypes = []string{
	"Infrastructure",
	"Urban Development",
	"Transportation",
	"Energy",
	"Water Management",
	"Telecommunications",
}

// Generate builds count synthetic projects scattered within ±2° of world
// capitals, with a random status and a last-updated time within the year
// before now. The output is fully determined by rng and now.
func Generate(count int, rng *rand.Rand, now time.Time) []domain.Record {
	statuses := domain.RecordStatuses()
	out := make([]domain.Record, 0, max(count, 0))
	for i := 0; i < count; i++ {
		c := capitals[rng.Intn(len(capitals))]
		kind := projectTypes[rng.Intn(len(projectTypes))]
		daysAgo := rng.Intn(365)

		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			id = uuid.New()
		}
		out = append(out, domain.Record{
			ID:          domain.RecordID(id.String()),
			Name:        fmt.Sprintf("%s %s %04d", c.city, kind, i+1),
			Latitude:    clamp(round6(c.lat+rng.Float64()*4-2), -90, 90),
			Longitude:   clamp(round6(c.lon+rng.Float64()*4-2), -180, 180),
			Status:      statuses[rng.Intn(len(statuses))],
			LastUpdated: now.Add(-time.Duration(daysAgo) * 24 * time.Hour).UTC(),
		})
	}
	return out
}

// Mock is a recordsource.Source that generates its data set once, on first
// load, and serves the same set afterwards.
type Mock struct {
	count int
	seed  int64
	clk   clockport.Clock

	once    sync.Once
	records []domain.Record
}

func NewMock(count int, seed int64, clk clockport.Clock) *Mock {
	return &Mock{count: count, seed: seed, clk: clk}
}

func (m *Mock) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.once.Do(func() {
		m.records = Generate(m.count, rand.New(rand.NewSource(m.seed)), m.clk.Now())
	})
	return append([]domain.Record(nil), m.records...), nil
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

func clamp(f, lo, hi float64) float64 {
	return math.Min(math.Max(f, lo), hi)
}
