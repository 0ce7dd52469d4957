package generator

// Config drives the synthetic graph generator.
type Config struct {
	NumNodes int
	// AvgDegree is the target mean degree; the graph always starts from a
	// random spanning tree so it is connected.
	AvgDegree float64
	Regions   int
	MaxWeight float64
	Seed      int64
}

// DefaultConfig returns a city sized graph comparable to the neighborhoods set.
func DefaultConfig() Config {
	return Config{
		NumNodes:  96,
		AvgDegree: 4,
		Regions:   6,
		MaxWeight: 10,
		Seed:      42,
	}
}
