package testkit

import (
	"math/rand"
	"strconv"
)

// SyntheticConfig configures the synthetic census generator.
type SyntheticConfig struct {
	Rows int   `json:"rows"`
	Seed int64 `json:"seed"`
}

// DefaultSyntheticConfig returns the fixture size used by dev mode.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		Rows: 200,
		Seed: 42,
	}
}

// SyntheticGenerator produces raw census rows with a learnable income
// signal: the high bracket gets older ages, more education years and a
// capital gain. Output is deterministic for a fixed config.
type SyntheticGenerator struct {
	config SyntheticConfig
	rng    *rand.Rand
}

// NewSyntheticGenerator creates a generator seeded from the config.
func NewSyntheticGenerator(config SyntheticConfig) *SyntheticGenerator {
	return &SyntheticGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Value pools for the categorical columns. United-States repeats to weight
// the draw the way the census skews.
var (
	synthWorkclasses   = []string{"Private", "Self-emp-not-inc", "Local-gov", "State-gov", "Federal-gov"}
	synthEducations    = []string{"Bachelors", "HS-grad", "Some-college", "Masters", "Assoc-voc"}
	synthMaritals      = []string{"Married-civ-spouse", "Never-married", "Divorced", "Separated"}
	synthOccupations   = []string{"Exec-managerial", "Craft-repair", "Prof-specialty", "Sales", "Adm-clerical", "Tech-support"}
	synthRelationships = []string{"Husband", "Not-in-family", "Wife", "Own-child", "Unmarried"}
	synthRaces         = []string{"White", "Black", "Asian-Pac-Islander", "Amer-Indian-Eskimo"}
	synthCountries     = []string{"United-States", "United-States", "United-States", "Mexico", "India", "Germany"}
)

// Generate returns the configured number of raw rows in schema column order.
// Row i walks the four label-by-sex cells (i mod 4), so labels and protected
// groups stay balanced at any size. Ages sit inside the IQR fences for every
// seed, hours-per-week cycles a narrow band, and fnlwgt is unique per row, so
// the cleaner keeps all rows.
func (g *SyntheticGenerator) Generate() [][]string {
	rows := make([][]string, 0, g.config.Rows)
	for i := 0; i < g.config.Rows; i++ {
		rows = append(rows, g.row(i))
	}
	return rows
}

func (g *SyntheticGenerator) row(i int) []string {
	positive := i%2 == 0
	sex := "Male"
	if i%4 >= 2 {
		sex = "Female"
	}

	age := 24 + g.rng.Intn(12)
	eduYears := 9 + g.rng.Intn(3)
	gain := 0
	income := "<=50K"
	if positive {
		age = 44 + g.rng.Intn(12)
		eduYears = 13 + g.rng.Intn(3)
		gain = 1200 + g.rng.Intn(7)*90
		income = ">50K"
	}

	return []string{
		strconv.Itoa(age),
		g.pick(synthWorkclasses),
		strconv.Itoa(100000 + i*37),
		g.pick(synthEducations),
		strconv.Itoa(eduYears),
		g.pick(synthMaritals),
		g.pick(synthOccupations),
		g.pick(synthRelationships),
		g.pick(synthRaces),
		sex,
		strconv.Itoa(gain),
		"0",
		strconv.Itoa(38 + i%5),
		g.pick(synthCountries),
		income,
	}
}

func (g *SyntheticGenerator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

// SyntheticRows generates n rows with the default seed.
func SyntheticRows(n int) [][]string {
	config := DefaultSyntheticConfig()
	config.Rows = n
	return NewSyntheticGenerator(config).Generate()
}
