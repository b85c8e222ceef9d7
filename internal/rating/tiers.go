package rating

import (
	"math"
	"sort"
)

const Unranked = "Unranked"

// Tier is a named band [Min, next tier's Min) of the rating axis.
type Tier struct {
	Name string
	Min  float64
}

// Tiers is ordered by Min and starts at 0; the last tier is unbounded.
var Tiers = []Tier{
	{"Bronze V", 0},
	{"Bronze IV", 500},
	{"Bronze III", 600},
	{"Bronze II", 700},
	{"Bronze I", 800},
	{"Silver V", 900},
	{"Silver IV", 1000},
	{"Silver III", 1100},
	{"Silver II", 1200},
	{"Silver I", 1300},
	{"Gold V", 1400},
	{"Gold IV", 1500},
	{"Gold III", 1600},
	{"Gold II", 1700},
	{"Gold I", 1800},
	{"Platinum V", 1900},
	{"Platinum IV", 2000},
	{"Platinum III", 2100},
	{"Platinum II", 2200},
	{"Platinum I", 2300},
	{"Diamond V", 2400},
	{"Diamond IV", 2500},
	{"Diamond III", 2600},
	{"Diamond II", 2700},
	{"Diamond I", 2800},
	{"Master", 2900},
}

// TierFor returns the name of the band containing r. Ratings below zero land
// in the lowest band; only NaN yields Unranked.
func TierFor(r float64) string {
	return tierFor(Tiers, r)
}

func tierFor(tiers []Tier, r float64) string {
	if math.IsNaN(r) || len(tiers) == 0 {
		return Unranked
	}
	// first tier whose lower bound is above r, the one before it contains r
	i := sort.Search(len(tiers), func(i int) bool { return tiers[i].Min > r })
	if i == 0 {
		return tiers[0].Name
	}
	return tiers[i-1].Name
}
