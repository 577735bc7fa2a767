package locate

import "math"

// RSSI clamp bounds: signals outside this range are measurement noise and
// must neither dominate nor vanish from the weighting.
const (
	signalFloor   = -120.0
	signalCeiling = -5.0
)

// Estimate is a weighted-centroid position derived from located access
// points with caller-supplied signal readings.
type Estimate struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	PointsUsed int     `json:"pointsUsed"`
	WeightSum  float64 `json:"weightSum"`
}

// candidate is one located point offered to the triangulation.
type candidate struct {
	lat    float64
	lon    float64
	weight float64
}

// WeightFromSignal converts a dBm reading to a linear power proxy weight,
// 10^(dBm/10), clamping into the plausible RSSI range first. Non-finite
// readings weigh nothing.
func WeightFromSignal(dbm float64) float64 {
	if math.IsNaN(dbm) || math.IsInf(dbm, 0) {
		return 0
	}
	return math.Pow(10, math.Min(math.Max(dbm, signalFloor), signalCeiling)/10)
}

// triangulate computes the weighted spherical centroid of the candidates.
//
// Points are mapped onto the unit sphere, weight-summed as Cartesian
// vectors, and the sum is mapped back through atan2. Averaging longitudes
// directly would break across the ±180° antimeridian; the vector route does
// not. A single point is not a meaningfully different fix from its own
// coordinate, so fewer than two contributing points yield no estimate.
func triangulate(candidates []candidate) *Estimate {
	var x, y, z, weightSum float64
	contributing := 0
	for _, c := range candidates {
		weightSum += c.weight
		if c.weight <= 0 {
			continue
		}
		contributing++
		latRad := c.lat * math.Pi / 180
		lonRad := c.lon * math.Pi / 180
		x += math.Cos(latRad) * math.Cos(lonRad) * c.weight
		y += math.Cos(latRad) * math.Sin(lonRad) * c.weight
		z += math.Sin(latRad) * c.weight
	}
	if contributing < 2 {
		return nil
	}

	lon := math.Atan2(y, x) * 180 / math.Pi
	hyp := math.Sqrt(x*x + y*y)
	lat := math.Atan2(z, hyp) * 180 / math.Pi

	return &Estimate{
		Latitude:   round7(lat),
		Longitude:  round7(lon),
		PointsUsed: len(candidates),
		WeightSum:  weightSum,
	}
}

// round7 limits coordinates to 7 decimal places, roughly centimeter
// precision, which is already beyond what RSSI weighting can justify.
func round7(v float64) float64 {
	return math.Round(v*1e7) / 1e7
}

// triangulationCandidates selects the results that can offer a position fix:
// located devices the caller supplied readings for. Each candidate's weight
// is the sum over that device's readings.
func triangulationCandidates(results []Result, readings map[string][]float64) []candidate {
	var candidates []candidate
	for _, res := range results {
		signals := readings[res.BSSID]
		if len(signals) == 0 {
			continue
		}
		weight := 0.0
		for _, dbm := range signals {
			weight += WeightFromSignal(dbm)
		}
		candidates = append(candidates, candidate{
			lat:    res.Latitude,
			lon:    res.Longitude,
			weight: weight,
		})
	}
	return candidates
}
