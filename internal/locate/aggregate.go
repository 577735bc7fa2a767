package locate

import (
	"fmt"
	"math"

	"github.com/wlocate/wlocate/internal/wloc"
)

// InvalidSignalError reports a caller-supplied signal that is not a finite
// number.
type InvalidSignalError struct {
	BSSID  string
	Signal float64
}

func (e InvalidSignalError) Error() string {
	return fmt.Sprintf("locate: non-finite signal %v for bssid %q", e.Signal, e.BSSID)
}

// SignalSummary aggregates the caller's readings for one located BSSID.
type SignalSummary struct {
	Average float64 `json:"signal"`
	Min     float64 `json:"signalMin"`
	Max     float64 `json:"signalMax"`
	Count   int     `json:"signalCount"`
}

// Result is one located access point in the response to the caller. The
// embedded summary flattens into the JSON object and disappears entirely for
// devices the caller supplied no readings for.
type Result struct {
	BSSID     string  `json:"bssid"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	*SignalSummary
}

// requestSet is the validated, deduplicated form of the caller's queries.
type requestSet struct {
	// queries holds one entry per canonical BSSID in first-seen order; the
	// signal is the last one the caller supplied for that BSSID.
	queries []wloc.Query
	// readings holds every finite signal the caller supplied per BSSID,
	// in order, for the statistics summary.
	readings map[string][]float64
}

// normalizeQueries canonicalizes and deduplicates caller input. Malformed
// BSSIDs and non-finite signals are input errors: nothing is dispatched
// upstream when any query fails here.
func normalizeQueries(queries []wloc.Query) (requestSet, error) {
	if len(queries) == 0 {
		return requestSet{}, wloc.ErrEmptyRequest
	}
	set := requestSet{readings: make(map[string][]float64)}
	index := make(map[string]int)
	for _, q := range queries {
		canon, err := CanonicalBSSID(q.BSSID)
		if err != nil {
			return requestSet{}, err
		}
		if q.Signal != nil {
			if !q.SignalValid() {
				return requestSet{}, InvalidSignalError{BSSID: canon, Signal: *q.Signal}
			}
			set.readings[canon] = append(set.readings[canon], *q.Signal)
		}
		if i, ok := index[canon]; ok {
			// Last occurrence wins for the dispatched signal value.
			set.queries[i].Signal = q.Signal
			continue
		}
		index[canon] = len(set.queries)
		set.queries = append(set.queries, wloc.Query{BSSID: canon, Signal: q.Signal})
	}
	return set, nil
}

// mergeDevices deduplicates decoded devices across all upstream responses.
// First occurrence wins. Unlocated devices and devices whose BSSID does not
// canonicalize are dropped: responses may carry identifiers outside this
// service's control.
func mergeDevices(responses [][]wloc.Device) []wloc.Device {
	var merged []wloc.Device
	seen := make(map[string]struct{})
	for _, devices := range responses {
		for _, dev := range devices {
			canon, ok := canonicalBSSID(dev.BSSID)
			if !ok || dev.Location == nil {
				continue
			}
			if _, dup := seen[canon]; dup {
				continue
			}
			seen[canon] = struct{}{}
			merged = append(merged, wloc.Device{BSSID: canon, Location: dev.Location})
		}
	}
	return merged
}

// buildResults joins merged devices against the request set. With all unset,
// only devices the caller asked about are returned.
func buildResults(devices []wloc.Device, set requestSet, all bool) []Result {
	requested := make(map[string]struct{}, len(set.queries))
	for _, q := range set.queries {
		requested[q.BSSID] = struct{}{}
	}

	results := make([]Result, 0, len(devices))
	for _, dev := range devices {
		if !all {
			if _, ok := requested[dev.BSSID]; !ok {
				continue
			}
		}
		res := Result{
			BSSID:     dev.BSSID,
			Latitude:  dev.Location.Latitude(),
			Longitude: dev.Location.Longitude(),
		}
		if readings := set.readings[dev.BSSID]; len(readings) > 0 {
			res.SignalSummary = summarize(readings)
		}
		results = append(results, res)
	}
	return results
}

func summarize(readings []float64) *SignalSummary {
	sum := SignalSummary{Min: readings[0], Max: readings[0], Count: len(readings)}
	total := 0.0
	for _, r := range readings {
		total += r
		sum.Min = math.Min(sum.Min, r)
		sum.Max = math.Max(sum.Max, r)
	}
	sum.Average = math.Round(total/float64(len(readings))*100) / 100
	return &sum
}
