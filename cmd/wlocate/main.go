package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wlocate/wlocate/internal/config"
	"github.com/wlocate/wlocate/internal/locate"
	"github.com/wlocate/wlocate/internal/wloc"
)

const usage = `wlocate locates Wi-Fi access points by BSSID.

Usage:
  wlocate [flags] BSSID[=SIGNAL] [BSSID[=SIGNAL] ...]

SIGNAL is an optional RSSI reading in dBm, e.g. 34:db:fd:43:e3:a1=-52.
With two or more located access points carrying readings, a triangulated
position estimate is printed as well.

Flags:
`

func main() {
	endpoint := flag.String("endpoint", config.DefaultUpstreamEndpoint, "positioning service endpoint")
	timeout := flag.Duration("timeout", 10*time.Second, "upstream request timeout")
	all := flag.Bool("all", false, "include nearby access points from the upstream response")
	asJSON := flag.Bool("json", false, "print the raw JSON outcome")
	verbose := flag.Bool("v", false, "log upstream exchanges to stderr")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	queries, err := parseQueries(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "wlocate: %v\n", err)
		os.Exit(2)
	}

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
	}

	client, err := wloc.NewClient(wloc.ClientConfig{Endpoint: *endpoint, Timeout: *timeout}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wlocate: %v\n", err)
		os.Exit(2)
	}
	locator := locate.NewLocator(client, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	outcome, err := locator.Locate(ctx, queries, *all)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wlocate: %v\n", err)
		if locate.IsInputError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcome); err != nil {
			fmt.Fprintf(os.Stderr, "wlocate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printOutcome(outcome)
	if !outcome.Found {
		os.Exit(1)
	}
}

// parseQueries turns BSSID[=SIGNAL] arguments into upstream queries.
func parseQueries(args []string) ([]wloc.Query, error) {
	queries := make([]wloc.Query, 0, len(args))
	for _, arg := range args {
		bssid, rest, found := strings.Cut(arg, "=")
		q := wloc.Query{BSSID: bssid}
		if found {
			dbm, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return nil, fmt.Errorf("bad signal %q for %q", rest, bssid)
			}
			q.Signal = &dbm
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func printOutcome(outcome locate.Outcome) {
	if !outcome.Found {
		fmt.Println("no access points located")
		return
	}
	for _, res := range outcome.Results {
		line := fmt.Sprintf("%s  %.6f, %.6f", res.BSSID, res.Latitude, res.Longitude)
		if res.SignalSummary != nil {
			line += fmt.Sprintf("  (%g dBm over %d readings)", res.Average, res.Count)
		}
		fmt.Println(line)
	}
	if est := outcome.Triangulated; est != nil {
		fmt.Printf("estimated position: %.7f, %.7f (%d points)\n",
			est.Latitude, est.Longitude, est.PointsUsed)
	}
}
