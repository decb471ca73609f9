// Command gensynth writes synthetic raw day files for demos and fixtures. It
// uses the site document and the same solar and power models as the pipeline,
// so a generated day round-trips through `pvetl process` with known dips.
//
// Usage:
//
//	go run ./cmd/gensynth \
//	  -site config/config.json \
//	  -out data \
//	  -from 2022-09-12 -days 3 -noise 4
package main

import (
	"flag"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/couchcryptid/pv-monitoring-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/pv-monitoring-etl/internal/config"
	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/couchcryptid/pv-monitoring-etl/internal/synth"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	defaults := synth.DefaultOptions()

	sitePath := flag.String("site", "./config/config.json", "site document (YAML or JSON)")
	outDir := flag.String("out", "./data", "directory to write day files to")
	from := flag.String("from", "", "first date, e.g. 2022-09-14")
	days := flag.Int("days", 1, "number of consecutive days")
	interval := flag.Duration("interval", defaults.Interval, "sampling period")
	losses := flag.Float64("losses", defaults.Losses, "ratio of measured to modelled power")
	dipEvery := flag.Duration("dip-every", defaults.DipEvery, "MPPT sweep period, 0 disables sweeps")
	noise := flag.Float64("noise", defaults.Noise, "standard deviation of power noise in W")
	seed := flag.Uint64("seed", defaults.Seed, "noise seed")
	flag.Parse()

	if *from == "" || *days < 1 {
		flag.Usage()
		return fmt.Errorf("missing required flags: -from, -days >= 1")
	}
	start, err := time.Parse("2006-01-02", *from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}

	site, err := config.LoadSite(*sitePath)
	if err != nil {
		return err
	}

	opts := defaults
	opts.Interval = *interval
	opts.Losses = *losses
	opts.DipEvery = *dipEvery
	opts.Noise = *noise

	store := csvfile.NewStore(*outDir)
	for i := range *days {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		opts.Seed = *seed + uint64(i)

		series, dips, err := synth.Day(site, date, opts)
		if err != nil {
			return fmt.Errorf("generate %s: %w", date, err)
		}
		path, err := store.SaveDay(domain.DayFileName(date), series)
		if err != nil {
			return fmt.Errorf("write %s: %w", date, err)
		}

		log.Printf("%s: %d samples, %d sweeps, peak %.0f W", path, len(series), len(dips), peakPower(series))
	}
	return nil
}

func peakPower(series domain.Series) float64 {
	var peak float64
	for _, s := range series {
		peak = max(peak, s.Power)
	}
	return peak
}
