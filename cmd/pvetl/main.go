// Command pvetl processes PV monitoring day files.
//
// Usage:
//
//	pvetl process   (-f 2022-09-14.csv | -d 2022-09-14) [-c 0.88]
//	pvetl calibrate (-f 2022-09-14.csv | -d 2022-09-14) [-window] [-o config/calibration.json]
//	pvetl serve
//
// Settings come from the environment (DATA_DIR, SITE_CONFIG_PATH,
// CALIBRATION_PATH, KAFKA_*, ...).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/couchcryptid/pv-monitoring-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/pv-monitoring-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/pv-monitoring-etl/internal/adapter/kafka"
	"github.com/couchcryptid/pv-monitoring-etl/internal/config"
	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/couchcryptid/pv-monitoring-etl/internal/observability"
	"github.com/couchcryptid/pv-monitoring-etl/internal/pipeline"
)

const usage = `usage: pvetl <command> [flags]

commands:
  process    correct, smooth and model one day file
  calibrate  fit the efficiency coefficient of one day file
  serve      process day jobs from Kafka and publish summaries`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "process":
		err = runProcess(ctx, cfg, logger, args)
	case "calibrate":
		err = runCalibrate(ctx, cfg, logger, args)
	case "serve":
		err = runServe(ctx, cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		logger.Error(cmd+" failed", "error", err)
		os.Exit(1)
	}
}

func runProcess(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("process", flag.ContinueOnError)
	file := fs.String("f", "", "day file name, e.g. 2022-09-14.csv")
	date := fs.String("d", "", "day date, e.g. 2022-09-14")
	coef := fs.Float64("c", domain.DefaultCoefficient, "efficiency coefficient (default: the calibrated one)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := dayName(*file, *date)
	if err != nil {
		return err
	}

	days, err := newDayProcessor(cfg, logger, observability.NewMetrics())
	if err != nil {
		return err
	}

	coefficient := *coef
	if !flagSet(fs, "c") {
		if coefficient, err = calibratedCoefficient(cfg, logger); err != nil {
			return err
		}
	}

	_, err = days.ProcessDay(ctx, name, coefficient)
	return err
}

func runCalibrate(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("calibrate", flag.ContinueOnError)
	file := fs.String("f", "", "day file name, e.g. 2022-09-14.csv")
	date := fs.String("d", "", "day date, e.g. 2022-09-14")
	useWindow := fs.Bool("window", false, "fit only the rows inside DAY_START_TIME-DAY_END_TIME")
	out := fs.String("o", cfg.CalibrationPath, "calibration document to write")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := dayName(*file, *date)
	if err != nil {
		return err
	}

	days, err := newDayProcessor(cfg, logger, observability.NewMetrics())
	if err != nil {
		return err
	}

	var window *domain.TimeWindow
	if *useWindow {
		w, err := cfg.TimeWindow()
		if err != nil {
			return err
		}
		window = &w
	}

	cal, err := days.CalibrateDay(ctx, name, window)
	if err != nil {
		return err
	}
	if err := config.SaveCalibration(*out, cal); err != nil {
		return err
	}
	logger.Info("calibration saved", "path", *out, "coefficient", cal.Coefficient)
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	days, err := newDayProcessor(cfg, logger, metrics)
	if err != nil {
		return err
	}
	coefficient, err := calibratedCoefficient(cfg, logger)
	if err != nil {
		return err
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(days, coefficient)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newDayProcessor loads the site document and wires the processing stages.
func newDayProcessor(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.DayProcessor, error) {
	site, err := config.LoadSite(cfg.SiteConfigPath)
	if err != nil {
		return nil, err
	}
	proc, err := domain.NewProcessor(site, cfg.Params())
	if err != nil {
		return nil, err
	}
	window, err := cfg.TimeWindow()
	if err != nil {
		return nil, err
	}
	logger.Debug("site loaded", "path", cfg.SiteConfigPath, "timezone", site.Timezone, "pdc0", site.PDC0)
	return pipeline.NewDayProcessor(csvfile.NewStore(cfg.DataDir), proc, window, logger, metrics), nil
}

func calibratedCoefficient(cfg *config.Config, logger *slog.Logger) (float64, error) {
	cal, err := config.LoadCalibration(cfg.CalibrationPath)
	if err != nil {
		return 0, err
	}
	logger.Debug("calibration loaded", "path", cfg.CalibrationPath, "coefficient", cal.Coefficient)
	return cal.Coefficient, nil
}

// dayName resolves the -f/-d pair; exactly one must be given.
func dayName(file, date string) (string, error) {
	switch {
	case file != "" && date != "":
		return "", errors.New("specify either -f or -d, not both")
	case file != "":
		return file, nil
	case date != "":
		return domain.DayFileName(date), nil
	default:
		return "", errors.New("one of -f or -d is required")
	}
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
