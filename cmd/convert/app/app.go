package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/skysonde/dataflash-met/internal/dataflash"
	"github.com/skysonde/dataflash-met/internal/metfile"
	"github.com/skysonde/dataflash-met/internal/sounding"
	"github.com/skysonde/dataflash-met/internal/storage"
)

// Run converts one flight log into the per-second observation table and
// writes both output files next to the input. The text table and the NetCDF
// writers are independent: a NetCDF failure is reported but does not undo the
// already-written text table, and the run still succeeds ("completed with
// output errors").
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.InputFile); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("log file '%s' does not exist: %w", config.InputFile, err)
	}

	table, err := buildTable(config, logger)
	if err != nil {
		return err
	}

	logger.Info("assembled observation table",
		slog.String("observations", humanize.Comma(int64(table.Len()))))

	outputErrors := false
	txtPath := config.OutputBase + ".txt"
	if err = writeTextTable(txtPath, table); err != nil {
		return fmt.Errorf("writing text table: %w", err)
	}
	logger.Info("written text table", slog.String("destination", txtPath))

	ncPath := config.OutputBase + ".nc"
	if err = metfile.WriteNetCDF(ncPath, table); err != nil {
		logger.Error("writing NetCDF file", slog.String("destination", ncPath), slog.Any("error", err))
		outputErrors = true
	} else {
		logger.Info("written NetCDF file", slog.String("destination", ncPath))
	}

	if config.DBPath != "" {
		if err = archiveTable(ctx, config, table); err != nil {
			logger.Error("archiving sounding", slog.String("destination", config.DBPath), slog.Any("error", err))
			outputErrors = true
		} else {
			logger.Info("archived sounding", slog.String("destination", config.DBPath))
		}
	}

	if outputErrors {
		logger.Warn("processing completed with output errors")
	} else {
		logger.Info("processing completed successfully")
	}
	return nil
}

func buildTable(config *Config, logger *slog.Logger) (*sounding.Table, error) {
	f, err := os.Open(config.InputFile)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	decoder := dataflash.NewDecoder(dataflash.WithLogger(logger))
	records, err := decoder.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding log: %w", err)
	}

	var classifierOpts []func(*sounding.Classifier)
	if config.Engine.KelvinThreshold > 0 {
		classifierOpts = append(classifierOpts, sounding.WithKelvinThreshold(config.Engine.KelvinThreshold))
	}

	var channels sounding.Channels
	classifier := sounding.NewClassifier(classifierOpts...)
	dropped := 0
	for _, rec := range records {
		if classifier.Classify(rec, &channels) == "" {
			dropped++
		}
	}

	logger.Info("classified records",
		slog.Group("channels",
			slog.Int("position", len(channels.Position)),
			slog.Int("pressure", len(channels.Pressure)),
			slog.Int("temperature", len(channels.Temperature)),
			slog.Int("humidity", len(channels.Humidity)),
			slog.Int("inertial", len(channels.Inertial)),
		),
		slog.String("decoded", humanize.Comma(int64(len(records)))),
		slog.String("dropped", humanize.Comma(int64(dropped))))

	var engineOpts []sounding.Option
	if config.Engine.PositionBoundsCheck {
		engineOpts = append(engineOpts, sounding.WithPositionBoundsCheck())
	}
	if config.Engine.SmoothingWindow > 0 {
		engineOpts = append(engineOpts, sounding.WithSmoothingWindow(config.Engine.SmoothingWindow))
	}

	table, err := sounding.BuildTable(&channels, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("building table: %w", err)
	}
	return table, nil
}

func writeTextTable(path string, table *sounding.Table) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	return metfile.WriteTable(out, table)
}

func archiveTable(ctx context.Context, config *Config, table *sounding.Table) error {
	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	sessionID, err := store.CreateSession(ctx, filepath.Base(config.InputFile), config.Engine)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	if err = store.StoreObservations(ctx, sessionID, table); err != nil {
		return fmt.Errorf("storing observations: %w", err)
	}
	return nil
}
