package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/skysonde/dataflash-met/internal/storage"
)

// Run renders a quick-look profile image of one archived sounding session.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("archive file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderProfile(ctx, store, config, logger)
}

func renderProfile(ctx context.Context, store storage.Store, config *Config, logger *slog.Logger) error {
	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	logger.Info("reading observations",
		slog.Int64("session", session.ID),
		slog.String("sourceLog", session.SourceLog))

	reader, err := store.Observations(ctx, config.SessionID)
	if err != nil {
		return err
	}
	defer reader.Close()

	data := NewProfileData()
	for reader.Next(ctx) {
		data.Update(reader.Current())
	}
	if err = reader.Error(); err != nil {
		return err
	}

	logger.Info("finished reading observations",
		slog.Group("stats",
			slog.Int("points", len(data.Points)),
			slog.String("minAlt", fmt.Sprintf("%0.1fm", data.AltMin)),
			slog.String("maxAlt", fmt.Sprintf("%0.1fm", data.AltMax)),
			slog.String("duration", fmt.Sprintf("%0.0fs", data.TimeEnd-data.TimeStart)),
		))

	renderer, err := NewProfileRenderer()
	if err != nil {
		return fmt.Errorf("creating profile renderer: %w", err)
	}

	logger.Info("rendering profile",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering profile: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}
