package main

import (
	"errors"
	"flag"

	"github.com/spf13/viper"

	"github.com/oceantrace/darkmap/internal/publish"
)

func runPublish(args []string) error {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	configDir := fs.String("config", ".", "directory containing darkmap.cfg.json")
	file := fs.String("file", "", "generated HTML document to upload")
	vessel := fs.String("vessel", "", "vessel identifier for the frontend index")
	title := fs.String("title", "", "document title")
	gapHours := fs.Float64("gap-hours", 0, "gap duration shown in the frontend index")
	tag := fs.String("tag", "", "grouping tag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-file is required")
	}

	logger := setup(*configDir)

	url := viper.GetString("publish.url")
	if url == "" {
		return errors.New("publish.url is not configured")
	}
	client := publish.New(url, viper.GetString("publish.apiKey"))
	if err := client.Healthcheck(); err != nil {
		return err
	}
	if err := client.Upload(*file, publish.Metadata{
		VesselID: *vessel,
		Title:    *title,
		GapHours: *gapHours,
		Tag:      *tag,
	}); err != nil {
		return err
	}
	logger.Info().Str("file", *file).Str("url", url).Msg("Document published")
	return nil
}
