package main

import (
	"strings"

	"github.com/spf13/cobra"

	"boardharvest/pkg/pinterest"
	"boardharvest/pkg/scraper"
	"boardharvest/pkg/ui"
)

var pinCmd = &cobra.Command{
	Use:   "pin <pin-url>",
	Short: "Download the main image of a single pin",
	Long: `Open a pin page and save its image in the best available quality.
Video and GIF pins save their poster frame. The file is named after the pin
title.`,
	Example: `  boardharvest pin https://www.pinterest.com/pin/123456789/ -o ./pins -y`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPin,
}

func init() {
	rootCmd.AddCommand(pinCmd)
	addRunFlags(pinCmd)
}

func runPin(cmd *cobra.Command, args []string) error {
	pinURL := strings.TrimSpace(args[0])
	ctx := cmd.Context()

	cfg, log, err := setup(cmd)
	if err != nil {
		ui.PrintError("Failed to load configuration", err)
		return err
	}
	log = log.WithField("pin_url", pinURL)

	if !pinterest.IsPinURL(pinURL) && fromHTML == "" {
		ui.PrintWarning("This does not look like a pin URL, trying anyway")
	}

	client := newClient(cfg, log)
	host, live, closeHost, err := openHost(ctx, cfg, client, pinURL, log)
	if err != nil {
		ui.PrintError("Failed to open page", err)
		return err
	}
	defer closeHost()

	s := scraper.New(cfg, client, newStrategy(cfg, live, log), log)
	report, err := s.DownloadPin(ctx, host)
	if err != nil {
		ui.PrintError("Pin download failed", err)
		return err
	}

	ui.PrintSuccess("Saved pin image (" + report.Target + ")")
	return nil
}
