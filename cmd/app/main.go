// Cancellable Biometric Key Derivation - desktop front end
// License: MIT

package main

import (
	"flag"
	"os"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/theme"
	"github.com/sirupsen/logrus"

	"cancellable-biokey/internal/config"
	"cancellable-biokey/internal/core"
	"cancellable-biokey/internal/gui"
)

const (
	AppID      = "com.cancellable-biokey.app"
	AppVersion = "1.0.0"
)

func main() {
	debugMode := flag.Bool("debug", false, "Enable debug mode with verbose logging")
	configPath := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := cfg.NewLogger(*debugMode)
	logger.WithFields(logrus.Fields{
		"version":     AppVersion,
		"debug_mode":  *debugMode,
		"output_root": cfg.OutputRoot,
	}).Info("Starting Cancellable Biometrics application")

	myApp := app.NewWithID(AppID)
	myApp.SetIcon(theme.DocumentIcon())
	myApp.Settings().SetTheme(theme.DefaultTheme())

	pipeline := core.NewPipeline(cfg, logger)
	mainApp := gui.NewApplication(myApp, pipeline, logger)
	mainApp.ShowAndRun()

	logger.Info("Application shutting down gracefully")
	os.Exit(0)
}
