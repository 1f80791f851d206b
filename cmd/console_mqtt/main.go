// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/survey_navigator/internal/app"
	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/logger"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config" env:"SURVEY_CONFIG" description:"Path to configuration file" default:"survey_config.txt"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	if err := config.InitGlobal(opts.ConfigFile); err != nil {
		log.Fatal().Err(err).Str("path", opts.ConfigFile).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("starting MQTT console")
	if err := app.RunConsoleMQTT(ctx); err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
