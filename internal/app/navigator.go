// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/navigation"
	"github.com/relabs-tech/survey_navigator/internal/orientation"
	"github.com/relabs-tech/survey_navigator/internal/survey"
	"github.com/relabs-tech/survey_navigator/internal/transport/httpapi"
	"github.com/relabs-tech/survey_navigator/internal/waypoint"
)

// settingsFromConfig maps the config file onto the engine settings.
func settingsFromConfig(cfg *config.Config) survey.Settings {
	return survey.Settings{
		Zone: cfg.DefaultZone,
		Bands: navigation.Bands{
			Arrived: cfg.ProximityArrived,
			Near:    cfg.ProximityNear,
		},
		Thresholds: gps.Thresholds{
			Fix:   cfg.GNSSFixMaxAccuracy,
			Float: cfg.GNSSFloatMaxAccuracy,
		},
	}
}

// openStore opens the configured waypoint store.
func openStore(ctx context.Context, cfg *config.Config) (waypoint.Store, error) {
	switch cfg.StoreDriver {
	case "redis":
		s, err := waypoint.NewRedisStore(waypoint.RedisConfig{
			Addrs:    cfg.RedisAddrs,
			Password: cfg.RedisPassword,
			Key:      cfg.RedisKey,
		})
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.Ping(pingCtx); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return s, nil
	default:
		s, err := waypoint.OpenFileStore(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// submitter is the part of the engine fed by the MQTT handlers.
type submitter interface {
	Submit(ev survey.Event) bool
}

func onFix(nav submitter) func(gps.Fix) {
	return func(f gps.Fix) {
		if !f.Valid() {
			log.Warn().Float64("lat", f.Latitude).Float64("lon", f.Longitude).
				Float64("acc", f.Accuracy).Msg("invalid fix dropped")
			return
		}
		if !nav.Submit(survey.FixEvent{Fix: f}) {
			log.Warn().Msg("engine busy, fix dropped")
		}
	}
}

func onStatus(nav submitter) func(gps.Status) {
	return func(st gps.Status) {
		nav.Submit(survey.SensorStatusEvent{Status: st})
	}
}

func onHeading(nav submitter) func(orientation.Sample) {
	return func(s orientation.Sample) {
		nav.Submit(survey.HeadingEvent{Sample: s})
	}
}

// publishViews forwards every published view to the guidance topic until
// the subscription closes.
func publishViews(ctx context.Context, views <-chan survey.View, publish func(survey.View) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case v, ok := <-views:
			if !ok {
				return nil
			}
			if err := publish(v); err != nil {
				log.Warn().Err(err).Msg("guidance publish error")
			}
		}
	}
}

// RunNavigator runs the navigation engine, feeds it from MQTT and serves
// the web UI and API until ctx is cancelled.
func RunNavigator(ctx context.Context) error {
	cfg := config.Get()

	engine := survey.New(survey.Config{
		Settings:           settingsFromConfig(cfg),
		FrameInterval:      cfg.Frame(),
		DiagnosticInterval: cfg.Diagnostic(),
	})

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open waypoint store: %w", err)
	}
	defer store.Close()

	server, err := httpapi.NewServer(engine, store)
	if err != nil {
		return err
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDNavigator)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicGPS, onFix(engine)); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicGPSStatus, onStatus(engine)); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicHeading, onHeading(engine)); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return engine.Run(gctx)
	})

	g.Go(func() error {
		views, unsub := engine.Subscribe(gctx)
		defer unsub()
		return publishViews(gctx, views, func(v survey.View) error {
			return publishJSON(client, cfg.TopicGuidance, true, v)
		})
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("navigator listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
		}
		return nil
	})

	err = g.Wait()
	log.Info().Msg("navigator stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
