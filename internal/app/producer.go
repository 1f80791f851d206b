// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/survey_navigator/internal/config"
	"github.com/relabs-tech/survey_navigator/internal/gps"
	"github.com/relabs-tech/survey_navigator/internal/heading"
	"github.com/relabs-tech/survey_navigator/internal/navigation"
	"github.com/relabs-tech/survey_navigator/internal/orientation"
	"github.com/relabs-tech/survey_navigator/internal/projection"
)

const (
	mockRadius = 20.0  // metres
	mockPeriod = 120.0 // seconds per lap
)

// mockFix returns a fix on a circle around origin, travelling clockwise.
// The accuracy walks through the fixed, float and single bands so the
// quality label changes while testing.
func mockFix(origin projection.GeoPoint, elapsed time.Duration, at time.Time) gps.Fix {
	t := elapsed.Seconds()
	theta := 2 * math.Pi * t / mockPeriod

	north := mockRadius * math.Cos(theta)
	east := mockRadius * math.Sin(theta)

	metresPerDegLat := navigation.EarthRadius * math.Pi / 180
	metresPerDegLon := metresPerDegLat * math.Cos(origin.Lat*math.Pi/180)

	course := heading.Normalize(theta*180/math.Pi + 90)

	var acc float64
	switch int(t/20) % 3 {
	case 0:
		acc = 0.02
	case 1:
		acc = 1.2
	default:
		acc = 3.5
	}

	return gps.Fix{
		Latitude:    origin.Lat + north/metresPerDegLat,
		Longitude:   origin.Lon + east/metresPerDegLon,
		Accuracy:    acc,
		CourseDeg:   &course,
		SpeedKnots:  2 * math.Pi * mockRadius / mockPeriod * 1.943844,
		FixQuality:  "mock",
		TimestampMs: at.UnixMilli(),
	}
}

// RunMockProducer publishes simulated fixes and compass samples to MQTT
// so the navigator can run without hardware.
func RunMockProducer(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	origin := projection.GeoPoint{Lat: cfg.MockOriginLat, Lon: cfg.MockOriginLon}
	src := orientation.NewMockSource()
	start := time.Now()

	if err := publishJSON(client, cfg.TopicGPSStatus, true, gps.StatusOK(start)); err != nil {
		return err
	}

	headingTick := time.NewTicker(100 * time.Millisecond)
	defer headingTick.Stop()
	fixTick := time.NewTicker(time.Second)
	defer fixTick.Stop()

	log.Info().
		Float64("lat", origin.Lat).
		Float64("lon", origin.Lon).
		Msg("mock producer running")

	for {
		select {
		case <-ctx.Done():
			return nil

		case now := <-headingTick.C:
			pose, err := src.Next()
			if err != nil {
				log.Warn().Err(err).Msg("mock orientation error")
				continue
			}
			sample := orientation.SampleFromPose(pose, now)
			if err := publishJSON(client, cfg.TopicHeading, false, sample); err != nil {
				log.Warn().Err(err).Msg("heading publish error")
			}

		case now := <-fixTick.C:
			fix := mockFix(origin, now.Sub(start), now)
			if err := publishJSON(client, cfg.TopicGPS, true, fix); err != nil {
				log.Warn().Err(err).Msg("fix publish error")
				continue
			}
			log.Debug().Float64("lat", fix.Latitude).Float64("lon", fix.Longitude).Msg("published mock fix")
		}
	}
}
