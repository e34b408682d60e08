package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/ray1729/gpx-journey/pkg/track"
	"github.com/ray1729/gpx-journey/pkg/viewer"
)

func main() {
	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8000"
	}
	cfg, err := stopConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	h, err := viewer.NewHandler(cfg)
	if err != nil {
		log.Fatal(err)
	}
	http.Handle("/track", h)
	log.Printf("Listening on %s", listenAddr)
	log.Fatal(http.ListenAndServe(listenAddr, nil))
}

// stopConfigFromEnv overrides the default stop detection parameters
// with any GPX_JOURNEY_* variables that are set.
func stopConfigFromEnv() (track.StopConfig, error) {
	cfg := track.DefaultStopConfig()
	if x := os.Getenv("GPX_JOURNEY_WINDOW"); x != "" {
		n, err := strconv.Atoi(x)
		if err != nil {
			return cfg, err
		}
		cfg.WindowSize = n
	}
	if x := os.Getenv("GPX_JOURNEY_STOP_SPEED"); x != "" {
		v, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return cfg, err
		}
		cfg.SpeedThresholdKmph = v
	}
	if x := os.Getenv("GPX_JOURNEY_MIN_STOP"); x != "" {
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return cfg, err
		}
		cfg.MinDuration = n
	}
	if x := os.Getenv("GPX_JOURNEY_STOP_RADIUS"); x != "" {
		v, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return cfg, err
		}
		cfg.MaxDisplacement = v
	}
	return cfg, nil
}
