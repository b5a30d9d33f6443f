// Command enginesim drives the playback engine against a synthetic media
// source. Hand-run harness for exercising the command scheduler end to end.
package main

import (
	"log"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/jmalenfant/reel/internal/config"
	"github.com/jmalenfant/reel/internal/pipeline"
	"github.com/jmalenfant/reel/internal/playback"
)

func main() {
	cfg := lo.Must(config.Load())

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}

	svc := playback.New(cfg, logger)
	defer svc.Dispose()

	src := pipeline.NewSyntheticSource(40*time.Millisecond, 2*time.Minute)
	log.Printf("Opening %s (%.0fms frames, %s total)", src, float64(src.FrameDuration.Milliseconds()), src.TotalDuration)

	if !svc.Open(src).Wait() {
		log.Fatal("open failed")
	}
	log.Printf("Opened: state=%s video=%v audio=%v seekable=%v",
		svc.State(), svc.HasVideo(), svc.HasAudio(), svc.IsSeekable())

	if !svc.Play().Wait() {
		log.Fatal("play failed")
	}
	time.Sleep(500 * time.Millisecond)
	start, end := svc.BufferedRange()
	log.Printf("Playing: position=%s buffered=[%s..%s]", svc.Position(), start, end)

	target := 30 * time.Second
	if !svc.SeekTo(target).Wait() {
		log.Fatal("seek failed")
	}
	log.Printf("Seeked to %s: position=%s", target, svc.Position())

	for i := 0; i < 3; i++ {
		if !svc.StepForward().Wait() {
			log.Fatalf("step %d failed", i+1)
		}
		log.Printf("Step %d: position=%s", i+1, svc.Position())
	}

	if !svc.Pause().Wait() {
		log.Fatal("pause failed")
	}
	log.Printf("Paused: state=%s position=%s", svc.State(), svc.Position())

	if !svc.Stop().Wait() {
		log.Fatal("stop failed")
	}
	log.Printf("Stopped: state=%s position=%s", svc.State(), svc.Position())

	if !svc.Close().Wait() {
		log.Fatal("close failed")
	}
	log.Printf("Closed: state=%s", svc.State())
}
