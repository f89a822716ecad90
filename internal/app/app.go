// Package app wires the picreel components from a Config.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/bilgisen/picreel/internal/audio"
	"github.com/bilgisen/picreel/internal/cache"
	"github.com/bilgisen/picreel/internal/config"
	"github.com/bilgisen/picreel/internal/encode"
	"github.com/bilgisen/picreel/internal/generate"
	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/metrics"
	"github.com/bilgisen/picreel/internal/models"
	"github.com/bilgisen/picreel/internal/publish"
	"github.com/bilgisen/picreel/internal/selection"
	"github.com/bilgisen/picreel/internal/speech"
	"github.com/bilgisen/picreel/internal/storage"
	"github.com/bilgisen/picreel/internal/store"
	"github.com/bilgisen/picreel/internal/timeline"
)

// App holds the long-lived services shared by the HTTP server and the CLI.
type App struct {
	Config    *config.Config
	Images    *store.Store
	Exports   *storage.Storage
	Cache     cache.Cache
	Selection *selection.Selection
	Generator *generate.Generator
	Jobs      *generate.Jobs
	Publisher *publish.Publisher
	Metrics   *metrics.Metrics
}

// New opens the stores and builds the generation pipeline.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.For("app")

	images, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	exports, err := storage.NewStorage(cfg.ExportPath)
	if err != nil {
		images.Close()
		return nil, fmt.Errorf("initializing export storage: %w", err)
	}
	if cfg.R2Enabled() {
		mirror, err := storage.NewR2Mirror(ctx, cfg)
		if err != nil {
			log.Warn().Err(err).Msg("export mirror disabled")
		} else {
			exports.SetMirror(mirror)
		}
	}

	c := cache.New(cfg)
	clips, err := cache.NewClipStore(c, cfg.ClipCacheSize, cfg.ClipCacheTTL)
	if err != nil {
		c.Close()
		images.Close()
		return nil, err
	}

	polly := speech.NewPollyClient(speech.PollyConfig{
		AccessKeyID: cfg.AWSAccessKeyID,
		SecretKey:   cfg.AWSSecretKey,
		Region:      cfg.PollyRegion,
		Endpoint:    cfg.PollyEndpoint,
		Timeout:     cfg.TTSTimeout,
	})
	synth := speech.New(polly, clips, speech.Options{
		Enabled:      cfg.TTSEnabled,
		VoiceID:      cfg.PollyVoiceID,
		Engine:       cfg.PollyEngine,
		LanguageCode: cfg.PollyLanguageCode,
		SampleRate:   cfg.PollySampleRate,
		RequestDelay: cfg.TTSRequestDelay,
	})

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	backend := encode.NewRouter(encode.NewFFmpeg(cfg.FFmpegPath), encode.NewMJPEG(tempDir))
	pipeline := encode.NewPipeline(backend, encode.WithDrain(cfg.DrainDelay))

	orientation, err := models.ParseOrientation(cfg.DefaultOrientation, models.OrientationLandscape)
	if err != nil {
		c.Close()
		images.Close()
		return nil, err
	}

	m := metrics.Default()
	gen := generate.New(generate.Deps{
		Images:     images,
		Exports:    exports,
		Speech:     synth,
		Pipeline:   pipeline,
		Locker:     c,
		Background: audio.NewLoader(cfg.HTTPTimeout),
		Metrics:    m,
	}, generate.Options{
		Timeline: timeline.Options{
			GapMs:        int(cfg.NarrationGap.Milliseconds()),
			TransitionMs: int(cfg.TransitionDuration.Milliseconds()),
			MinHoldMs:    int(cfg.MinHold.Milliseconds()),
		},
		BackgroundTrack:    cfg.BackgroundTrack,
		BackgroundGain:     cfg.BackgroundGain,
		TempDir:            tempDir,
		ArticleHead:        cfg.ArticleHead,
		ArticleTail:        cfg.ArticleTail,
		DefaultOrientation: orientation,
		LockTTL:            cfg.RunLockTTL,
	})

	var sink publish.Sink
	if cfg.AirtableEnabled() {
		sink = publish.NewAirtable(publish.AirtableConfig{
			Token:   cfg.AirtableToken,
			BaseID:  cfg.AirtableBaseID,
			Table:   cfg.AirtableTable,
			Timeout: cfg.HTTPTimeout,
		})
	}

	logger.Debug().
		Str("database", cfg.DatabasePath).
		Str("exports", cfg.ExportPath).
		Bool("narration", cfg.TTSEnabled).
		Bool("publishing", sink != nil).
		Msg("Application ready")

	return &App{
		Config:    cfg,
		Images:    images,
		Exports:   exports,
		Cache:     c,
		Selection: selection.New(),
		Generator: gen,
		Jobs:      generate.NewJobs(gen),
		Publisher: publish.NewPublisher(sink, images),
		Metrics:   m,
	}, nil
}

// Close cancels running jobs and releases the stores.
func (a *App) Close(ctx context.Context) error {
	log := logger.For("app")
	if err := a.Jobs.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("jobs did not stop in time")
	}
	if err := a.Cache.Close(); err != nil {
		log.Error().Err(err).Msg("closing cache")
	}
	return a.Images.Close()
}
