// Package generate runs article and video generation over a selection of images.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bilgisen/picreel/internal/article"
	"github.com/bilgisen/picreel/internal/audio"
	"github.com/bilgisen/picreel/internal/encode"
	"github.com/bilgisen/picreel/internal/logger"
	"github.com/bilgisen/picreel/internal/metrics"
	"github.com/bilgisen/picreel/internal/models"
	"github.com/bilgisen/picreel/internal/render"
	"github.com/bilgisen/picreel/internal/speech"
	"github.com/bilgisen/picreel/internal/timeline"
	"github.com/bilgisen/picreel/internal/utils"
)

const lockName = "generate"

// ErrBusy is returned while another generation holds the run lock.
var ErrBusy = errors.New("another generation is already running")

// ImageSource loads records in the requested order.
type ImageSource interface {
	GetMany(ctx context.Context, ids []string) ([]*models.ImageRecord, error)
}

// ExportSink persists finished artifacts.
type ExportSink interface {
	Save(ctx context.Context, exp *models.Export, data []byte) error
}

// Locker provides the single-flight run lock.
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// BackgroundLoader fetches the optional background track.
type BackgroundLoader interface {
	Load(ctx context.Context, src string) (*audio.Buffer, error)
}

// Deps are the collaborators of a Generator.
type Deps struct {
	Images     ImageSource
	Exports    ExportSink
	Speech     *speech.Synthesizer
	Pipeline   *encode.Pipeline
	Locker     Locker
	Background BackgroundLoader
	Metrics    *metrics.Metrics
}

// Options are the fixed settings of every run.
type Options struct {
	Timeline           timeline.Options
	BackgroundTrack    string
	BackgroundGain     float64
	TempDir            string
	ArticleHead        string
	ArticleTail        string
	DefaultOrientation models.Orientation
	LockTTL            time.Duration
}

// VideoRequest selects the images and layout of a video.
type VideoRequest struct {
	IDs         []string
	Orientation models.Orientation
}

// ProgressFunc receives the current phase and overall percentage.
type ProgressFunc func(phase encode.Phase, percent int)

type Generator struct {
	deps Deps
	opts Options
	log  zerolog.Logger
	now  func() time.Time
}

func New(deps Deps, opts Options) *Generator {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Minute
	}
	if opts.DefaultOrientation == "" {
		opts.DefaultOrientation = models.OrientationLandscape
	}
	return &Generator{deps: deps, opts: opts, log: logger.For("generate"), now: time.Now}
}

// acquire takes the run lock and returns its release function.
func (g *Generator) acquire(ctx context.Context) (func(), error) {
	token, ok, err := g.deps.Locker.AcquireLock(ctx, lockName, g.opts.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := g.deps.Locker.ReleaseLock(ctx, lockName, token); err != nil {
			g.log.Warn().Err(err).Msg("releasing run lock")
		}
	}, nil
}

// GenerateVideo renders the selection into a narrated video export. An empty
// selection is a no-op returning (nil, nil).
func (g *Generator) GenerateVideo(ctx context.Context, req VideoRequest, onProgress ProgressFunc) (*models.Export, error) {
	if len(req.IDs) == 0 {
		return nil, nil
	}
	release, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return g.runVideo(ctx, req, onProgress)
}

// GenerateArticle builds the HTML article for the selection. An empty
// selection is a no-op returning (nil, nil).
func (g *Generator) GenerateArticle(ctx context.Context, ids []string) (*models.Export, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	release, err := g.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()
	return g.runArticle(ctx, ids)
}

func (g *Generator) finish(kind models.ExportKind, err error) {
	status := "succeeded"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		status = "canceled"
	default:
		status = "failed"
	}
	g.deps.Metrics.RunFinished(string(kind), status)
}

func (g *Generator) timed(phase encode.Phase, start time.Time) {
	g.deps.Metrics.ObservePhase(string(phase), time.Since(start))
}

func (g *Generator) runVideo(ctx context.Context, req VideoRequest, onProgress ProgressFunc) (exp *models.Export, err error) {
	g.deps.Metrics.RunStarted()
	defer g.deps.Metrics.RunDone()
	defer func() { g.finish(models.ExportVideo, err) }()

	orientation := req.Orientation
	if orientation == "" {
		orientation = g.opts.DefaultOrientation
	}
	progress := encode.NewProgress(func(phase encode.Phase, pct int) {
		if onProgress != nil {
			onProgress(phase, pct)
		}
	})
	log := g.log.With().Int("items", len(req.IDs)).Str("orientation", string(orientation)).Logger()

	// fatal preconditions, checked before any work
	if err := g.deps.Speech.Validate(); err != nil {
		return nil, err
	}
	format, err := g.deps.Pipeline.Negotiate()
	if err != nil {
		return nil, err
	}
	log.Info().Str("format", format.Name).Msg("video generation started")

	records, err := g.deps.Images.GetMany(ctx, req.IDs)
	if err != nil {
		return nil, fmt.Errorf("loading images: %w", err)
	}

	start := time.Now()
	progress.Report(encode.PhaseSynthesis, 0, len(records))
	captions := speech.Texts(records, func(r *models.ImageRecord) string { return r.Caption })
	clips, err := g.deps.Speech.SynthesizeAll(ctx, captions, func(done, total int) {
		progress.Report(encode.PhaseSynthesis, done, total)
	})
	if err != nil {
		return nil, err
	}
	g.timed(encode.PhaseSynthesis, start)

	durations := make([]int, len(clips))
	buffers := make([]*audio.Buffer, len(clips))
	for i, c := range clips {
		durations[i] = c.DurationMs
		buffers[i] = c.Buffer
		if c.Err != nil {
			g.deps.Metrics.IncSynthesisFailure()
		}
	}

	tl, err := timeline.Build(records, durations, g.opts.Timeline)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	progress.Report(encode.PhaseMix, 0, 1)
	var background *audio.Buffer
	if g.deps.Background != nil && g.opts.BackgroundTrack != "" {
		background, err = g.deps.Background.Load(ctx, g.opts.BackgroundTrack)
		if err != nil {
			log.Warn().Err(err).Msg("background track unavailable, mixing narration only")
			background = nil
		}
	}
	mixed, err := audio.NewMixer(g.deps.Speech.SampleRate(), g.opts.BackgroundGain).Mix(tl, buffers, background)
	if err != nil {
		return nil, err
	}
	track := audio.NewTrack(mixed, g.opts.TempDir)
	progress.Report(encode.PhaseMix, 1, 1)
	g.timed(encode.PhaseMix, start)

	start = time.Now()
	profile := encode.ProfileFor(orientation)
	surface := render.NewCanvas(profile.Width, profile.Height, profile.FPS)
	renderer := render.NewRenderer()
	renderer.OnProgress = func(done, total int) {
		progress.Report(encode.PhaseRender, done, total)
	}
	renderer.OnDecodeError = func(*render.ImageDecodeError) {
		g.deps.Metrics.IncDecodeFailure()
	}

	blob, err := g.deps.Pipeline.Encode(ctx, profile, surface, track, func(ctx context.Context) error {
		return renderer.RenderSequence(ctx, tl, surface)
	})
	if err != nil {
		return nil, err
	}
	g.timed(encode.PhaseRender, start)

	exp = &models.Export{
		Kind:        models.ExportVideo,
		FileName:    utils.ExportFileName(g.now(), string(orientation), blob.Format.Ext),
		MimeType:    blob.MimeType,
		Format:      blob.Format.Name,
		Orientation: orientation,
		Items:       append([]string(nil), req.IDs...),
	}
	if err := g.deps.Exports.Save(ctx, exp, blob.Data); err != nil {
		return nil, fmt.Errorf("saving export: %w", err)
	}
	g.deps.Metrics.AddExportBytes(blob.Format.Name, len(blob.Data))
	progress.Report(encode.PhaseDone, 1, 1)

	log.Info().Str("export_id", exp.ID).Int64("bytes", exp.Size).Int("duration_ms", tl.TotalMs).Msg("video generated")
	return exp, nil
}

func (g *Generator) runArticle(ctx context.Context, ids []string) (exp *models.Export, err error) {
	g.deps.Metrics.RunStarted()
	defer g.deps.Metrics.RunDone()
	defer func() { g.finish(models.ExportArticle, err) }()

	records, err := g.deps.Images.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading images: %w", err)
	}

	doc, err := article.Build(records, article.Options{Head: g.opts.ArticleHead, Tail: g.opts.ArticleTail})
	if err != nil {
		return nil, err
	}

	exp = &models.Export{
		Kind:     models.ExportArticle,
		FileName: utils.ExportFileName(g.now(), "article", "html"),
		MimeType: "text/html; charset=utf-8",
		Format:   "html",
		Items:    append([]string(nil), ids...),
	}
	if err := g.deps.Exports.Save(ctx, exp, []byte(doc.HTML)); err != nil {
		return nil, fmt.Errorf("saving export: %w", err)
	}
	g.deps.Metrics.AddExportBytes("html", len(doc.HTML))

	g.log.Info().Str("export_id", exp.ID).Int("items", doc.Items).Msg("article generated")
	return exp, nil
}
