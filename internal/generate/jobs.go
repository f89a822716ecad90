package generate

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bilgisen/picreel/internal/encode"
	"github.com/bilgisen/picreel/internal/models"
)

// ErrJobNotFound is returned for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
	JobCanceled  JobStatus = "canceled"
)

// maxFinishedJobs bounds how many completed jobs are remembered.
const maxFinishedJobs = 100

// Job is a snapshot of an asynchronous generation.
type Job struct {
	ID          string             `json:"id"`
	Kind        models.ExportKind  `json:"kind"`
	Status      JobStatus          `json:"status"`
	Phase       encode.Phase       `json:"phase"`
	Progress    int                `json:"progress"`
	Items       []string           `json:"items"`
	Orientation models.Orientation `json:"orientation,omitempty"`
	ExportID    string             `json:"export_id,omitempty"`
	Error       string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (j Job) Finished() bool {
	return j.Status != JobRunning
}

// Jobs runs generations in the background and tracks their progress.
type Jobs struct {
	gen *Generator

	mu      sync.RWMutex
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewJobs(gen *Generator) *Jobs {
	return &Jobs{
		gen:     gen,
		jobs:    make(map[string]*Job),
		cancels: make(map[string]context.CancelFunc),
	}
}

// StartVideo takes the run lock and starts rendering in the background.
// An empty selection returns (nil, nil). ErrBusy is returned synchronously.
func (j *Jobs) StartVideo(req VideoRequest) (*Job, error) {
	if len(req.IDs) == 0 {
		return nil, nil
	}
	if req.Orientation == "" {
		req.Orientation = j.gen.opts.DefaultOrientation
	}
	return j.start(models.ExportVideo, req.IDs, req.Orientation, func(ctx context.Context, id string) (*models.Export, error) {
		return j.gen.runVideo(ctx, req, func(phase encode.Phase, pct int) {
			j.update(id, func(job *Job) {
				job.Phase = phase
				job.Progress = pct
			})
		})
	})
}

// StartArticle is the asynchronous form of GenerateArticle.
func (j *Jobs) StartArticle(ids []string) (*Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return j.start(models.ExportArticle, ids, "", func(ctx context.Context, _ string) (*models.Export, error) {
		return j.gen.runArticle(ctx, ids)
	})
}

func (j *Jobs) start(kind models.ExportKind, ids []string, orientation models.Orientation, run func(ctx context.Context, id string) (*models.Export, error)) (*Job, error) {
	release, err := j.gen.acquire(context.Background())
	if err != nil {
		return nil, err
	}

	now := j.gen.now()
	job := &Job{
		ID:          uuid.NewString(),
		Kind:        kind,
		Status:      JobRunning,
		Phase:       encode.PhaseQueued,
		Items:       append([]string(nil), ids...),
		Orientation: orientation,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ctx, cancel := context.WithCancel(context.Background())

	j.mu.Lock()
	j.jobs[job.ID] = job
	j.cancels[job.ID] = cancel
	snapshot := *job
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		exp, err := run(ctx, job.ID)
		cancel()
		// the lock is free before the job reports completion
		release()
		j.complete(job.ID, exp, err)
	}()

	return &snapshot, nil
}

func (j *Jobs) update(id string, fn func(job *Job)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if job, ok := j.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = j.gen.now()
	}
}

func (j *Jobs) complete(id string, exp *models.Export, err error) {
	j.update(id, func(job *Job) {
		switch {
		case err == nil:
			job.Status = JobSucceeded
			job.Phase = encode.PhaseDone
			job.Progress = 100
			if exp != nil {
				job.ExportID = exp.ID
			}
		case errors.Is(err, context.Canceled):
			job.Status = JobCanceled
			job.Error = err.Error()
		default:
			job.Status = JobFailed
			job.Error = err.Error()
		}
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		j.gen.log.Error().Err(err).Str("job_id", id).Msg("generation failed")
	}

	j.mu.Lock()
	delete(j.cancels, id)
	j.prune()
	j.mu.Unlock()
}

// prune drops the oldest finished jobs beyond maxFinishedJobs. Caller holds mu.
func (j *Jobs) prune() {
	var finished []*Job
	for _, job := range j.jobs {
		if job.Finished() {
			finished = append(finished, job)
		}
	}
	if len(finished) <= maxFinishedJobs {
		return
	}
	sort.Slice(finished, func(a, b int) bool { return finished[a].UpdatedAt.Before(finished[b].UpdatedAt) })
	for _, job := range finished[:len(finished)-maxFinishedJobs] {
		delete(j.jobs, job.ID)
	}
}

// Get returns a snapshot of one job.
func (j *Jobs) Get(id string) (Job, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	job, ok := j.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// List returns all known jobs newest first.
func (j *Jobs) List() []Job {
	j.mu.RLock()
	out := make([]Job, 0, len(j.jobs))
	for _, job := range j.jobs {
		out = append(out, *job)
	}
	j.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

// Cancel stops a running job. Finished jobs are left untouched.
func (j *Jobs) Cancel(id string) error {
	j.mu.RLock()
	_, known := j.jobs[id]
	cancel, running := j.cancels[id]
	j.mu.RUnlock()

	if !known {
		return ErrJobNotFound
	}
	if running {
		cancel()
	}
	return nil
}

// Shutdown cancels every running job and waits for them to stop.
func (j *Jobs) Shutdown(ctx context.Context) error {
	j.mu.RLock()
	for _, cancel := range j.cancels {
		cancel()
	}
	j.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
