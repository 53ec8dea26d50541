package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal"
	"codeberg.org/snonux/describeit/internal/announce"
	"codeberg.org/snonux/describeit/internal/logging"
)

var (
	// ErrNoFileSelected is returned by Start without a file.
	ErrNoFileSelected = errors.New("no file selected")
	// ErrFileTooLarge is returned for files over the per-kind limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrWrongKind is returned when the file does not match the simulator.
	ErrWrongKind = errors.New("unsupported file type")
	// ErrInProgress is returned while the previous upload is still running.
	ErrInProgress = errors.New("upload already in progress")
)

// Config tunes the simulated pipeline.
type Config struct {
	Tick     time.Duration // time between progress steps
	Step     int           // percentage points per tick
	MaxBytes int64         // zero means the kind's default limit
}

// DefaultConfig returns a 200ms tick with 10% steps.
func DefaultConfig() Config {
	return Config{Tick: 200 * time.Millisecond, Step: 10}
}

// Result is the observable state of one simulator.
type Result struct {
	ID         string
	Kind       Kind
	File       *FileRef
	Progress   int
	ResultText string
	Error      string
	Analysis   *Analysis
	Running    bool
}

// Done reports whether the upload has finished, successfully or not.
func (r Result) Done() bool {
	return !r.Running && (r.ResultText != "" || r.Error != "")
}

// Simulator runs the upload pipeline for one kind of file.
type Simulator struct {
	kind      Kind
	cfg       Config
	describer Describer
	announcer announce.Announcer
	log       *zap.Logger

	mu        sync.Mutex
	result    Result
	listeners []func(Result)
	completes []func(Result)
}

// NewSimulator returns an idle simulator for kind.
func NewSimulator(kind Kind, cfg Config, d Describer, a announce.Announcer, log *zap.Logger) *Simulator {
	def := DefaultConfig()
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = MaxDocumentBytes
		if kind == Image {
			cfg.MaxBytes = MaxImageBytes
		}
	}
	if d == nil {
		d = StaticDescriber{}
	}
	if a == nil {
		a = announce.Func(func(string) {})
	}
	return &Simulator{
		kind:      kind,
		cfg:       cfg,
		describer: d,
		announcer: a,
		log:       logging.OrNop(log).With(zap.String("kind", string(kind))),
		result:    Result{Kind: kind},
	}
}

// Kind returns the kind of file this simulator accepts.
func (s *Simulator) Kind() Kind { return s.kind }

// Result returns a snapshot of the current state.
func (s *Simulator) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Subscribe registers fn for every state change, including progress.
func (s *Simulator) Subscribe(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnComplete registers fn to be called once per successful upload.
func (s *Simulator) OnComplete(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completes = append(s.completes, fn)
}

// Job is a running upload.
type Job struct {
	ID   string
	sim  *Simulator
	done chan struct{}
}

// Wait blocks until the job finishes or ctx is done and returns the final
// result.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		r := j.sim.Result()
		if r.Error != "" {
			return r, errors.New(r.Error)
		}
		return r, nil
	case <-ctx.Done():
		return j.sim.Result(), ctx.Err()
	}
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} { return j.done }

// Start begins simulating an upload of file. The run stops early only when
// ctx is cancelled.
func (s *Simulator) Start(ctx context.Context, file *FileRef) (*Job, error) {
	if file == nil {
		s.fail(fmt.Sprintf("Please select %s first.", s.article()), fmt.Sprintf("No %s selected", s.kind))
		return nil, ErrNoFileSelected
	}
	if !s.kind.Accepts(file) {
		s.fail(fmt.Sprintf("%s is not a supported %s file.", file.Name, s.kind),
			fmt.Sprintf("Unsupported %s type", s.kind))
		return nil, fmt.Errorf("%w: %s", ErrWrongKind, file.Name)
	}
	if file.Size > s.cfg.MaxBytes {
		s.fail(fmt.Sprintf("%s is too large (max %d MB).", file.Name, s.cfg.MaxBytes>>20),
			fmt.Sprintf("%s too large", s.kind.Title()))
		return nil, fmt.Errorf("%w: %s is %s", ErrFileTooLarge, file.Name, HumanSize(file.Size))
	}

	s.mu.Lock()
	if s.result.Running {
		s.mu.Unlock()
		s.announcer.Announce(fmt.Sprintf("%s upload already in progress", s.kind.Title()))
		return nil, ErrInProgress
	}
	id := internal.GenerateUploadID(string(s.kind))
	s.result = Result{ID: id, Kind: s.kind, File: file, Running: true}
	s.mu.Unlock()

	s.log.Info("upload started", zap.String("id", id), zap.String("file", file.Name), zap.Int64("bytes", file.Size))
	s.notify()

	job := &Job{ID: id, sim: s, done: make(chan struct{})}
	go s.run(ctx, job, file)
	return job, nil
}

func (s *Simulator) run(ctx context.Context, job *Job, file *FileRef) {
	defer close(job.done)
	started := time.Now()

	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for progress := 0; progress < 100; {
		select {
		case <-ctx.Done():
			s.finish(func(r *Result) { r.Error = "Upload interrupted." })
			return
		case <-ticker.C:
			progress += s.cfg.Step
			if progress > 100 {
				progress = 100
			}
			s.update(func(r *Result) { r.Progress = progress })
		}
	}

	analysis, err := s.describer.Describe(ctx, s.kind, file)
	if err != nil {
		s.log.Warn("description failed", zap.Error(err))
		s.finish(func(r *Result) { r.Error = fmt.Sprintf("Could not describe %s.", file.Name) })
		s.announcer.Announce(fmt.Sprintf("%s description failed", s.kind.Title()))
		return
	}
	if analysis.ProcessingTime == 0 {
		analysis.ProcessingTime = time.Since(started)
	}

	final := s.finish(func(r *Result) {
		r.ResultText = analysis.Description
		r.Analysis = &analysis
	})
	s.log.Info("upload complete", zap.String("id", job.ID), zap.Duration("took", analysis.ProcessingTime))
	s.announcer.Announce(fmt.Sprintf("%s description ready", s.kind.Title()))

	s.mu.Lock()
	completes := make([]func(Result), len(s.completes))
	copy(completes, s.completes)
	s.mu.Unlock()
	for _, fn := range completes {
		fn(final)
	}
}

func (s *Simulator) fail(errText, notice string) {
	s.mu.Lock()
	if s.result.Running {
		s.mu.Unlock()
		s.announcer.Announce(notice)
		return
	}
	s.result = Result{Kind: s.kind, Error: errText}
	s.mu.Unlock()

	s.announcer.Announce(notice)
	s.notify()
}

func (s *Simulator) update(fn func(*Result)) {
	s.mu.Lock()
	fn(&s.result)
	s.mu.Unlock()
	s.notify()
}

func (s *Simulator) finish(fn func(*Result)) Result {
	s.mu.Lock()
	fn(&s.result)
	s.result.Running = false
	r := s.result
	s.mu.Unlock()
	s.notify()
	return r
}

func (s *Simulator) notify() {
	s.mu.Lock()
	r := s.result
	listeners := make([]func(Result), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(r)
	}
}

func (s *Simulator) article() string {
	if s.kind == Image {
		return "an image"
	}
	return "a document"
}
