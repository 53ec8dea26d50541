package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/announce"
	"codeberg.org/snonux/describeit/internal/audio"
	"codeberg.org/snonux/describeit/internal/cli"
	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/prefs"
	"codeberg.org/snonux/describeit/internal/speech"
	"codeberg.org/snonux/describeit/internal/stt"
	"codeberg.org/snonux/describeit/internal/upload"
	"codeberg.org/snonux/describeit/internal/voice"
)

// ScrollStep is how far the scroll shortcuts move the view, in pixels.
const ScrollStep = 100

// Engines are the replaceable backends of a Processor. Any of them may be
// nil: a missing recognizer or synthesizer is reported as unsupported when
// used, a missing describer falls back to the canned description.
type Engines struct {
	Recognizer  stt.Recognizer
	Synthesizer speech.Synthesizer
	Describer   upload.Describer
	Cache       *audio.Cache
}

// Processor owns every controller of the application
type Processor struct {
	flags *cli.Flags
	log   *zap.Logger
	out   io.Writer

	region *announce.Region
	prefs  *prefs.Controller
	voice  *voice.Dispatcher
	speech *speech.Controller
	sims   map[upload.Kind]*upload.Simulator
	cache  *audio.Cache

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	selected    map[upload.Kind]*upload.FileRef
	jobs        map[upload.Kind]*upload.Job
	description string
	descFns     []func(string)
	scroller    func(dy float32)
	console     sync.Once
}

// New creates a processor from the command line flags. Invalid theme, font
// or command phrase settings are reported as errors.
func New(flags *cli.Flags, engines Engines, log *zap.Logger) (*Processor, error) {
	log = logging.OrNop(log)

	initial, err := initialPreferences(flags)
	if err != nil {
		return nil, err
	}
	table, err := voice.DefaultTable().WithPhrases(flags.Commands)
	if err != nil {
		return nil, fmt.Errorf("invalid voice command configuration: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Processor{
		flags:    flags,
		log:      log,
		out:      os.Stdout,
		region:   announce.NewRegion(log),
		cache:    engines.Cache,
		ctx:      ctx,
		cancel:   cancel,
		selected: make(map[upload.Kind]*upload.FileRef),
		jobs:     make(map[upload.Kind]*upload.Job),
	}

	p.prefs = prefs.NewController(initial, p.region, log.Named("prefs"))
	p.speech = speech.NewController(engines.Synthesizer, flags.VoiceLanguage, p.region, log.Named("speech"))
	p.voice = voice.NewDispatcher(engines.Recognizer, voice.Config{
		Table:      table,
		Language:   flags.VoiceLanguage,
		Continuous: flags.Continuous || flags.CommandsStdin,
	}, p.region, log.Named("voice"))

	cfg := upload.Config{Tick: flags.UploadTick, Step: flags.UploadStep}
	p.sims = map[upload.Kind]*upload.Simulator{
		upload.Document: upload.NewSimulator(upload.Document, cfg, engines.Describer, p.region, log.Named("upload")),
		upload.Image:    upload.NewSimulator(upload.Image, cfg, engines.Describer, p.region, log.Named("upload")),
	}
	for _, sim := range p.sims {
		sim.OnComplete(p.onUploadComplete)
	}

	p.registerCommands()
	return p, nil
}

func initialPreferences(flags *cli.Flags) (prefs.Preferences, error) {
	initial := prefs.Defaults()
	if flags.Theme != "" {
		t, err := prefs.ParseTheme(flags.Theme)
		if err != nil {
			return initial, err
		}
		initial.Theme = t
	}
	if flags.Font != "" {
		f, err := prefs.ParseFont(flags.Font)
		if err != nil {
			return initial, err
		}
		initial.Font = f
	}
	if flags.TextSize != 0 {
		initial.TextSize = prefs.ClampTextSize(flags.TextSize)
	}
	return initial, nil
}

func (p *Processor) registerCommands() {
	p.voice.Handle(voice.UploadDocument, func(ctx context.Context) error {
		return p.uploadCommand(ctx, upload.Document)
	})
	p.voice.Handle(voice.UploadImage, func(ctx context.Context) error {
		return p.uploadCommand(ctx, upload.Image)
	})
	p.voice.Handle(voice.ChangeTheme, func(context.Context) error {
		p.prefs.CycleTheme()
		return nil
	})
	p.voice.Handle(voice.IncreaseTextSize, p.textSizeCommand(prefs.Increase))
	p.voice.Handle(voice.DecreaseTextSize, p.textSizeCommand(prefs.Decrease))
	p.voice.Handle(voice.ResetTextSize, p.textSizeCommand(prefs.Reset))
	p.voice.Handle(voice.ReadDescription, p.ReadDescription)
	p.voice.Handle(voice.ScrollDown, func(context.Context) error {
		p.scroll(ScrollStep)
		return nil
	})
	p.voice.Handle(voice.ScrollUp, func(context.Context) error {
		p.scroll(-ScrollStep)
		return nil
	})
	p.voice.Handle(voice.ZoomIn, func(context.Context) error {
		p.Zoom(prefs.TextSizeStep)
		return nil
	})
	p.voice.Handle(voice.ZoomOut, func(context.Context) error {
		p.Zoom(-prefs.TextSizeStep)
		return nil
	})
}

func (p *Processor) textSizeCommand(d prefs.Direction) voice.Handler {
	return func(context.Context) error {
		p.prefs.AdjustTextSize(d)
		return nil
	}
}

// A missing file is reported on the live region, not as a command failure.
func (p *Processor) uploadCommand(ctx context.Context, kind upload.Kind) error {
	_, err := p.Upload(ctx, kind)
	if errors.Is(err, upload.ErrNoFileSelected) {
		return nil
	}
	return err
}

// Region returns the live region all controllers announce on.
func (p *Processor) Region() *announce.Region { return p.region }

// Preferences returns the display preferences controller.
func (p *Processor) Preferences() *prefs.Controller { return p.prefs }

// Voice returns the voice command dispatcher.
func (p *Processor) Voice() *voice.Dispatcher { return p.voice }

// Speech returns the speech playback controller.
func (p *Processor) Speech() *speech.Controller { return p.speech }

// Simulator returns the upload pipeline for kind.
func (p *Processor) Simulator(kind upload.Kind) *upload.Simulator { return p.sims[kind] }

// SetOutput redirects CLI output, which defaults to stdout.
func (p *Processor) SetOutput(w io.Writer) { p.out = w }

// SetLanguage changes the voice command and speech language together.
func (p *Processor) SetLanguage(lang string) {
	p.voice.SetLanguage(lang)
	p.speech.SetLanguage(lang)
}

// SetScroller installs the view callback used by the scroll shortcuts.
func (p *Processor) SetScroller(fn func(dy float32)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scroller = fn
}

func (p *Processor) scroll(dy float32) {
	p.mu.Lock()
	fn := p.scroller
	p.mu.Unlock()

	if fn == nil {
		p.log.Debug("no scrollable view", zap.Float32("dy", dy))
		return
	}
	fn(dy)
}

// Zoom changes the text size by delta pixels without an announcement.
func (p *Processor) Zoom(delta int) int {
	return p.prefs.SetTextSize(p.prefs.Current().TextSize + delta)
}

// Select remembers file as the pending upload for kind. A nil file clears
// the selection.
func (p *Processor) Select(kind upload.Kind, file *upload.FileRef) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected[kind] = file
}

// Selected returns the pending file for kind, or nil.
func (p *Processor) Selected(kind upload.Kind) *upload.FileRef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected[kind]
}

// Upload clears the current description and starts the pipeline for the
// selected file of kind.
func (p *Processor) Upload(ctx context.Context, kind upload.Kind) (*upload.Job, error) {
	sim, ok := p.sims[kind]
	if !ok {
		return nil, fmt.Errorf("unknown upload kind: %s", kind)
	}
	p.setDescription("")

	job, err := sim.Start(ctx, p.Selected(kind))
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.jobs[kind] = job
	p.mu.Unlock()
	return job, nil
}

// Description returns the most recent upload description, or "".
func (p *Processor) Description() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.description
}

// OnDescription registers fn for every change of the description.
func (p *Processor) OnDescription(fn func(string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.descFns = append(p.descFns, fn)
}

func (p *Processor) setDescription(text string) {
	p.mu.Lock()
	if p.description == text {
		p.mu.Unlock()
		return
	}
	p.description = text
	fns := append([]func(string){}, p.descFns...)
	p.mu.Unlock()

	for _, fn := range fns {
		fn(text)
	}
}

// ReadDescription starts reading the description aloud, or stops if
// speech is already playing.
func (p *Processor) ReadDescription(ctx context.Context) error {
	return p.speech.Toggle(ctx, p.Description())
}

func (p *Processor) onUploadComplete(r upload.Result) {
	p.setDescription(r.ResultText)

	if !p.flags.SpeakNotices || r.File == nil {
		return
	}
	notice := fmt.Sprintf("%s %s uploaded and analyzed successfully", r.Kind.Title(), r.File.Name)
	if err := p.speech.Speak(p.ctx, notice); err != nil {
		p.log.Debug("completion notice not spoken", zap.Error(err))
	}
}

// Wait blocks until running uploads and speech have finished.
func (p *Processor) Wait(ctx context.Context) error {
	p.mu.Lock()
	jobs := make([]*upload.Job, 0, len(p.jobs))
	for _, job := range p.jobs {
		jobs = append(jobs, job)
	}
	p.mu.Unlock()

	for _, job := range jobs {
		select {
		case <-job.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.speech.Wait(ctx)
}

// Close stops listening and speaking and releases the speech cache.
func (p *Processor) Close() error {
	p.cancel()
	p.speech.Stop()
	err := p.voice.Stop()
	if p.cache != nil {
		err = errors.Join(err, p.cache.Close())
	}
	return err
}
