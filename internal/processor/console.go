package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/describeit/internal/batch"
	"codeberg.org/snonux/describeit/internal/upload"
	"codeberg.org/snonux/describeit/internal/voice"
)

// ErrCacheDisabled is returned by the cache commands when no cache is open.
var ErrCacheDisabled = errors.New("speech cache is disabled")

// attachConsole prints progress, results and announcements to the CLI
// output. It is safe to call more than once.
func (p *Processor) attachConsole() {
	p.console.Do(func() {
		for _, sim := range p.sims {
			last := -1
			sim.Subscribe(func(r upload.Result) {
				if !r.Running || r.Progress == last {
					last = r.Progress
					return
				}
				last = r.Progress
				fmt.Fprintf(p.out, "  Analyzing... %d%%\n", r.Progress)
			})
			sim.OnComplete(func(r upload.Result) {
				p.printAnalysis(r)
			})
		}
		p.region.Subscribe(func(message string) {
			fmt.Fprintf(p.out, "  » %s\n", message)
		})
	})
}

func (p *Processor) printAnalysis(r upload.Result) {
	a := r.Analysis
	if a == nil {
		fmt.Fprintf(p.out, "\n%s\n", r.ResultText)
		return
	}
	fmt.Fprintf(p.out, "\n  File:            %s\n", a.FileName)
	fmt.Fprintf(p.out, "  Size:            %s\n", a.FileSize)
	fmt.Fprintf(p.out, "  Content type:    %s\n", a.ContentType)
	fmt.Fprintf(p.out, "  Uploaded:        %s\n", a.UploadedAt.Format(time.DateTime))
	fmt.Fprintf(p.out, "  Processing time: %s\n", a.ProcessingTime.Round(time.Millisecond))
	fmt.Fprintf(p.out, "  Confidence:      %d%%\n", a.Confidence)
	fmt.Fprintf(p.out, "\n%s\n", a.Description)
}

// ProcessFiles describes each file given on the command line
func (p *Processor) ProcessFiles(ctx context.Context, paths []string) error {
	p.attachConsole()

	failed := 0
	for _, path := range paths {
		file, err := upload.FileRefFromPath(path)
		if err != nil {
			fmt.Fprintf(p.out, "Error: %v\n", err)
			failed++
			continue
		}
		kind, ok := upload.DetectKind(file.Name, file.MIMEType)
		if !ok {
			fmt.Fprintf(p.out, "Error: %s is neither a supported document nor an image\n", file.Name)
			failed++
			continue
		}
		if err := p.processFile(ctx, kind, file); err != nil {
			failed++
		}
	}

	if len(paths) > 1 {
		p.printSummary(len(paths), failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be described", failed, len(paths))
	}
	return nil
}

// ProcessBatch describes every file listed in the batch file
func (p *Processor) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}
	p.attachConsole()

	failed := 0
	for i, entry := range entries {
		fmt.Fprintf(p.out, "\n[%d/%d]", i+1, len(entries))
		file, kind, err := entry.Resolve()
		if err != nil {
			fmt.Fprintf(p.out, " Error: %v\n", err)
			failed++
			continue
		}
		if err := p.processFile(ctx, kind, file); err != nil {
			failed++
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	p.printSummary(len(entries), failed)
	return nil
}

func (p *Processor) printSummary(total, failed int) {
	fmt.Fprintf(p.out, "\n=== Summary ===\n")
	fmt.Fprintf(p.out, "Total files: %d\n", total)
	fmt.Fprintf(p.out, "Described: %d\n", total-failed)
	if failed > 0 {
		fmt.Fprintf(p.out, "Errors: %d\n", failed)
	}
	fmt.Fprintf(p.out, "===============\n")
}

func (p *Processor) processFile(ctx context.Context, kind upload.Kind, file *upload.FileRef) error {
	fmt.Fprintf(p.out, "\nProcessing %s: %s (%s)\n", kind, file.Name, upload.HumanSize(file.Size))

	p.Select(kind, file)
	job, err := p.Upload(ctx, kind)
	if err != nil {
		fmt.Fprintf(p.out, "  Error: %v\n", err)
		return err
	}
	r, err := job.Wait(ctx)
	if err != nil {
		fmt.Fprintf(p.out, "  Error: %v\n", err)
		return err
	}

	if p.flags.Speak {
		if err := p.speech.Speak(ctx, r.ResultText); err != nil {
			fmt.Fprintf(p.out, "  Warning: %v\n", err)
			return nil
		}
		if err := p.speech.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunCommands listens for voice commands until the recognition session
// ends, then waits for the work the commands started. Files named on the
// command line are selected first so "upload document" has something to
// upload.
func (p *Processor) RunCommands(ctx context.Context, paths []string) error {
	p.attachConsole()

	for _, path := range paths {
		file, err := upload.FileRefFromPath(path)
		if err != nil {
			return err
		}
		kind, ok := upload.DetectKind(file.Name, file.MIMEType)
		if !ok {
			return fmt.Errorf("%s is neither a supported document nor an image", file.Name)
		}
		p.Select(kind, file)
		fmt.Fprintf(p.out, "Selected %s: %s\n", kind, file.Name)
	}

	if err := p.voice.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Listening for commands. Try: %s\n", strings.Join(phrases(p.voice.Table()), ", "))

	ended := make(chan struct{})
	var once sync.Once
	p.voice.OnStateChange(func(st voice.State) {
		if !st.Listening {
			once.Do(func() { close(ended) })
		}
	})
	if !p.voice.Listening() {
		once.Do(func() { close(ended) })
	}

	select {
	case <-ended:
	case <-ctx.Done():
		p.voice.Stop()
		return ctx.Err()
	}
	return p.Wait(ctx)
}

func phrases(t voice.Table) []string {
	out := make([]string, 0, len(t))
	for _, c := range t {
		out = append(out, fmt.Sprintf("%q", c.Phrase))
	}
	return out
}

// ShowCacheStats prints the speech cache statistics
func (p *Processor) ShowCacheStats(ctx context.Context) error {
	if p.cache == nil {
		return ErrCacheDisabled
	}
	stats, err := p.cache.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Speech cache: %s\n", p.cache.Dir())
	fmt.Fprintf(p.out, "  Files: %d\n", stats.Files)
	fmt.Fprintf(p.out, "  Size:  %s\n", upload.HumanSize(stats.Bytes))
	fmt.Fprintf(p.out, "  Hits:  %d\n", stats.Hits)
	return nil
}

// ClearCache removes all cached speech audio
func (p *Processor) ClearCache(ctx context.Context) error {
	if p.cache == nil {
		return ErrCacheDisabled
	}
	if err := p.cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear speech cache: %w", err)
	}
	fmt.Fprintf(p.out, "Speech cache cleared: %s\n", p.cache.Dir())
	return nil
}
