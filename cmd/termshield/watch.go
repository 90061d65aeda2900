package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/termshield/internal/metrics"
	"github.com/standardbeagle/termshield/internal/orchestrator"
	"github.com/standardbeagle/termshield/internal/security"
	"github.com/standardbeagle/termshield/internal/types"
	"github.com/standardbeagle/termshield/internal/watch"
)

// liveOrchestrator holds the orchestrator currently in use by watch mode.
// Counters survive vocabulary reloads so exported metrics never go
// backwards.
type liveOrchestrator struct {
	current atomic.Pointer[orchestrator.Orchestrator]

	mu      sync.Mutex
	retired types.Stats
}

func newLiveOrchestrator(o *orchestrator.Orchestrator) *liveOrchestrator {
	l := &liveOrchestrator{retired: types.NewStats()}
	l.current.Store(o)
	return l
}

func (l *liveOrchestrator) Load() *orchestrator.Orchestrator { return l.current.Load() }

// Swap installs o and folds the previous orchestrator's counters into the
// retired total.
func (l *liveOrchestrator) Swap(o *orchestrator.Orchestrator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if old := l.current.Swap(o); old != nil {
		l.retired = l.retired.Add(old.Stats())
	}
}

func (l *liveOrchestrator) Stats() types.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retired.Add(l.current.Load().Stats())
}

// watchTarget is one directory watched for one kind of change.
type watchTarget struct {
	root       string
	patterns   []string
	vocabulary bool
}

func watchTargets(c *cli.Context, doc string, vocabBaseDir string, vocabPaths []string) ([]watchTarget, error) {
	docDir, err := absDir(doc)
	if err != nil {
		return nil, err
	}
	targets := []watchTarget{{root: docDir, patterns: []string{filepath.Base(doc)}}}
	if len(vocabPaths) > 0 {
		targets = append(targets, watchTarget{root: vocabBaseDir, patterns: vocabPaths, vocabulary: true})
	}
	if extra := c.StringSlice("vocab"); len(extra) > 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		targets = append(targets, watchTarget{root: cwd, patterns: extra, vocabulary: true})
	}
	return targets, nil
}

// watchCommand re-runs match whenever the document changes and rebuilds the
// orchestrator whenever a vocabulary file changes. It returns on SIGINT or
// SIGTERM.
func watchCommand(c *cli.Context) error {
	doc := c.Args().First()
	if doc == "" || doc == "-" {
		return errors.New("--watch needs a document path")
	}

	o, cfg, err := newOrchestrator(c)
	if err != nil {
		return err
	}
	live := newLiveOrchestrator(o)
	validator := security.NewInputValidator(c.Int64("max-bytes"))

	var runMu sync.Mutex
	rerun := func(reload bool) {
		runMu.Lock()
		defer runMu.Unlock()

		if reload {
			fresh, _, err := newOrchestrator(c)
			if err != nil {
				fmt.Fprintf(c.App.ErrWriter, "vocabulary reload failed: %v\n", err)
				return
			}
			live.Swap(fresh)
			fmt.Fprintf(c.App.ErrWriter, "vocabulary reloaded: %d terms\n", fresh.Catalog().Vocab.Len())
		}

		text, err := readDocument(validator, doc)
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "read failed: %v\n", err)
			return
		}
		matches, err := live.Load().FindMatchesContext(c.Context, text)
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "match failed: %v\n", err)
			return
		}
		fmt.Fprintf(c.App.Writer, "--- %s (%s)\n", doc, time.Now().Format(time.TimeOnly))
		if err := writeMatches(c, c.App.Writer, matches); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "write failed: %v\n", err)
		}
	}

	targets, err := watchTargets(c, doc, cfg.Vocabulary.BaseDir, cfg.Vocabulary.Paths)
	if err != nil {
		return err
	}
	var watchers []*watch.Watcher
	defer func() {
		for _, w := range watchers {
			w.Stop()
		}
	}()
	for _, t := range targets {
		reload := t.vocabulary
		w, err := watch.New(t.root, t.patterns, watch.DefaultDebounce, func([]string) { rerun(reload) })
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to watch %s: %w", t.root, err)
		}
		watchers = append(watchers, w)
	}

	var srv *http.Server
	if addr := c.String("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewStatsCollector("termshield", live))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(c.App.ErrWriter, "metrics server: %v\n", err)
			}
		}()
		fmt.Fprintf(c.App.ErrWriter, "metrics: http://%s/metrics\n", addr)
	}

	rerun(false)
	fmt.Fprintf(c.App.ErrWriter, "watching %s, press Ctrl+C to stop\n", doc)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		fmt.Fprintf(c.App.ErrWriter, "\nReceived signal %v, shutting down...\n", sig)
	case <-c.Context.Done():
	}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("metrics shutdown error: %w", err)
		}
	}
	return printStats(c, live)
}
