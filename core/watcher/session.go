package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/models"
	"github.com/tristendillon/minireact/core/walker"
)

var ErrAlreadyStarted = errors.New("session already started")

const eventBuffer = 256

type Options struct {
	// Persistent keeps the session open after discovery and reports file
	// system changes until it is closed.
	Persistent bool
	Debounce   time.Duration
}

// Session discovers the files under a walker's root, reports each as an add
// event followed by a single ready event, then optionally follows changes.
// Events is never closed; consumers stop on Done or their own context.
type Session struct {
	walker *walker.Walker
	opts   Options

	events chan models.Event
	done   chan struct{}

	mu        sync.Mutex
	state     models.SessionState
	fs        *fsnotify.Watcher
	timers    map[string]*time.Timer
	closeOnce sync.Once
}

func NewSession(w *walker.Walker, opts Options) *Session {
	return &Session{
		walker: w,
		opts:   opts,
		events: make(chan models.Event, eventBuffer),
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}
}

func (s *Session) Events() <-chan models.Event {
	return s.events
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transition(next models.SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransition(next) {
		return false
	}
	logger.Debug("Session %s -> %s", s.state, next)
	s.state = next
	return true
}

// Start begins discovery in the background.
func (s *Session) Start(ctx context.Context) error {
	if !s.transition(models.SessionDiscovering) {
		return fmt.Errorf("%w: state is %s", ErrAlreadyStarted, s.State())
	}

	if s.opts.Persistent {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			s.transition(models.SessionFailed)
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		s.mu.Lock()
		s.fs = fsw
		s.mu.Unlock()

		dirs, err := s.walker.Dirs(ctx)
		if err != nil {
			s.transition(models.SessionFailed)
			return err
		}
		for _, dir := range dirs {
			logger.Debug("Adding watcher for: %s", dir)
			if err := fsw.Add(dir); err != nil {
				s.transition(models.SessionFailed)
				return fmt.Errorf("failed to add watcher for %s: %w", dir, err)
			}
		}
	}

	go s.run(ctx)
	return nil
}

func (s *Session) run(ctx context.Context) {
	err := s.walker.Walk(ctx, func(path string) error {
		s.emit(ctx, models.Event{Kind: models.EventAdd, Path: path})
		return nil
	})
	if err != nil {
		if s.transition(models.SessionFailed) {
			s.emit(ctx, models.Event{Kind: models.EventError, Err: err})
		}
		return
	}

	if !s.transition(models.SessionReady) {
		return
	}
	s.emit(ctx, models.Event{Kind: models.EventReady})

	if s.opts.Persistent {
		s.follow(ctx)
	}
}

func (s *Session) follow(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case event, ok := <-s.fs.Events:
			if !ok {
				return
			}
			s.handle(ctx, event)
		case err, ok := <-s.fs.Errors:
			if !ok {
				return
			}
			logger.Error("Watcher error: %v", err)
			s.emit(ctx, models.Event{Kind: models.EventError, Err: err})
		}
	}
}

func (s *Session) handle(ctx context.Context, event fsnotify.Event) {
	if s.walker.Excluded(event.Name) {
		return
	}
	logger.Debug("File event: %s %s", event.Op, event.Name)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		s.cancelPending(event.Name)
		s.emit(ctx, models.Event{Kind: models.EventRemove, Path: event.Name})

	case event.Has(fsnotify.Create):
		stat, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if !stat.IsDir() {
			s.emit(ctx, models.Event{Kind: models.EventAdd, Path: event.Name})
			return
		}
		s.addDir(ctx, event.Name)

	case event.Has(fsnotify.Write):
		s.debounce(ctx, event.Name)
	}
}

// addDir watches a directory created after discovery and reports the files
// that were already inside it.
func (s *Session) addDir(ctx context.Context, dir string) {
	logger.Debug("Adding watcher for new directory: %s", dir)
	if err := s.fs.Add(dir); err != nil {
		logger.Warn("Failed to watch %s: %v", dir, err)
	}

	err := s.walker.WalkFrom(ctx, dir, func(path string) error {
		s.emit(ctx, models.Event{Kind: models.EventAdd, Path: path})
		return nil
	})
	if err != nil {
		s.emit(ctx, models.Event{Kind: models.EventError, Err: err})
	}
}

// debounce coalesces bursts of writes to one path into a single change event.
func (s *Session) debounce(ctx context.Context, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[path]; ok {
		t.Stop()
	}
	s.timers[path] = time.AfterFunc(s.opts.Debounce, func() {
		s.mu.Lock()
		delete(s.timers, path)
		s.mu.Unlock()
		s.emit(ctx, models.Event{Kind: models.EventChange, Path: path})
	})
}

func (s *Session) cancelPending(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[path]; ok {
		t.Stop()
		delete(s.timers, path)
	}
}

func (s *Session) emit(ctx context.Context, event models.Event) {
	select {
	case s.events <- event:
	case <-s.done:
	case <-ctx.Done():
	}
}

// Close stops the session. It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.transition(models.SessionClosed)

		s.mu.Lock()
		for path, t := range s.timers {
			t.Stop()
			delete(s.timers, path)
		}
		fsw := s.fs
		s.mu.Unlock()

		close(s.done)
		if fsw != nil {
			err = fsw.Close()
		}
	})
	return err
}
