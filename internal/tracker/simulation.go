package tracker

import (
	"context"
	"sync"
	"time"

	"washpoint/internal/models"

	"github.com/rs/zerolog"
)

// StageState is the public view of one stage inside a running simulation.
type StageState struct {
	Stage     models.Stage
	Remaining int
	Active    bool
	Done      bool
}

// Snapshot is a point-in-time copy of the whole simulation, safe to read
// after the simulator moved on.
type Snapshot struct {
	Stages    []StageState
	Progress  int
	Completed bool
}

// Simulator plays the cleaning process through for a tracking view that has
// no real booking behind it. One tick burns one minute of model time off the
// active stage; when a stage hits zero the next one activates after a short
// advance delay. The simulator never touches the booking store.
type Simulator struct {
	tick         time.Duration
	advanceDelay time.Duration
	logger       *zerolog.Logger

	onAdvance  func(stageID string)
	onComplete func()

	mu        sync.Mutex
	remaining []int
	active    int
	completed bool

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option tweaks a simulator before it starts.
type Option func(*Simulator)

// WithStageCallback registers a callback fired when a stage finishes.
func WithStageCallback(fn func(stageID string)) Option {
	return func(s *Simulator) { s.onAdvance = fn }
}

// WithCompletionCallback registers a callback fired after the last stage.
// It fires at most once, and never after Stop returns.
func WithCompletionCallback(fn func()) Option {
	return func(s *Simulator) { s.onComplete = fn }
}

func NewSimulator(tick, advanceDelay time.Duration, logger *zerolog.Logger, opts ...Option) *Simulator {
	s := &Simulator{
		tick:         tick,
		advanceDelay: advanceDelay,
		logger:       logger,
		remaining:    make([]int, len(models.CleaningStages)),
		done:         make(chan struct{}),
	}
	for i, stage := range models.CleaningStages {
		s.remaining[i] = stage.Minutes
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the countdown goroutine. Subsequent calls are no-ops.
func (s *Simulator) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		go s.run(ctx)
	})
}

// Stop cancels the countdown and waits for the goroutine to exit, so no
// stage transition or callback fires after it returns.
func (s *Simulator) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		<-s.done
	})
}

// Done is closed when the simulation has finished or was stopped.
func (s *Simulator) Done() <-chan struct{} {
	return s.done
}

func (s *Simulator) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		finished, last := s.step()
		if finished == "" {
			continue
		}

		if s.onAdvance != nil {
			s.onAdvance(finished)
		}
		if s.logger != nil {
			s.logger.Debug().Str("stage", finished).Msg("simulated stage finished")
		}

		if last {
			s.markCompleted()
			if s.onComplete != nil {
				s.onComplete()
			}
			return
		}

		// Пауза между этапами, как на исходной странице отслеживания
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.advanceDelay):
		}
		s.activateNext()
	}
}

// step burns one model minute off the active stage. It returns the finished
// stage id when the tick drained it, and whether that was the last stage.
func (s *Simulator) step() (finished string, last bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed || s.active >= len(s.remaining) {
		return "", false
	}

	if s.remaining[s.active] > 0 {
		s.remaining[s.active]--
	}
	if s.remaining[s.active] > 0 {
		return "", false
	}

	finished = models.CleaningStages[s.active].ID
	last = s.active == len(s.remaining)-1
	return finished, last
}

func (s *Simulator) activateNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completed && s.active < len(s.remaining)-1 {
		s.active++
	}
}

func (s *Simulator) markCompleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = true
	s.active = len(s.remaining)
}

// Snapshot copies the current simulation state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Stages:    make([]StageState, len(models.CleaningStages)),
		Completed: s.completed,
	}

	// Progress counts whole stages, same as the manual tracker: a stage
	// contributes nothing until it finishes.
	done := 0
	for i, stage := range models.CleaningStages {
		if s.remaining[i] == 0 {
			done++
		}
		snap.Stages[i] = StageState{
			Stage:     stage,
			Remaining: s.remaining[i],
			Active:    !s.completed && i == s.active,
			Done:      s.remaining[i] == 0,
		}
	}

	snap.Progress = models.ProgressPercent(done, len(models.CleaningStages))
	return snap
}
