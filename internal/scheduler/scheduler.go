package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"Springboard/internal/collector"
	"Springboard/internal/metrics"
	"Springboard/internal/model"
	"Springboard/internal/notifier"
	"Springboard/internal/strategy"
)

// Scheduler runs the engine on cron in the venue timezone and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    strategy.Config
	Notifier  notifier.Notifier
	Ctx       context.Context
	// Now is the clock used to pick the projected day.
	Now func() time.Time

	mu     sync.Mutex
	last   *model.Evaluation
	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, engine strategy.Config, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLocation(engine.Grid.Loc)),
		Collector: col,
		Engine:    engine,
		Notifier:  n,
		Ctx:       ctx,
		Now:       time.Now,
		logger:    log.With().Str("component", "scheduler").Logger(),
	}
}

// RegisterAll registers the pre-open projection and post-close signal reports.
func (s *Scheduler) RegisterAll(preOpenCron, postCloseCron string) error {
	if _, err := s.Cron.AddFunc(preOpenCron, s.preOpenTask); err != nil {
		return fmt.Errorf("register pre-open task: %w", err)
	}
	if _, err := s.Cron.AddFunc(postCloseCron, s.postCloseTask); err != nil {
		return fmt.Errorf("register post-close task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes the post-close report immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.postCloseTask()
}

// Last returns the most recent successful evaluation, or nil.
func (s *Scheduler) Last() *model.Evaluation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Evaluate collects bars for day and runs the engine once.
func (s *Scheduler) Evaluate(trigger string, day time.Time) (*model.Evaluation, error) {
	start := time.Now()
	sb, err := s.Collector.Collect(day)
	if err != nil {
		metrics.ObserveFailure(trigger, err)
		return nil, fmt.Errorf("collect: %w", err)
	}
	ev, err := strategy.Run(strategy.InputFrom(sb), s.Engine)
	if err != nil {
		metrics.ObserveFailure(trigger, err)
		return nil, err
	}
	took := time.Since(start)
	metrics.ObserveEvaluation(trigger, ev, took)

	s.mu.Lock()
	s.last = ev
	s.mu.Unlock()

	s.logger.Info().
		Str("trigger", trigger).
		Str("run_id", ev.RunID).
		Int("anchors", len(ev.Anchors)).
		Int("lines", len(ev.Lines)).
		Bool("overnight_gate", ev.OvernightGate).
		Dur("took", took).
		Msg("evaluation complete")
	return ev, nil
}

func (s *Scheduler) today() time.Time {
	now := s.Now().In(s.Engine.Grid.Loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.Engine.Grid.Loc)
}

func (s *Scheduler) preOpenTask() {
	s.logger.Info().Msg("running pre-open task")
	ev, err := s.Evaluate("pre_open", s.today())
	if err != nil {
		s.logger.Error().Err(err).Msg("pre-open evaluation")
		s.trySend(fmt.Sprintf("❌ Pre-open evaluation failed: %v", err))
		return
	}
	s.trySend(notifier.FormatProjectionReport(ev))
}

func (s *Scheduler) postCloseTask() {
	s.logger.Info().Msg("running post-close task")
	ev, err := s.Evaluate("post_close", s.today())
	if err != nil {
		s.logger.Error().Err(err).Msg("post-close evaluation")
		s.trySend(fmt.Sprintf("❌ Post-close evaluation failed: %v", err))
		return
	}
	s.trySend(notifier.FormatSignalReport(ev))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch commandName(command) {
	case "/run":
		s.postCloseTask()
		return ""
	case "/projection":
		s.preOpenTask()
		return ""
	case "/anchors":
		ev := s.Last()
		if ev == nil {
			return "No evaluation yet. Send /run first."
		}
		return notifier.FormatAnchors(ev)
	case "/status":
		ev := s.Last()
		if ev == nil {
			return "No evaluation yet."
		}
		return notifier.FormatSignalReport(ev)
	default:
		return "Available commands:\n• /run - evaluate today and report signals\n• /projection - report today's projected lines\n• /anchors - anchors of the last run\n• /status - last signal report"
	}
}

// commandName lowercases the first word and drops a "@botname" suffix.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
