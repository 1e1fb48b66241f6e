package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"OptionsSentinel/internal/clock"
	"OptionsSentinel/internal/model"
	"OptionsSentinel/internal/notifier"
	"OptionsSentinel/internal/pipeline"
	"OptionsSentinel/internal/signalcache"
	"OptionsSentinel/internal/watchlist"
)

// Invalidator drops cached market data.
type Invalidator interface {
	Invalidate(symbol string)
	InvalidateAll()
}

// HistoryReader reads back the signal log.
type HistoryReader interface {
	History(symbol string, limit int) ([]model.SignalLogEntry, error)
}

// Deps wires the Scheduler to the rest of the bot.
type Deps struct {
	Analyzer  *pipeline.Analyzer
	Data      Invalidator
	Signals   *signalcache.Cache
	Watchlist *watchlist.Manager
	Notifier  notifier.Notifier
	History   HistoryReader // optional
	Provider  string
	Market    signalcache.MarketFunc
	Now       func() time.Time
}

// Scheduler manages all cron tasks and chat commands.
type Scheduler struct {
	Cron *cron.Cron
	Deps
	Ctx context.Context
	log zerolog.Logger

	mu      sync.Mutex
	alerted map[string]model.Strength
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps Deps, log zerolog.Logger) *Scheduler {
	if deps.Market == nil {
		deps.Market = clock.IsOpen
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	cronLog := cron.PrintfLogger(&log)
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		Deps:    deps,
		Ctx:     ctx,
		log:     log,
		alerted: make(map[string]model.Strength),
	}
}

// RegisterAll registers the intraday refresh and the close summary.
func (s *Scheduler) RegisterAll(refreshCron, closeCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(closeCron, s.closeTask); err != nil {
		return fmt.Errorf("register close task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately.
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

// refreshTask recomputes every watchlist signal while the market is open and
// alerts on symbols that newly reach Strong conviction.
func (s *Scheduler) refreshTask() {
	if open, status := s.Market(s.Now()); !open {
		s.log.Debug().Str("market", string(status)).Msg("refresh skipped, market closed")
		return
	}

	symbols := s.Watchlist.List()
	s.log.Info().Int("symbols", len(symbols)).Msg("running refresh task")
	results := s.Analyzer.AnalyzeAll(s.Ctx, symbols)

	s.mu.Lock()
	var alerts []*pipeline.Analysis
	for _, a := range results {
		if a == nil {
			continue
		}
		prev := s.alerted[a.Symbol]
		s.alerted[a.Symbol] = a.Signal.Strength
		if a.Signal.Strength == model.StrengthStrong && prev != model.StrengthStrong {
			alerts = append(alerts, a)
		}
	}
	s.mu.Unlock()

	for _, a := range alerts {
		s.trySend(notifier.FormatSignalReport(a))
	}
}

func (s *Scheduler) closeTask() {
	s.log.Info().Msg("running close summary")
	results := s.Analyzer.AnalyzeAll(s.Ctx, s.Watchlist.List())
	s.trySend(notifier.FormatCloseSummary(results, s.Now()))
}

const historyLimit = 10

const helpText = "Available commands:\n" +
	"• /signal SYMBOL\n" +
	"• /watch SYMBOL\n" +
	"• /unwatch SYMBOL\n" +
	"• /list\n" +
	"• /status\n" +
	"• /history SYMBOL\n" +
	"• /refresh"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends @botname to commands in group chats.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name {
	case "/signal":
		if arg == "" {
			return "Usage: /signal SYMBOL"
		}
		a, err := s.Analyzer.Analyze(ctx, arg)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatSignalReport(a)

	case "/watch":
		added, err := s.Watchlist.Add(arg)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		if !added {
			return fmt.Sprintf("%s is already on the watchlist", strings.ToUpper(arg))
		}
		return fmt.Sprintf("✅ Watching %s", strings.ToUpper(arg))

	case "/unwatch":
		removed, err := s.Watchlist.Remove(arg)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		if !removed {
			return fmt.Sprintf("%s is not on the watchlist", strings.ToUpper(arg))
		}
		return fmt.Sprintf("🗑 Stopped watching %s", strings.ToUpper(arg))

	case "/list":
		symbols := s.Watchlist.List()
		if len(symbols) == 0 {
			return "Watchlist is empty."
		}
		return "👀 Watchlist: " + strings.Join(symbols, ", ")

	case "/status":
		now := s.Now()
		_, status := s.Market(now)
		return notifier.FormatStatus(notifier.Status{
			Market:       status,
			Now:          now,
			Provider:     s.Provider,
			Watchlist:    s.Watchlist.List(),
			CachedSignal: s.Signals.Symbols(),
			NextOpen:     clock.NextOpen(now),
		})

	case "/history":
		if s.History == nil {
			return "Signal history is not enabled."
		}
		if arg == "" {
			return "Usage: /history SYMBOL"
		}
		sym := strings.ToUpper(arg)
		entries, err := s.History.History(sym, historyLimit)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatHistory(sym, entries)

	case "/refresh":
		if arg != "" {
			s.Data.Invalidate(arg)
		} else {
			s.Data.InvalidateAll()
		}
		results := s.Analyzer.AnalyzeAll(ctx, s.Watchlist.List())
		return notifier.FormatRefreshSummary(results, s.Now())

	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
