package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StructureSentinel/internal/collector"
	"StructureSentinel/internal/instrument"
	"StructureSentinel/internal/logging"
	"StructureSentinel/internal/model"
	"StructureSentinel/internal/notifier"
	"StructureSentinel/internal/recorder"
	"StructureSentinel/internal/structure"
)

// Scheduler runs structure scans of every configured symbol and timeframe on a
// cron schedule. Each timeframe has its own engine so bias memory is kept per
// (symbol, timeframe) pair.
type Scheduler struct {
	Cron        *cron.Cron
	Collector   *collector.Collector
	Recorder    recorder.Recorder
	Instruments *instrument.Table
	Symbols     []string
	Timeframes  []model.Timeframe
	Ctx         context.Context

	params  structure.Params // PipBuffer is in pips, scaled per symbol
	engines map[model.Timeframe]*structure.Engine
	cycleMu sync.Mutex
	snapMu  sync.RWMutex
	latest  map[string]map[model.Timeframe]*model.StructureSnapshot
	logger  zerolog.Logger
}

// NewScheduler creates a new Scheduler. params.PipBuffer is expressed in pips.
func NewScheduler(ctx context.Context, col *collector.Collector, rec recorder.Recorder, instruments *instrument.Table,
	symbols []string, timeframes []model.Timeframe, params structure.Params) *Scheduler {
	logger := logging.Component("scheduler")
	engines := make(map[model.Timeframe]*structure.Engine, len(timeframes))
	for _, tf := range timeframes {
		base := logging.Component("structure")
		engines[tf] = structure.NewEngine().WithLogger(base.With().Str("timeframe", tf.String()).Logger())
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if instruments == nil {
		instruments = instrument.NewTable(nil)
	}
	return &Scheduler{
		Cron:        cron.New(cron.WithSeconds()),
		Collector:   col,
		Recorder:    rec,
		Instruments: instruments,
		Symbols:     symbols,
		Timeframes:  timeframes,
		Ctx:         ctx,
		params:      params,
		engines:     engines,
		latest:      make(map[string]map[model.Timeframe]*model.StructureSnapshot),
		logger:      logger,
	}
}

// Register schedules the scan cycle.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes one scan cycle immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.scanTask()
}

// Engine returns the engine for tf, or nil when tf is not scanned.
func (s *Scheduler) Engine(tf model.Timeframe) *structure.Engine {
	return s.engines[tf]
}

// Latest returns the most recent snapshot for a pair.
func (s *Scheduler) Latest(symbol string, tf model.Timeframe) (*model.StructureSnapshot, bool) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	snap, ok := s.latest[symbol][tf]
	return snap, ok
}

// Summary builds the top-down view of symbol from the latest snapshots.
func (s *Scheduler) Summary(symbol string) *model.TopdownSummary {
	s.snapMu.RLock()
	snaps := make([]*model.StructureSnapshot, 0, len(s.latest[symbol]))
	for _, snap := range s.latest[symbol] {
		snaps = append(snaps, snap)
	}
	s.snapMu.RUnlock()
	return Topdown(symbol, snaps)
}

// ScanCycle evaluates every pair once and returns the cycle ID. Symbols run in
// parallel; timeframes of one symbol run in order, highest first.
func (s *Scheduler) ScanCycle(ctx context.Context) string {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	cycleID := recorder.NewCycleID()
	logger := s.logger.With().Str("cycle", cycleID).Logger()
	logger.Info().Int("symbols", len(s.Symbols)).Int("timeframes", len(s.Timeframes)).Msg("scan cycle started")

	ordered := byRankDesc(s.Timeframes)
	var wg sync.WaitGroup
	for _, symbol := range s.Symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			for _, tf := range ordered {
				if ctx.Err() != nil {
					return
				}
				if err := s.scanPair(ctx, cycleID, symbol, tf); err != nil {
					logger.Warn().Err(err).Str("symbol", symbol).Str("timeframe", tf.String()).Msg("scan failed")
				}
			}
			if sum := s.Summary(symbol); sum.DominantBias != model.BiasNeutral {
				logger.Info().Str("symbol", symbol).Msg(notifier.FormatTopdown(sum))
			}
		}(symbol)
	}
	wg.Wait()

	logger.Info().Msg("scan cycle finished")
	return cycleID
}

func (s *Scheduler) scanPair(ctx context.Context, cycleID, symbol string, tf model.Timeframe) error {
	engine := s.engines[tf]
	if engine == nil {
		return fmt.Errorf("no engine for timeframe %s", tf)
	}
	series, err := s.Collector.Collect(ctx, symbol, tf)
	if err != nil {
		return err
	}

	p := s.params
	p.PipBuffer = s.Instruments.Buffer(symbol, s.params.PipBuffer)
	snap, err := engine.Evaluate(symbol, series.Bars, p)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	snap.Timeframe = tf

	s.snapMu.Lock()
	if s.latest[symbol] == nil {
		s.latest[symbol] = make(map[model.Timeframe]*model.StructureSnapshot)
	}
	s.latest[symbol][tf] = snap
	s.snapMu.Unlock()

	s.logger.Debug().Str("symbol", symbol).Msg(notifier.FormatSnapshot(snap))
	s.record(cycleID, snap)
	return nil
}

func (s *Scheduler) record(cycleID string, snap *model.StructureSnapshot) {
	if err := s.Recorder.RecordEvaluation(&recorder.EvaluationRecord{CycleID: cycleID, Snapshot: snap}); err != nil {
		s.logger.Error().Err(err).Str("symbol", snap.Symbol).Msg("record evaluation")
	}
	for _, tr := range recorder.TransitionsOf(cycleID, snap) {
		if err := s.Recorder.RecordTransition(tr); err != nil {
			s.logger.Error().Err(err).Str("symbol", snap.Symbol).Msg("record transition")
		}
	}
}

func (s *Scheduler) scanTask() {
	ctx := s.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	s.ScanCycle(ctx)
}
