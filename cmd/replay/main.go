package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"StructureSentinel/internal/collector"
	"StructureSentinel/internal/config"
	"StructureSentinel/internal/instrument"
	"StructureSentinel/internal/logging"
	"StructureSentinel/internal/model"
	"StructureSentinel/internal/notifier"
	"StructureSentinel/internal/recorder"
	"StructureSentinel/internal/scheduler"
	"StructureSentinel/internal/structure"
)

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}

func main() {
	var (
		cfgPath = flag.String("config", "configs/config.yaml", "config file")
		csvPath = flag.String("csv", "", "bar file to replay (required)")
		symbol  = flag.String("symbol", "", "symbol the bars belong to (required)")
		tfFlag  = flag.String("tf", "4h", "timeframe of the bars")
		from    = flag.String("from", "", "first bar time to print, e.g. 2026-02-01 23:59")
		to      = flag.String("to", "", "last bar time to print")
		start   = flag.Int("start", 10, "first window length evaluated")
		record  = flag.Bool("record", false, "journal replay snapshots to the configured database")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if *csvPath == "" || *symbol == "" {
		flag.Usage()
		os.Exit(2)
	}
	tf, ok := model.ParseTimeframe(*tfFlag)
	if !ok {
		log.Fatal().Str("tf", *tfFlag).Msg("unknown timeframe")
	}
	fromT, err := parseDate(*from)
	if err != nil {
		log.Fatal().Err(err).Msg("parse -from")
	}
	toT, err := parseDate(*to)
	if err != nil {
		log.Fatal().Err(err).Msg("parse -to")
	}

	bars, err := collector.LoadCSV(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load bars")
	}
	log.Info().Int("bars", len(bars)).Str("symbol", *symbol).Str("tf", tf.String()).Msg("replay start")

	params := cfg.Params()
	params.PipBuffer = instrument.NewTable(cfg.Instruments).Buffer(*symbol, params.PipBuffer)

	steps, err := scheduler.Replay(structure.NewEngine(), *symbol, bars, scheduler.ReplayOptions{
		Params:    params,
		Timeframe: tf,
		Start:     *start,
		From:      fromT,
		To:        toT,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("replay")
	}

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if *record {
		if rec, err = recorder.Open(cfg.Database.Driver, cfg.Database.DSN); err != nil {
			log.Fatal().Err(err).Msg("open recorder")
		}
	}
	defer rec.Close()
	runID := recorder.NewCycleID()

	fmt.Println("===== REPLAY START =====")
	for _, s := range steps {
		fmt.Println(notifier.FormatReplayLine(s.At, s.Snapshot))
		if err := rec.RecordEvaluation(&recorder.EvaluationRecord{CycleID: runID, Snapshot: s.Snapshot}); err != nil {
			log.Error().Err(err).Msg("record evaluation")
		}
		for _, tr := range recorder.TransitionsOf(runID, s.Snapshot) {
			if err := rec.RecordTransition(tr); err != nil {
				log.Error().Err(err).Msg("record transition")
			}
		}
	}
	log.Info().Int("steps", len(steps)).Str("run", runID).Msg("replay finished")
}
