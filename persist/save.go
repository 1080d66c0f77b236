package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/pkg/logger"
	"github.com/user/tagging-fight-cli/pkg/metrics"
)

// ErrSaveFailed matches every *SaveError.
var ErrSaveFailed = errors.New("save failed")

// Save stages, in the order they run.
const (
	StageFight   = "fight"
	StageRounds  = "rounds"
	StageStrikes = "strikes"
)

// SaveError reports the stage where the batch stopped. Rows written by earlier
// stages are left in place; saving again resumes from what is missing.
type SaveError struct {
	Stage string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed at %s: %v", e.Stage, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSaveFailed) true for any SaveError.
func (e *SaveError) Is(target error) bool { return target == ErrSaveFailed }

// Recorder is the relational store seen by Save. Ids are assigned by the store.
type Recorder interface {
	// FindFight returns the id and content fingerprint of the fight saved
	// under a session key.
	FindFight(ctx context.Context, sessionKey string) (id int64, fingerprint string, found bool, err error)
	InsertFight(ctx context.Context, f FightRecord) (int64, error)
	// ReplaceFight rewrites the fight row and drops its rounds and strikes.
	ReplaceFight(ctx context.Context, id int64, f FightRecord) error
	// FindRounds maps round numbers to ids for a fight.
	FindRounds(ctx context.Context, fightID int64) (map[int]int64, error)
	InsertRound(ctx context.Context, fightID int64, r RoundRecord) (int64, error)
	CountStrikes(ctx context.Context, fightID int64) (int, error)
	// InsertStrikes writes the whole batch or nothing.
	InsertStrikes(ctx context.Context, fightID int64, strikes []StrikeRecord) error
}

// SaveOptions tune Save.
type SaveOptions struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// SaveResult describes what a save wrote.
type SaveResult struct {
	FightID         int64
	RoundIDs        map[int]int64
	FightExisted    bool
	// Replaced is set when the stored fight held older content and was rewritten.
	Replaced        bool
	RoundsInserted  int
	StrikesInserted int
	StrikesExisted  bool
}

// Save writes the records in order: fight, rounds (ids read back), strikes.
// A fight already saved under the session key with the same fingerprint is
// resumed: rounds already present are matched by number and strikes are
// skipped when the fight has any, so a failed save can simply be run again.
// A fight saved with a different fingerprint is replaced, then its rounds and
// strikes are written again.
func Save(ctx context.Context, rec Recorder, recs *Records, opts SaveOptions) (res SaveResult, err error) {
	log := logger.OrNop(opts.Logger).With(zap.String("session_key", recs.Fight.SessionKey))
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	began := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "failed"
			log.Error("save failed", zap.Error(err))
		}
		metrics.RecordSave(result, time.Since(began).Seconds())
	}()

	res.RoundIDs = map[int]int64{}
	fight := recs.Fight
	fight.Fingerprint = recs.Fingerprint()

	id, stored, found, err := rec.FindFight(ctx, fight.SessionKey)
	if err != nil {
		return res, &SaveError{Stage: StageFight, Err: err}
	}
	switch {
	case !found:
		id, err = rec.InsertFight(ctx, fight)
		if err != nil {
			return res, &SaveError{Stage: StageFight, Err: err}
		}
		metrics.RecordRowsInserted("fights", 1)
		log.Info("fight inserted", zap.Int64("fight_id", id))
	case stored == fight.Fingerprint:
		res.FightExisted = true
		log.Info("fight already saved, resuming", zap.Int64("fight_id", id))
	default:
		res.FightExisted = true
		if err := rec.ReplaceFight(ctx, id, fight); err != nil {
			return res, &SaveError{Stage: StageFight, Err: err}
		}
		res.Replaced = true
		log.Info("fight changed since last save, replacing", zap.Int64("fight_id", id))
	}
	res.FightID = id

	existing, err := rec.FindRounds(ctx, id)
	if err != nil {
		return res, &SaveError{Stage: StageRounds, Err: err}
	}
	for _, r := range recs.Rounds {
		if rid, ok := existing[r.Number]; ok {
			res.RoundIDs[r.Number] = rid
			continue
		}
		rid, err := rec.InsertRound(ctx, id, r)
		if err != nil {
			return res, &SaveError{Stage: StageRounds, Err: fmt.Errorf("round %d: %w", r.Number, err)}
		}
		res.RoundIDs[r.Number] = rid
		res.RoundsInserted++
	}
	metrics.RecordRowsInserted("rounds", res.RoundsInserted)
	log.Info("rounds saved", zap.Int("inserted", res.RoundsInserted), zap.Int("total", len(recs.Rounds)))

	n, err := rec.CountStrikes(ctx, id)
	if err != nil {
		return res, &SaveError{Stage: StageStrikes, Err: err}
	}
	if n > 0 {
		res.StrikesExisted = true
		log.Info("strikes already saved, skipping", zap.Int("count", n))
		return res, nil
	}

	strikes := make([]StrikeRecord, len(recs.Strikes))
	for i, s := range recs.Strikes {
		rid, ok := res.RoundIDs[s.RoundNumber]
		if !ok {
			return res, &SaveError{Stage: StageStrikes, Err: fmt.Errorf("strike %d references unknown round %d", i, s.RoundNumber)}
		}
		s.RoundRef = rid
		strikes[i] = s
	}
	if len(strikes) > 0 {
		if err := rec.InsertStrikes(ctx, id, strikes); err != nil {
			return res, &SaveError{Stage: StageStrikes, Err: err}
		}
	}
	res.StrikesInserted = len(strikes)
	metrics.RecordRowsInserted("strikes", len(strikes))
	if recs.Unassigned > 0 {
		log.Info("unassigned strikes not saved", zap.Int("count", recs.Unassigned))
	}
	log.Info("strikes saved", zap.Int("inserted", len(strikes)))
	return res, nil
}
