// Package persist maps a session onto relational rows and saves them as an
// ordered batch: fight, then rounds, then strikes.
package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/session"
	"github.com/user/tagging-fight-cli/stats"
	"github.com/user/tagging-fight-cli/tally"
)

// FightRecord is the fight row.
type FightRecord struct {
	SessionKey         string    `json:"session_key"`
	AthleteID          string    `json:"athlete_id"`
	AthleteName        string    `json:"athlete_name"`
	OpponentName       string    `json:"opponent_name"`
	Location           string    `json:"location"`
	Notes              string    `json:"notes"`
	FoughtAt           time.Time `json:"fought_at"`
	VideoPath          string    `json:"video_path"`
	Mode               string    `json:"mode"`
	DurationSeconds    float64   `json:"duration_seconds"`
	TotalStrikes       int       `json:"total_strikes"`
	LandedStrikes      int       `json:"landed_strikes"`
	CorrectnessRate    float64   `json:"correctness_rate"`
	HitsReceived       int       `json:"hits_received"`
	AttackTime         float64   `json:"attack_time"`
	DefenseTime        float64   `json:"defense_time"`
	AttackDefenseRatio float64   `json:"attack_defense_ratio"`
	Style              string    `json:"style"`
	// StatsJSON is the full aggregate report, served back by the read API.
	StatsJSON string `json:"stats_json"`
	// Fingerprint identifies the saved content; Save fills it in.
	Fingerprint string `json:"fingerprint"`
}

// RoundRecord is one round row. Start and End are nil for manual rounds.
//
// Every saved strike references a round row, so a strike whose round was
// removed, or that fell outside every round, is counted in the nearest round
// here. The report in FightRecord.StatsJSON keeps such strikes in its round 0
// bucket instead, so per-round totals can differ between the two while fight
// totals agree.
type RoundRecord struct {
	Number                 int      `json:"number"`
	StartSeconds           *float64 `json:"start_seconds,omitempty"`
	EndSeconds             *float64 `json:"end_seconds,omitempty"`
	DurationSeconds        float64  `json:"duration_seconds"`
	AthleteStrikesTotal    int      `json:"athlete_strikes_total"`
	AthleteStrikesCorrect  int      `json:"athlete_strikes_correct"`
	OpponentStrikesTotal   int      `json:"opponent_strikes_total"`
	OpponentStrikesCorrect int      `json:"opponent_strikes_correct"`
	HitsReceived           int      `json:"hits_received"`
	DefensesSuccessful     int      `json:"defenses_successful"`
	DefensesFailed         int      `json:"defenses_failed"`
	Synthesized            bool     `json:"synthesized"`
}

// StrikeRecord is one strike row. RoundNumber is the transient label used to
// look up RoundRef, the persisted round id, at save time.
type StrikeRecord struct {
	RoundNumber int      `json:"-"`
	RoundRef    int64    `json:"round_id"`
	StrikeType  string   `json:"strike_type"`
	Category    string   `json:"category"`
	Side        string   `json:"side"`
	Landed      bool     `json:"landed"`
	IsOpponent  bool     `json:"is_opponent"`
	IsCorrect   bool     `json:"is_correct"`
	TimeInRound *float64 `json:"time_in_round,omitempty"`
}

// Records is everything one save writes.
type Records struct {
	Fight   FightRecord
	Rounds  []RoundRecord
	Strikes []StrikeRecord
	// Unassigned counts strikes left out because no actor could be resolved.
	Unassigned int
}

// Fingerprint hashes the fight, rounds and strikes. Two mappings of the same
// session content give the same value; any edit changes it.
func (r *Records) Fingerprint() string {
	fight := r.Fight
	fight.Fingerprint = ""
	strikeRounds := make([]int, len(r.Strikes))
	for i, s := range r.Strikes {
		strikeRounds[i] = s.RoundNumber
	}
	data, err := json.Marshal(struct {
		Fight        FightRecord
		Rounds       []RoundRecord
		Strikes      []StrikeRecord
		StrikeRounds []int
	}{fight, r.Rounds, r.Strikes, strikeRounds})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MapOptions tune the mapping.
type MapOptions struct {
	BucketSeconds float64
}

type roundDefense struct {
	successful int
	failed     int
	// shield is the successful defenses that offset opponent hits.
	shield int
}

// ToRecords maps a session to rows. Validation runs first; nothing is
// produced for an invalid session.
func ToRecords(s *session.Session, opts MapOptions) (*Records, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	duration := s.EffectiveDuration()
	rep := s.Report(duration, opts.BucketSeconds)
	statsJSON, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("encode stats: %w", err)
	}

	recs := &Records{Fight: fightRecord(s, rep, duration, string(statsJSON))}
	defenses := map[int]*roundDefense{}
	if s.Mode == session.ModeManual {
		recs.Rounds = manualRounds(s.Tally, duration)
		recs.Strikes = manualStrikes(s.Tally)
		for _, c := range s.Tally.DefenseCells() {
			if c.Actor != annotate.OwnerAthlete {
				continue
			}
			d := defenseAt(defenses, c.Round)
			d.successful += c.Counts.Successful
			d.failed += c.Counts.Failed
			d.shield += c.Counts.Successful
		}
	} else {
		recs.Rounds, recs.Strikes, recs.Unassigned = timelineRecords(s.Timeline, duration, defenses)
	}
	fillRoundTotals(recs, defenses)
	return recs, nil
}

func defenseAt(m map[int]*roundDefense, round int) *roundDefense {
	d, ok := m[round]
	if !ok {
		d = &roundDefense{}
		m[round] = d
	}
	return d
}

func fightRecord(s *session.Session, rep stats.Report, duration float64, statsJSON string) FightRecord {
	return FightRecord{
		SessionKey:         s.Key,
		AthleteID:          s.AthleteID,
		AthleteName:        s.AthleteName,
		OpponentName:       s.OpponentName,
		Location:           s.Location,
		Notes:              s.Notes,
		FoughtAt:           s.FoughtAt,
		VideoPath:          s.VideoPath,
		Mode:               string(s.Mode),
		DurationSeconds:    duration,
		TotalStrikes:       rep.TotalStrikes,
		LandedStrikes:      rep.LandedStrikes,
		CorrectnessRate:    rep.CorrectnessRate,
		HitsReceived:       rep.HitsReceived,
		AttackTime:         rep.AttackTime,
		DefenseTime:        rep.DefenseTime,
		AttackDefenseRatio: rep.AttackDefenseRatio,
		Style:              string(rep.Style),
		StatsJSON:          statsJSON,
	}
}

func ptr(f float64) *float64 { return &f }

// timelineRecords builds rounds and strikes from the interval and event stores.
// With no rounds a single round over [0, duration] is synthesized. Strikes whose
// round was removed, or that fell outside every round, attach to the nearest one.
func timelineRecords(tl *annotate.Timeline, duration float64, defenses map[int]*roundDefense) ([]RoundRecord, []StrikeRecord, int) {
	iv := tl.Intervals
	rounds := iv.Rounds()
	var out []RoundRecord
	if len(rounds) == 0 {
		synthetic := annotate.NewIntervals()
		synthetic.StartRound(0)
		synthetic.EndRound(duration)
		iv = synthetic
		rounds = iv.Rounds()
		out = append(out, RoundRecord{Number: 1, StartSeconds: ptr(0), EndSeconds: ptr(duration), DurationSeconds: duration, Synthesized: true})
	} else {
		for _, r := range rounds {
			end := r.EffectiveEnd(duration)
			if end < r.Start {
				end = r.Start
			}
			out = append(out, RoundRecord{Number: r.Number, StartSeconds: ptr(r.Start), EndSeconds: ptr(end), DurationSeconds: end - r.Start})
		}
	}

	// place returns the round number and start for a timestamp.
	place := func(ctx *annotate.RoundContext, t float64) (int, float64) {
		if ctx != nil {
			if r, ok := iv.Round(ctx.RoundID); ok {
				return r.Number, r.Start
			}
		}
		if r := iv.ResolveRound(t, duration); r != nil {
			rr, _ := iv.Round(r.RoundID)
			return rr.Number, rr.Start
		}
		r, _ := iv.NearestRound(t, duration)
		return r.Number, r.Start
	}

	var strikes []StrikeRecord
	unassigned := 0
	for _, e := range tl.Events.Strikes() {
		if e.Owner != annotate.OwnerAthlete && e.Owner != annotate.OwnerOpponent {
			unassigned++
			continue
		}
		number, start := place(e.Round, e.Timestamp)
		strikes = append(strikes, StrikeRecord{
			RoundNumber: number,
			StrikeType:  e.Type.Label(),
			Category:    string(e.Type.Category),
			Side:        string(e.Type.Side),
			Landed:      e.HitTarget,
			IsOpponent:  e.Owner == annotate.OwnerOpponent,
			IsCorrect:   e.HitTarget,
			TimeInRound: ptr(math.Max(0, e.Timestamp-start)),
		})
	}
	for _, d := range tl.Events.Defenses() {
		number, _ := place(d.Round, d.Timestamp)
		rd := defenseAt(defenses, number)
		if d.Successful {
			rd.successful++
			if d.InWindow {
				rd.shield++
			}
		} else {
			rd.failed++
		}
	}
	return out, strikes, unassigned
}

func manualRounds(sheet *tally.Sheet, duration float64) []RoundRecord {
	numbers := sheet.Rounds()
	if len(numbers) == 0 {
		return []RoundRecord{{Number: 1, StartSeconds: ptr(0), EndSeconds: ptr(duration), DurationSeconds: duration, Synthesized: true}}
	}
	out := make([]RoundRecord, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, RoundRecord{Number: n, DurationSeconds: sheet.RoundDuration(n)})
	}
	return out
}

// manualStrikes expands counts into one row per unit: Landed rows first, then
// Missed rows. The first Correct rows of each cell carry IsCorrect. Counts only
// say how many units were correct, not which, so the flag placement is arbitrary
// but the per-cell totals are exact.
func manualStrikes(sheet *tally.Sheet) []StrikeRecord {
	var out []StrikeRecord
	for _, c := range sheet.StrikeCells() {
		correct := c.Counts.Correct
		unit := func(landed bool) StrikeRecord {
			r := StrikeRecord{
				RoundNumber: c.Round,
				StrikeType:  string(c.Key.Category),
				Category:    string(c.Key.Category),
				Side:        string(c.Key.Side),
				Landed:      landed,
				IsOpponent:  c.Actor == annotate.OwnerOpponent,
				IsCorrect:   correct > 0,
			}
			if correct > 0 {
				correct--
			}
			return r
		}
		for i := 0; i < c.Counts.Landed; i++ {
			out = append(out, unit(true))
		}
		for i := 0; i < c.Counts.Missed; i++ {
			out = append(out, unit(false))
		}
	}
	return out
}

// fillRoundTotals computes per-round totals from the strike rows themselves so
// rounds and strikes always agree.
func fillRoundTotals(recs *Records, defenses map[int]*roundDefense) {
	idx := map[int]int{}
	for i, r := range recs.Rounds {
		idx[r.Number] = i
	}
	opponentLanded := map[int]int{}
	for _, s := range recs.Strikes {
		i, ok := idx[s.RoundNumber]
		if !ok {
			continue
		}
		r := &recs.Rounds[i]
		if s.IsOpponent {
			r.OpponentStrikesTotal++
			if s.IsCorrect {
				r.OpponentStrikesCorrect++
			}
			if s.Landed {
				opponentLanded[s.RoundNumber]++
			}
		} else {
			r.AthleteStrikesTotal++
			if s.IsCorrect {
				r.AthleteStrikesCorrect++
			}
		}
	}
	for n, d := range defenses {
		i, ok := idx[n]
		if !ok {
			continue
		}
		recs.Rounds[i].DefensesSuccessful += d.successful
		recs.Rounds[i].DefensesFailed += d.failed
	}
	for i := range recs.Rounds {
		r := &recs.Rounds[i]
		shield := 0
		if d, ok := defenses[r.Number]; ok {
			shield = d.shield
		}
		if h := opponentLanded[r.Number] - shield; h > 0 {
			r.HitsReceived = h
		}
	}
	sort.SliceStable(recs.Rounds, func(i, j int) bool { return recs.Rounds[i].Number < recs.Rounds[j].Number })
}
