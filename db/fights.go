package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrFightNotFound is returned by lookups of a missing fight id.
var ErrFightNotFound = errors.New("fight not found")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFight(row rowScanner) (Fight, error) {
	var f Fight
	err := row.Scan(
		&f.ID, &f.SessionKey, &f.AthleteID, &f.AthleteName, &f.OpponentName, &f.Location, &f.Notes,
		&f.FoughtAt, &f.VideoPath, &f.Mode, &f.DurationSeconds, &f.TotalStrikes, &f.LandedStrikes,
		&f.CorrectnessRate, &f.HitsReceived, &f.AttackTime, &f.DefenseTime,
		&f.AttackDefenseRatio, &f.Style,
	)
	return f, err
}

// ListFights returns saved fights, newest first. An empty athleteID lists all.
func (s *Store) ListFights(ctx context.Context, athleteID string, limit, offset int) ([]Fight, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows *sql.Rows
	var err error
	if athleteID == "" {
		rows, err = s.db.QueryContext(ctx, s.q(SelectFightsSQL), limit, offset)
	} else {
		rows, err = s.db.QueryContext(ctx, s.q(SelectFightsByAthleteSQL), athleteID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("select fights: %w", err)
	}
	defer rows.Close()

	fights := []Fight{}
	for rows.Next() {
		f, err := scanFight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fight: %w", err)
		}
		fights = append(fights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fights: %w", err)
	}
	return fights, nil
}

// GetFight loads one fight by id.
func (s *Store) GetFight(ctx context.Context, id int64) (*Fight, error) {
	f, err := scanFight(s.db.QueryRowContext(ctx, s.q(SelectFightByIDSQL), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select fight %d: %w", id, err)
	}
	return &f, nil
}

// FightStats returns the aggregate report stored with the fight.
func (s *Store) FightStats(ctx context.Context, id int64) (json.RawMessage, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, s.q(SelectFightStatsSQL), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFightNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select fight stats %d: %w", id, err)
	}
	return json.RawMessage(raw), nil
}

// FightRounds lists the rounds of a fight by number.
func (s *Store) FightRounds(ctx context.Context, fightID int64) ([]Round, error) {
	rows, err := s.db.QueryContext(ctx, s.q(SelectRoundsSQL), fightID)
	if err != nil {
		return nil, fmt.Errorf("select rounds: %w", err)
	}
	defer rows.Close()

	rounds := []Round{}
	for rows.Next() {
		var r Round
		var start, end sql.NullFloat64
		if err := rows.Scan(
			&r.ID, &r.FightID, &r.Number, &start, &end, &r.DurationSeconds,
			&r.AthleteStrikesTotal, &r.AthleteStrikesCorrect,
			&r.OpponentStrikesTotal, &r.OpponentStrikesCorrect,
			&r.HitsReceived, &r.DefensesSuccessful, &r.DefensesFailed, &r.Synthesized,
		); err != nil {
			return nil, fmt.Errorf("scan round: %w", err)
		}
		r.StartSeconds = nullFloat(start)
		r.EndSeconds = nullFloat(end)
		rounds = append(rounds, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rounds: %w", err)
	}
	return rounds, nil
}

// FightStrikes lists the strikes of a fight by round.
func (s *Store) FightStrikes(ctx context.Context, fightID int64) ([]Strike, error) {
	rows, err := s.db.QueryContext(ctx, s.q(SelectStrikesSQL), fightID)
	if err != nil {
		return nil, fmt.Errorf("select strikes: %w", err)
	}
	defer rows.Close()

	strikes := []Strike{}
	for rows.Next() {
		var st Strike
		var tir sql.NullFloat64
		if err := rows.Scan(
			&st.ID, &st.FightID, &st.RoundRef, &st.Round, &st.StrikeType, &st.Category, &st.Side,
			&st.Landed, &st.IsOpponent, &st.IsCorrect, &tir,
		); err != nil {
			return nil, fmt.Errorf("scan strike: %w", err)
		}
		st.RoundNumber = st.Round
		st.TimeInRound = nullFloat(tir)
		strikes = append(strikes, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strikes: %w", err)
	}
	return strikes, nil
}

// DeleteFight removes a fight with its rounds and strikes.
func (s *Store) DeleteFight(ctx context.Context, id int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{DeleteFightStrikesSQL, DeleteFightRoundsSQL} {
		if _, err := tx.ExecContext(ctx, s.q(query), id); err != nil {
			return false, fmt.Errorf("delete fight %d children: %w", id, err)
		}
	}
	res, err := tx.ExecContext(ctx, s.q(DeleteFightSQL), id)
	if err != nil {
		return false, fmt.Errorf("delete fight %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete fight %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return n > 0, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
