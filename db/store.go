package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/tagging-fight-cli/persist"
	"github.com/user/tagging-fight-cli/pkg/logger"
)

// Store is the SQL recorder and read model.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

var _ persist.Recorder = (*Store)(nil)

// NewStore wraps an open connection. The schema is assumed to exist.
func NewStore(conn *sql.DB, dialect Dialect, log *zap.Logger) *Store {
	return &Store{db: conn, dialect: dialect, logger: logger.OrNop(log)}
}

// Dialect reports the SQL flavour of the store.
func (s *Store) Dialect() Dialect { return s.dialect }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) q(query string) string { return s.dialect.Rebind(query) }

// FindFight returns the id and fingerprint of the fight saved under a session key.
func (s *Store) FindFight(ctx context.Context, sessionKey string) (int64, string, bool, error) {
	var id int64
	var fingerprint string
	err := s.db.QueryRowContext(ctx, s.q(SelectFightIDByKeySQL), sessionKey).Scan(&id, &fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, fmt.Errorf("select fight by key: %w", err)
	}
	return id, fingerprint, true, nil
}

// fightColumns are the fight row values shared by insert and update, in
// column order after session_key.
func fightColumns(f persist.FightRecord) []any {
	foughtAt := ""
	if !f.FoughtAt.IsZero() {
		foughtAt = f.FoughtAt.UTC().Format(time.RFC3339)
	}
	stats := f.StatsJSON
	if stats == "" {
		stats = "{}"
	}
	return []any{
		f.AthleteID, f.AthleteName, f.OpponentName, f.Location, f.Notes,
		foughtAt, f.VideoPath, f.Mode, f.DurationSeconds, f.TotalStrikes, f.LandedStrikes,
		f.CorrectnessRate, f.HitsReceived, f.AttackTime, f.DefenseTime,
		f.AttackDefenseRatio, f.Style, stats, f.Fingerprint,
	}
}

// InsertFight writes the fight row and returns its id.
func (s *Store) InsertFight(ctx context.Context, f persist.FightRecord) (int64, error) {
	args := append([]any{f.SessionKey}, fightColumns(f)...)
	var id int64
	if err := s.db.QueryRowContext(ctx, s.q(InsertFightSQL), args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert fight: %w", err)
	}
	return id, nil
}

// ReplaceFight rewrites a fight row and deletes its strikes and rounds in one
// transaction, leaving the fight ready for a fresh round and strike batch.
func (s *Store) ReplaceFight(ctx context.Context, id int64, f persist.FightRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{DeleteFightStrikesSQL, DeleteFightRoundsSQL} {
		if _, err := tx.ExecContext(ctx, s.q(query), id); err != nil {
			return fmt.Errorf("clear fight %d: %w", id, err)
		}
	}
	args := append(fightColumns(f), id)
	res, err := tx.ExecContext(ctx, s.q(UpdateFightSQL), args...)
	if err != nil {
		return fmt.Errorf("update fight %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update fight %d: %w", id, ErrFightNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	s.logger.Debug("fight replaced", zap.Int64("fight_id", id))
	return nil
}

// FindRounds maps round numbers to ids for a fight.
func (s *Store) FindRounds(ctx context.Context, fightID int64) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx, s.q(SelectRoundIDsSQL), fightID)
	if err != nil {
		return nil, fmt.Errorf("select round ids: %w", err)
	}
	defer rows.Close()

	out := make(map[int]int64)
	for rows.Next() {
		var id int64
		var number int
		if err := rows.Scan(&id, &number); err != nil {
			return nil, fmt.Errorf("scan round id: %w", err)
		}
		out[number] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate round ids: %w", err)
	}
	return out, nil
}

// InsertRound writes one round row and returns its id.
func (s *Store) InsertRound(ctx context.Context, fightID int64, r persist.RoundRecord) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, s.q(InsertRoundSQL),
		fightID, r.Number, r.StartSeconds, r.EndSeconds, r.DurationSeconds,
		r.AthleteStrikesTotal, r.AthleteStrikesCorrect,
		r.OpponentStrikesTotal, r.OpponentStrikesCorrect,
		r.HitsReceived, r.DefensesSuccessful, r.DefensesFailed, r.Synthesized,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert round %d: %w", r.Number, err)
	}
	return id, nil
}

// CountStrikes returns how many strikes a fight has.
func (s *Store) CountStrikes(ctx context.Context, fightID int64) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, s.q(CountStrikesSQL), fightID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count strikes: %w", err)
	}
	return n, nil
}

// InsertStrikes writes the batch in one transaction.
func (s *Store) InsertStrikes(ctx context.Context, fightID int64, strikes []persist.StrikeRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin strikes tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(InsertStrikeSQL))
	if err != nil {
		return fmt.Errorf("prepare insert strike: %w", err)
	}
	defer stmt.Close()

	for i, st := range strikes {
		_, err := stmt.ExecContext(ctx,
			fightID, st.RoundRef, st.StrikeType, st.Category, st.Side,
			st.Landed, st.IsOpponent, st.IsCorrect, st.TimeInRound,
		)
		if err != nil {
			return fmt.Errorf("insert strike %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit strikes: %w", err)
	}
	s.logger.Debug("strikes committed", zap.Int64("fight_id", fightID), zap.Int("count", len(strikes)))
	return nil
}
