package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/tagging-fight-cli/annotate"
)

// DefaultCoach owns the taxonomy when no coach is configured.
const DefaultCoach = "default"

func coachOrDefault(coach string) string {
	if coach = strings.TrimSpace(coach); coach == "" {
		return DefaultCoach
	}
	return coach
}

// StrikeTypes returns a coach's stored taxonomy in order. It may be empty.
func (s *Store) StrikeTypes(ctx context.Context, coach string) (annotate.Taxonomy, error) {
	rows, err := s.db.QueryContext(ctx, s.q(SelectStrikeTypesSQL), coachOrDefault(coach))
	if err != nil {
		return nil, fmt.Errorf("select strike types: %w", err)
	}
	defer rows.Close()

	var out annotate.Taxonomy
	for rows.Next() {
		var t annotate.StrikeType
		var category, side string
		if err := rows.Scan(&t.ID, &t.Name, &category, &side); err != nil {
			return nil, fmt.Errorf("scan strike type: %w", err)
		}
		t.Category = annotate.Category(category)
		t.Side = annotate.Side(side)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strike types: %w", err)
	}
	return out, nil
}

// Taxonomy returns the coach's taxonomy, or the default one when none is stored.
func (s *Store) Taxonomy(ctx context.Context, coach string) (annotate.Taxonomy, error) {
	tx, err := s.StrikeTypes(ctx, coach)
	if err != nil {
		return nil, err
	}
	if len(tx) == 0 {
		return annotate.DefaultTaxonomy(), nil
	}
	return tx, nil
}

// SaveStrikeType adds a strike type at the end of the list, or updates it in
// place when the id exists.
func (s *Store) SaveStrikeType(ctx context.Context, coach string, t annotate.StrikeType) error {
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return fmt.Errorf("strike type needs an id")
	}
	category, err := annotate.ParseCategory(string(t.Category))
	if err != nil {
		return err
	}
	side, err := annotate.ParseSide(string(t.Side))
	if err != nil {
		return err
	}
	if t.Name == "" {
		t.Name = t.ID
	}

	coach = coachOrDefault(coach)
	if _, err := s.db.ExecContext(ctx, s.q(UpsertStrikeTypeSQL), coach, t.ID, t.Name, string(category), string(side), coach); err != nil {
		return fmt.Errorf("save strike type %s: %w", t.ID, err)
	}
	return nil
}

// DeleteStrikeType removes a strike type. Saved strikes keep their copied values.
func (s *Store) DeleteStrikeType(ctx context.Context, coach, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(DeleteStrikeTypeSQL), coachOrDefault(coach), id)
	if err != nil {
		return false, fmt.Errorf("delete strike type %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete strike type %s: %w", id, err)
	}
	return n > 0, nil
}

// SeedStrikeTypes stores the default taxonomy for a coach who has none and
// returns how many entries were written.
func (s *Store) SeedStrikeTypes(ctx context.Context, coach string) (int, error) {
	existing, err := s.StrikeTypes(ctx, coach)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	defaults := annotate.DefaultTaxonomy()
	for _, t := range defaults {
		if err := s.SaveStrikeType(ctx, coach, t); err != nil {
			return 0, err
		}
	}
	return len(defaults), nil
}
