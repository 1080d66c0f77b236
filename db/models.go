package db

import "github.com/user/tagging-fight-cli/persist"

// Fight is a row of the fights table without its stats snapshot.
type Fight struct {
	ID                 int64   `json:"id"`
	SessionKey         string  `json:"session_key"`
	AthleteID          string  `json:"athlete_id,omitempty"`
	AthleteName        string  `json:"athlete_name"`
	OpponentName       string  `json:"opponent_name,omitempty"`
	Location           string  `json:"location,omitempty"`
	Notes              string  `json:"notes,omitempty"`
	FoughtAt           string  `json:"fought_at,omitempty"`
	VideoPath          string  `json:"video_path,omitempty"`
	Mode               string  `json:"mode"`
	DurationSeconds    float64 `json:"duration_seconds"`
	TotalStrikes       int     `json:"total_strikes"`
	LandedStrikes      int     `json:"landed_strikes"`
	CorrectnessRate    float64 `json:"correctness_rate"`
	HitsReceived       int     `json:"hits_received"`
	AttackTime         float64 `json:"attack_time"`
	DefenseTime        float64 `json:"defense_time"`
	AttackDefenseRatio float64 `json:"attack_defense_ratio"`
	Style              string  `json:"style"`
}

// Round is a row of the rounds table.
type Round struct {
	ID      int64 `json:"id"`
	FightID int64 `json:"fight_id"`
	persist.RoundRecord
}

// Strike is a row of the strikes table with its round number joined in.
type Strike struct {
	ID      int64 `json:"id"`
	FightID int64 `json:"fight_id"`
	Round   int   `json:"round"`
	persist.StrikeRecord
}
