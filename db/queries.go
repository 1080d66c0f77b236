package db

import (
	_ "embed"
)

// Schema, one file per dialect

//go:embed sql/sqlite/create_tables.sql
var createTablesSQLite string

//go:embed sql/postgres/create_tables.sql
var createTablesPostgres string

// Fight queries

//go:embed sql/insert_fight.sql
var InsertFightSQL string

//go:embed sql/update_fight.sql
var UpdateFightSQL string

//go:embed sql/select_fight_id_by_key.sql
var SelectFightIDByKeySQL string

//go:embed sql/select_fights.sql
var SelectFightsSQL string

//go:embed sql/select_fights_by_athlete.sql
var SelectFightsByAthleteSQL string

//go:embed sql/select_fight_by_id.sql
var SelectFightByIDSQL string

//go:embed sql/select_fight_stats.sql
var SelectFightStatsSQL string

//go:embed sql/delete_fight.sql
var DeleteFightSQL string

//go:embed sql/delete_fight_rounds.sql
var DeleteFightRoundsSQL string

//go:embed sql/delete_fight_strikes.sql
var DeleteFightStrikesSQL string

// Round queries

//go:embed sql/insert_round.sql
var InsertRoundSQL string

//go:embed sql/select_round_ids.sql
var SelectRoundIDsSQL string

//go:embed sql/select_rounds.sql
var SelectRoundsSQL string

// Strike queries

//go:embed sql/count_strikes.sql
var CountStrikesSQL string

//go:embed sql/insert_strike.sql
var InsertStrikeSQL string

//go:embed sql/select_strikes.sql
var SelectStrikesSQL string

// Strike type taxonomy

//go:embed sql/select_strike_types.sql
var SelectStrikeTypesSQL string

//go:embed sql/upsert_strike_type.sql
var UpsertStrikeTypeSQL string

//go:embed sql/delete_strike_type.sql
var DeleteStrikeTypeSQL string
