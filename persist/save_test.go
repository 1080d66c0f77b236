package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memRecorder is an in-memory Recorder that can be told to fail at one call.
type memRecorder struct {
	nextID  int64
	fights  map[string]int64
	prints  map[int64]string
	saved   map[int64]FightRecord
	rounds  map[int64]map[int]int64
	strikes map[int64][]StrikeRecord
	calls   []string
	failOn  string
	block   bool
}

func newMemRecorder() *memRecorder {
	return &memRecorder{
		fights:  map[string]int64{},
		prints:  map[int64]string{},
		saved:   map[int64]FightRecord{},
		rounds:  map[int64]map[int]int64{},
		strikes: map[int64][]StrikeRecord{},
	}
}

var errBoom = errors.New("boom")

func (m *memRecorder) step(ctx context.Context, name string) error {
	m.calls = append(m.calls, name)
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.failOn == name {
		return errBoom
	}
	return nil
}

func (m *memRecorder) FindFight(ctx context.Context, key string) (int64, string, bool, error) {
	if err := m.step(ctx, "FindFight"); err != nil {
		return 0, "", false, err
	}
	id, ok := m.fights[key]
	return id, m.prints[id], ok, nil
}

func (m *memRecorder) InsertFight(ctx context.Context, f FightRecord) (int64, error) {
	if err := m.step(ctx, "InsertFight"); err != nil {
		return 0, err
	}
	m.nextID++
	m.fights[f.SessionKey] = m.nextID
	m.prints[m.nextID] = f.Fingerprint
	m.saved[m.nextID] = f
	m.rounds[m.nextID] = map[int]int64{}
	return m.nextID, nil
}

func (m *memRecorder) ReplaceFight(ctx context.Context, id int64, f FightRecord) error {
	if err := m.step(ctx, "ReplaceFight"); err != nil {
		return err
	}
	m.prints[id] = f.Fingerprint
	m.saved[id] = f
	m.rounds[id] = map[int]int64{}
	delete(m.strikes, id)
	return nil
}

func (m *memRecorder) FindRounds(ctx context.Context, fightID int64) (map[int]int64, error) {
	if err := m.step(ctx, "FindRounds"); err != nil {
		return nil, err
	}
	out := map[int]int64{}
	for n, id := range m.rounds[fightID] {
		out[n] = id
	}
	return out, nil
}

func (m *memRecorder) InsertRound(ctx context.Context, fightID int64, r RoundRecord) (int64, error) {
	if err := m.step(ctx, "InsertRound"); err != nil {
		return 0, err
	}
	m.nextID++
	m.rounds[fightID][r.Number] = m.nextID
	return m.nextID, nil
}

func (m *memRecorder) CountStrikes(ctx context.Context, fightID int64) (int, error) {
	if err := m.step(ctx, "CountStrikes"); err != nil {
		return 0, err
	}
	return len(m.strikes[fightID]), nil
}

func (m *memRecorder) InsertStrikes(ctx context.Context, fightID int64, strikes []StrikeRecord) error {
	if err := m.step(ctx, "InsertStrikes"); err != nil {
		return err
	}
	m.strikes[fightID] = append(m.strikes[fightID], strikes...)
	return nil
}

func sampleRecords() *Records {
	return &Records{
		Fight: FightRecord{SessionKey: "key-1", AthleteName: "Nong", Mode: "timeline"},
		Rounds: []RoundRecord{
			{Number: 1, DurationSeconds: 180},
			{Number: 2, DurationSeconds: 180},
		},
		Strikes: []StrikeRecord{
			{RoundNumber: 1, Category: "punch", Landed: true, IsCorrect: true},
			{RoundNumber: 2, Category: "kick", IsOpponent: true},
		},
	}
}

func TestSaveOrder(t *testing.T) {
	rec := newMemRecorder()

	res, err := Save(context.Background(), rec, sampleRecords(), SaveOptions{Logger: zap.NewNop()})
	require.NoError(t, err)

	assert.Equal(t, []string{"FindFight", "InsertFight", "FindRounds", "InsertRound", "InsertRound", "CountStrikes", "InsertStrikes"}, rec.calls)
	assert.Equal(t, 2, res.RoundsInserted)
	assert.Equal(t, 2, res.StrikesInserted)

	saved := rec.strikes[res.FightID]
	require.Len(t, saved, 2)
	assert.Equal(t, res.RoundIDs[1], saved[0].RoundRef)
	assert.Equal(t, res.RoundIDs[2], saved[1].RoundRef)
}

func TestSaveFailureIsSingleErrorAndRetrySafe(t *testing.T) {
	rec := newMemRecorder()
	rec.failOn = "InsertStrikes"

	_, err := Save(context.Background(), rec, sampleRecords(), SaveOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSaveFailed))
	assert.True(t, errors.Is(err, errBoom))

	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, StageStrikes, saveErr.Stage)

	// Earlier stages were kept.
	assert.Len(t, rec.fights, 1)

	rec.failOn = ""
	rec.calls = nil
	res, err := Save(context.Background(), rec, sampleRecords(), SaveOptions{})
	require.NoError(t, err)
	assert.True(t, res.FightExisted)
	assert.Equal(t, 0, res.RoundsInserted)
	assert.Equal(t, 2, res.StrikesInserted)
	assert.NotContains(t, rec.calls, "InsertFight")
	assert.NotContains(t, rec.calls, "InsertRound")

	// A third save writes nothing new.
	res, err = Save(context.Background(), rec, sampleRecords(), SaveOptions{})
	require.NoError(t, err)
	assert.True(t, res.StrikesExisted)
	assert.Len(t, rec.strikes[res.FightID], 2)
}

func TestSaveStopsAtRoundFailure(t *testing.T) {
	rec := newMemRecorder()
	rec.failOn = "InsertRound"

	_, err := Save(context.Background(), rec, sampleRecords(), SaveOptions{})
	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, StageRounds, saveErr.Stage)
	assert.NotContains(t, rec.calls, "InsertStrikes")
}

func TestSaveTimeout(t *testing.T) {
	rec := newMemRecorder()
	rec.block = true

	_, err := Save(context.Background(), rec, sampleRecords(), SaveOptions{Timeout: 20 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSaveFailed))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSaveRejectsDanglingRound(t *testing.T) {
	recs := sampleRecords()
	recs.Strikes = append(recs.Strikes, StrikeRecord{RoundNumber: 9})

	rec := newMemRecorder()
	_, err := Save(context.Background(), rec, recs, SaveOptions{})
	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, StageStrikes, saveErr.Stage)
	assert.NotContains(t, rec.calls, "InsertStrikes")
}

func TestSaveAgainAfterEditReplaces(t *testing.T) {
	rec := newMemRecorder()
	first, err := Save(context.Background(), rec, sampleRecords(), SaveOptions{})
	require.NoError(t, err)

	edited := sampleRecords()
	edited.Fight.TotalStrikes = 3
	edited.Rounds[0].AthleteStrikesTotal = 2
	edited.Strikes = append(edited.Strikes, StrikeRecord{RoundNumber: 1, Category: "punch", Landed: true})

	rec.calls = nil
	res, err := Save(context.Background(), rec, edited, SaveOptions{})
	require.NoError(t, err)
	assert.Equal(t, first.FightID, res.FightID)
	assert.True(t, res.FightExisted)
	assert.True(t, res.Replaced)
	assert.False(t, res.StrikesExisted)
	assert.Equal(t, 2, res.RoundsInserted)
	assert.Equal(t, 3, res.StrikesInserted)
	assert.Equal(t, []string{"FindFight", "ReplaceFight", "FindRounds", "InsertRound", "InsertRound", "CountStrikes", "InsertStrikes"}, rec.calls)

	assert.Len(t, rec.strikes[res.FightID], 3)
	assert.Equal(t, 3, rec.saved[res.FightID].TotalStrikes)
	assert.Equal(t, edited.Fingerprint(), rec.prints[res.FightID])

	// The same content again only resumes.
	res, err = Save(context.Background(), rec, edited, SaveOptions{})
	require.NoError(t, err)
	assert.False(t, res.Replaced)
	assert.True(t, res.StrikesExisted)
	assert.Len(t, rec.strikes[res.FightID], 3)
}

func TestReplaceAfterFailedReplaceResumes(t *testing.T) {
	rec := newMemRecorder()
	_, err := Save(context.Background(), rec, sampleRecords(), SaveOptions{})
	require.NoError(t, err)

	edited := sampleRecords()
	edited.Fight.Notes = "second look"
	rec.failOn = "InsertStrikes"
	_, err = Save(context.Background(), rec, edited, SaveOptions{})
	require.Error(t, err)

	rec.failOn = ""
	rec.calls = nil
	res, err := Save(context.Background(), rec, edited, SaveOptions{})
	require.NoError(t, err)
	assert.False(t, res.Replaced)
	assert.NotContains(t, rec.calls, "ReplaceFight")
	assert.Equal(t, 0, res.RoundsInserted)
	assert.Equal(t, 2, res.StrikesInserted)
}

func TestFingerprint(t *testing.T) {
	a, b := sampleRecords(), sampleRecords()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 64)

	b.Fight.Fingerprint = "stale"
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Strikes[0].RoundNumber = 2
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
