package stats

import (
	"math"
	"sort"

	"github.com/user/tagging-fight-cli/annotate"
	"github.com/user/tagging-fight-cli/tally"
)

// Options control aggregation.
type Options struct {
	// Duration of the video or fight in seconds.
	Duration float64
	// Now is the playback position; open intervals end here. Defaults to Duration.
	Now float64
	// BucketSeconds is the timeline bucket width. Defaults to DefaultBucketSeconds.
	BucketSeconds float64
}

func (o Options) normalize() Options {
	if o.Duration < 0 {
		o.Duration = 0
	}
	if o.Now <= 0 {
		o.Now = o.Duration
	}
	if o.BucketSeconds <= 0 {
		o.BucketSeconds = DefaultBucketSeconds
	}
	return o
}

type roundTiming struct {
	number   int
	duration float64
	attack   float64
	defense  float64
}

// tallies is the shape both authoring modes are normalized into.
type tallies struct {
	mode     string
	strikes  []tally.StrikeCell
	defenses []tally.DefenseCell
	// shield counts successful athlete defenses that offset opponent hits, per round.
	shield  map[int]int
	rounds  []roundTiming
	buckets []Bucket
}

// FromTimeline aggregates a timeline-mode session.
func FromTimeline(tl *annotate.Timeline, opts Options) Report {
	opts = opts.normalize()
	return summarize(normalizeTimeline(tl, opts), opts)
}

// FromTally aggregates a manual-mode sheet.
func FromTally(sheet *tally.Sheet, opts Options) Report {
	opts = opts.normalize()
	return summarize(normalizeSheet(sheet), opts)
}

// currentNumbers maps round IDs to their current numbers; strikes keep the round
// they were created in even after renumbering.
func currentNumbers(iv *annotate.Intervals) map[string]int {
	out := map[string]int{}
	for _, r := range iv.Rounds() {
		out[r.ID] = r.Number
	}
	return out
}

func roundOf(ctx *annotate.RoundContext, numbers map[string]int) int {
	if ctx == nil {
		return UnknownRound
	}
	if n, ok := numbers[ctx.RoundID]; ok {
		return n
	}
	return UnknownRound
}

func normalizeTimeline(tl *annotate.Timeline, opts Options) tallies {
	numbers := currentNumbers(tl.Intervals)
	t := tallies{mode: "timeline", shield: map[int]int{}}

	type strikeKey struct {
		round int
		actor annotate.Owner
		key   annotate.StrikeKey
	}
	cells := map[strikeKey]int{}
	for _, s := range tl.Events.Strikes() {
		k := strikeKey{roundOf(s.Round, numbers), s.Owner, s.Type.Key()}
		i, ok := cells[k]
		if !ok {
			i = len(t.strikes)
			cells[k] = i
			t.strikes = append(t.strikes, tally.StrikeCell{Round: k.round, Actor: k.actor, Key: k.key})
		}
		c := &t.strikes[i].Counts
		if s.HitTarget {
			c.Landed++
			c.Correct++
		} else {
			c.Missed++
		}
	}

	type defenseKey struct {
		round       int
		defenseType string
	}
	defCells := map[defenseKey]int{}
	for _, d := range tl.Events.Defenses() {
		k := defenseKey{roundOf(d.Round, numbers), d.DefenseType}
		i, ok := defCells[k]
		if !ok {
			i = len(t.defenses)
			defCells[k] = i
			t.defenses = append(t.defenses, tally.DefenseCell{Round: k.round, Actor: annotate.OwnerAthlete, DefenseType: k.defenseType})
		}
		c := &t.defenses[i].Counts
		if d.Successful {
			c.Successful++
			if d.InWindow {
				t.shield[k.round]++
			}
		} else {
			c.Failed++
		}
	}

	timing := map[int]*roundTiming{}
	for _, r := range tl.Intervals.Rounds() {
		timing[r.Number] = &roundTiming{number: r.Number, duration: math.Max(0, r.EffectiveEnd(opts.Now)-r.Start)}
	}
	for _, a := range tl.Intervals.Actions() {
		if a.Open() {
			continue
		}
		round := UnknownRound
		if ctx := tl.Intervals.ResolveRound(a.Start, opts.Now); ctx != nil {
			round = ctx.Number
		}
		rt, ok := timing[round]
		if !ok {
			rt = &roundTiming{number: round}
			timing[round] = rt
		}
		if a.Kind == annotate.ActionAttack {
			rt.attack += a.Duration()
		} else {
			rt.defense += a.Duration()
		}
	}
	for _, rt := range timing {
		t.rounds = append(t.rounds, *rt)
	}

	t.buckets = buildBuckets(tl, opts)
	return t
}

func normalizeSheet(sheet *tally.Sheet) tallies {
	t := tallies{mode: "manual", shield: map[int]int{}}
	if sheet == nil {
		return t
	}
	t.strikes = sheet.StrikeCells()
	t.defenses = sheet.DefenseCells()
	for _, d := range t.defenses {
		if d.Actor == annotate.OwnerAthlete {
			t.shield[d.Round] += d.Counts.Successful
		}
	}
	for _, n := range sheet.Rounds() {
		t.rounds = append(t.rounds, roundTiming{number: n, duration: sheet.RoundDuration(n)})
	}
	return t
}

// buildBuckets partitions [0, duration] into fixed windows. A timestamp equal to
// the duration falls in the last window; anything outside the range is ignored.
func buildBuckets(tl *annotate.Timeline, opts Options) []Bucket {
	if opts.Duration <= 0 {
		return []Bucket{}
	}
	w := opts.BucketSeconds
	n := int(math.Ceil(opts.Duration / w))
	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i].Start = float64(i) * w
		buckets[i].End = math.Min(float64(i+1)*w, opts.Duration)
	}
	index := func(t float64) int {
		if t < 0 || t > opts.Duration {
			return -1
		}
		i := int(t / w)
		if i >= n {
			i = n - 1
		}
		return i
	}
	for _, s := range tl.Events.Strikes() {
		i := index(s.Timestamp)
		if i < 0 {
			continue
		}
		buckets[i].Strikes++
		switch s.Owner {
		case annotate.OwnerAthlete:
			buckets[i].AthleteStrikes++
		case annotate.OwnerOpponent:
			buckets[i].OpponentStrikes++
		}
	}
	for _, a := range tl.Intervals.Actions() {
		i := index(a.Start)
		if i < 0 {
			continue
		}
		if a.Kind == annotate.ActionAttack {
			buckets[i].Attacks++
		} else {
			buckets[i].Defenses++
		}
	}
	return buckets
}

func summarize(t tallies, opts Options) Report {
	rep := Report{
		Mode:          t.mode,
		Duration:      opts.Duration,
		BucketSeconds: opts.BucketSeconds,
		Timeline:      t.buckets,
		Categories:    []CategoryBreakdown{},
		Rounds:        []RoundStats{},
	}
	if rep.Timeline == nil {
		rep.Timeline = []Bucket{}
	}

	rounds := map[int]*RoundStats{}
	round := func(n int) *RoundStats {
		rs, ok := rounds[n]
		if !ok {
			rs = &RoundStats{Number: n}
			rounds[n] = rs
		}
		return rs
	}
	for _, rt := range t.rounds {
		rs := round(rt.number)
		rs.Duration += rt.duration
		rs.AttackTime += rt.attack
		rs.DefenseTime += rt.defense
	}

	categories := map[annotate.Category]*CategoryBreakdown{}
	var catOrder []annotate.Category
	for _, c := range t.strikes {
		rs := round(c.Round)
		n := c.Counts
		switch c.Actor {
		case annotate.OwnerAthlete:
			rep.Athlete.add(n.Landed, n.Missed, n.Correct)
			rs.Athlete.add(n.Landed, n.Missed, n.Correct)
			cb, ok := categories[c.Key.Category]
			if !ok {
				cb = &CategoryBreakdown{Category: c.Key.Category}
				categories[c.Key.Category] = cb
				catOrder = append(catOrder, c.Key.Category)
			}
			cb.Total += n.Total()
			cb.Landed += n.Landed
		case annotate.OwnerOpponent:
			rep.Opponent.add(n.Landed, n.Missed, n.Correct)
			rs.Opponent.add(n.Landed, n.Missed, n.Correct)
		default:
			rep.Unassigned += n.Total()
			rs.Unassigned += n.Total()
		}
	}

	for _, d := range t.defenses {
		if d.Actor != annotate.OwnerAthlete {
			continue
		}
		rs := round(d.Round)
		rs.Defense.Successful += d.Counts.Successful
		rs.Defense.Failed += d.Counts.Failed
		rep.Defense.Successful += d.Counts.Successful
		rep.Defense.Failed += d.Counts.Failed
	}

	shieldTotal := 0
	for _, rs := range rounds {
		rs.Athlete.finish()
		rs.Opponent.finish()
		rs.HitsReceived = hitsReceived(rs.Opponent.Landed, t.shield[rs.Number])
		shieldTotal += t.shield[rs.Number]
		rs.Defense.SuccessRate = ratio(rs.Defense.Successful, rs.Defense.Successful+rs.Defense.Failed)
		rs.AttackDefenseRatio = AttackDefenseRatio(rs.AttackTime, rs.DefenseTime)
		rs.Style = Classify(rs.AttackTime, rs.DefenseTime)
		rep.AttackTime += rs.AttackTime
		rep.DefenseTime += rs.DefenseTime
		rep.Rounds = append(rep.Rounds, *rs)
	}
	sort.Slice(rep.Rounds, func(i, j int) bool {
		a, b := rep.Rounds[i].Number, rep.Rounds[j].Number
		if a == UnknownRound || b == UnknownRound {
			return b == UnknownRound && a != UnknownRound
		}
		return a < b
	})

	rep.Athlete.finish()
	rep.Opponent.finish()
	rep.TotalStrikes = rep.Athlete.Total
	rep.LandedStrikes = rep.Athlete.Landed
	rep.CorrectnessRate = rep.Athlete.CorrectnessRate
	rep.HitsReceived = hitsReceived(rep.Opponent.Landed, shieldTotal)
	rep.Defense.SuccessRate = ratio(rep.Defense.Successful, rep.Defense.Successful+rep.Defense.Failed)
	rep.AttackDefenseRatio = AttackDefenseRatio(rep.AttackTime, rep.DefenseTime)
	rep.Style = Classify(rep.AttackTime, rep.DefenseTime)

	for _, cat := range catOrder {
		cb := categories[cat]
		if rep.Athlete.Total > 0 {
			cb.Percentage = float64(cb.Total) / float64(rep.Athlete.Total) * 100
		}
		rep.Categories = append(rep.Categories, *cb)
	}
	sort.SliceStable(rep.Categories, func(i, j int) bool {
		return rep.Categories[i].Total > rep.Categories[j].Total
	})
	return rep
}

func hitsReceived(opponentLanded, shield int) int {
	if h := opponentLanded - shield; h > 0 {
		return h
	}
	return 0
}
