package annotate

// ResolveOwner returns the actor of a strike at t. The first action containing t
// decides; open actions end at now. When no action contains t the fallback is
// returned and defaulted is true.
func (iv *Intervals) ResolveOwner(t, now float64, fallback Owner) (owner Owner, defaulted bool) {
	for _, a := range iv.Actions() {
		if a.Contains(t, now) {
			return a.Kind.Owner(), false
		}
	}
	if fallback == "" {
		fallback = OwnerAthlete
	}
	return fallback, true
}

// ResolveRound returns the round containing t, or nil.
func (iv *Intervals) ResolveRound(t, now float64) *RoundContext {
	for _, r := range iv.Rounds() {
		if r.Contains(t, now) {
			return &RoundContext{RoundID: r.ID, Number: r.Number, TimeInRound: t - r.Start}
		}
	}
	return nil
}

// InDefenseWindow reports whether t falls inside any defense action.
func (iv *Intervals) InDefenseWindow(t, now float64) bool {
	for _, a := range iv.actions {
		if a.Kind == ActionDefense && a.Contains(t, now) {
			return true
		}
	}
	return false
}

// NearestRound returns the round whose span is closest to t. Ties go to the
// earlier round. ok is false when there are no rounds.
func (iv *Intervals) NearestRound(t, now float64) (RoundInterval, bool) {
	var (
		best     RoundInterval
		bestDist = -1.0
	)
	for _, r := range iv.Rounds() {
		var d float64
		switch end := r.EffectiveEnd(now); {
		case t < r.Start:
			d = r.Start - t
		case t > end:
			d = t - end
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = r, d
		}
	}
	return best, bestDist >= 0
}
