package stats

type memoKey struct {
	revision uint64
	opts     Options
}

// Memo caches the last report. The key is the session revision plus the
// aggregation options, so any mutation or clock change recomputes.
type Memo struct {
	key    memoKey
	report Report
	valid  bool
	hits   int
}

// Get returns the cached report for the key, or computes and stores a new one.
func (m *Memo) Get(revision uint64, opts Options, compute func(Options) Report) Report {
	opts = opts.normalize()
	k := memoKey{revision: revision, opts: opts}
	if m.valid && m.key == k {
		m.hits++
		return m.report
	}
	m.report = compute(opts)
	m.key = k
	m.valid = true
	return m.report
}

// Reset drops the cached report.
func (m *Memo) Reset() { m.valid = false }

// Hits is how many lookups were served from cache.
func (m *Memo) Hits() int { return m.hits }
