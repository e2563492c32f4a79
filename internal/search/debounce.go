package search

// Tick is the message a host schedules after a keystroke. Only the latest
// tick applies its query.
type Tick struct {
	ID    uint64
	Query string
}

// Pending holds the single in-flight debounced query. Scheduling a new query
// supersedes the previous one.
type Pending struct {
	seq   uint64
	query string
	armed bool
}

// Next records q as the pending query and returns the tick to schedule.
func (p *Pending) Next(q string) Tick {
	p.seq++
	p.query = q
	p.armed = true
	return Tick{ID: p.seq, Query: q}
}

// Ready reports whether t is the latest scheduled tick and disarms it.
// Superseded ticks return false.
func (p *Pending) Ready(t Tick) bool {
	if !p.armed || t.ID != p.seq {
		return false
	}
	p.armed = false
	return true
}

// Cancel drops the pending query.
func (p *Pending) Cancel() {
	p.seq++
	p.armed = false
}

// Query returns the last scheduled query.
func (p *Pending) Query() string { return p.query }

// Armed reports whether a tick is still outstanding.
func (p *Pending) Armed() bool { return p.armed }
