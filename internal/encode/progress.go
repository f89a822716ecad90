package encode

import "sync"

// Phase names a stage of a generation run.
type Phase string

const (
	PhaseQueued    Phase = "queued"
	PhaseSynthesis Phase = "synthesis"
	PhaseMix       Phase = "mix"
	PhaseRender    Phase = "render"
	PhaseDone      Phase = "done"
)

var phaseRanges = map[Phase][2]int{
	PhaseQueued:    {0, 10},
	PhaseSynthesis: {10, 40},
	PhaseMix:       {40, 50},
	PhaseRender:    {50, 100},
	PhaseDone:      {100, 100},
}

// Progress maps per-phase completion onto one percentage that never goes back.
type Progress struct {
	mu       sync.Mutex
	phase    Phase
	percent  int
	onChange func(phase Phase, percent int)
}

func NewProgress(onChange func(phase Phase, percent int)) *Progress {
	return &Progress{phase: PhaseQueued, onChange: onChange}
}

// Report records done of total steps in phase.
func (p *Progress) Report(phase Phase, done, total int) {
	r, ok := phaseRanges[phase]
	if !ok {
		return
	}
	pct := r[1]
	if total > 0 {
		if done > total {
			done = total
		}
		pct = r[0] + (r[1]-r[0])*done/total
	}

	p.mu.Lock()
	changed := pct > p.percent || phase != p.phase
	if pct > p.percent {
		p.percent = pct
	}
	p.phase = phase
	current := p.percent
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(phase, current)
	}
}

func (p *Progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

func (p *Progress) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}
