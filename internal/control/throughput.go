package control

// MinRateTicks is the history below which the throughput rate reads zero.
const MinRateTicks = 50

// Throughput counts admissions and derives a per-minute rate from the first
// admission onward.
type Throughput struct {
	ticksPerMinute int
	count          int
	first          int
	started        bool
}

func NewThroughput(ticksPerMinute int) Throughput {
	return Throughput{ticksPerMinute: ticksPerMinute}
}

// Admit records one admission at tick.
func (t *Throughput) Admit(tick int) {
	if !t.started {
		t.first = tick
		t.started = true
	}
	t.count++
}

func (t *Throughput) Count() int { return t.count }

// Rate is admissions per minute at tick, or zero with under MinRateTicks of
// history.
func (t *Throughput) Rate(tick int) float64 {
	if !t.started || tick-t.first < MinRateTicks {
		return 0
	}
	return float64(t.ticksPerMinute*t.count) / float64(tick-t.first+1)
}
