package drivesync

type ProgressKind int

const (
	// ProgressTotal announces how many units the operation will report.
	ProgressTotal ProgressKind = iota + 1
	// ProgressDelta reports N more units done.
	ProgressDelta
)

func (k ProgressKind) String() string {
	switch k {
	case ProgressTotal:
		return "total"
	case ProgressDelta:
		return "delta"
	default:
		return "unknown"
	}
}

type Progress struct {
	Kind ProgressKind
	N    int
}

// ProgressFunc receives progress events in emission order on the
// operation's goroutine. A nil ProgressFunc discards them.
type ProgressFunc func(Progress)

func (f ProgressFunc) total(n int) {
	if f != nil {
		f(Progress{Kind: ProgressTotal, N: n})
	}
}

func (f ProgressFunc) delta(n int) {
	if f != nil {
		f(Progress{Kind: ProgressDelta, N: n})
	}
}

// ChannelSink forwards events to ch. Sends block, so the consumer must keep
// draining ch until the operation returns.
func ChannelSink(ch chan<- Progress) ProgressFunc {
	return func(p Progress) {
		ch <- p
	}
}
