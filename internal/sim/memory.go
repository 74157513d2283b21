package sim

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// MemoryDelta is the resident set size of the process around a run.
type MemoryDelta struct {
	RSSBefore uint64 `json:"rss_before"`
	RSSAfter  uint64 `json:"rss_after"`
	Delta     int64  `json:"delta"`
}

// rssSampler reads the resident set size of the current process. A zero
// sample means the platform could not report it.
type rssSampler struct {
	proc *process.Process
}

func newRSSSampler() *rssSampler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return &rssSampler{}
	}
	return &rssSampler{proc: proc}
}

func (s *rssSampler) sample() uint64 {
	if s.proc == nil {
		return 0
	}
	info, err := s.proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return info.RSS
}

func newMemoryDelta(before, after uint64) MemoryDelta {
	return MemoryDelta{
		RSSBefore: before,
		RSSAfter:  after,
		Delta:     int64(after) - int64(before),
	}
}
