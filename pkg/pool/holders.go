package pool

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tagpool/pkg/logger"
)

// Holders is an in-memory Organizer. It keeps named holding areas and
// remembers which area each released object was parked under. Objects used
// with Holders must be comparable.
type Holders struct {
	mu      sync.Mutex
	members map[string]map[any]struct{}
	parent  map[any]string
	log     *zap.Logger
}

// NewHolders creates an organizer with the given holding areas.
// A nil logger uses the global logger named "holders".
func NewHolders(log *zap.Logger, names ...string) *Holders {
	if log == nil {
		log = logger.Named("holders")
	}
	h := &Holders{
		members: make(map[string]map[any]struct{}),
		parent:  make(map[any]string),
		log:     log,
	}
	for _, name := range names {
		h.AddHolder(name)
	}
	return h
}

// AddHolder creates a holding area. An existing name is reported and ignored.
func (h *Holders) AddHolder(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.members[name]; exists {
		h.log.Error("holding area already exists", zap.String("holder", name))
		return
	}
	h.members[name] = make(map[any]struct{})
	h.log.Debug("holding area created", zap.String("holder", name))
}

// Park moves obj under holder. It returns false, leaving obj where it was,
// when holder does not exist.
func (h *Holders) Park(obj any, holder string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.members[holder]
	if !ok {
		return false
	}
	h.detachLocked(obj)
	set[obj] = struct{}{}
	h.parent[obj] = holder
	return true
}

// Detach moves obj to the top level.
func (h *Holders) Detach(obj any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(obj)
}

// HolderOf returns the holding area obj is parked under.
func (h *Holders) HolderOf(obj any) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	name, ok := h.parent[obj]
	return name, ok
}

// Count returns how many objects are parked under holder.
func (h *Holders) Count(holder string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.members[holder])
}

// Names returns the holding area names, sorted.
func (h *Holders) Names() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.members))
	for name := range h.members {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (h *Holders) detachLocked(obj any) {
	if prev, ok := h.parent[obj]; ok {
		delete(h.members[prev], obj)
		delete(h.parent, obj)
	}
}
