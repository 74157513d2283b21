package pool

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/tagpool/pkg/errors"
)

// item is the pooled type used throughout the tests.
type item struct {
	id     int
	active bool
	pose   Pose
	tag    string
	spawns int
	extra  []SpawnObserver
}

func (i *item) Active() bool                     { return i.active }
func (i *item) SetActive(active bool)            { i.active = active }
func (i *item) SetPose(p Pose)                   { i.pose = p }
func (i *item) SetPoolTag(tag string)            { i.tag = tag }
func (i *item) OnSpawn()                         { i.spawns++ }
func (i *item) SpawnObservers() []SpawnObserver { return i.extra }
func (i *item) String() string                   { return fmt.Sprintf("item#%d", i.id) }

// factory counts the instances its prototypes manufacture.
type factory struct {
	mu   sync.Mutex
	made int
}

func (f *factory) prototype(name string) *Prototype[*item] {
	return NewPrototype(name, func() (*item, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.made++
		return &item{id: f.made}, nil
	})
}

func (f *factory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.made
}

// recorder is a spawn observer that appends to a shared journal.
type recorder struct {
	name    string
	journal *[]string
	tag     string
}

func (r *recorder) SetPoolTag(tag string) {
	r.tag = tag
	*r.journal = append(*r.journal, r.name+":tag="+tag)
}

func (r *recorder) OnSpawn() {
	*r.journal = append(*r.journal, r.name+":spawn")
}

// countingHooks tallies every event.
type countingHooks struct {
	mu          sync.Mutex
	created     map[string]int
	spawned     map[string]int
	released    map[string]int
	grew        map[string]int
	depth       map[string]int
	diagnostics map[errors.ErrorType]int
}

func newCountingHooks() *countingHooks {
	return &countingHooks{
		created:     map[string]int{},
		spawned:     map[string]int{},
		released:    map[string]int{},
		grew:        map[string]int{},
		depth:       map[string]int{},
		diagnostics: map[errors.ErrorType]int{},
	}
}

func (h *countingHooks) PoolCreated(tag string) { h.mu.Lock(); h.created[tag]++; h.mu.Unlock() }
func (h *countingHooks) Spawned(tag string)     { h.mu.Lock(); h.spawned[tag]++; h.mu.Unlock() }
func (h *countingHooks) Released(tag string)    { h.mu.Lock(); h.released[tag]++; h.mu.Unlock() }
func (h *countingHooks) Grew(tag string)        { h.mu.Lock(); h.grew[tag]++; h.mu.Unlock() }
func (h *countingHooks) Depth(tag string, n int) {
	h.mu.Lock()
	h.depth[tag] = n
	h.mu.Unlock()
}
func (h *countingHooks) Diagnostic(_ string, kind errors.ErrorType) {
	h.mu.Lock()
	h.diagnostics[kind]++
	h.mu.Unlock()
}

// newTestRegistry builds a registry whose log output is captured.
func newTestRegistry(t *testing.T, entries []Entry[*item], opts ...Option) (*Registry[*item], *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	return New(entries, opts...), logs
}

func warnings(logs *observer.ObservedLogs) int {
	return logs.FilterLevelExact(zapcore.WarnLevel).Len()
}

// queued returns the idle queue of tag in head-to-tail order.
func queued(r *Registry[*item], tag string) []*item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pools[tag].available.Items()
}
