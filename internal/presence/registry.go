package presence

import (
	"errors"
	"sort"
)

// ErrAlreadyRegistered is returned when a connection id is registered twice.
var ErrAlreadyRegistered = errors.New("connection already registered")

type entry struct {
	seq    uint64
	record Record
}

// Registry maps live connections to their presence records.
//
// Registry is not safe for concurrent use. It is owned by a single goroutine
// (core.Hub) which serializes every operation.
type Registry struct {
	alloc   *Allocator
	entries map[string]*entry
	nextSeq uint64
}

// NewRegistry creates an empty registry. A nil allocator uses defaults.
func NewRegistry(alloc *Allocator) *Registry {
	if alloc == nil {
		alloc = NewAllocator(AllocatorOptions{})
	}
	return &Registry{
		alloc:   alloc,
		entries: make(map[string]*entry),
	}
}

// Register allocates an identity for connID and inserts a record with zero intensity.
func (r *Registry) Register(connID string) (Record, error) {
	if _, exists := r.entries[connID]; exists {
		return Record{}, ErrAlreadyRegistered
	}
	userID, color, pos := r.alloc.Allocate()
	rec := Record{
		UserID:       userID,
		ConnectionID: connID,
		Color:        color,
		Position:     pos,
	}
	r.nextSeq++
	r.entries[connID] = &entry{seq: r.nextSeq, record: rec}
	return rec, nil
}

// Get returns the record for connID if present.
func (r *Registry) Get(connID string) (Record, bool) {
	e, ok := r.entries[connID]
	if !ok {
		return Record{}, false
	}
	return e.record, true
}

// Remove deletes the record for connID. Removing an unknown connection is a no-op.
func (r *Registry) Remove(connID string) (Record, bool) {
	e, ok := r.entries[connID]
	if !ok {
		return Record{}, false
	}
	delete(r.entries, connID)
	return e.record, true
}

// Snapshot returns every live record in join order.
func (r *Registry) Snapshot() []Record {
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.record)
	}
	return records
}

// ApplyIntensity clamps raw and stores it on connID's record, returning the
// stored value. It reports false, and changes nothing, when connID is unknown.
func (r *Registry) ApplyIntensity(connID string, raw float64) (float64, bool) {
	e, ok := r.entries[connID]
	if !ok {
		return 0, false
	}
	applied := Clamp(raw)
	e.record.Intensity = applied
	return applied, true
}

// Len reports the number of live records.
func (r *Registry) Len() int {
	return len(r.entries)
}
