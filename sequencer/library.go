package sequencer

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrSnapshotNotFound is returned when no snapshot has the requested id
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is an immutable copy of a pattern and its tempo
type Snapshot struct {
	ID      int
	Name    string
	Pattern Pattern
	BPM     int
	Created time.Time
}

// Library is the in-memory, append-only list of saved snapshots
type Library struct {
	mu     sync.RWMutex
	snaps  []Snapshot
	nextID int
}

// NewLibrary creates an empty library
func NewLibrary() *Library {
	return &Library{nextID: 1}
}

// Save appends a snapshot; an empty name becomes "Pattern N" where N is the list length after append
// Names are not required to be unique
func (l *Library) Save(name string, p Pattern, bpm int) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	if name == "" {
		name = fmt.Sprintf("Pattern %d", len(l.snaps)+1)
	}
	s := Snapshot{
		ID:      l.nextID,
		Name:    name,
		Pattern: p,
		BPM:     bpm,
		Created: time.Now(),
	}
	l.nextID++
	l.snaps = append(l.snaps, s)
	return s
}

// Get returns the snapshot with id
func (l *Library) Get(id int) (Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.snaps {
		if s.ID == id {
			return s, nil
		}
	}
	return Snapshot{}, fmt.Errorf("%w: %d", ErrSnapshotNotFound, id)
}

// List returns all snapshots in save order
func (l *Library) List() []Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Snapshot, len(l.snaps))
	copy(out, l.snaps)
	return out
}

// Len returns the number of saved snapshots
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.snaps)
}
