package session

import "sync"

// KeyedMutex serializes reply handling per student while leaving distinct
// students free to run concurrently. All three activities read-modify-write
// the same conceptual per-student turn, so the router takes this lock before
// touching any state machine.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*studentLock
}

type studentLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex constructs an empty per-student lock set.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*studentLock)}
}

// Lock acquires the lock for the given student and returns its release
// function. Lock entries are reclaimed once the last holder releases.
func (k *KeyedMutex) Lock(studentID int64) func() {
	k.mu.Lock()
	entry, ok := k.locks[studentID]
	if !ok {
		entry = &studentLock{}
		k.locks[studentID] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, studentID)
		}
		k.mu.Unlock()
	}
}
