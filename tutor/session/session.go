// Package session holds the in-memory turn state for every student.
// A record exists exactly while the student has an unanswered prompt in
// one activity; it is created on activity start, mutated on a failed
// attempt, and removed the moment the turn is resolved.
package session

import "sync"

// Activity identifies one of the learning modes a student can be in.
type Activity string

const (
	// ActivityReading is the attempt-limited reading comprehension drill.
	ActivityReading Activity = "reading"
	// ActivityOpen is the open-ended reflective reading exchange.
	ActivityOpen Activity = "open"
	// ActivityVocab is the vocabulary drill.
	ActivityVocab Activity = "vocab"
)

// Record tracks a student's current unanswered turn within one activity.
type Record struct {
	StudentID int64
	Question  string
	// Passage is set for reading comprehension only.
	Passage string
	// Attempt counts answer attempts on the current question, starting at 1.
	Attempt int
}

type recordKey struct {
	activity Activity
	student  int64
}

// Store owns all session records, keyed by (activity, student).
// Callers borrow snapshots for the duration of one reply-handling
// operation; all mutations go through Store methods.
type Store struct {
	mu      sync.RWMutex
	records map[recordKey]*Record
}

// NewStore constructs an empty session store.
func NewStore() *Store {
	return &Store{records: make(map[recordKey]*Record)}
}

// Get returns a snapshot of the student's record in the given activity.
func (s *Store) Get(activity Activity, studentID int64) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{activity, studentID}]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Put creates or replaces the student's record in the given activity.
func (s *Store) Put(activity Activity, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := rec
	s.records[recordKey{activity, rec.StudentID}] = &stored
}

// Remove deletes the student's record in the given activity, if any.
func (s *Store) Remove(activity Activity, studentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, recordKey{activity, studentID})
}

// Active reports whether the student has an unanswered turn in the activity.
func (s *Store) Active(activity Activity, studentID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[recordKey{activity, studentID}]
	return ok
}

// BumpAttempt increments the attempt counter in place and returns the new
// value. It returns 0 when no record exists.
func (s *Store) BumpAttempt(activity Activity, studentID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordKey{activity, studentID}]
	if !ok {
		return 0
	}
	rec.Attempt++
	return rec.Attempt
}

// ClearStudent removes the student's records across all activities.
// Starting a new activity calls this first so a student is never left
// with two open turns of different types.
func (s *Store) ClearStudent(studentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.records {
		if key.student == studentID {
			delete(s.records, key)
		}
	}
}

// Len reports the number of open turns in the given activity.
func (s *Store) Len(activity Activity) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for key := range s.records {
		if key.activity == activity {
			n++
		}
	}
	return n
}
