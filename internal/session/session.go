// Package session holds the mutable state of the active board session:
// the global name list, the preset winner, loaded classes, the current
// selection, and the ranking store. It replaces ambient globals with an
// explicit object created at sign-in and torn down at sign-out; all
// persistence is coordinated by the services layer, never here.
package session

import (
	"strings"
	"sync"

	"github.com/abrezinsky/mvpboard/internal/models"
	"github.com/abrezinsky/mvpboard/internal/pool"
)

// DefaultNames seeds a fresh session before any list is configured.
var DefaultNames = []string{
	"Oscar", "Lando", "Max", "George", "Charles",
	"Lewis", "Kimi", "Alexander", "Isack", "Nico",
	"Lance", "Carlos", "Liam", "Fernando", "Esteban",
	"Pierre", "Yuki", "Gabriel", "Oliver", "Franco",
}

const (
	MinShuffleSeconds     = 1
	MaxShuffleSeconds     = 10
	DefaultShuffleSeconds = 5
)

// State is the session-state object. Safe for concurrent use.
type State struct {
	mu sync.RWMutex

	uid            string
	names          []string
	stickyMax      int
	fixedWinner    string
	defaultWinner  string
	classes        []models.Class
	selectedClass  string
	rankingStore   map[string][]models.RankingEntry
	shuffleSeconds int
}

// New creates a session seeded with the default name list.
func New() *State {
	s := &State{}
	s.reset()
	return s
}

func (s *State) reset() {
	s.uid = ""
	s.names = append([]string(nil), DefaultNames...)
	s.stickyMax = pool.MaxNameLen(s.names)
	s.fixedWinner = ""
	s.defaultWinner = ""
	s.classes = nil
	s.selectedClass = ""
	s.rankingStore = map[string][]models.RankingEntry{
		models.GlobalScope().Key(): {},
	}
	s.shuffleSeconds = DefaultShuffleSeconds
}

// Reset returns the session to signed-out defaults.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// UID returns the signed-in user's id, or "" when signed out.
func (s *State) UID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uid
}

// SetUID records the signed-in user.
func (s *State) SetUID(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uid = uid
}

// Names returns a copy of the global name list.
func (s *State) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

// SetNames replaces the global name list and recomputes the sticky
// maximum name length used for the board width.
func (s *State) SetNames(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		names = DefaultNames
	}
	s.names = append([]string(nil), names...)
	s.stickyMax = pool.MaxNameLen(s.names)
}

// ActivePool resolves the current pool: the selected class roster when
// a class is selected, the global name list otherwise.
func (s *State) ActivePool() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pool.Resolve(s.activeSourceLocked())
}

func (s *State) activeSourceLocked() []string {
	if s.selectedClass != "" {
		if c := s.classLocked(s.selectedClass); c != nil {
			return c.Students
		}
		return nil
	}
	return s.names
}

// DisplayWidth returns the fixed board width for the active pool.
func (s *State) DisplayWidth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pool.DisplayWidth(pool.Resolve(s.activeSourceLocked()), s.stickyMax)
}

// FixedWinner returns the preset winner for the active scope, or "".
func (s *State) FixedWinner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixedWinner
}

// SetActiveWinner stores the preset winner for the active scope,
// mirroring it into the selected class entry when one is selected.
// Empty or blank names clear the winner.
func (s *State) SetActiveWinner(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixedWinner = strings.TrimSpace(name)
	if s.selectedClass != "" {
		if c := s.classLocked(s.selectedClass); c != nil {
			c.CurrentWinner = s.fixedWinner
		}
	}
}

// DefaultWinner returns the remembered global preset, restored when a
// class is deselected.
func (s *State) DefaultWinner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultWinner
}

// SetDefaultWinner remembers the global preset winner.
func (s *State) SetDefaultWinner(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultWinner = strings.TrimSpace(name)
}

// Classes returns a copy of the loaded classes.
func (s *State) Classes() []models.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Class, len(s.classes))
	for i, c := range s.classes {
		out[i] = copyClass(c)
	}
	return out
}

// SetClasses replaces the loaded classes. If the current selection is no
// longer present it falls back to the first class, or to the global
// scope when none remain. Reports whether the selection changed.
func (s *State) SetClasses(classes []models.Class) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes = make([]models.Class, len(classes))
	for i, c := range classes {
		s.classes[i] = copyClass(c)
	}
	if s.selectedClass != "" && s.classLocked(s.selectedClass) == nil {
		if len(s.classes) > 0 {
			s.selectedClass = s.classes[0].ID
		} else {
			s.selectedClass = ""
		}
		return true
	}
	return false
}

// Class returns a copy of the class with the given id, or nil.
func (s *State) Class(id string) *models.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.classLocked(id); c != nil {
		out := copyClass(*c)
		return &out
	}
	return nil
}

func (s *State) classLocked(id string) *models.Class {
	for i := range s.classes {
		if s.classes[i].ID == id {
			return &s.classes[i]
		}
	}
	return nil
}

// SelectedClass returns a copy of the selected class, or nil when the
// global scope is active.
func (s *State) SelectedClass() *models.Class {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedClass == "" {
		return nil
	}
	if c := s.classLocked(s.selectedClass); c != nil {
		out := copyClass(*c)
		return &out
	}
	return nil
}

// SelectedClassID returns the selected class id, or "".
func (s *State) SelectedClassID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedClass
}

// SelectClass switches the active scope. Selecting "" activates the
// global scope. Reports whether the id named a loaded class (or "").
func (s *State) SelectClass(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.selectedClass = ""
		return true
	}
	if s.classLocked(id) == nil {
		return false
	}
	s.selectedClass = id
	return true
}

// ActiveScope returns the scope for the current selection.
func (s *State) ActiveScope() models.Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ClassScope(s.selectedClass)
}

// UpdateClassStudents replaces a class roster in memory.
func (s *State) UpdateClassStudents(id string, students []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.classLocked(id)
	if c == nil {
		return false
	}
	c.Students = append([]string(nil), students...)
	return true
}

// SetClassWinner records a class's current winner in memory.
func (s *State) SetClassWinner(id, winner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	winner = strings.TrimSpace(winner)
	if c := s.classLocked(id); c != nil {
		c.CurrentWinner = winner
	}
	if s.selectedClass == id {
		s.fixedWinner = winner
	}
}

// RemoveClass drops a class and its ranking scope. The selection falls
// back to the first remaining class, or the global scope.
func (s *State) RemoveClass(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.classes[:0]
	for _, c := range s.classes {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.classes = kept
	delete(s.rankingStore, models.ClassScope(id).Key())
	if s.selectedClass == id {
		if len(s.classes) > 0 {
			s.selectedClass = s.classes[0].ID
		} else {
			s.selectedClass = ""
		}
	}
}

// Entries returns a copy of the ledger for a scope.
func (s *State) Entries(scope models.Scope) []models.RankingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.RankingEntry(nil), s.rankingStore[scope.Key()]...)
}

// SetEntries replaces the ledger for a scope.
func (s *State) SetEntries(scope models.Scope, entries []models.RankingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankingStore[scope.Key()] = append([]models.RankingEntry(nil), entries...)
}

// AppendEntry pushes a ledger entry under a scope.
func (s *State) AppendEntry(scope models.Scope, entry models.RankingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scope.Key()
	s.rankingStore[key] = append(s.rankingStore[key], entry)
}

// RemoveEntry deletes the first entry with an exact ts match in a scope.
func (s *State) RemoveEntry(scope models.Scope, ts int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := scope.Key()
	list := s.rankingStore[key]
	for i, e := range list {
		if e.TS == ts {
			s.rankingStore[key] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// ClearScope empties the ledger for a scope without removing the key.
func (s *State) ClearScope(scope models.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankingStore[scope.Key()] = []models.RankingEntry{}
}

// RankingStore returns a deep copy of the whole store.
func (s *State) RankingStore() map[string][]models.RankingEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]models.RankingEntry, len(s.rankingStore))
	for k, v := range s.rankingStore {
		out[k] = append([]models.RankingEntry(nil), v...)
	}
	return out
}

// ReplaceRankingStore swaps in a normalized store, guaranteeing the
// default scope key survives.
func (s *State) ReplaceRankingStore(store map[string][]models.RankingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankingStore = make(map[string][]models.RankingEntry, len(store)+1)
	for k, v := range store {
		s.rankingStore[k] = append([]models.RankingEntry(nil), v...)
	}
	if _, ok := s.rankingStore[models.GlobalScope().Key()]; !ok {
		s.rankingStore[models.GlobalScope().Key()] = []models.RankingEntry{}
	}
}

// PruneClassScopes drops every per-class ledger whose class id is not
// in keep. Used after a store refresh when classes disappeared remotely.
func (s *State) PruneClassScopes(keep map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.rankingStore {
		if models.IsClassScopeKey(key) && !keep[models.ParseScopeKey(key).ClassID()] {
			delete(s.rankingStore, key)
		}
	}
}

// TotalEntries counts ledger entries across all scopes (the MVP count).
func (s *State) TotalEntries() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, entries := range s.rankingStore {
		total += len(entries)
	}
	return total
}

// ShuffleSeconds returns the configured shuffle duration.
func (s *State) ShuffleSeconds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuffleSeconds
}

// SetShuffleSeconds stores the shuffle duration, clamped to [1,10].
func (s *State) SetShuffleSeconds(seconds int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds < MinShuffleSeconds {
		seconds = MinShuffleSeconds
	}
	if seconds > MaxShuffleSeconds {
		seconds = MaxShuffleSeconds
	}
	s.shuffleSeconds = seconds
	return s.shuffleSeconds
}

func copyClass(c models.Class) models.Class {
	c.Students = append([]string(nil), c.Students...)
	return c
}
