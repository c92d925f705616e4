package session

import (
	"reflect"
	"testing"

	"github.com/abrezinsky/mvpboard/internal/models"
	"github.com/abrezinsky/mvpboard/internal/pool"
)

func TestNew_SeedsDefaults(t *testing.T) {
	s := New()

	if s.UID() != "" {
		t.Error("expected no uid on a fresh session")
	}
	if !reflect.DeepEqual(s.Names(), DefaultNames) {
		t.Errorf("expected default names, got %v", s.Names())
	}
	if s.ShuffleSeconds() != DefaultShuffleSeconds {
		t.Errorf("expected default shuffle seconds, got %d", s.ShuffleSeconds())
	}
	if len(s.Entries(models.GlobalScope())) != 0 {
		t.Error("expected empty default ledger")
	}
}

func TestReset_RestoresDefaults(t *testing.T) {
	s := New()
	s.SetUID("uid-1")
	s.SetNames([]string{"Alice"})
	s.SetActiveWinner("Alice")
	s.SetShuffleSeconds(9)

	s.Reset()

	if s.UID() != "" || s.FixedWinner() != "" {
		t.Error("expected reset to clear uid and winner")
	}
	if !reflect.DeepEqual(s.Names(), DefaultNames) {
		t.Error("expected reset to restore default names")
	}
	if s.ShuffleSeconds() != DefaultShuffleSeconds {
		t.Error("expected reset to restore shuffle seconds")
	}
}

func TestSetNames_EmptyFallsBackToDefaults(t *testing.T) {
	s := New()

	s.SetNames(nil)

	if !reflect.DeepEqual(s.Names(), DefaultNames) {
		t.Errorf("expected default names for empty input, got %v", s.Names())
	}
}

func TestDisplayWidth_StickyAcrossSelection(t *testing.T) {
	s := New()
	s.SetNames([]string{"Charlotte-Anne", "Bo"})
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A", Students: []string{"Al", "Bo"}}})

	globalWidth := s.DisplayWidth()
	if globalWidth != len("Charlotte-Anne") {
		t.Fatalf("expected width %d, got %d", len("Charlotte-Anne"), globalWidth)
	}

	s.SelectClass("c1")
	if got := s.DisplayWidth(); got != globalWidth {
		t.Errorf("expected class selection to keep width %d, got %d", globalWidth, got)
	}
}

func TestDisplayWidth_Floor(t *testing.T) {
	s := New()
	s.SetNames([]string{"Al", "Bo"})

	if got := s.DisplayWidth(); got != pool.MinDisplayWidth {
		t.Errorf("expected floor width %d, got %d", pool.MinDisplayWidth, got)
	}
}

func TestActivePool_FollowsSelection(t *testing.T) {
	s := New()
	s.SetNames([]string{"Alice", "Bob"})
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A", Students: []string{" Carol ", ""}}})

	if got := s.ActivePool(); !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Errorf("expected global pool, got %v", got)
	}

	s.SelectClass("c1")
	if got := s.ActivePool(); !reflect.DeepEqual(got, []string{"Carol"}) {
		t.Errorf("expected resolved roster, got %v", got)
	}
}

func TestSetActiveWinner_MirrorsIntoSelectedClass(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A", Students: []string{"Alice"}}})
	s.SelectClass("c1")

	s.SetActiveWinner("  Alice  ")

	if s.FixedWinner() != "Alice" {
		t.Errorf("expected trimmed winner, got %q", s.FixedWinner())
	}
	if c := s.Class("c1"); c.CurrentWinner != "Alice" {
		t.Errorf("expected class winner to mirror, got %q", c.CurrentWinner)
	}
}

func TestSetClassWinner_UpdatesActiveWhenSelected(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A"}, {ID: "c2", Name: "3B"}})
	s.SelectClass("c1")

	s.SetClassWinner("c2", "Bob")
	if s.FixedWinner() != "" {
		t.Error("expected unselected class winner not to affect active winner")
	}

	s.SetClassWinner("c1", "Alice")
	if s.FixedWinner() != "Alice" {
		t.Errorf("expected active winner to follow selected class, got %q", s.FixedWinner())
	}
}

func TestSelectClass(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A"}})

	if !s.SelectClass("c1") {
		t.Error("expected known class to be selectable")
	}
	if s.SelectedClassID() != "c1" {
		t.Errorf("expected selection c1, got %q", s.SelectedClassID())
	}
	if s.SelectClass("nope") {
		t.Error("expected unknown class to be rejected")
	}
	if !s.SelectClass("") {
		t.Error("expected empty id to select the global scope")
	}
	if s.SelectedClass() != nil {
		t.Error("expected no selected class after deselect")
	}
}

func TestActiveScope(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A"}})

	if !s.ActiveScope().IsGlobal() {
		t.Error("expected global scope by default")
	}
	s.SelectClass("c1")
	if s.ActiveScope().ClassID() != "c1" {
		t.Errorf("expected class scope, got %v", s.ActiveScope())
	}
}

func TestSetClasses_SelectionFallback(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A"}, {ID: "c2", Name: "3B"}})
	s.SelectClass("c2")

	// Selected class disappears, falls back to the first remaining one
	changed := s.SetClasses([]models.Class{{ID: "c1", Name: "3A"}})
	if !changed {
		t.Error("expected selection change to be reported")
	}
	if s.SelectedClassID() != "c1" {
		t.Errorf("expected fallback to c1, got %q", s.SelectedClassID())
	}

	// All classes gone, back to global
	changed = s.SetClasses(nil)
	if !changed || s.SelectedClassID() != "" {
		t.Errorf("expected fallback to global scope, changed=%v selected=%q", changed, s.SelectedClassID())
	}

	// Selection intact means no change reported
	s.SetClasses([]models.Class{{ID: "c3", Name: "4A"}})
	if s.SetClasses([]models.Class{{ID: "c3", Name: "4A"}}) {
		t.Error("expected no selection change when nothing was selected")
	}
}

func TestClasses_ReturnsCopies(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A", Students: []string{"Alice"}}})

	got := s.Classes()
	got[0].Students[0] = "mutated"

	if s.Class("c1").Students[0] != "Alice" {
		t.Error("expected internal roster to be isolated from returned copy")
	}
}

func TestUpdateClassStudents(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A"}})

	if !s.UpdateClassStudents("c1", []string{"Alice"}) {
		t.Error("expected update of known class to succeed")
	}
	if got := s.Class("c1").Students; !reflect.DeepEqual(got, []string{"Alice"}) {
		t.Errorf("expected updated roster, got %v", got)
	}
	if s.UpdateClassStudents("nope", []string{"Alice"}) {
		t.Error("expected update of unknown class to fail")
	}
}

func TestRemoveClass(t *testing.T) {
	s := New()
	s.SetClasses([]models.Class{{ID: "c1", Name: "3A"}, {ID: "c2", Name: "3B"}})
	s.SelectClass("c1")
	s.AppendEntry(models.ClassScope("c1"), models.RankingEntry{Name: "Alice", TS: 1})

	s.RemoveClass("c1")

	if s.Class("c1") != nil {
		t.Error("expected class to be removed")
	}
	if s.SelectedClassID() != "c2" {
		t.Errorf("expected selection to fall back to c2, got %q", s.SelectedClassID())
	}
	if _, ok := s.RankingStore()[models.ClassScope("c1").Key()]; ok {
		t.Error("expected class ledger scope to be dropped")
	}

	s.RemoveClass("c2")
	if s.SelectedClassID() != "" {
		t.Error("expected selection to fall back to global scope")
	}
}

func TestLedgerOperations(t *testing.T) {
	s := New()
	scope := models.GlobalScope()

	s.AppendEntry(scope, models.RankingEntry{Name: "Alice", TS: 1})
	s.AppendEntry(scope, models.RankingEntry{Name: "Bob", TS: 2})

	if got := s.Entries(scope); len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if s.TotalEntries() != 2 {
		t.Errorf("expected total 2, got %d", s.TotalEntries())
	}

	if !s.RemoveEntry(scope, 1) {
		t.Error("expected removal of existing ts to succeed")
	}
	if s.RemoveEntry(scope, 99) {
		t.Error("expected removal of missing ts to fail")
	}
	if got := s.Entries(scope); len(got) != 1 || got[0].Name != "Bob" {
		t.Errorf("expected only Bob to remain, got %v", got)
	}

	s.ClearScope(scope)
	if len(s.Entries(scope)) != 0 {
		t.Error("expected scope to be cleared")
	}
	if _, ok := s.RankingStore()[scope.Key()]; !ok {
		t.Error("expected cleared scope key to survive")
	}
}

func TestReplaceRankingStore_KeepsDefaultKey(t *testing.T) {
	s := New()

	s.ReplaceRankingStore(map[string][]models.RankingEntry{
		"class:c1": {{Name: "Alice", TS: 1}},
	})

	store := s.RankingStore()
	if _, ok := store[models.GlobalScope().Key()]; !ok {
		t.Error("expected default scope key to be recreated")
	}
	if len(store["class:c1"]) != 1 {
		t.Errorf("expected class scope to be kept, got %v", store)
	}
}

func TestPruneClassScopes(t *testing.T) {
	s := New()
	s.AppendEntry(models.ClassScope("c1"), models.RankingEntry{Name: "Alice", TS: 1})
	s.AppendEntry(models.ClassScope("c2"), models.RankingEntry{Name: "Bob", TS: 2})

	s.PruneClassScopes(map[string]bool{"c1": true})

	store := s.RankingStore()
	if _, ok := store["class:c1"]; !ok {
		t.Error("expected kept class scope to survive")
	}
	if _, ok := store["class:c2"]; ok {
		t.Error("expected pruned class scope to be dropped")
	}
	if _, ok := store[models.GlobalScope().Key()]; !ok {
		t.Error("expected default scope to be untouched")
	}
}

func TestSetShuffleSeconds_Clamps(t *testing.T) {
	s := New()

	if got := s.SetShuffleSeconds(0); got != MinShuffleSeconds {
		t.Errorf("expected clamp to %d, got %d", MinShuffleSeconds, got)
	}
	if got := s.SetShuffleSeconds(99); got != MaxShuffleSeconds {
		t.Errorf("expected clamp to %d, got %d", MaxShuffleSeconds, got)
	}
	if got := s.SetShuffleSeconds(7); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
}
