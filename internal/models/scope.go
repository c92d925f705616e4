package models

import "strings"

const (
	globalScopeKey   = "default"
	classScopePrefix = "class:"
)

// Scope is the partition key under which ranking history and the preset
// winner are kept. It is either the global scope or a specific class,
// modeled as a tagged value so storage keys are built in exactly one place.
type Scope struct {
	classID string
}

// GlobalScope returns the scope used when no class is selected.
func GlobalScope() Scope {
	return Scope{}
}

// ClassScope returns the scope for a specific class. An empty id yields
// the global scope.
func ClassScope(classID string) Scope {
	return Scope{classID: classID}
}

// IsGlobal reports whether this is the global (no-class) scope.
func (s Scope) IsGlobal() bool {
	return s.classID == ""
}

// ClassID returns the class id for class scopes, or "" for the global scope.
func (s Scope) ClassID() string {
	return s.classID
}

// Key returns the storage key: "default" or "class:<id>".
func (s Scope) Key() string {
	if s.classID == "" {
		return globalScopeKey
	}
	return classScopePrefix + s.classID
}

// ParseScopeKey converts a storage key back into a Scope. Unrecognized
// keys map to the global scope.
func ParseScopeKey(key string) Scope {
	if rest, ok := strings.CutPrefix(key, classScopePrefix); ok && rest != "" {
		return Scope{classID: rest}
	}
	return Scope{}
}

// IsClassScopeKey reports whether key names a per-class scope.
func IsClassScopeKey(key string) bool {
	return strings.HasPrefix(key, classScopePrefix)
}
