package msgstore

// ScopeKind discriminates the closed set of import scopes.
type ScopeKind int

const (
	// KindIncremental fetches rows beyond the contact's progress cursor.
	KindIncremental ScopeKind = iota
	// KindAll fetches the full history, ignoring the cursor.
	KindAll
	// KindLastNDays fetches rows whose store date falls within the last N
	// days, ignoring the cursor.
	KindLastNDays
	// KindNone fetches nothing and issues no query.
	KindNone
)

// ImportScope bounds which rows a fetch considers. Use the constructors;
// the zero value is Incremental.
type ImportScope struct {
	Kind ScopeKind
	Days int
}

// Incremental returns the cursor-bounded scope used by scheduled runs.
func Incremental() ImportScope { return ImportScope{Kind: KindIncremental} }

// All returns the full-history scope.
func All() ImportScope { return ImportScope{Kind: KindAll} }

// LastNDays returns a scope bounded to the last n days of store time.
func LastNDays(n int) ImportScope { return ImportScope{Kind: KindLastNDays, Days: n} }

// None returns the scope that fetches nothing.
func None() ImportScope { return ImportScope{Kind: KindNone} }
