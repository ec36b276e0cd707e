package intern

import (
	"crypto/sha256"
	"encoding/hex"
)

// Ref is a stable reference into a Pool, assigned in first-seen order
// starting at 0. Refs are only meaningful within the run that produced them.
type Ref int

// Entry is one pooled value together with its fingerprint.
type Entry struct {
	Ref         Ref
	Fingerprint string // first 16 hex chars of the canonical-form SHA-256
	Value       any
}

// Pool maps canonical value fingerprints to references. Entries are
// append-only for the lifetime of one analysis run.
type Pool struct {
	byHash  map[string]Ref // full digest -> ref
	entries []Entry
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{byHash: make(map[string]Ref)}
}

// Intern returns the reference for v, allocating one if this is the first
// structurally-equal value seen. Interning equal values always yields the
// same reference; distinct values never collide because lookup keys on the
// full digest.
func (p *Pool) Intern(v any) (Ref, error) {
	canonical, err := Canonicalize(v)
	if err != nil {
		return 0, err
	}
	sum := sha256.Sum256(canonical)
	digest := hex.EncodeToString(sum[:])
	if ref, ok := p.byHash[digest]; ok {
		return ref, nil
	}
	ref := Ref(len(p.entries))
	p.byHash[digest] = ref
	p.entries = append(p.entries, Entry{
		Ref:         ref,
		Fingerprint: digest[:16],
		Value:       v,
	})
	return ref, nil
}

// Lookup returns the entry for ref.
func (p *Pool) Lookup(ref Ref) (Entry, bool) {
	if ref < 0 || int(ref) >= len(p.entries) {
		return Entry{}, false
	}
	return p.entries[ref], true
}

// Entries returns all pooled entries in first-seen order. The returned slice
// is shared; callers must not mutate it.
func (p *Pool) Entries() []Entry { return p.entries }

// Len reports the number of distinct values interned.
func (p *Pool) Len() int { return len(p.entries) }
