package intern

import (
	"bytes"
	"testing"
)

func TestCanonicalizeKeyOrderIndependent(t *testing.T) {
	a, err := Canonicalize(map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Canonicalize(map[string]any{"a": 2, "b": 1})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("canonical forms differ: %s vs %s", a, b)
	}
	if string(a) != `{"a":2,"b":1}` {
		t.Errorf("canonical form = %s", a)
	}
}

func TestCanonicalizeNumberNormalization(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{1.0, "1"},
		{float64(120), "120"},
		{-3.5, "-3.5"},
		{0.25, "0.25"},
		{int64(7), "7"},
	}
	for _, tt := range tests {
		got, err := Canonicalize(tt.in)
		if err != nil {
			t.Fatalf("Canonicalize(%v): %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("Canonicalize(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalizeStructAndMapAgree(t *testing.T) {
	type payload struct {
		Gain float64 `json:"gain"`
		On   bool    `json:"on"`
	}
	a, err := Canonicalize(payload{Gain: 1.0, On: true})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Canonicalize(map[string]any{"on": true, "gain": 1})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("struct and map disagree: %s vs %s", a, b)
	}
}

func TestInternIdempotent(t *testing.T) {
	p := NewPool()
	r1, err := p.Intern(map[string]any{"freq": 120.0})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := p.Intern(map[string]any{"freq": 120})
	if err != nil {
		t.Fatal(err)
	}
	if r1 != r2 {
		t.Errorf("equal values got refs %d and %d", r1, r2)
	}
	if p.Len() != 1 {
		t.Errorf("pool length = %d, want 1", p.Len())
	}
}

func TestInternFirstSeenOrder(t *testing.T) {
	p := NewPool()
	values := []any{"alpha", "beta", "gamma"}
	for i, v := range values {
		ref, err := p.Intern(v)
		if err != nil {
			t.Fatal(err)
		}
		if int(ref) != i {
			t.Errorf("ref for %v = %d, want %d", v, ref, i)
		}
	}
	entries := p.Entries()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	for i, e := range entries {
		if int(e.Ref) != i {
			t.Errorf("entry %d has ref %d", i, e.Ref)
		}
		if len(e.Fingerprint) != 16 {
			t.Errorf("fingerprint %q, want 16 hex chars", e.Fingerprint)
		}
	}
}

func TestInternDistinctValuesDistinctRefs(t *testing.T) {
	p := NewPool()
	r1, _ := p.Intern(map[string]any{"gain": 0.0})
	r2, _ := p.Intern(map[string]any{"gain": 0.1})
	if r1 == r2 {
		t.Error("distinct values share a ref")
	}
}

func TestLookup(t *testing.T) {
	p := NewPool()
	ref, err := p.Intern("value")
	if err != nil {
		t.Fatal(err)
	}
	e, ok := p.Lookup(ref)
	if !ok || e.Value != "value" {
		t.Errorf("Lookup = %+v, %v", e, ok)
	}
	if _, ok := p.Lookup(Ref(99)); ok {
		t.Error("Lookup of absent ref succeeded")
	}
	if _, ok := p.Lookup(Ref(-1)); ok {
		t.Error("Lookup of negative ref succeeded")
	}
}

func TestCanonicalizeRejectsUnencodable(t *testing.T) {
	if _, err := Canonicalize(make(chan int)); err == nil {
		t.Fatal("expected error for unencodable value")
	}
}
