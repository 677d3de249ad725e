package core

import (
	"testing"
)

func TestHashAny_TypedMapStringString_IsStable(t *testing.T) {
	a := map[string]string{"b": "2", "a": "1", "c": "3"}
	b := map[string]string{"c": "3", "b": "2", "a": "1"}
	ha := HashAny(a)
	hb := HashAny(b)
	if ha != hb {
		t.Fatalf("expected stable hash for typed maps, got %s vs %s", ha, hb)
	}
}

func TestHashAny_MapStringAny_IsStable(t *testing.T) {
	a := map[string]any{"x": 1.0, "y": "2", "z": true}
	b := map[string]any{"z": true, "y": "2", "x": 1.0}
	ha := HashAny(a)
	hb := HashAny(b)
	if ha != hb {
		t.Fatalf("expected stable hash for map[string]any, got %s vs %s", ha, hb)
	}
}

func TestHashAny_NestedTypedMaps_AreStable(t *testing.T) {
	a := map[string]map[string]string{"outer": {"b": "2", "a": "1"}}
	b := map[string]map[string]string{"outer": {"a": "1", "b": "2"}}
	ha := HashAny(a)
	hb := HashAny(b)
	if ha != hb {
		t.Fatalf("expected stable hash for nested typed maps, got %s vs %s", ha, hb)
	}
}

func TestHashAny_SliceOrder_Matters(t *testing.T) {
	a := []any{"a", "b"}
	b := []any{"b", "a"}
	if HashAny(a) == HashAny(b) {
		t.Fatal("expected slice order to change the hash")
	}
}
