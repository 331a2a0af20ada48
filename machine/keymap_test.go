package machine

import (
	"testing"

	"golang.org/x/mobile/event/key"
)

func TestKeyForRune(t *testing.T) {
	seen := map[byte]bool{}
	for _, r := range "1234qwerasdfzxcv" {
		k, ok := KeyForRune(r)
		if !ok {
			t.Errorf("no key for %q", r)
			continue
		}
		if seen[k] {
			t.Errorf("key %x mapped twice", k)
		}
		seen[k] = true
	}
	if len(seen) != 16 {
		t.Errorf("layout covers %d keys, want 16", len(seen))
	}
	for r, want := range map[rune]byte{'x': 0x0, 'V': 0xf, '4': 0xc, 'Q': 0x4} {
		if k, ok := KeyForRune(r); !ok || k != want {
			t.Errorf("KeyForRune(%q) = %x, %v, want %x", r, k, ok, want)
		}
	}
	for _, r := range "5pP \n" {
		if k, ok := KeyForRune(r); ok {
			t.Errorf("KeyForRune(%q) = %x, want none", r, k)
		}
	}
}

func TestKeyForCode(t *testing.T) {
	for _, l := range layout {
		k, ok := keyForCode(l.code)
		if !ok || k != l.key {
			t.Errorf("keyForCode(%v) = %x, %v, want %x", l.code, k, ok, l.key)
		}
		if rk, _ := KeyForRune(l.r); rk != k {
			t.Errorf("%q and %v map to different keys", l.r, l.code)
		}
	}
	if _, ok := keyForCode(key.CodeEscape); ok {
		t.Error("escape mapped to a key")
	}
}
