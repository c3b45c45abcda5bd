package refid

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestGenerate_Format(t *testing.T) {
	g := NewGenerator()

	ref, err := g.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pattern := regexp.MustCompile(`^ID-\d{8}-[A-Z0-9]{4}$`)
	if !pattern.MatchString(ref) {
		t.Errorf("reference %q does not match ID-YYYYMMDD-XXXX", ref)
	}
}

func TestGenerate_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	g := NewGeneratorWithClock(func() time.Time { return fixed })

	ref, err := g.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(ref, "ID-20260315-") {
		t.Errorf("expected date segment 20260315, got %q", ref)
	}
}

func TestGenerate_LocalClockNormalizedToUTC(t *testing.T) {
	// Local date is March 16 but the UTC date is still March 15.
	loc := time.FixedZone("UTC+10", 10*3600)
	fixed := time.Date(2026, 3, 16, 8, 0, 0, 0, loc) // 2026-03-15T22:00:00Z
	g := NewGeneratorWithClock(func() time.Time { return fixed })

	ref, err := g.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(ref, "ID-20260315-") {
		t.Errorf("expected UTC date segment 20260315, got %q", ref)
	}
}

func TestGenerate_Varies(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ref, err := g.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[ref] = true
	}

	// 200 draws from a 36^4 space should essentially never all collide.
	if len(seen) < 2 {
		t.Errorf("expected varied references, got %d distinct out of 200", len(seen))
	}
}

func TestGenerate_RejectsBiasedBytes(t *testing.T) {
	fixed := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	g := NewGeneratorWithClock(func() time.Time { return fixed })

	// 252..255 sit above the largest multiple of the charset size and must
	// be redrawn, not folded back onto the first characters.
	feed := []byte{255, 254, 253, 252, 0, 1, 2, 3}
	g.read = func(b []byte) (int, error) {
		b[0] = feed[0]
		feed = feed[1:]
		return 1, nil
	}

	ref, err := g.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "ID-20260315-ABCD"; ref != want {
		t.Errorf("reference = %q, want %q", ref, want)
	}
	if len(feed) != 0 {
		t.Errorf("%d scripted bytes left unread", len(feed))
	}
}

func TestGenerate_ReadFailure(t *testing.T) {
	g := NewGenerator()
	g.read = func(b []byte) (int, error) {
		return 0, errRead
	}

	if _, err := g.Generate(); err == nil {
		t.Error("expected error when entropy source fails")
	}
}

var errRead = &readError{}

type readError struct{}

func (e *readError) Error() string { return "entropy exhausted" }
