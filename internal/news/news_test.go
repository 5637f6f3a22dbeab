package news

import (
	"testing"
	"time"

	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

func TestCacheReturnsFreshEntries(t *testing.T) {
	c := newHeadlineCache(time.Hour)
	want := []types.Headline{{Title: "Sensex gains 500 points"}}

	c.set("nifty", want)

	got, ok := c.get("nifty")
	if !ok || len(got) != 1 || got[0].Title != want[0].Title {
		t.Errorf("expected cached headlines back, got %v (ok=%v)", got, ok)
	}
	if _, ok := c.get("banknifty"); ok {
		t.Error("unexpected hit for a query never cached")
	}
}

func TestCacheExpires(t *testing.T) {
	base := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	nowFn = func() time.Time { return base }
	defer func() { nowFn = time.Now }()

	c := newHeadlineCache(15 * time.Minute)
	c.set("nifty", []types.Headline{{Title: "old"}})

	nowFn = func() time.Time { return base.Add(16 * time.Minute) }
	if _, ok := c.get("nifty"); ok {
		t.Error("entry older than the TTL must miss")
	}
}

func TestCacheEvictsExpiredOnSet(t *testing.T) {
	base := time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
	nowFn = func() time.Time { return base }
	defer func() { nowFn = time.Now }()

	c := newHeadlineCache(15 * time.Minute)
	c.set("stale", []types.Headline{{Title: "old"}})

	nowFn = func() time.Time { return base.Add(time.Hour) }
	c.set("fresh", []types.Headline{{Title: "new"}})

	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, exists := c.data["stale"]; exists {
		t.Error("expired entries should be evicted on set")
	}
}

func TestCleanTitle(t *testing.T) {
	cases := map[string]string{
		"RBI holds rates steady - The Economic Times": "RBI holds rates steady",
		"Markets rally":                               "Markets rally",
	}
	for in, want := range cases {
		if got := cleanTitle(in); got != want {
			t.Errorf("cleanTitle(%q) = %q, want %q", in, got, want)
		}
	}
}
