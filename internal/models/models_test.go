package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{150, 2},
		{250, 3},
		{1000, 11},
		{-5, 1},
	}

	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Errorf("LevelForXP(%d) = %d; want %d", tt.xp, got, tt.want)
		}
	}
}

func TestUserProgress_AwardKeepsLevelDerived(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := NewUserProgress("user-1", start)

	if p.Level != 1 || p.XP != 0 || p.Streak != 1 || p.SolvedCount != 0 {
		t.Fatalf("unexpected initial progress: %+v", p)
	}

	later := start.Add(time.Hour)
	for _, amount := range []int{100, 150, 300} {
		p.Award(amount, later)
		if p.Level != p.XP/100+1 {
			t.Fatalf("level %d does not match xp %d", p.Level, p.XP)
		}
	}

	if p.XP != 550 {
		t.Errorf("XP = %d; want 550", p.XP)
	}
	if p.Level != 6 {
		t.Errorf("Level = %d; want 6", p.Level)
	}
	if p.SolvedCount != 3 {
		t.Errorf("SolvedCount = %d; want 3", p.SolvedCount)
	}
	if !p.LastActive.Equal(later) {
		t.Errorf("LastActive = %v; want %v", p.LastActive, later)
	}
}

func TestTestCaseList_ValueScan(t *testing.T) {
	cases := TestCaseList{{Input: "1, 2", Expected: "3"}}

	value, err := cases.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var decoded TestCaseList
	if err := decoded.Scan([]byte(value.(string))); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(decoded) != 1 || decoded[0].Expected != "3" {
		t.Errorf("decoded = %+v", decoded)
	}

	if err := decoded.Scan(42); err == nil {
		t.Error("Scan(int) error = nil; want error")
	}
}

func TestStringList_NilEncodesAsEmptyArray(t *testing.T) {
	var tags StringList
	value, err := tags.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if value != "[]" {
		t.Errorf("Value() = %v; want []", value)
	}
}

func TestProblem_HarnessHiddenFromJSON(t *testing.T) {
	p := Problem{Slug: "sum-of-two", Harness: HarnessMap{"python": {Driver: "print(sum(1, 2))"}}}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "print(sum") {
		t.Errorf("harness leaked into JSON: %s", data)
	}

	var missing HarnessMap
	if err := missing.Scan(nil); err != nil || missing != nil {
		t.Errorf("Scan(nil) = %v, %v; want nil map", missing, err)
	}
}

func TestStatusFor(t *testing.T) {
	if StatusFor(true) != StatusPassed {
		t.Error("StatusFor(true) != Passed")
	}
	if StatusFor(false) != StatusFailed {
		t.Error("StatusFor(false) != Failed")
	}
}
