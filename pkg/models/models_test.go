package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// ── Game Tests ──

func TestGamePlayers(t *testing.T) {
	g := Game{Team1: [2]string{"a", "b"}, Team2: [2]string{"c", "d"}}
	got := g.Players()
	want := []string{"a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Players: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Players[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGameMembership(t *testing.T) {
	g := Game{Team1: [2]string{"a", "b"}, Team2: [2]string{"c", "d"}}
	tests := []struct {
		id     string
		team1  bool
		played bool
	}{
		{"a", true, true},
		{"b", true, true},
		{"c", false, true},
		{"d", false, true},
		{"e", false, false},
	}
	for _, tt := range tests {
		if got := g.InTeam1(tt.id); got != tt.team1 {
			t.Errorf("InTeam1(%q): got %v, want %v", tt.id, got, tt.team1)
		}
		if got := g.Has(tt.id); got != tt.played {
			t.Errorf("Has(%q): got %v, want %v", tt.id, got, tt.played)
		}
	}
}

// ── Wire Names ──

func TestGameRowJSON(t *testing.T) {
	row := GameRow{
		ID:         "g1",
		Date:       "09.03.2024",
		Team1Score: 6,
		Team2Score: 3,
		Players:    []GameRowPlayer{{Name: "Anna", RatingDiff: "+16", PointsRatingDiff: "+9"}},
	}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("json.Marshal(GameRow) error: %v", err)
	}
	for _, key := range []string{`"datetime":"09.03.2024"`, `"team1score":6`, `"team2score":3`, `"rating_diff":"+16"`, `"rounds_rating_diff":"+9"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("GameRow JSON missing %s: %s", key, data)
		}
	}
}
