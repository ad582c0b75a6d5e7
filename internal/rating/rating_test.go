package rating

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Elo formulas
// ════════════════════════════════════════════════════════════════════

func TestExpectedResult(t *testing.T) {
	tests := []struct {
		p1, p2 float64
		want   float64
	}{
		{1000, 1000, 0.5},
		{1400, 1000, 1 / (1 + math.Pow(10, -1))},
		{1000, 1400, 1 / (1 + 10.0)},
	}
	for _, tt := range tests {
		if got := ExpectedResult(tt.p1, tt.p2); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ExpectedResult(%v, %v): got %v, want %v", tt.p1, tt.p2, got, tt.want)
		}
	}
	if s := ExpectedResult(1100, 1000) + ExpectedResult(1000, 1100); math.Abs(s-1) > 1e-12 {
		t.Errorf("expectations should sum to 1, got %v", s)
	}
}

func TestResult(t *testing.T) {
	tests := []struct {
		name     string
		own, opp int
		raw      bool
		want     float64
	}{
		{"raw win", 6, 4, true, 1},
		{"raw loss", 4, 6, true, 0},
		{"raw tie", 5, 5, true, 0.5},
		{"points share", 6, 4, false, 0.6},
		{"points shutout", 0, 6, false, 0},
		{"points tie", 3, 3, false, 0.5},
		{"no rounds", 0, 0, false, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Result(tt.own, tt.opp, tt.raw); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestModifiedElo(t *testing.T) {
	tests := []struct {
		name             string
		player, opponent float64
		own, opp         int
		raw              bool
		want             int
	}{
		{"even win", 1000, 1000, 6, 4, true, 1016},
		{"even loss", 1000, 1000, 4, 6, true, 984},
		{"points win truncates", 1000, 1000, 6, 4, false, 1003},
		{"points loss truncates", 1000, 1000, 4, 6, false, 996},
		{"tie between equals", 1000, 1000, 5, 5, true, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModifiedElo(tt.player, tt.opponent, tt.own, tt.opp, tt.raw); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Ledger
// ════════════════════════════════════════════════════════════════════

var t0 = time.Date(2022, 1, 30, 19, 0, 0, 0, time.UTC)

func game(id string, t1, t2 [2]string, s1, s2 int, at time.Time) models.Game {
	return models.Game{ID: id, Team1: t1, Team2: t2, Score: [2]int{s1, s2}, PlayedAt: at}
}

func TestLedgerApplyFirstGame(t *testing.T) {
	l := NewLedger()
	cps := l.Apply(game("g1", [2]string{"a", "b"}, [2]string{"c", "d"}, 6, 4, t0))

	if len(cps) != 4 {
		t.Fatalf("checkpoints: got %d, want 4", len(cps))
	}
	want := map[string]Ratings{
		"a": {1016, 1003},
		"b": {1016, 1003},
		"c": {984, 996},
		"d": {984, 996},
	}
	for id, r := range want {
		if got := l.Ratings(id); got != r {
			t.Errorf("%s: got %+v, want %+v", id, got, r)
		}
	}

	c, ok := l.Checkpoint("c", "g1")
	if !ok {
		t.Fatal("checkpoint for c missing")
	}
	if c.RatingDiff != -16 || c.PointsRatingDiff != -4 {
		t.Errorf("c diffs: got %+d / %+d, want -16 / -4", c.RatingDiff, c.PointsRatingDiff)
	}
	if !c.PlayedAt.Equal(t0) {
		t.Errorf("PlayedAt: got %v", c.PlayedAt)
	}
	if cps[0].PlayerID != "a" || cps[3].PlayerID != "d" {
		t.Errorf("checkpoint order: got %s..%s", cps[0].PlayerID, cps[3].PlayerID)
	}
}

func TestLedgerUsesPreGameRatings(t *testing.T) {
	l := NewLedger()
	l.Apply(game("g1", [2]string{"a", "b"}, [2]string{"c", "d"}, 6, 0, t0))
	// a and c are now on opposite ends; pair them against b and d.
	cps := l.Apply(game("g2", [2]string{"a", "c"}, [2]string{"b", "d"}, 6, 6, t0.Add(time.Hour)))

	// The teams are level, so a draw moves nobody on the match track.
	for _, cp := range cps {
		if cp.RatingDiff != 0 {
			prev := l.Checkpoints(cp.PlayerID)[0].Rating
			exp := ExpectedResult(float64(prev), 1000)
			if want := int(float64(prev)+K*(0.5-exp)) - prev; cp.RatingDiff != want {
				t.Errorf("%s: diff got %d, want %d", cp.PlayerID, cp.RatingDiff, want)
			}
		}
	}
	a := l.Checkpoints("a")
	if len(a) != 2 {
		t.Fatalf("a checkpoints: got %d, want 2", len(a))
	}
	if a[1].Rating-a[0].Rating != a[1].RatingDiff {
		t.Errorf("diff does not match consecutive ratings: %+v", a)
	}
}

func TestReplayIsChronological(t *testing.T) {
	games := []models.Game{
		game("g3", [2]string{"a", "d"}, [2]string{"b", "c"}, 2, 6, t0.Add(2*time.Hour)),
		game("g1", [2]string{"a", "b"}, [2]string{"c", "d"}, 6, 4, t0),
		game("g2", [2]string{"a", "c"}, [2]string{"b", "d"}, 6, 1, t0.Add(time.Hour)),
	}

	inOrder := NewLedger()
	inOrder.Apply(games[1])
	inOrder.Apply(games[2])
	inOrder.Apply(games[0])

	replayed := Replay(games)
	for _, id := range []string{"a", "b", "c", "d"} {
		if !reflect.DeepEqual(replayed.Checkpoints(id), inOrder.Checkpoints(id)) {
			t.Errorf("%s: replay differs from in-order application", id)
		}
	}
	if replayed.Games() != 3 {
		t.Errorf("Games: got %d, want 3", replayed.Games())
	}
	if games[0].ID != "g3" {
		t.Error("Replay must not reorder the caller's slice")
	}
}

func TestSortGamesBreaksTiesByID(t *testing.T) {
	games := []models.Game{
		{ID: "b", PlayedAt: t0},
		{ID: "c", PlayedAt: t0.Add(-time.Minute)},
		{ID: "a", PlayedAt: t0},
	}
	SortGames(games)
	got := []string{games[0].ID, games[1].ID, games[2].ID}
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestHistory(t *testing.T) {
	l := Replay([]models.Game{
		game("g1", [2]string{"a", "b"}, [2]string{"c", "d"}, 6, 4, t0),
		game("g2", [2]string{"a", "b"}, [2]string{"c", "d"}, 6, 4, t0.Add(time.Hour)),
	})

	match, points := l.History("a")
	if len(match) != 2 || len(points) != 2 {
		t.Fatalf("history lengths: %d, %d", len(match), len(points))
	}
	if match[0] != 1016 || points[0] != 1003 {
		t.Errorf("first entries: got %v, %v", match[0], points[0])
	}
	if match[1] <= match[0] {
		t.Errorf("second win should raise the rating: %v", match)
	}

	match, points = l.History("nobody")
	if match == nil || points == nil || len(match) != 0 || len(points) != 0 {
		t.Errorf("unknown player: got %v, %v", match, points)
	}
	if l.Ratings("nobody") != Initial {
		t.Errorf("unknown player ratings: got %+v", l.Ratings("nobody"))
	}
}
