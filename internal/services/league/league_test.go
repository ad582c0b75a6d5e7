package league

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	leagueRepo "github.com/pdlmetrix/pdlmetrix/internal/repositories/league"
)

// ═══════════════════════════════════════════════════════════════════
// Fixtures
// ═══════════════════════════════════════════════════════════════════

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type sequence struct {
	mu sync.Mutex
	n  int
}

func (q *sequence) NewUUID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.n++
	return fmt.Sprintf("id-%03d", q.n)
}

var leagueStart = time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)

func newMemoryService(t *testing.T) (*service, *[]Event) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	events := &[]Event{}
	svc, err := NewService(&Config{
		Repository:    leagueRepo.NewMemory(),
		Clock:         fixedClock{now: leagueStart.Add(30 * 24 * time.Hour)},
		UUIDGenerator: &sequence{},
		Notifier:      NotifierFunc(func(e Event) { *events = append(*events, e) }),
		Location:      time.UTC,
		Logger:        logrus.NewEntry(logger),
	})
	require.NoError(t, err)
	return svc, events
}

// seedLeague registers five players and records three games a day apart.
// The last game is drawn, which counts as a team 2 win.
func seedLeague(t *testing.T, svc *service) []string {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"Anna", "Ben", "Cleo", "Dave", "Eve"} {
		_, err := svc.AddPlayer(ctx, &AddPlayerInput{Name: name})
		require.NoError(t, err)
	}

	games := []RecordGameInput{
		{Team1: [2]string{"Anna", "Ben"}, Team2: [2]string{"Cleo", "Dave"}, Score: [2]int{6, 3}, PlayedAt: leagueStart},
		{Team1: [2]string{"Anna", "Cleo"}, Team2: [2]string{"Ben", "Dave"}, Score: [2]int{4, 6}, PlayedAt: leagueStart.Add(24 * time.Hour)},
		{Team1: [2]string{"Anna", "Dave"}, Team2: [2]string{"Cleo", "Eve"}, Score: [2]int{5, 5}, PlayedAt: leagueStart.Add(48 * time.Hour)},
	}
	ids := make([]string, 0, len(games))
	for i := range games {
		out, err := svc.RecordGame(ctx, &games[i])
		require.NoError(t, err)
		ids = append(ids, out.Game.ID)
	}
	return ids
}

// ═══════════════════════════════════════════════════════════════════
// Profile
// ═══════════════════════════════════════════════════════════════════

func TestGetProfile(t *testing.T) {
	svc, _ := newMemoryService(t)
	seedLeague(t, svc)

	p, err := svc.GetProfile(context.Background(), &GetProfileInput{Name: "Anna"})
	require.NoError(t, err)

	assert.Equal(t, "Anna", p.Player.Name)
	assert.Equal(t, 3, p.Stats.TotalGames)
	assert.Equal(t, 1, p.Stats.WonGames)
	assert.Equal(t, 2, p.Stats.LostGames)
	assert.Equal(t, 15, p.Stats.WonRounds)
	assert.Equal(t, 14, p.Stats.LostRounds)
	assert.Equal(t, 29, p.Stats.TotalRounds)
	assert.InDelta(t, 100.0/3, p.Stats.WinPerc, 1e-9)
	assert.InDelta(t, 1500.0/29, p.Stats.RoundWinPerc, 1e-9)

	assert.Equal(t, p.Stats.WinPerc, p.Data.WinPerc)
	assert.Equal(t, p.Stats.RoundWinPerc, p.Data.RoundWinPerc)
	require.Len(t, p.Data.EloHistory, 3)
	require.Len(t, p.Data.PointsEloHistory, 3)
	assert.Equal(t, 1016.0, p.Data.EloHistory[0])
	assert.Equal(t, 1005.0, p.Data.PointsEloHistory[0])
	assert.Equal(t, float64(p.Rating), p.Data.EloHistory[2])
	assert.Equal(t, float64(p.PointsRating), p.Data.PointsEloHistory[2])

	require.Len(t, p.Games, 3)
	assert.Equal(t, "11.03.2024", p.Games[0].Date)
	assert.Equal(t, "09.03.2024", p.Games[2].Date)
}

func TestGetProfileWithoutGames(t *testing.T) {
	svc, _ := newMemoryService(t)
	seedLeague(t, svc)
	_, err := svc.AddPlayer(context.Background(), &AddPlayerInput{Name: "Finn"})
	require.NoError(t, err)

	p, err := svc.GetProfile(context.Background(), &GetProfileInput{Name: "Finn"})
	require.NoError(t, err)

	assert.Equal(t, 1000, p.Rating)
	assert.Equal(t, 1000, p.PointsRating)
	assert.Zero(t, p.Stats.WinPerc)
	assert.Zero(t, p.Stats.RoundWinPerc)
	assert.NotNil(t, p.Data.EloHistory)
	assert.Empty(t, p.Data.EloHistory)
	assert.Empty(t, p.Games)
	assert.Empty(t, p.Partners)
	assert.Empty(t, p.Opponents)
}

func TestPlayerStatsScorelessGames(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	for _, name := range []string{"Anna", "Ben", "Cleo", "Dave"} {
		_, err := svc.AddPlayer(ctx, &AddPlayerInput{Name: name})
		require.NoError(t, err)
	}
	_, err := svc.RecordGame(ctx, &RecordGameInput{
		Team1: [2]string{"Anna", "Ben"}, Team2: [2]string{"Cleo", "Dave"}, PlayedAt: leagueStart,
	})
	require.NoError(t, err)

	p, err := svc.GetProfile(ctx, &GetProfileInput{Name: "Cleo"})
	require.NoError(t, err)
	// 0-0 goes to team 2, but nothing can be divided by zero rounds
	assert.Equal(t, 1, p.Stats.WonGames)
	assert.Zero(t, p.Stats.WinPerc)
	assert.Zero(t, p.Stats.RoundWinPerc)
}

func TestPairings(t *testing.T) {
	svc, _ := newMemoryService(t)
	seedLeague(t, svc)

	p, err := svc.GetProfile(context.Background(), &GetProfileInput{Name: "Anna"})
	require.NoError(t, err)

	require.Len(t, p.Partners, 3)
	assert.Equal(t, "Ben", p.Partners[0].Name)
	assert.Equal(t, 1, p.Partners[0].Wins)
	assert.Equal(t, 100.0, p.Partners[0].WinPerc)
	assert.Equal(t, "Cleo", p.Partners[1].Name)
	assert.Equal(t, 0, p.Partners[1].Wins)
	assert.Equal(t, "Dave", p.Partners[2].Name)

	require.Len(t, p.Opponents, 4)
	names := []string{p.Opponents[0].Name, p.Opponents[1].Name, p.Opponents[2].Name, p.Opponents[3].Name}
	assert.Equal(t, []string{"Cleo", "Dave", "Ben", "Eve"}, names)
	assert.Equal(t, 2, p.Opponents[0].Games)
	assert.Equal(t, 1, p.Opponents[0].Wins)
	assert.Equal(t, 50.0, p.Opponents[0].WinPerc)
}

// ═══════════════════════════════════════════════════════════════════
// Tables
// ═══════════════════════════════════════════════════════════════════

func TestLeaderboard(t *testing.T) {
	svc, _ := newMemoryService(t)
	seedLeague(t, svc)

	rows, err := svc.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Rating, rows[i].Rating, "row %d", i)
	}

	byName := make(map[string]int)
	for i, r := range rows {
		byName[r.Name] = i
	}
	eve := rows[byName["Eve"]]
	assert.Equal(t, 100, eve.WinPerc)
	assert.Equal(t, 50, eve.RoundWinPerc)
	// A draw rates as half a win on both tracks
	assert.InDelta(t, 1000, eve.Rating, 1)

	anna := rows[byName["Anna"]]
	assert.Equal(t, 33, anna.WinPerc)
	assert.Equal(t, 51, anna.RoundWinPerc)
}

func TestGamesTable(t *testing.T) {
	svc, _ := newMemoryService(t)
	ids := seedLeague(t, svc)
	ctx := context.Background()

	rows, err := svc.GamesTable(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ids[2], rows[0].ID)
	assert.Equal(t, ids[0], rows[2].ID)

	first := rows[2]
	assert.Equal(t, "09.03.2024", first.Date)
	assert.Equal(t, 6, first.Team1Score)
	assert.Equal(t, 3, first.Team2Score)
	require.Len(t, first.Players, 4)
	assert.Equal(t, "Anna", first.Players[0].Name)
	assert.Equal(t, "+16", first.Players[0].RatingDiff)
	assert.Equal(t, "+5", first.Players[0].PointsRatingDiff)
	assert.Equal(t, "Cleo", first.Players[2].Name)
	assert.Equal(t, "-16", first.Players[2].RatingDiff)
	assert.Equal(t, "-6", first.Players[2].PointsRatingDiff)

	limited, err := svc.GamesTable(ctx, &GamesTableInput{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, ids[2], limited[0].ID)

	eve, err := svc.GamesTable(ctx, &GamesTableInput{PlayerName: "Eve"})
	require.NoError(t, err)
	require.Len(t, eve, 1)
	assert.Equal(t, ids[2], eve[0].ID)

	padded, err := svc.GamesTable(ctx, &GamesTableInput{PlayerName: " Eve "})
	require.NoError(t, err)
	assert.Equal(t, eve, padded, "names are matched after trimming, as in GetProfile")

	_, err = svc.GamesTable(ctx, &GamesTableInput{PlayerName: "Nobody"})
	assert.ErrorIs(t, err, leagueRepo.ErrPlayerNotFound)
}

func TestGamesTableZeroDiff(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	for _, name := range []string{"Anna", "Ben", "Cleo", "Dave"} {
		_, err := svc.AddPlayer(ctx, &AddPlayerInput{Name: name})
		require.NoError(t, err)
	}
	// Equal teams with an even round split leave points ratings alone
	_, err := svc.RecordGame(ctx, &RecordGameInput{
		Team1: [2]string{"Anna", "Ben"}, Team2: [2]string{"Cleo", "Dave"}, Score: [2]int{4, 4}, PlayedAt: leagueStart,
	})
	require.NoError(t, err)

	rows, err := svc.GamesTable(ctx, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "+0", rows[0].Players[0].PointsRatingDiff)
}

// ═══════════════════════════════════════════════════════════════════
// Changes
// ═══════════════════════════════════════════════════════════════════

func TestRemoveGameReplaysRatings(t *testing.T) {
	svc, events := newMemoryService(t)
	ids := seedLeague(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.RemoveGame(ctx, &RemoveGameInput{GameID: ids[0]}))

	p, err := svc.GetProfile(ctx, &GetProfileInput{Name: "Anna"})
	require.NoError(t, err)
	require.Len(t, p.Data.EloHistory, 2)
	// With the first game gone Anna starts with the loss from 1000
	assert.Equal(t, 984.0, p.Data.EloHistory[0])

	last := (*events)[len(*events)-1]
	assert.Equal(t, EventGameRemoved, last.Type)
	assert.Equal(t, ids[0], last.GameID)
}

func TestSummaryAndClear(t *testing.T) {
	svc, events := newMemoryService(t)
	seedLeague(t, svc)
	ctx := context.Background()

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SummaryOutput{Players: 5, Games: 3}, sum)

	require.NoError(t, svc.Clear(ctx))
	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SummaryOutput{}, sum)
	assert.Equal(t, EventDataCleared, (*events)[len(*events)-1].Type)
}

// ═══════════════════════════════════════════════════════════════════
// Backup
// ═══════════════════════════════════════════════════════════════════

func TestExportBackup(t *testing.T) {
	svc, _ := newMemoryService(t)
	seedLeague(t, svc)

	var buf bytes.Buffer
	out, err := svc.ExportBackup(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Games)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, fmt.Sprintf("Anna,Ben,Cleo,Dave,6,3,%d", leagueStart.Unix()), lines[0])
	assert.Equal(t, fmt.Sprintf("Anna,Dave,Cleo,Eve,5,5,%d", leagueStart.Add(48*time.Hour).Unix()), lines[2])
}

func TestImportBackupRebuildsLeague(t *testing.T) {
	src, _ := newMemoryService(t)
	seedLeague(t, src)
	ctx := context.Background()

	var buf bytes.Buffer
	_, err := src.ExportBackup(ctx, &buf)
	require.NoError(t, err)

	dst, events := newMemoryService(t)
	_, err = dst.AddPlayer(ctx, &AddPlayerInput{Name: "Ben"})
	require.NoError(t, err)
	*events = nil

	out, err := dst.ImportBackup(ctx, strings.NewReader("\n"+buf.String()+"\n\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Games)
	assert.Equal(t, []string{"Anna", "Cleo", "Dave", "Eve"}, out.PlayersCreated)

	want, err := src.Leaderboard(ctx)
	require.NoError(t, err)
	got, err := dst.Leaderboard(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)

	require.Len(t, *events, 1)
	assert.Equal(t, EventBackupLoaded, (*events)[0].Type)
}

func TestImportBackupRejectsBadLines(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"too few fields", "Anna,Ben,Cleo,Dave,6,3\n"},
		{"bad score", "Anna,Ben,Cleo,Dave,six,3,1643569200\n"},
		{"bad timestamp", "Anna,Ben,Cleo,Dave,6,3,yesterday\n"},
		{"empty name", "Anna,,Cleo,Dave,6,3,1643569200\n"},
		{"good then bad", "Anna,Ben,Cleo,Dave,6,3,1643569200\nAnna,Ben\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newMemoryService(t)
			_, err := svc.ImportBackup(context.Background(), strings.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrInvalidBackupLine)

			sum, err := svc.Summary(context.Background())
			require.NoError(t, err)
			assert.Equal(t, &SummaryOutput{}, sum, "nothing should be written")
		})
	}
}

func TestImportBackupDuplicatePlayersInLine(t *testing.T) {
	svc, _ := newMemoryService(t)
	_, err := svc.ImportBackup(context.Background(), strings.NewReader("Anna,Anna,Cleo,Dave,6,3,1643569200\n"))
	assert.ErrorIs(t, err, ErrDuplicatePlayers)
}

func TestImportBackupRejectsInvalidGamesBeforeWriting(t *testing.T) {
	const good = "Anna,Ben,Cleo,Dave,6,3,1643569200\n"
	tests := []struct {
		name string
		line string
		want error
	}{
		{"repeated player", "Anna,Anna,Cleo,Dave,6,3,1643655600\n", ErrDuplicatePlayers},
		{"repeated after trimming", "Anna, Anna ,Cleo,Dave,6,3,1643655600\n", ErrDuplicatePlayers},
		{"negative score", "Anna,Ben,Cleo,Dave,-2,6,1643655600\n", ErrNegativeScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, events := newMemoryService(t)
			_, err := svc.ImportBackup(context.Background(), strings.NewReader(good+tt.line))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrInvalidBackupLine)
			assert.Contains(t, err.Error(), "line 2")

			sum, err := svc.Summary(context.Background())
			require.NoError(t, err)
			assert.Equal(t, &SummaryOutput{}, sum, "nothing should be written")
			assert.Empty(t, *events)
		})
	}
}

// flakyGames fails the n-th SaveGame call.
type flakyGames struct {
	leagueRepo.Repository
	calls  int
	failAt int
}

func (f *flakyGames) SaveGame(ctx context.Context, input *leagueRepo.SaveGameInput) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("store unavailable")
	}
	return f.Repository.SaveGame(ctx, input)
}

func TestImportBackupAnnouncesPartialWrites(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var events []Event
	svc, err := NewService(&Config{
		Repository:    &flakyGames{Repository: leagueRepo.NewMemory(), failAt: 2},
		Clock:         fixedClock{now: leagueStart},
		UUIDGenerator: &sequence{},
		Notifier:      NotifierFunc(func(e Event) { events = append(events, e) }),
		Location:      time.UTC,
		Logger:        logrus.NewEntry(logger),
	})
	require.NoError(t, err)

	data := "Anna,Ben,Cleo,Dave,6,3,1643569200\nAnna,Cleo,Ben,Dave,2,6,1643655600\n"
	out, err := svc.ImportBackup(context.Background(), strings.NewReader(data))
	require.Error(t, err)
	assert.Equal(t, 1, out.Games)

	require.Len(t, events, 1)
	assert.Equal(t, EventBackupLoaded, events[0].Type)
	assert.ElementsMatch(t, []string{"Anna", "Ben", "Cleo", "Dave"}, events[0].Players)
}
