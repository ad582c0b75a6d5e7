package league

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdlmetrix/pdlmetrix/internal/common/clock"
	"github.com/pdlmetrix/pdlmetrix/internal/common/uuid"
	"github.com/pdlmetrix/pdlmetrix/internal/rating"
	leagueRepo "github.com/pdlmetrix/pdlmetrix/internal/repositories/league"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
	"github.com/pdlmetrix/pdlmetrix/pkg/utils"
)

// service implements the Service interface
type service struct {
	repo     leagueRepo.Repository
	clock    clock.Clock
	uuid     uuid.UUID
	notifier Notifier
	location *time.Location
	log      *logrus.Entry
}

// NewService creates a new league service
func NewService(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Repository == nil {
		return nil, ErrNilRepository
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &service{
		repo:     cfg.Repository,
		clock:    cfg.Clock,
		uuid:     cfg.UUIDGenerator,
		notifier: cfg.Notifier,
		location: loc,
		log:      log.WithField("component", "league"),
	}, nil
}

// AddPlayer registers a new player
func (s *service) AddPlayer(ctx context.Context, input *AddPlayerInput) (*AddPlayerOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	player, err := s.addPlayer(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	s.log.WithField("player", player.Name).Info("player added")
	s.notify(Event{Type: EventPlayerAdded, Player: player.Name})
	return &AddPlayerOutput{Player: player}, nil
}

func (s *service) addPlayer(ctx context.Context, rawName string) (*models.Player, error) {
	name, err := cleanName(rawName)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.GetPlayerByName(ctx, &leagueRepo.GetPlayerByNameInput{Name: name})
	if err == nil {
		return nil, fmt.Errorf("%w: %q", leagueRepo.ErrPlayerNameTaken, name)
	}
	if !errors.Is(err, leagueRepo.ErrPlayerNotFound) {
		return nil, err
	}

	player := &models.Player{
		ID:        s.uuid.NewUUID(),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.SavePlayer(ctx, &leagueRepo.SavePlayerInput{Player: player}); err != nil {
		return nil, err
	}
	return player, nil
}

// RecordGame stores a game between four registered players
func (s *service) RecordGame(ctx context.Context, input *RecordGameInput) (*RecordGameOutput, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	game, names, err := s.saveGame(ctx, input)
	if err != nil {
		return nil, err
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"game":  game.ID,
		"team1": names[0] + "," + names[1],
		"team2": names[2] + "," + names[3],
		"score": fmt.Sprintf("%d-%d", game.Score[0], game.Score[1]),
	}).Info("game recorded")
	s.notify(Event{Type: EventGameRecorded, GameID: game.ID, Players: names})

	return &RecordGameOutput{
		Game:        game,
		Checkpoints: snap.ledger.GameCheckpoints(game.ID),
	}, nil
}

// saveGame validates and stores a game, returning it with the cleaned
// player names in team order.
func (s *service) saveGame(ctx context.Context, input *RecordGameInput) (*models.Game, []string, error) {
	lineup, err := checkGame([4]string{input.Team1[0], input.Team1[1], input.Team2[0], input.Team2[1]}, input.Score)
	if err != nil {
		return nil, nil, err
	}
	names := lineup[:]

	ids := make([]string, len(names))
	for i, name := range names {
		p, err := s.repo.GetPlayerByName(ctx, &leagueRepo.GetPlayerByNameInput{Name: name})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		ids[i] = p.ID
	}

	playedAt := input.PlayedAt
	if playedAt.IsZero() {
		playedAt = s.clock.Now()
	}

	game := &models.Game{
		ID:       s.uuid.NewUUID(),
		Team1:    [2]string{ids[0], ids[1]},
		Team2:    [2]string{ids[2], ids[3]},
		Score:    input.Score,
		PlayedAt: playedAt,
	}
	if err := s.repo.SaveGame(ctx, &leagueRepo.SaveGameInput{Game: game}); err != nil {
		return nil, nil, err
	}
	return game, names, nil
}

// RemoveGame deletes a game
func (s *service) RemoveGame(ctx context.Context, input *RemoveGameInput) error {
	if input == nil || input.GameID == "" {
		return errors.New("input and game ID cannot be empty")
	}

	game, err := s.repo.GetGame(ctx, &leagueRepo.GetGameInput{GameID: input.GameID})
	if err != nil {
		return err
	}
	if err := s.repo.DeleteGame(ctx, &leagueRepo.DeleteGameInput{GameID: input.GameID}); err != nil {
		return err
	}

	// Ratings are derived from the remaining games, nothing to rewrite
	names := make([]string, 0, 4)
	for _, id := range game.Players() {
		if p, err := s.repo.GetPlayer(ctx, &leagueRepo.GetPlayerInput{PlayerID: id}); err == nil {
			names = append(names, p.Name)
		}
	}

	s.log.WithField("game", input.GameID).Info("game removed")
	s.notify(Event{Type: EventGameRemoved, GameID: input.GameID, Players: names})
	return nil
}

// GetProfile loads a player's stats, rating history, games and pairings
func (s *service) GetProfile(ctx context.Context, input *GetProfileInput) (*models.PlayerProfile, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	player, ok := snap.byName[strings.TrimSpace(input.Name)]
	if !ok {
		return nil, leagueRepo.ErrPlayerNotFound
	}

	stats := playerStats(snap.games, player.ID)
	match, points := snap.ledger.History(player.ID)
	current := snap.ledger.Ratings(player.ID)
	partners, opponents := pairings(snap, player.ID)

	return &models.PlayerProfile{
		Player:       *player,
		Rating:       current.Rating,
		PointsRating: current.PointsRating,
		Stats:        stats,
		Data: models.PlayerProfileData{
			WinPerc:          stats.WinPerc,
			RoundWinPerc:     stats.RoundWinPerc,
			EloHistory:       match,
			PointsEloHistory: points,
		},
		Games:     s.gameRows(snap, player.ID, 0),
		Partners:  partners,
		Opponents: opponents,
	}, nil
}

// Leaderboard returns players by match rating, highest first
func (s *service) Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.LeaderboardRow, 0, len(snap.players))
	for _, p := range snap.players {
		r := snap.ledger.Ratings(p.ID)
		st := playerStats(snap.games, p.ID)
		rows = append(rows, models.LeaderboardRow{
			Name:         p.Name,
			Rating:       r.Rating,
			PointsRating: r.PointsRating,
			WinPerc:      int(st.WinPerc),
			RoundWinPerc: int(st.RoundWinPerc),
		})
	}
	// Equal ratings keep registration order
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Rating > rows[j].Rating
	})
	return rows, nil
}

// GamesTable returns game rows newest first
func (s *service) GamesTable(ctx context.Context, input *GamesTableInput) ([]models.GameRow, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	playerID, limit := "", 0
	if input != nil {
		limit = input.Limit
		if name := strings.TrimSpace(input.PlayerName); name != "" {
			p, ok := snap.byName[name]
			if !ok {
				return nil, leagueRepo.ErrPlayerNotFound
			}
			playerID = p.ID
		}
	}
	return s.gameRows(snap, playerID, limit), nil
}

// Summary counts players and games
func (s *service) Summary(ctx context.Context) (*SummaryOutput, error) {
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	games, err := s.repo.ListGames(ctx, &leagueRepo.ListGamesInput{})
	if err != nil {
		return nil, err
	}
	return &SummaryOutput{Players: len(players.Players), Games: len(games.Games)}, nil
}

// Clear removes all players and games
func (s *service) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	s.log.Warn("league data cleared")
	s.notify(Event{Type: EventDataCleared})
	return nil
}

func (s *service) notify(e Event) {
	if s.notifier == nil {
		return
	}
	e.At = s.clock.Now()
	s.notifier.Notify(e)
}

// snapshot is a consistent read of the whole league with ratings replayed.
type snapshot struct {
	players []*models.Player // registration order
	byID    map[string]*models.Player
	byName  map[string]*models.Player
	games   []models.Game // chronological
	ledger  *rating.Ledger
}

func (s *service) load(ctx context.Context) (*snapshot, error) {
	players, err := s.repo.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	games, err := s.repo.ListGames(ctx, &leagueRepo.ListGamesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	snap := &snapshot{
		players: players.Players,
		byID:    make(map[string]*models.Player, len(players.Players)),
		byName:  make(map[string]*models.Player, len(players.Players)),
		games:   make([]models.Game, 0, len(games.Games)),
	}
	for _, p := range players.Players {
		snap.byID[p.ID] = p
		snap.byName[p.Name] = p
	}
	for _, g := range games.Games {
		snap.games = append(snap.games, *g)
	}
	rating.SortGames(snap.games)
	snap.ledger = rating.Replay(snap.games)
	return snap, nil
}

func (snap *snapshot) name(playerID string) string {
	if p, ok := snap.byID[playerID]; ok {
		return p.Name
	}
	return playerID
}

// gameRows builds table rows newest first. An empty playerID keeps every
// game; limit <= 0 means no limit.
func (s *service) gameRows(snap *snapshot, playerID string, limit int) []models.GameRow {
	rows := make([]models.GameRow, 0)
	for i := len(snap.games) - 1; i >= 0; i-- {
		g := snap.games[i]
		if playerID != "" && !g.Has(playerID) {
			continue
		}
		if limit > 0 && len(rows) == limit {
			break
		}

		row := models.GameRow{
			ID:         g.ID,
			Date:       utils.FormatGameDate(g.PlayedAt, s.location),
			Team1Score: g.Score[0],
			Team2Score: g.Score[1],
			Players:    make([]models.GameRowPlayer, 0, 4),
		}
		for _, id := range g.Players() {
			cp, _ := snap.ledger.Checkpoint(id, g.ID)
			row.Players = append(row.Players, models.GameRowPlayer{
				Name:             snap.name(id),
				RatingDiff:       utils.FormatDiff(cp.RatingDiff),
				PointsRatingDiff: utils.FormatDiff(cp.PointsRatingDiff),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// checkGame cleans the four names of a game and rejects empty, invalid or
// repeated names and negative scores.
func checkGame(names [4]string, score [2]int) ([4]string, error) {
	if score[0] < 0 || score[1] < 0 {
		return names, ErrNegativeScore
	}
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		clean, err := cleanName(name)
		if err != nil {
			return names, err
		}
		if seen[clean] {
			return names, ErrDuplicatePlayers
		}
		seen[clean] = true
		names[i] = clean
	}
	return names, nil
}

func cleanName(name string) (string, error) {
	clean, err := utils.NormalizePlayerName(name)
	switch {
	case errors.Is(err, utils.ErrEmptyName):
		return "", ErrEmptyName
	case errors.Is(err, utils.ErrInvalidName):
		return "", ErrInvalidName
	}
	return clean, err
}
