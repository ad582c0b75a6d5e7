package league

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// memoryRepository keeps the league in process memory. It backs the CLI
// when no Redis address is configured and serves as a test double.
type memoryRepository struct {
	mu      sync.RWMutex
	players map[string]models.Player
	names   map[string]string
	games   map[string]models.Game
}

// NewMemory creates an empty in-memory league repository
func NewMemory() *memoryRepository {
	return &memoryRepository{
		players: make(map[string]models.Player),
		names:   make(map[string]string),
		games:   make(map[string]models.Game),
	}
}

func (m *memoryRepository) Ping(_ context.Context) error { return nil }

func (m *memoryRepository) SavePlayer(_ context.Context, input *SavePlayerInput) error {
	if input == nil || input.Player == nil {
		return errors.New("input and player cannot be nil")
	}
	player := *input.Player
	if player.ID == "" {
		return errors.New("player ID cannot be empty")
	}
	if player.Name == "" {
		return errors.New("player name cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.names[player.Name]; ok && owner != player.ID {
		return fmt.Errorf("%w: %q", ErrPlayerNameTaken, player.Name)
	}
	if old, ok := m.players[player.ID]; ok && old.Name != player.Name {
		delete(m.names, old.Name)
	}
	m.players[player.ID] = player
	m.names[player.Name] = player.ID
	return nil
}

func (m *memoryRepository) GetPlayer(_ context.Context, input *GetPlayerInput) (*models.Player, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[input.PlayerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return &p, nil
}

func (m *memoryRepository) GetPlayerByName(_ context.Context, input *GetPlayerByNameInput) (*models.Player, error) {
	if input == nil || input.Name == "" {
		return nil, errors.New("input and player name cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.names[input.Name]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	p := m.players[id]
	return &p, nil
}

func (m *memoryRepository) ListPlayers(_ context.Context) (*ListPlayersOutput, error) {
	m.mu.RLock()
	players := make([]*models.Player, 0, len(m.players))
	for _, p := range m.players {
		p := p
		players = append(players, &p)
	}
	m.mu.RUnlock()

	sortPlayers(players)
	return &ListPlayersOutput{Players: players}, nil
}

func (m *memoryRepository) SaveGame(_ context.Context, input *SaveGameInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}
	if input.Game.ID == "" {
		return errors.New("game ID cannot be empty")
	}

	m.mu.Lock()
	m.games[input.Game.ID] = *input.Game
	m.mu.Unlock()
	return nil
}

func (m *memoryRepository) GetGame(_ context.Context, input *GetGameInput) (*models.Game, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.games[input.GameID]
	if !ok {
		return nil, ErrGameNotFound
	}
	return &g, nil
}

func (m *memoryRepository) DeleteGame(_ context.Context, input *DeleteGameInput) error {
	if input == nil || input.GameID == "" {
		return errors.New("input and game ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[input.GameID]; !ok {
		return ErrGameNotFound
	}
	delete(m.games, input.GameID)
	return nil
}

func (m *memoryRepository) ListGames(_ context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	m.mu.RLock()
	games := make([]*models.Game, 0, len(m.games))
	for _, g := range m.games {
		g := g
		games = append(games, &g)
	}
	m.mu.RUnlock()

	sortGames(games)

	playerID := ""
	if input != nil {
		playerID = input.PlayerID
	}
	return &ListGamesOutput{Games: filterGames(games, playerID)}, nil
}

func (m *memoryRepository) Clear(_ context.Context) error {
	m.mu.Lock()
	m.players = make(map[string]models.Player)
	m.names = make(map[string]string)
	m.games = make(map[string]models.Game)
	m.mu.Unlock()
	return nil
}
