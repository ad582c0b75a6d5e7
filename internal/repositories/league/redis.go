package league

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

const (
	// Default prefix for every key the repository owns
	defaultKeyPrefix = "pdlmetrix:"

	playerKeyPrefix = "player:"
	gameKeyPrefix   = "game:"
	playersKey      = "players"      // sorted set of player IDs by registration time
	playerNamesKey  = "player_names" // hash of name -> player ID
	gamesKey        = "games"        // sorted set of game IDs by time played
)

// Config holds configuration for the Redis league repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// KeyPrefix namespaces all keys, "pdlmetrix:" when empty
	KeyPrefix string
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedis creates a new Redis-backed league repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisRepository{client: cfg.RedisClient, prefix: prefix}, nil
}

func (r *redisRepository) key(parts ...string) string {
	k := r.prefix
	for _, p := range parts {
		k += p
	}
	return k
}

// Ping checks the Redis connection
func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// SavePlayer persists a player to Redis
func (r *redisRepository) SavePlayer(ctx context.Context, input *SavePlayerInput) error {
	if input == nil || input.Player == nil {
		return errors.New("input and player cannot be nil")
	}
	player := input.Player
	if player.ID == "" {
		return errors.New("player ID cannot be empty")
	}
	if player.Name == "" {
		return errors.New("player name cannot be empty")
	}

	// Claim the name atomically; an existing entry must already be ours
	claimed, err := r.client.HSetNX(ctx, r.key(playerNamesKey), player.Name, player.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to claim player name: %w", err)
	}
	if !claimed {
		ownerID, err := r.client.HGet(ctx, r.key(playerNamesKey), player.Name).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to check player name: %w", err)
		}
		if ownerID != player.ID {
			return fmt.Errorf("%w: %q", ErrPlayerNameTaken, player.Name)
		}
	}

	// A rename frees the old name
	existing, err := r.GetPlayer(ctx, &GetPlayerInput{PlayerID: player.ID})
	if err != nil && !errors.Is(err, ErrPlayerNotFound) {
		r.releaseName(ctx, claimed, player.Name)
		return err
	}

	playerJSON, err := json.Marshal(player)
	if err != nil {
		r.releaseName(ctx, claimed, player.Name)
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(playerKeyPrefix, player.ID), playerJSON, 0)
	pipe.ZAdd(ctx, r.key(playersKey), redis.Z{Score: float64(player.CreatedAt.UnixMilli()), Member: player.ID})
	if existing != nil && existing.Name != player.Name {
		pipe.HDel(ctx, r.key(playerNamesKey), existing.Name)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.releaseName(ctx, claimed, player.Name)
		return fmt.Errorf("failed to save player: %w", err)
	}
	return nil
}

// releaseName undoes a name claim made by a SavePlayer that then failed.
func (r *redisRepository) releaseName(ctx context.Context, claimed bool, name string) {
	if claimed {
		r.client.HDel(ctx, r.key(playerNamesKey), name)
	}
}

// GetPlayer retrieves a player by ID from Redis
func (r *redisRepository) GetPlayer(ctx context.Context, input *GetPlayerInput) (*models.Player, error) {
	if input == nil || input.PlayerID == "" {
		return nil, errors.New("input and player ID cannot be empty")
	}

	playerJSON, err := r.client.Get(ctx, r.key(playerKeyPrefix, input.PlayerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	var player models.Player
	if err := json.Unmarshal([]byte(playerJSON), &player); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	return &player, nil
}

// GetPlayerByName looks the ID up in the name index, then loads the player
func (r *redisRepository) GetPlayerByName(ctx context.Context, input *GetPlayerByNameInput) (*models.Player, error) {
	if input == nil || input.Name == "" {
		return nil, errors.New("input and player name cannot be empty")
	}

	playerID, err := r.client.HGet(ctx, r.key(playerNamesKey), input.Name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to look up player name: %w", err)
	}
	return r.GetPlayer(ctx, &GetPlayerInput{PlayerID: playerID})
}

// ListPlayers retrieves every player in registration order
func (r *redisRepository) ListPlayers(ctx context.Context) (*ListPlayersOutput, error) {
	ids, err := r.client.ZRange(ctx, r.key(playersKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list player IDs: %w", err)
	}

	players := make([]*models.Player, 0, len(ids))
	if err := r.loadAll(ctx, playerKeyPrefix, ids, func(data string) error {
		var p models.Player
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return err
		}
		players = append(players, &p)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	sortPlayers(players)
	return &ListPlayersOutput{Players: players}, nil
}

// SaveGame persists a game to Redis
func (r *redisRepository) SaveGame(ctx context.Context, input *SaveGameInput) error {
	if input == nil || input.Game == nil {
		return errors.New("input and game cannot be nil")
	}
	game := input.Game
	if game.ID == "" {
		return errors.New("game ID cannot be empty")
	}

	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to marshal game: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(gameKeyPrefix, game.ID), gameJSON, 0)
	pipe.ZAdd(ctx, r.key(gamesKey), redis.Z{Score: float64(game.PlayedAt.UnixMilli()), Member: game.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

// GetGame retrieves a game by ID from Redis
func (r *redisRepository) GetGame(ctx context.Context, input *GetGameInput) (*models.Game, error) {
	if input == nil || input.GameID == "" {
		return nil, errors.New("input and game ID cannot be empty")
	}

	gameJSON, err := r.client.Get(ctx, r.key(gameKeyPrefix, input.GameID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	var game models.Game
	if err := json.Unmarshal([]byte(gameJSON), &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	return &game, nil
}

// DeleteGame removes a game and its index entry
func (r *redisRepository) DeleteGame(ctx context.Context, input *DeleteGameInput) error {
	if input == nil || input.GameID == "" {
		return errors.New("input and game ID cannot be empty")
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(gameKeyPrefix, input.GameID))
	pipe.ZRem(ctx, r.key(gamesKey), input.GameID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if del.Val() == 0 {
		return ErrGameNotFound
	}
	return nil
}

// ListGames retrieves games oldest first, optionally for one player
func (r *redisRepository) ListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	ids, err := r.client.ZRange(ctx, r.key(gamesKey), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list game IDs: %w", err)
	}

	games := make([]*models.Game, 0, len(ids))
	if err := r.loadAll(ctx, gameKeyPrefix, ids, func(data string) error {
		var g models.Game
		if err := json.Unmarshal([]byte(data), &g); err != nil {
			return err
		}
		games = append(games, &g)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	// The sorted set only has millisecond scores
	sortGames(games)

	playerID := ""
	if input != nil {
		playerID = input.PlayerID
	}
	return &ListGamesOutput{Games: filterGames(games, playerID)}, nil
}

// Clear removes every key under the repository prefix
func (r *redisRepository) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// loadAll fetches the JSON records of ids in one pipeline and hands each
// one to decode in order. IDs whose record vanished are skipped.
func (r *redisRepository) loadAll(ctx context.Context, prefix string, ids []string, decode func(string) error) error {
	if len(ids) == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, r.key(prefix, id))
	}
	// redis.Nil from a single missing record surfaces here as well
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return fmt.Errorf("%s: %w", ids[i], err)
		}
		if err := decode(data); err != nil {
			return fmt.Errorf("%s: %w", ids[i], err)
		}
	}
	return nil
}
