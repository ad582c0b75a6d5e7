package league

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdlmetrix/pdlmetrix/internal/common/clock"
	"github.com/pdlmetrix/pdlmetrix/internal/common/uuid"
	leagueRepo "github.com/pdlmetrix/pdlmetrix/internal/repositories/league"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
	"github.com/pdlmetrix/pdlmetrix/pkg/utils"
)

// GamesTableDateLayout is how game dates appear in tables.
const GamesTableDateLayout = utils.GameDateLayout

// Config holds the dependencies of the league service
type Config struct {
	// Storage for players and games
	Repository leagueRepo.Repository

	// Clock for registration and game times
	Clock clock.Clock

	// UUID generator for player and game IDs
	UUIDGenerator uuid.UUID

	// Notifier receives league events, optional
	Notifier Notifier

	// Location for table dates, time.Local when nil
	Location *time.Location

	// Logger, the standard logrus logger when nil
	Logger *logrus.Entry
}

// AddPlayerInput contains parameters for registering a player
type AddPlayerInput struct {
	Name string
}

// AddPlayerOutput contains the registered player
type AddPlayerOutput struct {
	Player *models.Player `json:"player"`
}

// RecordGameInput describes a finished doubles game by player names.
// A zero PlayedAt means now.
type RecordGameInput struct {
	Team1    [2]string
	Team2    [2]string
	Score    [2]int
	PlayedAt time.Time
}

// RecordGameOutput contains the stored game and its rating checkpoints,
// team 1 first
type RecordGameOutput struct {
	Game        *models.Game        `json:"game"`
	Checkpoints []models.Checkpoint `json:"checkpoints"`
}

// RemoveGameInput contains parameters for removing a game
type RemoveGameInput struct {
	GameID string
}

// GetProfileInput contains parameters for loading a player profile
type GetProfileInput struct {
	Name string
}

// GamesTableInput filters the games table. An empty PlayerName lists all
// games; a positive Limit keeps only the newest rows.
type GamesTableInput struct {
	PlayerName string
	Limit      int
}

// ExportBackupOutput reports what a backup contained
type ExportBackupOutput struct {
	Games int `json:"games"`
}

// ImportBackupOutput reports what an import added
type ImportBackupOutput struct {
	Games          int      `json:"games"`
	PlayersCreated []string `json:"players_created"`
}

// SummaryOutput counts the league's records
type SummaryOutput struct {
	Players int `json:"players"`
	Games   int `json:"games"`
}
