package league

import (
	"context"
	"io"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
)

// Service defines the league operations: registering players, recording
// games and reading back ratings, tables and profiles.
type Service interface {
	// AddPlayer registers a new player at the initial ratings
	AddPlayer(ctx context.Context, input *AddPlayerInput) (*AddPlayerOutput, error)

	// RecordGame stores a doubles game and returns the resulting rating changes
	RecordGame(ctx context.Context, input *RecordGameInput) (*RecordGameOutput, error)

	// RemoveGame deletes a game; later ratings are recomputed
	RemoveGame(ctx context.Context, input *RemoveGameInput) error

	// GetProfile returns everything the player page shows
	GetProfile(ctx context.Context, input *GetProfileInput) (*models.PlayerProfile, error)

	// Leaderboard returns every player ordered by match rating
	Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error)

	// GamesTable returns games newest first with per-player rating changes
	GamesTable(ctx context.Context, input *GamesTableInput) ([]models.GameRow, error)

	// ExportBackup writes every game as one backup line
	ExportBackup(ctx context.Context, w io.Writer) (*ExportBackupOutput, error)

	// ImportBackup adds the games of a backup, creating unknown players
	ImportBackup(ctx context.Context, r io.Reader) (*ImportBackupOutput, error)

	// Summary counts players and games
	Summary(ctx context.Context) (*SummaryOutput, error)

	// Clear removes all players and games
	Clear(ctx context.Context) error
}
