package league

// LeagueError is a custom error type for league rule violations
type LeagueError string

// Error implements the error interface
func (e LeagueError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrEmptyName         LeagueError = "player name cannot be empty"
	ErrInvalidName       LeagueError = "player name cannot contain commas or line breaks"
	ErrDuplicatePlayers  LeagueError = "a game needs four different players"
	ErrNegativeScore     LeagueError = "scores cannot be negative"
	ErrInvalidBackupLine LeagueError = "invalid backup line"
	ErrNilConfig         LeagueError = "config cannot be nil"
	ErrNilRepository     LeagueError = "league repository cannot be nil"
	ErrNilClock          LeagueError = "clock cannot be nil"
	ErrNilUUIDGenerator  LeagueError = "UUID generator cannot be nil"
)
