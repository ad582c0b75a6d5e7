package league

import "time"

// EventType names a league change.
type EventType string

const (
	EventPlayerAdded  EventType = "player_added"
	EventGameRecorded EventType = "game_recorded"
	EventGameRemoved  EventType = "game_removed"
	EventBackupLoaded EventType = "backup_loaded"
	EventDataCleared  EventType = "data_cleared"
)

// Event describes a change to the league. Consumers use it to invalidate
// rendered dashboards and to push updates to connected clients.
type Event struct {
	Type    EventType `json:"type"`
	Player  string    `json:"player,omitempty"`
	Players []string  `json:"players,omitempty"`
	GameID  string    `json:"game_id,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier receives league events. Notify must not block for long.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }
