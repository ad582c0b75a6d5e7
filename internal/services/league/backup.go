package league

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	leagueRepo "github.com/pdlmetrix/pdlmetrix/internal/repositories/league"
	"github.com/pdlmetrix/pdlmetrix/pkg/models"
	"github.com/pdlmetrix/pdlmetrix/pkg/utils"
)

// backupFields is the column count of a backup line:
// p1,p2,p3,p4,score1,score2,unixtime
const backupFields = 7

// backupGame is one parsed backup line.
type backupGame struct {
	names    [4]string
	score    [2]int
	playedAt time.Time
}

// ExportBackup writes every game, oldest first, one per line
func (s *service) ExportBackup(ctx context.Context, w io.Writer) (*ExportBackupOutput, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(w)
	for _, g := range snap.games {
		if _, err := fmt.Fprintln(bw, formatBackupLine(snap, g)); err != nil {
			return nil, fmt.Errorf("failed to write backup: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	s.log.WithField("games", len(snap.games)).Info("backup exported")
	return &ExportBackupOutput{Games: len(snap.games)}, nil
}

// ImportBackup reads backup lines and records each game. Every line is
// checked before anything is written. If the store fails midway, whatever
// was written is still announced.
func (s *service) ImportBackup(ctx context.Context, r io.Reader) (*ImportBackupOutput, error) {
	parsed, err := parseBackup(r)
	if err != nil {
		return nil, err
	}

	out := &ImportBackupOutput{PlayersCreated: []string{}}
	if err := s.writeBackup(ctx, parsed, out); err != nil {
		if out.Games > 0 || len(out.PlayersCreated) > 0 {
			s.log.WithError(err).WithField("games", out.Games).Warn("backup partially imported")
			s.notify(Event{Type: EventBackupLoaded, Players: out.PlayersCreated})
		}
		return out, err
	}

	s.log.WithFields(logrus.Fields{
		"games":       out.Games,
		"new_players": len(out.PlayersCreated),
	}).Info("backup imported")
	s.notify(Event{Type: EventBackupLoaded, Players: out.PlayersCreated})
	return out, nil
}

// writeBackup creates the missing players, then records the games in order,
// counting progress in out.
func (s *service) writeBackup(ctx context.Context, parsed []backupGame, out *ImportBackupOutput) error {
	known := make(map[string]bool)
	for _, bg := range parsed {
		for _, name := range bg.names {
			if known[name] {
				continue
			}
			created, err := s.ensurePlayer(ctx, name)
			if err != nil {
				return err
			}
			if created {
				out.PlayersCreated = append(out.PlayersCreated, name)
			}
			known[name] = true
		}
	}

	for _, bg := range parsed {
		_, _, err := s.saveGame(ctx, &RecordGameInput{
			Team1:    [2]string{bg.names[0], bg.names[1]},
			Team2:    [2]string{bg.names[2], bg.names[3]},
			Score:    bg.score,
			PlayedAt: bg.playedAt,
		})
		if err != nil {
			return err
		}
		out.Games++
	}
	return nil
}

// ensurePlayer registers name unless it exists and reports whether it did.
func (s *service) ensurePlayer(ctx context.Context, name string) (bool, error) {
	_, err := s.addPlayer(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, leagueRepo.ErrPlayerNameTaken):
		return false, nil
	default:
		return false, fmt.Errorf("%s: %w", name, err)
	}
}

func formatBackupLine(snap *snapshot, g models.Game) string {
	fields := make([]string, 0, backupFields)
	for _, id := range g.Players() {
		fields = append(fields, snap.name(id))
	}
	fields = append(fields,
		strconv.Itoa(g.Score[0]),
		strconv.Itoa(g.Score[1]),
		strconv.FormatInt(g.PlayedAt.Unix(), 10),
	)
	return strings.Join(fields, ",")
}

// parseBackup reads all lines, skipping blank ones.
func parseBackup(r io.Reader) ([]backupGame, error) {
	var games []backupGame
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		bg, err := parseBackupLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		games = append(games, bg)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return games, nil
}

func parseBackupLine(line string) (backupGame, error) {
	var bg backupGame
	fields := strings.Split(line, ",")
	if len(fields) != backupFields {
		return bg, fmt.Errorf("%w: want %d fields, got %d", ErrInvalidBackupLine, backupFields, len(fields))
	}

	for i := 0; i < 4; i++ {
		bg.names[i] = strings.TrimSpace(fields[i])
		if bg.names[i] == "" {
			return bg, fmt.Errorf("%w: empty player name", ErrInvalidBackupLine)
		}
	}
	for i := 0; i < 2; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(fields[4+i]))
		if err != nil {
			return bg, fmt.Errorf("%w: score %q", ErrInvalidBackupLine, fields[4+i])
		}
		bg.score[i] = v
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(fields[6]), 10, 64)
	if err != nil {
		return bg, fmt.Errorf("%w: timestamp %q", ErrInvalidBackupLine, fields[6])
	}
	bg.playedAt = utils.FromUnix(ts)

	names, err := checkGame(bg.names, bg.score)
	if err != nil {
		return bg, fmt.Errorf("%w: %w", ErrInvalidBackupLine, err)
	}
	bg.names = names
	return bg, nil
}
