package league

import (
	"sort"

	"github.com/pdlmetrix/pdlmetrix/pkg/models"
	"github.com/pdlmetrix/pdlmetrix/pkg/utils"
)

// team1Won reports the winner of a game. A drawn score goes to team 2.
func team1Won(g models.Game) bool {
	return g.Score[0] > g.Score[1]
}

// won reports whether the player's team won.
func won(g models.Game, playerID string) bool {
	return g.InTeam1(playerID) == team1Won(g)
}

// playerStats counts a player's games and rounds. Percentages are 0 when
// there is nothing to divide by.
func playerStats(games []models.Game, playerID string) models.PlayerStats {
	var st models.PlayerStats
	for _, g := range games {
		if !g.Has(playerID) {
			continue
		}
		own, opp := g.Score[0], g.Score[1]
		if !g.InTeam1(playerID) {
			own, opp = opp, own
		}

		st.TotalGames++
		st.WonRounds += own
		st.LostRounds += opp
		st.TotalRounds += own + opp
		if won(g, playerID) {
			st.WonGames++
		} else {
			st.LostGames++
		}
	}

	if st.TotalGames > 0 && st.TotalRounds > 0 {
		st.WinPerc = utils.Percent(st.WonGames, st.TotalGames)
		st.RoundWinPerc = utils.Percent(st.WonRounds, st.TotalRounds)
	}
	return st
}

// pairings tallies the games a player shared with each partner and against
// each opponent. Both lists are ordered by games played, then name.
func pairings(snap *snapshot, playerID string) (partners, opponents []models.PairingStat) {
	with := make(map[string]*models.PairingStat)
	against := make(map[string]*models.PairingStat)

	tally := func(m map[string]*models.PairingStat, otherID string, win bool) {
		st, ok := m[otherID]
		if !ok {
			st = &models.PairingStat{Name: snap.name(otherID)}
			m[otherID] = st
		}
		st.Games++
		if win {
			st.Wins++
		}
	}

	for _, g := range snap.games {
		if !g.Has(playerID) {
			continue
		}
		own, other := g.Team1, g.Team2
		if !g.InTeam1(playerID) {
			own, other = other, own
		}
		win := won(g, playerID)

		for _, id := range own {
			if id != playerID {
				tally(with, id, win)
			}
		}
		for _, id := range other {
			tally(against, id, win)
		}
	}
	return pairingList(with), pairingList(against)
}

func pairingList(m map[string]*models.PairingStat) []models.PairingStat {
	out := make([]models.PairingStat, 0, len(m))
	for _, st := range m {
		st.WinPerc = float64(st.Wins) / float64(st.Games) * 100
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Name < out[j].Name
	})
	return out
}
