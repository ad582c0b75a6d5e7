// Package rating implements the doubles Elo variant used by the league.
//
// Every player carries two ratings. The match rating moves on wins and
// losses only; the points rating moves on the share of rounds won. Both
// start at models.InitialRating and are updated against the mean pre-game
// rating of the opposing pair with K = 32, truncating the new rating to an
// integer.
package rating

import "math"

// K is the maximum rating change per game.
const K = 32

// ExpectedResult is the expected score of a player rated p1 against p2.
func ExpectedResult(p1, p2 float64) float64 {
	return 1 / (1 + math.Pow(10, (p2-p1)/400))
}

// Result scores a game from one side's view. Equal scores are worth 0.5.
// With raw set a win is 1 and a loss 0, otherwise the result is the share
// of rounds won.
func Result(own, opp int, raw bool) float64 {
	if own == opp {
		return 0.5
	}
	if raw {
		if own > opp {
			return 1
		}
		return 0
	}
	return float64(own) / float64(own+opp)
}

// ModifiedElo returns the player's new rating after a game, truncated
// toward zero.
func ModifiedElo(player, opponent float64, own, opp int, raw bool) int {
	return int(player + K*(Result(own, opp, raw)-ExpectedResult(player, opponent)))
}
