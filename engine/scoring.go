package engine

import "sort"

// NetScore is the final score: animal points plus landscape minus discard penalties.
func NetScore(p *Player, discardPenalty int) int {
	return p.Score + p.LandscapeScore - discardPenalty*p.Penalties
}

// Standing is one row of the final ranking.
type Standing struct {
	PlayerID      string `json:"playerId"`
	Name          string `json:"name"`
	Net           int    `json:"net"`
	AnimalsPlaced int    `json:"animalsPlaced"`
	Rank          int    `json:"rank"` // 1-based; tied players share a rank
}

// Standings ranks players by net score, then by animals placed, both descending.
// Seat order breaks remaining ties.
func Standings(players []*Player, discardPenalty int) []Standing {
	out := make([]Standing, len(players))
	for i, p := range players {
		out[i] = Standing{
			PlayerID:      p.ID,
			Name:          p.Name,
			Net:           NetScore(p, discardPenalty),
			AnimalsPlaced: p.AnimalsPlaced(),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Net != out[j].Net {
			return out[i].Net > out[j].Net
		}
		return out[i].AnimalsPlaced > out[j].AnimalsPlaced
	})
	for i := range out {
		if i > 0 && out[i].Net == out[i-1].Net && out[i].AnimalsPlaced == out[i-1].AnimalsPlaced {
			out[i].Rank = out[i-1].Rank
		} else {
			out[i].Rank = i + 1
		}
	}
	return out
}

// Winners returns every player tied with the leader on both ranking keys, in seat order.
func Winners(players []*Player, discardPenalty int) []*Player {
	st := Standings(players, discardPenalty)
	if len(st) == 0 {
		return nil
	}
	top := make(map[string]bool)
	for _, s := range st {
		if s.Rank == 1 {
			top[s.PlayerID] = true
		}
	}
	var out []*Player
	for _, p := range players {
		if top[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
