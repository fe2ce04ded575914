package game

import (
	"math/rand"
	"sort"
)

// AssignTeams partitions the room's players into police and thieves.
// Exactly policeCount players (clamped to half the room) become
// police; everyone's status resets to alive and the team counters are
// initialized. The shuffle is uniform so each player is equally likely
// to land on either side.
func AssignTeams(r *Room, rng *rand.Rand) {
	ids := make([]string, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	// Map order is random but not uniformly so. Sort before shuffling
	// to make the partition depend only on the rng.
	sort.Strings(ids)
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	policeCount := min(r.Settings.PoliceCount, len(ids)/2)

	for i, id := range ids {
		p := r.Players[id]
		p.Status = PlayerAlive
		if i < policeCount {
			p.Team = TeamPolice
			zero := 0
			p.Catches = &zero
			p.Rescues = nil
		} else {
			p.Team = TeamThief
			zero := 0
			p.Rescues = &zero
			p.Catches = nil
		}
	}
}
