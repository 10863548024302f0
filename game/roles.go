package game

import (
	"errors"

	"github.com/wfunc/neonwhisper/models"
)

var errNoPlayers = errors.New("no players to assign roles to")

// AssignRoles marks one uniformly chosen player as impostor and everybody else
// as civilian. Players are updated in place.
func AssignRoles(players []*GamePlayer, rng Rand) (impostorID string, err error) {
	if len(players) == 0 {
		return "", errNoPlayers
	}
	pick := rng.IntN(len(players))
	for i, p := range players {
		if i == pick {
			p.Role = models.RoleImpostor
			impostorID = p.ID
		} else {
			p.Role = models.RoleCivilian
		}
	}
	return impostorID, nil
}

// GenerateTurnOrder returns a uniformly shuffled permutation of the player ids.
func GenerateTurnOrder(players []*GamePlayer, rng Rand) []string {
	order := make([]string, len(players))
	for i, p := range players {
		order[i] = p.ID
	}
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}
