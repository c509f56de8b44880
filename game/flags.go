package game

import (
	"sort"
	"strconv"

	"github.com/quasarhq/quasar-backend/models"
)

// NeutralTeam is the owner of a flag nobody has captured yet.
const NeutralTeam = -1

// Flag is one capturable map object. Coordinates never change after
// construction; ownership changes only through FlagRegistry.Capture.
type Flag struct {
	ID    int
	Team  int
	XTile int
	YTile int
}

// FlagRegistry owns the arena's flags. It is built once from the map
// and tile-property data: every tile whose properties mark it as a
// flag object becomes one Flag, ids assigned in tile order.
type FlagRegistry struct {
	flags []Flag
}

func NewFlagRegistry(arena *models.Arena) *FlagRegistry {
	registry := &FlagRegistry{}

	indices := make([]int, 0, len(arena.Map))
	for key := range arena.Map {
		index, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		indices = append(indices, index)
	}
	sort.Ints(indices)

	for _, index := range indices {
		tile := arena.Map[strconv.Itoa(index)]
		if tile < 0 || tile >= len(arena.TileProperties) {
			continue
		}
		if arena.TileProperties[tile].Object != models.ObjectFlag {
			continue
		}
		registry.flags = append(registry.flags, Flag{
			ID:    len(registry.flags),
			Team:  NeutralTeam,
			XTile: index % arena.Size.Width,
			YTile: index / arena.Size.Width,
		})
	}
	return registry
}

// Capture assigns the flag to the given team. It reports whether
// ownership actually changed; a capture by the already-owning team or
// an out-of-range id is a no-op.
func (r *FlagRegistry) Capture(id, team int) bool {
	if id < 0 || id >= len(r.flags) {
		return false
	}
	changed := r.flags[id].Team != team
	r.flags[id].Team = team
	return changed
}

// Get returns a value copy so callers cannot mutate registry state
// except through Capture.
func (r *FlagRegistry) Get(id int) Flag {
	return r.flags[id]
}

func (r *FlagRegistry) Count() int {
	return len(r.flags)
}

func (r *FlagRegistry) ForEach(fn func(Flag)) {
	for _, flag := range r.flags {
		fn(flag)
	}
}
