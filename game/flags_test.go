package game

import (
	"testing"

	"github.com/quasarhq/quasar-backend/models"
)

// twoFlagArena has flag tiles at indices 3 and 7 on a 10-wide map.
func twoFlagArena() *models.Arena {
	return &models.Arena{
		Settings: map[string]interface{}{},
		Map:      map[string]int{"3": 1, "7": 1, "12": 0},
		TileProperties: []models.TileProperty{
			{Object: 0},
			{Object: models.ObjectFlag},
		},
		Game: models.GameSettings{MaxTeams: 2, KillPoints: 1},
		Size: models.MapSettings{Width: 10, Height: 10},
	}
}

func TestRegistryConstruction(t *testing.T) {
	registry := NewFlagRegistry(twoFlagArena())
	if registry.Count() != 2 {
		t.Fatalf("flag count = %d, want 2", registry.Count())
	}

	first := registry.Get(0)
	if first.ID != 0 || first.Team != NeutralTeam || first.XTile != 3 || first.YTile != 0 {
		t.Fatalf("flag 0 = %+v", first)
	}
	second := registry.Get(1)
	if second.ID != 1 || second.XTile != 7 || second.YTile != 0 {
		t.Fatalf("flag 1 = %+v", second)
	}
}

func TestCaptureChangesOwnership(t *testing.T) {
	registry := NewFlagRegistry(twoFlagArena())

	if !registry.Capture(0, 0) {
		t.Fatal("first capture by team 0 should change ownership")
	}
	if registry.Get(0).Team != 0 {
		t.Fatalf("flag 0 owner = %d, want 0", registry.Get(0).Team)
	}

	if registry.Capture(0, 0) {
		t.Fatal("repeated capture by the owning team should report no change")
	}

	if !registry.Capture(0, 1) {
		t.Fatal("capture by the other team should change ownership")
	}
	if registry.Get(0).Team != 1 {
		t.Fatalf("flag 0 owner = %d, want 1", registry.Get(0).Team)
	}
}

func TestCaptureOutOfRange(t *testing.T) {
	registry := NewFlagRegistry(twoFlagArena())
	if registry.Capture(-1, 0) || registry.Capture(2, 0) {
		t.Fatal("out-of-range captures should be no-ops")
	}
}

func TestGetReturnsValueCopy(t *testing.T) {
	registry := NewFlagRegistry(twoFlagArena())
	flag := registry.Get(0)
	flag.Team = 9
	if registry.Get(0).Team != NeutralTeam {
		t.Fatal("mutating the returned flag must not change registry state")
	}
}
