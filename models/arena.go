package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// TileProperty describes one tile kind from tile_properties.json.
type TileProperty struct {
	Object int `json:"object"`
}

// ObjectFlag marks a tile as a capturable flag.
const ObjectFlag = 2

type GameSettings struct {
	MaxTeams   int `json:"maxTeams"`
	KillPoints int `json:"killPoints"`
}

type MapSettings struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Arena holds the static data for one game instance: resources,
// settings, map and tile metadata, all loaded once at startup from
// data/arenas/<name>/.
type Arena struct {
	Name           string
	Resources      json.RawMessage
	Settings       map[string]interface{}
	Map            map[string]int
	TileProperties []TileProperty

	Game GameSettings
	Size MapSettings
}

func LoadArena(rootDir, name string) (*Arena, error) {
	dir := filepath.Join(rootDir, "data", "arenas", name)

	arena := &Arena{Name: name}
	if err := readJSON(filepath.Join(dir, "resources.json"), &arena.Resources); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "settings.json"), &arena.Settings); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "map.json"), &arena.Map); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, "tile_properties.json"), &arena.TileProperties); err != nil {
		return nil, err
	}

	// Settings is kept as a raw map for the login reply, but the fields
	// the server itself depends on are decoded into typed form.
	var typed struct {
		Game GameSettings `json:"game"`
		Map  MapSettings  `json:"map"`
	}
	raw, err := json.Marshal(arena.Settings)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &typed); err != nil {
		return nil, fmt.Errorf("settings.json: %w", err)
	}
	arena.Game = typed.Game
	arena.Size = typed.Map

	if arena.Size.Width <= 0 {
		return nil, fmt.Errorf("settings.json: map.width must be positive")
	}
	return arena, nil
}

// LoginSettings returns a copy of the arena settings personalized for
// one player, suitable for embedding in a login reply.
func (a *Arena) LoginSettings(id, name string, team int, showTutorial bool) map[string]interface{} {
	settings := make(map[string]interface{}, len(a.Settings)+4)
	for k, v := range a.Settings {
		settings[k] = v
	}
	settings["id"] = id
	settings["name"] = name
	settings["team"] = team
	settings["showTutorial"] = showTutorial
	return settings
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
