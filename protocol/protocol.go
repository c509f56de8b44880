// Package protocol defines the packet taxonomy for the arena wire
// format and pure builders for every server-to-client packet. A packet
// is a JSON array whose first element is the packet type tag; optional
// trailing fields are appended only when present, so receivers treat a
// longer arity as implicitly carrying the optional payload.
package protocol

import (
	"encoding/json"

	"github.com/quasarhq/quasar-backend/models"
)

// SystemPlayerID is the reserved origin for chat messages that have no
// associated player.
const SystemPlayerID = "0"

type C2SPacketType int

const (
	C2SLogin C2SPacketType = iota + 1
	C2SStartGame
	C2SPosition
	C2SClockSync
	C2SPlayerDied
	C2SChatMessage
	C2SShipChange
	C2SPrizeCollected
	C2SSetPresence
	C2STutorialCompleted
	C2SFlagCaptured
)

type S2CPacketType int

const (
	S2CLoginReply S2CPacketType = iota + 1
	S2CPlayerEntered
	S2CPlayerLeft
	S2CPlayerPosition
	S2CClockSyncReply
	S2CPlayerDied
	S2CChatMessage
	S2CShipChange
	S2CScoreUpdate
	S2CPrizeSeedUpdate
	S2CPrizeCollected
	S2CSetPresence
	S2CFlagUpdate
)

const loginSuccessCode = 1

func BuildLoginSuccess(resources json.RawMessage, settings map[string]interface{}, mapData map[string]int, tileProperties []models.TileProperty) []interface{} {
	return []interface{}{S2CLoginReply, loginSuccessCode, resources, settings, mapData, tileProperties}
}

func BuildPlayerJoined(id, name string, team int, alive bool, ship, bounty, presence int) []interface{} {
	return []interface{}{S2CPlayerEntered, id, name, team, alive, ship, bounty, presence}
}

func BuildPlayerLeft(id string) []interface{} {
	return []interface{}{S2CPlayerLeft, id}
}

// BuildPlayerPosition carries a projectile spawn as an optional ninth
// field when projectile is non-nil.
func BuildPlayerPosition(timestamp uint32, id string, direction int, x, y, xVelocity, yVelocity float64, safe bool, projectile interface{}) []interface{} {
	packet := []interface{}{S2CPlayerPosition, timestamp, id, direction, x, y, xVelocity, yVelocity, safe}
	if projectile != nil {
		packet = append(packet, projectile)
	}
	return packet
}

func BuildClockSyncReply(clientTimestamp interface{}, serverTimestamp uint32) []interface{} {
	return []interface{}{S2CClockSyncReply, clientTimestamp, serverTimestamp}
}

func BuildPlayerDeath(x, y float64, victimID, killerID string, gainedBounty int) []interface{} {
	return []interface{}{S2CPlayerDied, x, y, victimID, killerID, gainedBounty}
}

// BuildChatMessage attributes text to a player id, or to the system
// origin when playerID is empty.
func BuildChatMessage(playerID, text string) []interface{} {
	if playerID == "" {
		playerID = SystemPlayerID
	}
	return []interface{}{S2CChatMessage, playerID, text}
}

func BuildShipChange(id string, ship int) []interface{} {
	return []interface{}{S2CShipChange, id, ship}
}

func BuildScoreUpdate(id string, points, wins, losses int) []interface{} {
	return []interface{}{S2CScoreUpdate, id, points, wins, losses}
}

func BuildPrizeSeedUpdate(seed, timestamp uint32) []interface{} {
	return []interface{}{S2CPrizeSeedUpdate, seed, timestamp}
}

func BuildPrizeCollected(id string, prizeType, xTile, yTile int) []interface{} {
	return []interface{}{S2CPrizeCollected, id, prizeType, xTile, yTile}
}

func BuildSetPresence(id string, presence int) []interface{} {
	return []interface{}{S2CSetPresence, id, presence}
}

func BuildFlagUpdate(id, team, xTile, yTile int) []interface{} {
	return []interface{}{S2CFlagUpdate, id, team, xTile, yTile}
}
