package game

import (
	"context"
	"errors"
	"time"

	"github.com/quasarhq/quasar-backend/models"
	"github.com/quasarhq/quasar-backend/repository"
)

const playerTable = "players"

const storeTimeout = 10 * time.Second

// Score is the accumulated standing a player carries across sessions.
type Score struct {
	Points int
	Wins   int
	Losses int
}

// Player is one live participant, owned exclusively by the session
// coordinator for the duration of its connection. Persisted fields are
// loaded at join and flushed at leave.
type Player struct {
	conn Conn

	ID      string
	Name    string
	Team    int
	Started bool
	Alive   bool

	// Kinematic state, overwritten verbatim from position packets.
	Timestamp uint32
	Direction int
	X         float64
	Y         float64
	XVelocity float64
	YVelocity float64
	Safe      bool

	Ship     int
	Bounty   int
	Presence int

	Banned            bool
	Operator          bool
	CompletedTutorial bool

	Score Score
}

func NewPlayer(conn Conn, id, name string, team int) *Player {
	return &Player{
		conn:  conn,
		ID:    id,
		Name:  name,
		Team:  team,
		Alive: true,
	}
}

func (p *Player) Send(packet []interface{}) {
	p.conn.Send(packet)
}

// Load fills the persisted fields from the store, writing a fresh
// record when none exists yet. A store failure is not fatal: the
// player keeps default values and gameplay continues.
func (p *Player) Load(store repository.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var record models.PlayerRecord
	err := store.Get(ctx, playerTable, p.ID, &record)
	if errors.Is(err, repository.ErrNotFound) {
		return store.Set(ctx, playerTable, p.ID, p.record())
	}
	if err != nil {
		return err
	}

	p.Banned = record.Banned
	p.Operator = record.Operator
	p.CompletedTutorial = record.CompletedTutorial
	p.Score.Points = record.Points
	p.Score.Wins = record.Wins
	p.Score.Losses = record.Losses
	return nil
}

// Save flushes the persisted fields back to the store.
func (p *Player) Save(store repository.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	return store.Set(ctx, playerTable, p.ID, p.record())
}

func (p *Player) record() models.PlayerRecord {
	return models.PlayerRecord{
		ID:                p.ID,
		Name:              p.Name,
		Banned:            p.Banned,
		Operator:          p.Operator,
		CompletedTutorial: p.CompletedTutorial,
		Points:            p.Score.Points,
		Wins:              p.Score.Wins,
		Losses:            p.Score.Losses,
	}
}

// Unban flips the banned flag on the persisted record without
// requiring the player to be connected (read-modify-write).
func Unban(store repository.Store, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	var record models.PlayerRecord
	if err := store.Get(ctx, playerTable, id, &record); err != nil {
		return err
	}
	record.Banned = false
	return store.Set(ctx, playerTable, id, record)
}
