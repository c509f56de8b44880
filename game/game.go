// Package game implements the arena session coordinator and its
// supporting primitives: the player roster, the flag registry, the
// team allocators and the shared-seed prize clock.
package game

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quasarhq/quasar-backend/models"
	"github.com/quasarhq/quasar-backend/prng"
	"github.com/quasarhq/quasar-backend/protocol"
	"github.com/quasarhq/quasar-backend/repository"
)

const (
	defaultPrizeSeedPeriod = 2 * time.Minute
	authTimeout            = 30 * time.Second
	commandSigil           = "*"
)

// Hooks are the process-control callbacks injected at construction:
// Restart forks a replacement server, Shutdown exits this one.
type Hooks struct {
	Restart  func()
	Shutdown func()
}

// Config wires the coordinator's collaborators explicitly so tests can
// substitute fakes.
type Config struct {
	Arena          *models.Arena
	Store          repository.Store
	Authenticators map[string]Authenticator
	Allocator      TeamAllocator
	Hooks          Hooks
	Seed           uint32
	// PrizeSeedPeriod is the interval between prize seed refreshes.
	// Zero means the default of two minutes.
	PrizeSeedPeriod time.Duration
	DumpPackets     bool
	Logger          *zap.SugaredLogger
}

type sessionState int

const (
	statePreAuth sessionState = iota
	stateAuthenticating
	stateInGame
	stateTerminated
)

// session tracks one connection's progress through the login state
// machine. Completions of asynchronous work (authentication, record
// load) re-check the session before touching any state, so a
// connection that closed mid-flight is a safe no-op.
type session struct {
	conn   Conn
	state  sessionState
	player *Player
}

// Game is the single authority over all mutable game state. Every
// inbound packet, timer tick and close notification is serialized onto
// one event loop, so the roster, flags and players never need locks.
type Game struct {
	log            *zap.SugaredLogger
	arena          *models.Arena
	store          repository.Store
	authenticators map[string]Authenticator
	hooks          Hooks
	dumpPackets    bool

	players   *PlayerList
	flags     *FlagRegistry
	allocator TeamAllocator
	rng       *prng.MersenneTwister

	prizeSeed          uint32
	prizeSeedTimestamp uint32
	prizeSeedPeriod    time.Duration

	sessions map[Conn]*session

	events chan func()
	quit   chan struct{}

	lameduck     bool
	storeClosed  bool
	shutdownDone bool
}

func NewGame(cfg Config) *Game {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	allocator := cfg.Allocator
	if allocator == nil {
		allocator = NewUniformBalanced(cfg.Arena.Game.MaxTeams)
	}
	period := cfg.PrizeSeedPeriod
	if period <= 0 {
		period = defaultPrizeSeedPeriod
	}

	g := &Game{
		log:             logger,
		arena:           cfg.Arena,
		store:           cfg.Store,
		authenticators:  cfg.Authenticators,
		hooks:           cfg.Hooks,
		dumpPackets:     cfg.DumpPackets,
		players:         NewPlayerList(),
		flags:           NewFlagRegistry(cfg.Arena),
		allocator:       allocator,
		rng:             prng.NewMersenneTwister(cfg.Seed),
		prizeSeedPeriod: period,
		sessions:        make(map[Conn]*session),
		events:          make(chan func(), 256),
		quit:            make(chan struct{}),
	}
	g.updatePrizeSeed()
	return g
}

// Run drives the event loop. It returns when Stop is called.
func (g *Game) Run() {
	ticker := time.NewTicker(g.prizeSeedPeriod)
	defer ticker.Stop()

	for {
		select {
		case fn := <-g.events:
			fn()
		case <-ticker.C:
			g.updatePrizeSeed()
		case <-g.quit:
			return
		}
	}
}

func (g *Game) Stop() {
	select {
	case <-g.quit:
	default:
		close(g.quit)
	}
}

// post serializes fn onto the event loop.
func (g *Game) post(fn func()) {
	select {
	case g.events <- fn:
	case <-g.quit:
	}
}

// AcceptConnection wraps a freshly upgraded websocket and starts
// tracking it as a pre-auth session.
func (g *Game) AcceptConnection(ws *websocket.Conn) {
	c := newConnection(g, ws)
	g.addConn(c)
	c.run()
}

func (g *Game) addConn(c Conn) {
	g.post(func() {
		g.sessions[c] = &session{conn: c, state: statePreAuth}
	})
}

func (g *Game) handleInbound(c Conn, packet protocol.Packet) {
	g.post(func() {
		g.dispatch(c, packet)
	})
}

func (g *Game) connectionClosed(c Conn) {
	g.post(func() {
		sess := g.sessions[c]
		if sess == nil {
			return
		}
		delete(g.sessions, c)
		if sess.state == stateInGame && sess.player != nil && g.players.Contains(sess.player) {
			sess.state = stateTerminated
			g.playerLeft(sess.player)
		}
	})
}

// dispatch routes one inbound packet according to the session's state.
// Packets that are not valid in the current state are dropped.
func (g *Game) dispatch(c Conn, packet protocol.Packet) {
	sess := g.sessions[c]
	if sess == nil || sess.state == stateTerminated || sess.state == stateAuthenticating {
		return
	}

	if sess.state == statePreAuth {
		if packet.Type == protocol.C2SLogin {
			g.onLogin(sess, packet.Args)
		}
		return
	}

	player := sess.player
	switch packet.Type {
	case protocol.C2SStartGame:
		g.onStartGame(player, packet.Args)
	case protocol.C2SPosition:
		g.onPosition(player, packet.Args)
	case protocol.C2SClockSync:
		g.onClockSync(player, packet.Args)
	case protocol.C2SPlayerDied:
		g.onPlayerDied(player, packet.Args)
	case protocol.C2SChatMessage:
		g.onChatMessage(player, packet.Args)
	case protocol.C2SShipChange:
		g.onShipChange(player, packet.Args)
	case protocol.C2SPrizeCollected:
		g.onPrizeCollected(player, packet.Args)
	case protocol.C2SSetPresence:
		g.onSetPresence(player, packet.Args)
	case protocol.C2STutorialCompleted:
		g.onTutorialCompleted(player)
	case protocol.C2SFlagCaptured:
		g.onFlagCaptured(player, packet.Args)
	}
}

func (g *Game) onLogin(sess *session, args []interface{}) {
	credentials := protocol.ObjectArg(args, 0)
	strategy, _ := credentials["strategy"].(string)
	token, _ := credentials["accessToken"].(string)

	authenticator := g.authenticators[strategy]
	if authenticator == nil {
		g.log.Errorw("invalid authentication strategy", "strategy", strategy)
		g.terminate(sess)
		return
	}

	sess.state = stateAuthenticating
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()
		result, err := authenticator.Authenticate(ctx, token)
		g.post(func() {
			g.finishLogin(sess, result, err)
		})
	}()
}

func (g *Game) finishLogin(sess *session, result AuthResult, err error) {
	if g.sessions[sess.conn] != sess || sess.state != stateAuthenticating {
		return
	}
	if err != nil {
		g.log.Errorw("error logging user in", "err", err)
		g.terminate(sess)
		return
	}

	// A given identity has at most one active session: force the old
	// one out before admitting the new login.
	if old := g.players.FindByID(result.ID); old != nil {
		g.playerLeft(old)
	}

	team := g.allocator.PlaceOnTeam(g.players)
	player := NewPlayer(sess.conn, result.ID, result.Name, team)

	go func() {
		if err := player.Load(g.store); err != nil && !errors.Is(err, repository.ErrNoDatabase) {
			g.log.Warnw("unable to load player record", "id", player.ID, "err", err)
		}
		g.post(func() {
			g.admitPlayer(sess, player)
		})
	}()
}

func (g *Game) admitPlayer(sess *session, player *Player) {
	if g.sessions[sess.conn] != sess || sess.state != stateAuthenticating {
		return
	}
	if player.Banned {
		g.log.Infow("rejecting banned player", "name", player.Name, "id", player.ID)
		g.terminate(sess)
		return
	}

	// A second login for the same identity may have landed while the
	// record loaded; the roster check at auth time is not enough. The
	// latest session wins.
	if old := g.players.FindByID(player.ID); old != nil {
		g.playerLeft(old)
	}

	g.players.Add(player)
	sess.player = player
	sess.state = stateInGame

	settings := g.arena.LoginSettings(player.ID, player.Name, player.Team, !player.CompletedTutorial)
	player.Send(protocol.BuildLoginSuccess(g.arena.Resources, settings, g.arena.Map, g.arena.TileProperties))
	g.log.Infow("player entered the game", "name", player.Name, "id", player.ID, "team", player.Team)
}

// onStartGame sends the new player the world snapshot before anyone is
// told about them, so their client state is consistent before they
// become visible.
func (g *Game) onStartGame(player *Player, args []interface{}) {
	player.Started = true
	player.Ship = protocol.IntArg(args, 0)

	player.Send(protocol.BuildPrizeSeedUpdate(g.prizeSeed, g.prizeSeedTimestamp))
	g.flags.ForEach(func(flag Flag) {
		player.Send(protocol.BuildFlagUpdate(flag.ID, flag.Team, flag.XTile, flag.YTile))
	})
	g.players.ForEach(func(other *Player) {
		if other.Started && other != player {
			player.Send(playerJoinedPacket(other))
			player.Send(playerPositionPacket(other, nil))
			player.Send(scoreUpdatePacket(other))
		}
	})

	g.players.Broadcast(player, playerJoinedPacket(player))
	g.players.BroadcastAll(scoreUpdatePacket(player))
}

func (g *Game) onPosition(player *Player, args []interface{}) {
	player.Timestamp = protocol.Uint32Arg(args, 0)
	player.Direction = protocol.IntArg(args, 1)
	player.X = protocol.FloatArg(args, 2)
	player.Y = protocol.FloatArg(args, 3)
	player.XVelocity = protocol.FloatArg(args, 4)
	player.YVelocity = protocol.FloatArg(args, 5)
	player.Safe = protocol.BoolArg(args, 6)
	player.Alive = true

	var projectile interface{}
	if len(args) > 7 {
		projectile = args[7]
	}
	g.players.Broadcast(player, playerPositionPacket(player, projectile))
}

func (g *Game) onClockSync(player *Player, args []interface{}) {
	var clientTimestamp interface{}
	if len(args) > 0 {
		clientTimestamp = args[0]
	}
	player.Send(protocol.BuildClockSyncReply(clientTimestamp, timestamp()))
}

func (g *Game) onPlayerDied(player *Player, args []interface{}) {
	x := protocol.FloatArg(args, 0)
	y := protocol.FloatArg(args, 1)
	killerID := protocol.StringArg(args, 2)

	// The killer may already have left; drop the packet silently.
	killer := g.players.FindByID(killerID)
	if killer == nil {
		return
	}

	gainedBounty := player.Bounty
	killer.Score.Points += g.arena.Game.KillPoints + gainedBounty
	killer.Score.Wins++

	player.Score.Losses++
	player.Bounty = 0
	player.Alive = false

	g.players.Broadcast(player, protocol.BuildPlayerDeath(x, y, player.ID, killer.ID, gainedBounty))
}

func (g *Game) onChatMessage(player *Player, args []interface{}) {
	text := protocol.StringArg(args, 0)

	if player.Operator && strings.HasPrefix(text, commandSigil) {
		g.runCommand(player, text)
		return
	}
	g.players.Broadcast(player, protocol.BuildChatMessage(player.ID, text))
}

func (g *Game) onShipChange(player *Player, args []interface{}) {
	player.Ship = protocol.IntArg(args, 0)
	g.players.Broadcast(player, protocol.BuildShipChange(player.ID, player.Ship))
}

func (g *Game) onPrizeCollected(player *Player, args []interface{}) {
	player.Bounty++
	g.players.Broadcast(player, protocol.BuildPrizeCollected(player.ID,
		protocol.IntArg(args, 0), protocol.IntArg(args, 1), protocol.IntArg(args, 2)))
}

func (g *Game) onSetPresence(player *Player, args []interface{}) {
	player.Presence = protocol.IntArg(args, 0)
	g.players.Broadcast(player, protocol.BuildSetPresence(player.ID, player.Presence))
}

func (g *Game) onTutorialCompleted(player *Player) {
	player.CompletedTutorial = true
}

// onFlagCaptured applies captures in arrival order; the client
// timestamp in the packet is not used to reject stale captures.
func (g *Game) onFlagCaptured(player *Player, args []interface{}) {
	id := int(protocol.Uint32Arg(args, 1))
	if !g.flags.Capture(id, player.Team) {
		return
	}
	flag := g.flags.Get(id)
	g.players.BroadcastAll(protocol.BuildFlagUpdate(flag.ID, flag.Team, flag.XTile, flag.YTile))
}

func (g *Game) playerLeft(player *Player) {
	g.players.Broadcast(player, protocol.BuildPlayerLeft(player.ID))
	if sess := g.sessions[player.conn]; sess != nil {
		sess.state = stateTerminated
	}
	g.players.Remove(player)
	g.log.Infow("player left the game", "name", player.Name, "id", player.ID)

	go func() {
		if err := player.Save(g.store); err != nil && !errors.Is(err, repository.ErrNoDatabase) {
			g.log.Warnw("unable to save player record", "id", player.ID, "err", err)
		}
	}()

	// Lameducking and the roster just drained: time to exit.
	if g.lameduck && g.players.IsEmpty() {
		g.shutdown()
	}
}

func (g *Game) updatePrizeSeed() {
	g.prizeSeed = g.rng.Uint32()
	g.prizeSeedTimestamp = timestamp()
	g.players.BroadcastAll(protocol.BuildPrizeSeedUpdate(g.prizeSeed, g.prizeSeedTimestamp))
}

// Close puts the arena into lameduck mode: the store is closed, every
// player is told to move on, and the process exits once the roster
// drains. Idempotent.
func (g *Game) Close() {
	g.post(func() {
		if g.lameduck {
			return
		}
		g.lameduck = true
		g.closeStore()
		g.players.BroadcastAll(systemChat("This server is now closed. Refresh your browser to join the new server."))
		if g.players.IsEmpty() {
			g.shutdown()
		}
	})
}

func (g *Game) terminate(sess *session) {
	sess.state = stateTerminated
	delete(g.sessions, sess.conn)
	sess.conn.Close()
}

func (g *Game) shutdown() {
	if g.shutdownDone {
		return
	}
	g.shutdownDone = true
	g.closeStore()
	if g.hooks.Shutdown != nil {
		g.hooks.Shutdown()
	}
}

func (g *Game) closeStore() {
	if g.storeClosed {
		return
	}
	g.storeClosed = true
	g.store.Close()
}

func playerJoinedPacket(p *Player) []interface{} {
	return protocol.BuildPlayerJoined(p.ID, p.Name, p.Team, p.Alive, p.Ship, p.Bounty, p.Presence)
}

func playerPositionPacket(p *Player, projectile interface{}) []interface{} {
	return protocol.BuildPlayerPosition(p.Timestamp, p.ID, p.Direction, p.X, p.Y, p.XVelocity, p.YVelocity, p.Safe, projectile)
}

func scoreUpdatePacket(p *Player) []interface{} {
	return protocol.BuildScoreUpdate(p.ID, p.Score.Points, p.Score.Wins, p.Score.Losses)
}

func systemChat(text string) []interface{} {
	return protocol.BuildChatMessage("", text)
}

// timestamp is the 32-bit millisecond wall clock shared with clients.
func timestamp() uint32 {
	return uint32(time.Now().UnixMilli())
}
