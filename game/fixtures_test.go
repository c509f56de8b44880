package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quasarhq/quasar-backend/protocol"
	"github.com/quasarhq/quasar-backend/repository"
)

// fakeConn records outbound packets for assertions.
type fakeConn struct {
	mu      sync.Mutex
	packets chan []interface{}
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{packets: make(chan []interface{}, 256)}
}

func (f *fakeConn) Send(packet []interface{}) error {
	select {
	case f.packets <- packet:
	default:
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeConn) waitFor(t *testing.T, want protocol.S2CPacketType) []interface{} {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case packet := <-f.packets:
			if tag, ok := packet[0].(protocol.S2CPacketType); ok && tag == want {
				return packet
			}
		case <-deadline:
			t.Fatalf("timed out waiting for packet %d", want)
		}
	}
}

// drain empties the buffered packet stream and returns it.
func (f *fakeConn) drain() [][]interface{} {
	var packets [][]interface{}
	for {
		select {
		case packet := <-f.packets:
			packets = append(packets, packet)
		default:
			return packets
		}
	}
}

func waitClosed(t *testing.T, f *fakeConn) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.isClosed() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("connection was not closed")
}

// fakeAuth resolves the token itself as the identity. An empty token
// fails.
type fakeAuth struct{}

func (fakeAuth) Authenticate(ctx context.Context, token string) (AuthResult, error) {
	if token == "" {
		return AuthResult{}, errors.New("authentication rejected")
	}
	return AuthResult{ID: token, Name: "name-" + token}, nil
}

// memStore is an in-memory Store for coordinator tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(ctx context.Context, table, key string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[table+"/"+key]
	if !ok {
		return repository.ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (s *memStore) Set(ctx context.Context, table, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[table+"/"+key] = raw
	return nil
}

func (s *memStore) Close() error {
	return nil
}

// slowStore widens the window between authentication and admission by
// delaying record loads.
type slowStore struct {
	*memStore
	delay time.Duration
}

func (s *slowStore) Get(ctx context.Context, table, key string, out interface{}) error {
	time.Sleep(s.delay)
	return s.memStore.Get(ctx, table, key, out)
}

// countingStore records how many times it has been closed.
type countingStore struct {
	*memStore
	mu     sync.Mutex
	closed int
}

func (s *countingStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *countingStore) closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func newTestGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	if cfg.Arena == nil {
		cfg.Arena = twoFlagArena()
	}
	if cfg.Store == nil {
		cfg.Store = repository.NewDisabledStore()
	}
	if cfg.Authenticators == nil {
		cfg.Authenticators = map[string]Authenticator{"test": fakeAuth{}}
	}
	cfg.Seed = 42
	g := NewGame(cfg)
	go g.Run()
	t.Cleanup(g.Stop)
	return g
}

func loginPacket(token string) protocol.Packet {
	return protocol.Packet{
		Type: protocol.C2SLogin,
		Args: []interface{}{map[string]interface{}{"strategy": "test", "accessToken": token}},
	}
}

// onLoop runs fn on the event loop and waits for it, acting as a
// barrier for everything posted earlier.
func onLoop(g *Game, fn func()) {
	done := make(chan struct{})
	g.post(func() {
		fn()
		close(done)
	})
	<-done
}

// join connects a fake transport and completes a login for the token.
func join(t *testing.T, g *Game, token string) *fakeConn {
	t.Helper()
	fc := newFakeConn()
	g.addConn(fc)
	g.handleInbound(fc, loginPacket(token))
	fc.waitFor(t, protocol.S2CLoginReply)
	onLoop(g, func() {})
	return fc
}

// startGame enters gameplay and discards the snapshot packets.
func startGame(t *testing.T, g *Game, fc *fakeConn) {
	t.Helper()
	g.handleInbound(fc, protocol.Packet{Type: protocol.C2SStartGame, Args: []interface{}{float64(0)}})
	onLoop(g, func() {})
	fc.drain()
}

func countPackets(packets [][]interface{}, tag protocol.S2CPacketType) int {
	count := 0
	for _, packet := range packets {
		if got, ok := packet[0].(protocol.S2CPacketType); ok && got == tag {
			count++
		}
	}
	return count
}
