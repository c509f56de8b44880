package game

import (
	"testing"

	"github.com/quasarhq/quasar-backend/protocol"
)

func TestBroadcastExcludesSenderAndUnstarted(t *testing.T) {
	list := NewPlayerList()

	sender := NewPlayer(newFakeConn(), "a", "alice", 0)
	sender.Started = true
	started := NewPlayer(newFakeConn(), "b", "bob", 1)
	started.Started = true
	lobby := NewPlayer(newFakeConn(), "c", "carol", 0)

	list.Add(sender)
	list.Add(started)
	list.Add(lobby)

	list.Broadcast(sender, protocol.BuildChatMessage("a", "hi"))

	if got := len(sender.conn.(*fakeConn).drain()); got != 0 {
		t.Fatalf("sender received %d packets, want 0", got)
	}
	if got := len(started.conn.(*fakeConn).drain()); got != 1 {
		t.Fatalf("started player received %d packets, want 1", got)
	}
	if got := len(lobby.conn.(*fakeConn).drain()); got != 0 {
		t.Fatalf("unstarted player received %d packets, want 0", got)
	}
}

func TestBroadcastAllIncludesOriginator(t *testing.T) {
	list := NewPlayerList()

	a := NewPlayer(newFakeConn(), "a", "alice", 0)
	a.Started = true
	b := NewPlayer(newFakeConn(), "b", "bob", 1)
	b.Started = true
	list.Add(a)
	list.Add(b)

	list.BroadcastAll(protocol.BuildScoreUpdate("a", 1, 1, 0))

	if got := len(a.conn.(*fakeConn).drain()); got != 1 {
		t.Fatalf("originator received %d packets, want 1", got)
	}
	if got := len(b.conn.(*fakeConn).drain()); got != 1 {
		t.Fatalf("other player received %d packets, want 1", got)
	}
}

func TestRemoveClosesConnection(t *testing.T) {
	list := NewPlayerList()
	fc := newFakeConn()
	p := NewPlayer(fc, "a", "alice", 0)
	list.Add(p)

	list.Remove(p)

	if !fc.isClosed() {
		t.Fatal("removal must close the connection")
	}
	if !list.IsEmpty() {
		t.Fatal("roster should be empty after removal")
	}
	if list.Contains(p) {
		t.Fatal("removed player still present")
	}
}

func TestFindByID(t *testing.T) {
	list := NewPlayerList()
	p := NewPlayer(newFakeConn(), "a", "alice", 0)
	list.Add(p)

	if list.FindByID("a") != p {
		t.Fatal("FindByID should return the player")
	}
	if list.FindByID("missing") != nil {
		t.Fatal("FindByID should return nil for an absent id")
	}
}
