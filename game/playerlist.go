package game

// PlayerList is the live roster of joined players. Only started
// players ever receive broadcasts: an authenticated player who has not
// entered gameplay yet is invisible to other clients and deaf to
// gameplay traffic.
type PlayerList struct {
	players []*Player
}

func NewPlayerList() *PlayerList {
	return &PlayerList{}
}

func (l *PlayerList) Add(player *Player) {
	l.players = append(l.players, player)
}

// Remove closes the player's connection first, then drops them from
// the roster.
func (l *PlayerList) Remove(player *Player) {
	player.conn.Close()
	for i, p := range l.players {
		if p == player {
			l.players = append(l.players[:i], l.players[i+1:]...)
			return
		}
	}
}

func (l *PlayerList) Contains(player *Player) bool {
	for _, p := range l.players {
		if p == player {
			return true
		}
	}
	return false
}

// FindByID is a linear lookup; fine at expected roster sizes.
func (l *PlayerList) FindByID(id string) *Player {
	for _, p := range l.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (l *PlayerList) IsEmpty() bool {
	return len(l.players) == 0
}

func (l *PlayerList) ForEach(fn func(*Player)) {
	for _, p := range l.players {
		fn(p)
	}
}

// Broadcast delivers to every started player except the excluded one.
func (l *PlayerList) Broadcast(excluded *Player, packet []interface{}) {
	for _, p := range l.players {
		if p.Started && p != excluded {
			p.Send(packet)
		}
	}
}

// BroadcastAll delivers to every started player with no exclusion,
// used for system announcements and state that must reach the
// originator, like their own score update.
func (l *PlayerList) BroadcastAll(packet []interface{}) {
	for _, p := range l.players {
		if p.Started {
			p.Send(packet)
		}
	}
}
