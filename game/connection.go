package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quasarhq/quasar-backend/protocol"
)

// Conn is the transport seen by the coordinator: it delivers outbound
// packets and can be closed. The websocket implementation lives below;
// tests substitute fakes.
type Conn interface {
	Send(packet []interface{}) error
	Close() error
}

// Connection adapts a websocket to the coordinator. Inbound frames are
// decoded into protocol packets and handed to the game's event loop; a
// malformed frame closes the connection, which the coordinator only
// sees as a normal close event.
type Connection struct {
	id          string
	ws          *websocket.Conn
	game        *Game
	log         *zap.SugaredLogger
	dumpPackets bool

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(game *Game, ws *websocket.Conn) *Connection {
	return &Connection{
		id:          uuid.NewString(),
		ws:          ws,
		game:        game,
		log:         game.log,
		dumpPackets: game.dumpPackets,
		send:        make(chan []byte, 256),
		done:        make(chan struct{}),
	}
}

func (c *Connection) run() {
	go c.writePump()
	go c.readPump()
}

func (c *Connection) Send(packet []interface{}) error {
	data, err := protocol.EncodePacket(packet)
	if err != nil {
		c.log.Errorw("unable to encode packet", "conn", c.id, "err", err)
		return err
	}
	if c.dumpPackets {
		c.log.Debugf("S2C %s", data)
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return nil
	default:
		// Slow consumer: drop the connection rather than block the
		// event loop.
		c.log.Warnw("send buffer full, dropping connection", "conn", c.id)
		return c.Close()
	}
}

func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
	return nil
}

func (c *Connection) readPump() {
	defer func() {
		c.Close()
		c.game.connectionClosed(c)
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if c.dumpPackets {
			c.log.Debugf("C2S %s", data)
		}

		packet, err := protocol.DecodePacket(data)
		if err != nil {
			c.log.Warnw("malformed packet, closing connection", "conn", c.id)
			return
		}
		c.game.handleInbound(c, packet)
	}
}

func (c *Connection) writePump() {
	defer c.Close()

	for {
		select {
		case data := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
