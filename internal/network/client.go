package network

import (
	"log"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Tempo máximo para uma escrita na conexão.
	writeWait = 10 * time.Second

	// Tempo máximo aguardando um pong do cliente.
	pongWait = 60 * time.Second

	// Frequência dos pings. Precisa ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client representa um canal persistente com um jogador conectado.
// A identidade (sessão + jogador) fica no gateway, não aqui.
type Client struct {
	conn *websocket.Conn
	hub  *Hub

	// Canal bufferizado de saída. O buffer evita que um broadcast bloqueie
	// por causa de um cliente lento.
	send chan Message
}

// Conn retorna a net.Conn subjacente (útil para logar o endereço remoto).
func (c *Client) Conn() net.Conn {
	return c.conn.UnderlyingConn()
}

// Send é a única porta de escrita segura para outras goroutines.
func (c *Client) Send() chan<- Message {
	return c.send
}

// Close derruba a conexão à força. O readLoop percebe o erro e dispara o
// fluxo normal de desregistro no Hub. Usado pelo gateway quando um jogador
// reconecta e o canal antigo precisa morrer primeiro.
func (c *Client) Close() {
	c.conn.Close()
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[network] unexpected close from %s: %v", c.conn.RemoteAddr(), err)
			}
			break
		}

		c.hub.incoming <- clientMessage{client: c, msg: msg}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// O Hub fechou o canal: cliente desregistrado.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("[network] write error to %s: %v", c.conn.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
