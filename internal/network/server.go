package network

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Server promove conexões HTTP em /ws para canais WebSocket persistentes e
// as entrega ao Hub.
type Server struct {
	hub *Hub
}

var upgrader = websocket.Upgrader{
	// Identidade é por nome de jogador, não por origem; qualquer origem
	// pode conectar.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewServer injeta a lógica do jogo (o gateway) no Hub.
func NewServer(handler EventHandler) *Server {
	return &Server{
		hub: NewHub(handler),
	}
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[network] upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		hub:  s.hub,
		send: make(chan Message, 256),
	}

	client.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// Attach registra /ws no mux dado e sobe a goroutine do Hub. Usado quando o
// WebSocket divide a porta com a API REST e o health check.
func (s *Server) Attach(mux *http.ServeMux) {
	go s.hub.Run()
	mux.HandleFunc("/ws", s.wsHandler)
}

// Listen inicia a goroutine do Hub e serve /ws no endereço dado. Bloqueante.
func (s *Server) Listen(address string) error {
	mux := http.NewServeMux()
	s.Attach(mux)

	log.Printf("[network] websocket server listening on ws://%s/ws", address)
	return http.ListenAndServe(address, mux)
}
