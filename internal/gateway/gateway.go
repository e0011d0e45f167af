package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"cardbattle/internal/game/player"
	"cardbattle/internal/network"
	"cardbattle/internal/session"
)

// Comandos cliente -> servidor aceitos no canal persistente.
const (
	CmdJoinGame    = "JOIN_GAME"
	CmdStartGame   = "START_GAME"
	CmdSelectCards = "SELECT_CARDS"
	CmdPlayCard    = "PLAY_CARD"
	CmdPlaceBet    = "PLACE_BET"
	CmdSurrender   = "SURRENDER"
	CmdGetSnapshot = "GET_SNAPSHOT"
)

type joinGamePayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

type joinedPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

type selectCardsPayload struct {
	Cards []string `json:"cards"`
}

type playCardPayload struct {
	CardID    string `json:"cardId"`
	Attribute string `json:"attribute,omitempty"`
}

type placeBetPayload struct {
	CardID string `json:"cardId"`
	Number int    `json:"number"`
}

// Channel é o que o gateway precisa de um canal de cliente. *network.Client
// satisfaz; os testes usam um fake com canal bufferizado.
type Channel interface {
	Send() chan<- network.Message
	Close()
}

// binding amarra um canal à sua identidade (sessão + jogador) depois do
// JOIN_GAME. Todo comando subsequente herda a identidade do canal: o cliente
// nunca manda playerId de novo e não consegue agir por outro jogador.
type binding struct {
	code     string
	playerID string
}

// Gateway traduz mensagens do canal persistente em chamadas na sessão, e
// implementa o Notifier que as sessões usam para falar com as salas.
// OnConnect/OnDisconnect/OnMessage chegam serializados pela goroutine do
// Hub; o mutex existe porque Broadcast/SendTo chegam das goroutines dos
// atores de sessão.
type Gateway struct {
	directory *player.Directory
	registry  *session.Registry

	mu       sync.RWMutex
	identity map[Channel]binding
	rooms    map[string]map[string]Channel // code -> playerID -> canal
}

func New(directory *player.Directory) *Gateway {
	return &Gateway{
		directory: directory,
		identity:  make(map[Channel]binding),
		rooms:     make(map[string]map[string]Channel),
	}
}

// SetRegistry fecha o ciclo gateway <-> registry: o registry precisa do
// gateway como Notifier das sessões, e o gateway precisa do registry para
// resolver códigos.
func (g *Gateway) SetRegistry(r *session.Registry) {
	g.registry = r
}

// --- network.EventHandler ---

func (g *Gateway) OnConnect(c *network.Client) {
	log.Printf("[Gateway] channel connected from %s", c.Conn().RemoteAddr())
}

func (g *Gateway) OnDisconnect(c *network.Client) {
	g.channelClosed(c)
}

func (g *Gateway) OnMessage(c *network.Client, msg network.Message) {
	g.HandleMessage(c, msg)
}

// channelClosed desfaz a associação do canal, se ele ainda for o canal
// corrente do jogador. Um canal antigo derrubado por reconexão não pode
// desassociar o novo.
func (g *Gateway) channelClosed(c Channel) {
	g.mu.Lock()
	b, bound := g.identity[c]
	delete(g.identity, c)

	current := false
	if bound {
		if room, ok := g.rooms[b.code]; ok && room[b.playerID] == c {
			delete(room, b.playerID)
			if len(room) == 0 {
				delete(g.rooms, b.code)
			}
			current = true
		}
	}
	g.mu.Unlock()

	if !current {
		return
	}
	if s, err := g.registry.Lookup(b.code); err == nil {
		s.Disconnect(b.playerID)
	}
}

// HandleMessage roteia um comando decodificando o payload na borda. Erros
// de jogo vão SOMENTE ao canal de origem, nunca para a sala.
func (g *Gateway) HandleMessage(c Channel, msg network.Message) {
	if msg.Type == CmdJoinGame {
		g.handleJoinGame(c, msg.Payload)
		return
	}

	// Todo o resto exige canal associado.
	b, ok := g.bindingOf(c)
	if !ok {
		g.sendError(c, session.CodeNotInSession, "send JOIN_GAME first")
		return
	}
	s, err := g.registry.Lookup(b.code)
	if err != nil {
		g.sendError(c, session.CodeUnknownSession, "session %s no longer exists", b.code)
		return
	}

	switch msg.Type {
	case CmdStartGame:
		g.reply(c, s.Start(b.playerID))

	case CmdSelectCards:
		var p selectCardsPayload
		if !g.decode(c, msg.Payload, &p) {
			return
		}
		g.reply(c, s.SelectCards(b.playerID, p.Cards))

	case CmdPlayCard:
		var p playCardPayload
		if !g.decode(c, msg.Payload, &p) {
			return
		}
		g.reply(c, s.PlayCard(b.playerID, p.CardID, p.Attribute))

	case CmdPlaceBet:
		var p placeBetPayload
		if !g.decode(c, msg.Payload, &p) {
			return
		}
		g.reply(c, s.PlaceBet(b.playerID, p.CardID, p.Number))

	case CmdSurrender:
		g.reply(c, s.Surrender(b.playerID))

	case CmdGetSnapshot:
		g.send(c, network.NewMessage(session.EventSnapshot, s.Snapshot()))

	default:
		g.sendError(c, "UnknownCommand", "unknown command type: %s", msg.Type)
	}
}

// handleJoinGame associa o canal ao par (sessão, jogador). Se o jogador já
// tem um canal vivo nessa sessão, o antigo é derrubado primeiro: nunca
// existem dois canais pelo mesmo jogador.
func (g *Gateway) handleJoinGame(c Channel, raw json.RawMessage) {
	var p joinGamePayload
	if !g.decode(c, raw, &p) {
		return
	}
	if p.Code == "" || p.PlayerID == "" {
		g.sendError(c, session.CodeUnknownSession, "code and playerId are required")
		return
	}

	if _, err := g.directory.Get(p.PlayerID); err != nil {
		g.sendError(c, session.CodeUnknownPlayer, "player %s does not exist", p.PlayerID)
		return
	}
	s, err := g.registry.Lookup(p.Code)
	if err != nil {
		g.reply(c, err)
		return
	}

	// Jogador que já entrou (pela API REST ou numa conexão anterior) só
	// reassocia o canal; AlreadyJoined aqui é reconexão, não erro.
	if err := s.Join(p.PlayerID); err != nil {
		var ge *session.GameError
		if !errors.As(err, &ge) || ge.Code != session.CodeAlreadyJoined {
			g.reply(c, err)
			return
		}
	}

	g.mu.Lock()
	room, ok := g.rooms[p.Code]
	if !ok {
		room = make(map[string]Channel)
		g.rooms[p.Code] = room
	}
	old := room[p.PlayerID]
	room[p.PlayerID] = c
	g.identity[c] = binding{code: p.Code, playerID: p.PlayerID}
	g.mu.Unlock()

	if old != nil && old != c {
		old.Close()
	}

	if err := s.Connect(p.PlayerID); err != nil {
		g.reply(c, err)
		return
	}

	g.send(c, network.NewMessage(session.EventJoined, joinedPayload{Code: p.Code, PlayerID: p.PlayerID}))
	g.send(c, network.NewMessage(session.EventSnapshot, s.Snapshot()))
}

func (g *Gateway) bindingOf(c Channel) (binding, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, ok := g.identity[c]
	return b, ok
}

// --- session.Notifier ---

// Broadcast entrega o evento a todos os canais da sala, sem nunca bloquear
// o ator da sessão: cliente com buffer cheio perde o evento (e ressincroniza
// pelo snapshot quando acordar).
func (g *Gateway) Broadcast(code string, msg network.Message) {
	g.mu.RLock()
	channels := make([]Channel, 0, len(g.rooms[code]))
	for _, ch := range g.rooms[code] {
		channels = append(channels, ch)
	}
	g.mu.RUnlock()

	for _, ch := range channels {
		g.send(ch, msg)
	}
}

func (g *Gateway) SendTo(code, playerID string, msg network.Message) {
	g.mu.RLock()
	ch, ok := g.rooms[code][playerID]
	g.mu.RUnlock()

	if ok {
		g.send(ch, msg)
	}
}

// --- helpers ---

func (g *Gateway) send(c Channel, msg network.Message) {
	select {
	case c.Send() <- msg:
	default:
		log.Printf("[Gateway] dropping %s: channel buffer full", msg.Type)
	}
}

func (g *Gateway) reply(c Channel, err error) {
	if err != nil {
		g.send(c, session.NewErrorMessage(err))
	}
}

func (g *Gateway) sendError(c Channel, code, format string, args ...any) {
	g.send(c, network.NewMessage(session.EventError, session.ErrorPayload{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}))
}

// decode valida o payload na borda; JSON malformado nunca chega na sessão.
func (g *Gateway) decode(c Channel, raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		g.sendError(c, "MalformedPayload", "could not decode payload: %v", err)
		return false
	}
	return true
}
