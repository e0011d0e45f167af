package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"cardbattle/internal/game/card"
	"cardbattle/internal/game/player"
	"cardbattle/internal/session"
)

// ============================================================================
// DTOs da API
// ============================================================================

type CreatePlayerRequest struct {
	Name string `json:"name"`
}

type PlayerResponse struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Hand []string `json:"hand"`
	Wins int      `json:"wins"`
}

type CreateGameRequest struct {
	MaxPlayers    int    `json:"maxPlayers"`
	CardsPerRound int    `json:"cardsPerRound"`
	Mode          string `json:"mode"`

	// Em segundos; 0 usa o default do servidor.
	SettleDelaySeconds int `json:"settleDelaySeconds,omitempty"`
}

type CreateGameResponse struct {
	Code string `json:"code"`
	Mode string `json:"mode"`
}

type JoinGameRequest struct {
	PlayerID string `json:"playerId"`
}

type CardResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Image      string         `json:"image"`
	Attributes map[string]int `json:"attributes"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ============================================================================
// Configuração dos Handlers
// ============================================================================

// RegisterHandlers configura todas as rotas da API REST. O lado de tempo real
// (canal persistente) fica fora daqui; esta API cobre registro de jogador,
// consulta do catálogo e o ciclo criar/entrar/listar de sessões.
func RegisterHandlers(mux *http.ServeMux, directory *player.Directory, registry *session.Registry) {
	mux.HandleFunc("/api/players", handlePlayers(directory))
	mux.HandleFunc("/api/players/", handlePlayerByID(directory))
	mux.HandleFunc("/api/cards", handleListCards())
	mux.HandleFunc("/api/cards/", handleCardByID())
	mux.HandleFunc("/api/games", handleGames(registry))
	mux.HandleFunc("/api/games/", handleGameAction(directory, registry))
}

// ============================================================================
// Implementação dos Handlers
// ============================================================================

// handlePlayers lida com POST /players (registro).
func handlePlayers(directory *player.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
			return
		}

		var req CreatePlayerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "", "invalid payload: requires non-empty 'name'")
			return
		}

		p, err := directory.Create(req.Name)
		if err != nil {
			switch {
			case errors.Is(err, player.ErrNameTaken):
				writeError(w, http.StatusConflict, "NameTaken", err.Error())
			case errors.Is(err, player.ErrCatalogDrained):
				writeError(w, http.StatusConflict, "CatalogDrained", err.Error())
			default:
				writeError(w, http.StatusBadRequest, "", err.Error())
			}
			return
		}

		log.Printf("[api] player %q registered (%s)", p.Name(), p.ID())
		writeJSON(w, http.StatusCreated, toPlayerResponse(p))
	}
}

// handlePlayerByID lida com GET /players/{id}.
func handlePlayerByID(directory *player.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/players/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "", "player id required")
			return
		}

		p, err := directory.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, session.CodeUnknownPlayer, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toPlayerResponse(p))
	}
}

func handleListCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
			return
		}

		all := card.ListCards()
		out := make([]CardResponse, 0, len(all))
		for _, c := range all {
			out = append(out, toCardResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleCardByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/api/cards/")
		c, err := card.GetCard(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "UnknownCard", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toCardResponse(c))
	}
}

// handleGames lida com POST /games (criar) e GET /games (listar, com filtro
// opcional ?state=).
func handleGames(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req CreateGameRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "", "invalid payload")
				return
			}

			cfg := session.Config{
				MaxPlayers:    req.MaxPlayers,
				CardsPerRound: req.CardsPerRound,
				Mode:          session.Mode(req.Mode),
				SettleDelay:   time.Duration(req.SettleDelaySeconds) * time.Second,
			}
			s, err := registry.Create(cfg)
			if err != nil {
				writeGameError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, CreateGameResponse{
				Code: s.Code(),
				Mode: string(s.Mode()),
			})

		case http.MethodGet:
			writeJSON(w, http.StatusOK, registry.List(r.URL.Query().Get("state")))

		default:
			writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		}
	}
}

// handleGameAction roteia GET /games/{code} e POST /games/{code}/join.
func handleGameAction(directory *player.Directory, registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/games/"), "/")
		if len(parts) < 1 || parts[0] == "" {
			writeError(w, http.StatusBadRequest, "", "malformed URL, expecting /games/{code}")
			return
		}

		s, err := registry.Lookup(parts[0])
		if err != nil {
			writeGameError(w, err)
			return
		}

		if len(parts) == 1 {
			if r.Method != http.MethodGet {
				writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
				return
			}
			writeJSON(w, http.StatusOK, s.Snapshot())
			return
		}

		switch parts[1] {
		case "join":
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, "", "use POST for /join")
				return
			}
			handleJoinGame(w, r, directory, s)
		default:
			writeError(w, http.StatusNotFound, "", "unknown game action")
		}
	}
}

func handleJoinGame(w http.ResponseWriter, r *http.Request, directory *player.Directory, s *session.Session) {
	var req JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "", "invalid payload: requires 'playerId'")
		return
	}

	if err := s.Join(req.PlayerID); err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// ============================================================================
// Helpers
// ============================================================================

func toPlayerResponse(p *player.Player) PlayerResponse {
	return PlayerResponse{ID: p.ID(), Name: p.Name(), Hand: p.Hand(), Wins: p.Wins()}
}

func toCardResponse(c *card.Card) CardResponse {
	attrs := make(map[string]int)
	for k, v := range c.Attributes() {
		attrs[string(k)] = v
	}
	return CardResponse{ID: c.ID(), Name: c.Name(), Image: c.Image(), Attributes: attrs}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// writeGameError traduz a taxonomia de erros do jogo para status HTTP.
func writeGameError(w http.ResponseWriter, err error) {
	var ge *session.GameError
	if !errors.As(err, &ge) {
		writeError(w, http.StatusInternalServerError, "", err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch ge.Kind {
	case session.KindValidation:
		status = http.StatusBadRequest
	case session.KindConflict:
		status = http.StatusConflict
	case session.KindNotFound:
		status = http.StatusNotFound
	case session.KindAuthorization:
		status = http.StatusForbidden
	}
	writeError(w, status, ge.Code, ge.Message)
}
