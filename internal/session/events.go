package session

import "cardbattle/internal/network"

// Tipos de evento servidor -> cliente.
const (
	EventJoined             = "JOINED"
	EventPlayerJoined       = "PLAYER_JOINED"
	EventStartingSoon       = "STARTING_SOON"
	EventStarted            = "STARTED"
	EventCardsConfirmed     = "CARDS_CONFIRMED"
	EventCardPlayed         = "CARD_PLAYED"
	EventCardBet            = "CARD_BET"
	EventTurnAdvanced       = "TURN_ADVANCED"
	EventRoundResolved      = "ROUND_RESOLVED"
	EventTieBreak           = "TIE_BREAK"
	EventHandsUpdated       = "HANDS_UPDATED"
	EventPlayerSurrendered  = "PLAYER_SURRENDERED"
	EventPlayerDisconnected = "PLAYER_DISCONNECTED"
	EventPlayerReconnected  = "PLAYER_RECONNECTED"
	EventNextRound          = "NEXT_ROUND"
	EventGameFinished       = "GAME_FINISHED"
	EventSnapshot           = "SNAPSHOT"
	EventError              = "ERROR"
)

type playerEventPayload struct {
	PlayerID string `json:"playerId"`
}

type startingSoonPayload struct {
	SelectionCount int `json:"selectionCount"`
}

type startedPayload struct {
	TurnPlayerID string `json:"turnPlayerId,omitempty"`
}

type cardsConfirmedPayload struct {
	PlayerID string `json:"playerId"`
	Count    int    `json:"count"`
}

// Usado por CARD_PLAYED e CARD_BET. No modo aposta o número escolhido é
// retido até o settle: só a carta apostada vai a público.
type cardEventPayload struct {
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
}

type roundResolvedPayload struct {
	Winners       []string            `json:"winners"`
	Transfers     map[string][]string `json:"cardsTransferred"`
	WinningNumber int                 `json:"winningNumber,omitempty"`
	Void          bool                `json:"void,omitempty"`
}

type tieBreakPayload struct {
	Attribute string `json:"attribute"`
}

// HandDelta é o retrato pós-rodada das cartas de um jogador.
type HandDelta struct {
	PlayerID   string `json:"playerId"`
	HandSize   int    `json:"handSize"`
	EscrowLeft int    `json:"escrowLeft"`
}

type handsUpdatedPayload struct {
	Hands []HandDelta `json:"hands"`
}

// Standing é uma linha da classificação final.
type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	HandSize int    `json:"handSize"`
	Wins     int    `json:"wins"`
}

type gameFinishedPayload struct {
	WinnerID  string     `json:"winnerId,omitempty"`
	Standings []Standing `json:"standings"`
}

// ErrorPayload é enviado somente ao canal de origem da operação rejeitada.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorMessage monta o evento ERROR a partir de um erro de jogo.
func NewErrorMessage(err error) network.Message {
	if ge, ok := err.(*GameError); ok {
		return network.NewMessage(EventError, ErrorPayload{Code: ge.Code, Message: ge.Message})
	}
	return network.NewMessage(EventError, ErrorPayload{Code: "Internal", Message: err.Error()})
}
