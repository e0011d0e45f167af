package session

import "time"

// SeatInfo é a visão pública de uma vaga do roster.
type SeatInfo struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	Connected  bool   `json:"connected"`
	Active     bool   `json:"active"`
	Submitted  bool   `json:"submitted"`
	HandSize   int    `json:"handSize"`
	EscrowLeft int    `json:"escrowLeft"`
}

// Snapshot é o modelo de leitura completo de uma sessão num instante. Tudo
// aqui são cópias: quem recebe um Snapshot nunca enxerga mutação posterior.
type Snapshot struct {
	Code          string     `json:"code"`
	Mode          Mode       `json:"mode"`
	State         string     `json:"state"`
	MaxPlayers    int        `json:"maxPlayers"`
	CardsPerRound int        `json:"cardsPerRound"`
	Seats         []SeatInfo `json:"seats"`

	// Rodada corrente (só relevante em playing).
	TurnPlayerID  string   `json:"turnPlayerId,omitempty"`
	DeclaredAttr  string   `json:"declaredAttribute,omitempty"`
	PlayedThisRnd []string `json:"playedThisRound,omitempty"`
	PoolSize      int      `json:"poolSize"`
	Settling      bool     `json:"settling,omitempty"`

	CreatedAt  time.Time `json:"createdAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
}

func (s *Session) buildSnapshot() Snapshot {
	snap := Snapshot{
		Code:          s.code,
		Mode:          s.cfg.Mode,
		State:         s.state,
		MaxPlayers:    s.cfg.MaxPlayers,
		CardsPerRound: s.cfg.CardsPerRound,
		PoolSize:      len(s.pool),
		Settling:      s.settling,
		DeclaredAttr:  s.declaredAttr,
		CreatedAt:     s.createdAt,
		FinishedAt:    s.finishedAt,
		Seats:         make([]SeatInfo, 0, len(s.seats)),
	}

	// Se o declarante se rendeu depois de abrir a rodada, o índice de turno
	// só é corrigido na próxima rotação; até lá o snapshot não nomeia um
	// jogador rendido como dono da vez.
	if s.cfg.Mode == ModeDuel && s.state == StatePlaying && s.seats[s.turnIdx].active {
		snap.TurnPlayerID = s.seats[s.turnIdx].playerID
	}
	// Quem já jogou nesta rodada, em ordem de chegada. Os números apostados
	// nunca aparecem num snapshot antes do settle.
	snap.PlayedThisRnd = append([]string(nil), s.entryOrder...)

	for _, st := range s.seats {
		info := SeatInfo{
			PlayerID:   st.playerID,
			Connected:  st.connected,
			Active:     st.active,
			Submitted:  st.submitted,
			EscrowLeft: len(st.escrow),
		}
		if p, err := s.directory.Get(st.playerID); err == nil {
			info.Name = p.Name()
			info.HandSize = p.HandSize()
		}
		snap.Seats = append(snap.Seats, info)
	}
	return snap
}
