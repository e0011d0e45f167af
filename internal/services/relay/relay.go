package relay

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"cardbattle/internal/session"
)

// Relay publica os resultados canônicos das partidas no NATS, para quem
// quiser consumir de fora (ranking, histórico, espectadores). O coordenador
// funciona normalmente sem ele: um Relay nil satisfaz o Recorder e descarta
// tudo.
type Relay struct {
	conn *nats.Conn
}

type roundEvent struct {
	Code          string    `json:"code"`
	Winners       []string  `json:"winners"`
	WinningNumber int       `json:"winningNumber,omitempty"`
	At            time.Time `json:"at"`
}

type finishEvent struct {
	Code      string             `json:"code"`
	WinnerID  string             `json:"winnerId,omitempty"`
	Standings []session.Standing `json:"standings"`
	At        time.Time          `json:"at"`
}

// Connect abre a conexão com reconexão automática ilimitada: perder o broker
// nunca pode derrubar partidas em andamento.
func Connect(url string) (*Relay, error) {
	conn, err := nats.Connect(url,
		nats.Name("cardbattle-relay"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[relay] disconnected from NATS: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[relay] reconnected to NATS at %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("relay: connect to %s: %w", url, err)
	}

	log.Printf("[relay] connected to NATS at %s", conn.ConnectedUrl())
	return &Relay{conn: conn}, nil
}

func subjectFor(code, kind string) string {
	return fmt.Sprintf("cardbattle.match.%s.%s", code, kind)
}

// RecordRound implementa session.Recorder.
func (r *Relay) RecordRound(code string, winners []string, winningNumber int) {
	if r == nil {
		return
	}
	r.publish(subjectFor(code, "round"), roundEvent{
		Code:          code,
		Winners:       winners,
		WinningNumber: winningNumber,
		At:            time.Now(),
	})
}

// RecordFinish implementa session.Recorder.
func (r *Relay) RecordFinish(code, winnerID string, standings []session.Standing) {
	if r == nil {
		return
	}
	r.publish(subjectFor(code, "finished"), finishEvent{
		Code:      code,
		WinnerID:  winnerID,
		Standings: standings,
		At:        time.Now(),
	})
}

// publish é fire-and-forget: resultado de partida é informativo, nunca vale
// segurar o ator da sessão por causa do broker.
func (r *Relay) publish(subject string, event any) {
	raw, err := json.Marshal(event)
	if err != nil {
		log.Printf("[relay] marshal for %s failed: %v", subject, err)
		return
	}
	if err := r.conn.Publish(subject, raw); err != nil {
		log.Printf("[relay] publish to %s failed: %v", subject, err)
	}
}

// Healthy serve de CheckFunc para o agregador de saúde.
func (r *Relay) Healthy() error {
	if r == nil {
		return nil
	}
	if !r.conn.IsConnected() {
		return fmt.Errorf("NATS connection is down (status %v)", r.conn.Status())
	}
	return nil
}

func (r *Relay) Close() {
	if r != nil && r.conn != nil {
		r.conn.Drain()
	}
}
