package resolver

import (
	"fmt"
	"math/rand/v2"
)

const (
	MinBet = 1
	MaxBet = 10
)

// Betting resolve a rodada por palpite de número: um número vencedor é
// sorteado uniformemente em [1,10]; todo jogador que acertou vence. As cartas
// apostadas pelos perdedores caem no pote compartilhado, e os vencedores
// partilham o pote.
//
// Política de partilha (a regra exata não veio do comportamento observado,
// então fica documentada aqui): divisão igual em ordem de entrada; o resto
// que não divide permanece no pote para a próxima rodada.
type Betting struct{}

func NewBetting() *Betting { return &Betting{} }

func (b *Betting) Resolve(round Round, rng *rand.Rand) (*Outcome, error) {
	if err := checkComplete(round); err != nil {
		return nil, err
	}
	for _, e := range round.Entries {
		if e.Number < MinBet || e.Number > MaxBet {
			return nil, fmt.Errorf("resolver contract violation: bet %d out of range for player %s",
				e.Number, e.PlayerID)
		}
	}

	outcome := &Outcome{
		Transfers:     make(map[string][]string),
		WinningNumber: rng.IntN(MaxBet) + MinBet,
	}

	pool := append([]string(nil), round.Pool...)
	for _, e := range round.Entries {
		if e.Number == outcome.WinningNumber {
			outcome.Winners = append(outcome.Winners, e.PlayerID)
		} else {
			pool = append(pool, e.CardID)
		}
	}

	if len(outcome.Winners) == 0 {
		// Ninguém acertou: tudo fica acumulado no pote.
		outcome.PoolAfter = pool
		return outcome, nil
	}

	share := len(pool) / len(outcome.Winners)
	idx := 0
	for _, w := range outcome.Winners {
		if share > 0 {
			outcome.Transfers[w] = append([]string(nil), pool[idx:idx+share]...)
		}
		idx += share
	}
	outcome.PoolAfter = append([]string(nil), pool[idx:]...)
	return outcome, nil
}
