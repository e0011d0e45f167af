package resolver

import (
	"fmt"
	"math/rand/v2"

	"cardbattle/internal/game/card"
)

// Entry é a contribuição de um jogador para a rodada corrente.
// No duelo, Attribute carrega o atributo declarado pelo jogador da vez
// (replicado em todas as entradas pela sessão). Na aposta, Number carrega
// o palpite de 1 a 10.
type Entry struct {
	PlayerID  string
	CardID    string
	Attribute card.Attribute
	Number    int
}

// Round é o insumo completo de uma resolução: as entradas, quantos jogadores
// ativos a sessão esperava, e o pote compartilhado (só usado no modo aposta).
type Round struct {
	Entries []Entry
	Active  int
	Pool    []string
}

// Outcome é o resultado canônico de uma rodada.
type Outcome struct {
	// Winners em ordem de entrada. Vazio quando a rodada é nula (Void).
	Winners []string

	// Transfers mapeia vencedor -> ids de cartas recebidas.
	Transfers map[string][]string

	// TieBreaks registra a cadeia de atributos de desempate do duelo,
	// na ordem em que foram sorteados.
	TieBreaks []card.Attribute

	// WinningNumber é o número sorteado no modo aposta (0 no duelo).
	WinningNumber int

	// PoolAfter é o pote restante depois da partilha (modo aposta).
	PoolAfter []string

	// Void indica rodada anulada: nenhuma carta muda de dono.
	Void bool
}

// Resolver transforma as submissões de uma rodada em um resultado.
// Deve ser determinístico dado um rng semeado: o sorteio da aposta e o
// atributo de desempate do duelo saem exclusivamente do rng injetado.
type Resolver interface {
	Resolve(round Round, rng *rand.Rand) (*Outcome, error)
}

// checkComplete é a violação de contrato comum às duas variantes: resolver
// uma rodada com menos entradas do que jogadores ativos é bug do chamador,
// nunca um erro de usuário.
func checkComplete(round Round) error {
	if len(round.Entries) < round.Active {
		return fmt.Errorf("resolver contract violation: %d entries for %d active players",
			len(round.Entries), round.Active)
	}
	if len(round.Entries) == 0 {
		return fmt.Errorf("resolver contract violation: empty entry set")
	}
	seen := make(map[string]bool, len(round.Entries))
	for _, e := range round.Entries {
		if seen[e.PlayerID] {
			return fmt.Errorf("resolver contract violation: duplicate entry for player %s", e.PlayerID)
		}
		seen[e.PlayerID] = true
	}
	return nil
}
