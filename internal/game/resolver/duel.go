package resolver

import (
	"fmt"
	"math/rand/v2"

	"cardbattle/internal/game/card"
)

// Duel resolve a rodada por comparação de atributo: o maior valor do atributo
// declarado leva todas as cartas jogadas. Empates exatos disparam uma
// redisputa restrita aos empatados, com um atributo novo sorteado do rng.
type Duel struct{}

func NewDuel() *Duel { return &Duel{} }

func (d *Duel) Resolve(round Round, rng *rand.Rand) (*Outcome, error) {
	if err := checkComplete(round); err != nil {
		return nil, err
	}

	declared := round.Entries[0].Attribute
	if _, err := card.ParseAttribute(string(declared)); err != nil {
		return nil, fmt.Errorf("resolver contract violation: %w", err)
	}
	for _, e := range round.Entries {
		if e.Attribute != declared {
			return nil, fmt.Errorf("resolver contract violation: mixed attributes %s and %s",
				declared, e.Attribute)
		}
	}

	cards := make(map[string]*card.Card, len(round.Entries))
	for _, e := range round.Entries {
		c, err := card.GetCard(e.CardID)
		if err != nil {
			return nil, fmt.Errorf("resolver contract violation: %w", err)
		}
		cards[e.PlayerID] = c
	}

	outcome := &Outcome{Transfers: make(map[string][]string)}

	// A cadeia de desempate compara SEMPRE só os empatados da comparação
	// imediatamente anterior; quem caiu antes não volta.
	contenders := round.Entries
	attr := declared
	used := map[card.Attribute]bool{declared: true}

	for {
		contenders = highestOn(contenders, cards, attr)
		if len(contenders) == 1 {
			break
		}

		fresh, ok := drawFreshAttribute(used, rng)
		if !ok {
			// Empatados em todos os quatro atributos: rodada nula.
			outcome.Void = true
			return outcome, nil
		}
		attr = fresh
		used[fresh] = true
		outcome.TieBreaks = append(outcome.TieBreaks, fresh)
	}

	winner := contenders[0].PlayerID
	outcome.Winners = []string{winner}
	for _, e := range round.Entries {
		if e.PlayerID != winner {
			outcome.Transfers[winner] = append(outcome.Transfers[winner], e.CardID)
		}
	}
	return outcome, nil
}

// highestOn devolve o subconjunto de entradas com o maior valor do atributo.
func highestOn(entries []Entry, cards map[string]*card.Card, attr card.Attribute) []Entry {
	best := -1
	var top []Entry
	for _, e := range entries {
		v := cards[e.PlayerID].Value(attr)
		switch {
		case v > best:
			best = v
			top = []Entry{e}
		case v == best:
			top = append(top, e)
		}
	}
	return top
}

// drawFreshAttribute sorteia um atributo ainda não usado na cadeia.
func drawFreshAttribute(used map[card.Attribute]bool, rng *rand.Rand) (card.Attribute, bool) {
	var candidates []card.Attribute
	for _, a := range card.AllAttributes {
		if !used[a] {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[rng.IntN(len(candidates))], true
}
