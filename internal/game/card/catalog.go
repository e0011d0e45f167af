package card

import (
	"fmt"
	"sort"
	"strings"
)

// O catálogo é estático: semeado uma única vez na subida do servidor.
var allCards map[string]*Card

// Os nomes são o produto cartesiano epíteto x criatura, e os atributos são
// derivados aritmeticamente dos índices. Isso dá um catálogo grande, variado
// e 100% determinístico sem precisar de arquivo de dados.
var epithets = []string{
	"Ancient", "Burning", "Crystal", "Dire", "Emerald",
	"Feral", "Gilded", "Hollow", "Iron", "Lunar",
}

var creatures = []string{
	"Dragon", "Golem", "Sphinx", "Kraken", "Phoenix",
	"Wyvern", "Basilisk", "Chimera", "Djinn", "Leviathan",
	"Manticore", "Hydra",
}

// InitGlobalCatalog constrói e valida todas as entradas do catálogo.
// Deve ser chamado uma vez em cmd/server antes de aceitar conexões.
func InitGlobalCatalog() error {
	allCards = make(map[string]*Card)

	for i, ep := range epithets {
		for j, cr := range creatures {
			id := fmt.Sprintf("%s-%s", strings.ToLower(ep), strings.ToLower(cr))
			name := fmt.Sprintf("%s %s", ep, cr)
			image := fmt.Sprintf("/cards/%s.png", id)

			attrs := map[Attribute]int{
				Force:        (i*3+j*7)%10 + 1,
				Speed:        (i*5+j*3)%10 + 1,
				Intelligence: (i*7+j*5)%10 + 1,
				Rarity:       (i+j*9)%10 + 1,
			}

			c, err := newCard(id, name, image, attrs)
			if err != nil {
				return err
			}
			allCards[id] = c
		}
	}
	return nil
}

// GetCard é o acesso público ao catálogo.
func GetCard(id string) (*Card, error) {
	if c, ok := allCards[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("card not found: %s", id)
}

// ListCards retorna todas as entradas em ordem estável de id.
func ListCards() []*Card {
	out := make([]*Card, 0, len(allCards))
	for _, c := range allCards {
		out = append(out, c)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].id < out[b].id })
	return out
}

// CatalogSize retorna o total de entradas semeadas.
func CatalogSize() int { return len(allCards) }
