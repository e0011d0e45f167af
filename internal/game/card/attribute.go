package card

import "fmt"

// Attribute é o conjunto fechado de atributos de batalha de uma carta.
type Attribute string

const (
	Force        Attribute = "force"
	Speed        Attribute = "speed"
	Intelligence Attribute = "intelligence"
	Rarity       Attribute = "rarity"
)

const (
	MinAttributeValue = 1
	MaxAttributeValue = 10
)

// AllAttributes lista os atributos em ordem estável. A ordem importa para o
// sorteio de desempate do modo duelo ser determinístico com um rng semeado.
var AllAttributes = []Attribute{Force, Speed, Intelligence, Rarity}

// ParseAttribute valida uma string vinda da borda do protocolo.
func ParseAttribute(s string) (Attribute, error) {
	switch Attribute(s) {
	case Force, Speed, Intelligence, Rarity:
		return Attribute(s), nil
	}
	return "", fmt.Errorf("invalid attribute: %q", s)
}
