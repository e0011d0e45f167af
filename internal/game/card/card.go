package card

import "fmt"

// Card é uma entrada imutável do catálogo: identidade + atributos fixos.
// Nenhum campo muda depois que o catálogo é semeado.
type Card struct {
	id         string
	name       string
	attributes map[Attribute]int
	image      string
}

func (c *Card) ID() string    { return c.id }
func (c *Card) Name() string  { return c.name }
func (c *Card) Image() string { return c.image }

// Value retorna o valor fixo do atributo pedido.
func (c *Card) Value(attr Attribute) int {
	return c.attributes[attr]
}

// Attributes retorna uma cópia do mapa de atributos, para que ninguém
// consiga mutar a entrada do catálogo por fora.
func (c *Card) Attributes() map[Attribute]int {
	out := make(map[Attribute]int, len(c.attributes))
	for k, v := range c.attributes {
		out[k] = v
	}
	return out
}

func (c *Card) String() string {
	return fmt.Sprintf("%s (%s)", c.name, c.id)
}

// ---- Construtor ----

func newCard(id, name, image string, attrs map[Attribute]int) (*Card, error) {
	c := &Card{id: id, name: name, attributes: attrs, image: image}

	validators := []cardValidator{
		validateID,
		validateName,
		validateAttributes,
	}

	for _, v := range validators {
		if err := v(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Tipo para funções de validação.
type cardValidator func(*Card) error

func validateID(c *Card) error {
	if c.id == "" {
		return fmt.Errorf("invalid card: empty id")
	}
	return nil
}

func validateName(c *Card) error {
	if c.name == "" {
		return fmt.Errorf("invalid card %s: empty name", c.id)
	}
	return nil
}

func validateAttributes(c *Card) error {
	for _, attr := range AllAttributes {
		v, ok := c.attributes[attr]
		if !ok {
			return fmt.Errorf("invalid card %s: missing attribute %s", c.id, attr)
		}
		if v < MinAttributeValue || v > MaxAttributeValue {
			return fmt.Errorf("invalid card %s: attribute %s out of range: %d (must be %d-%d)",
				c.id, attr, v, MinAttributeValue, MaxAttributeValue)
		}
	}
	return nil
}
