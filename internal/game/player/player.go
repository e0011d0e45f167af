package player

// Player é o perfil persistente de um jogador: identidade, mão e vitórias.
// Flags de conexão/atividade são estado de SESSÃO, não moram aqui.
type Player struct {
	id   string
	name string
	hand []string // ids de cartas, posse única por carta (garantida pelo Directory)
	wins int
}

func (p *Player) ID() string   { return p.id }
func (p *Player) Name() string { return p.name }
func (p *Player) Wins() int    { return p.wins }

// Hand retorna uma cópia da mão. O slice interno só é mutado pelo Directory.
func (p *Player) Hand() []string {
	out := make([]string, len(p.hand))
	copy(out, p.hand)
	return out
}

// clone tira um retrato imutável do jogador. O Directory devolve clones aos
// chamadores para que nenhuma leitura de mão aconteça fora do mutex dele.
func (p *Player) clone() *Player {
	return &Player{
		id:   p.id,
		name: p.name,
		hand: p.Hand(),
		wins: p.wins,
	}
}

func (p *Player) HandSize() int { return len(p.hand) }

func (p *Player) ownsCard(cardID string) bool {
	for _, id := range p.hand {
		if id == cardID {
			return true
		}
	}
	return false
}

func (p *Player) removeCard(cardID string) bool {
	for i, id := range p.hand {
		if id == cardID {
			p.hand = append(p.hand[:i], p.hand[i+1:]...)
			return true
		}
	}
	return false
}
