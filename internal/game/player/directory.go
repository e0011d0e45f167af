package player

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"cardbattle/internal/game/card"

	"github.com/google/uuid"
)

// Quantas cartas do catálogo um jogador recebe ao se registrar.
const StartingHandSize = 12

var (
	ErrNameTaken      = errors.New("player name already taken")
	ErrPlayerNotFound = errors.New("player not found")
	ErrCardNotOwned   = errors.New("card not owned by player")
	ErrCatalogDrained = errors.New("not enough unowned cards in the catalog")
)

// Directory é a fonte da verdade sobre jogadores e posse de cartas.
// É acessado concorrentemente pela API REST, pelo gateway e pelos atores de
// sessão, então todo acesso passa pelo mutex. A invariante central: um id de
// carta pertence a NO MÁXIMO uma mão a qualquer momento.
type Directory struct {
	mu      sync.RWMutex
	players map[string]*Player // chave: id
	byName  map[string]string  // nome (case-sensitive) -> id
	owned   map[string]string  // id de carta -> id do dono
	rng     *rand.Rand
}

func NewDirectory(rng *rand.Rand) *Directory {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Directory{
		players: make(map[string]*Player),
		byName:  make(map[string]string),
		owned:   make(map[string]string),
		rng:     rng,
	}
}

// Create registra um jogador novo com nome único e distribui a mão inicial
// sorteando cartas do catálogo que ainda não têm dono.
func (d *Directory) Create(name string) (*Player, error) {
	if name == "" {
		return nil, fmt.Errorf("invalid player name: must be non-empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byName[name]; exists {
		return nil, ErrNameTaken
	}

	hand, err := d.drawUnownedLocked(StartingHandSize)
	if err != nil {
		return nil, err
	}

	p := &Player{
		id:   uuid.NewString(),
		name: name,
		hand: hand,
	}
	for _, cardID := range hand {
		d.owned[cardID] = p.id
	}

	d.players[p.id] = p
	d.byName[name] = p.id
	return p.clone(), nil
}

// drawUnownedLocked sorteia n cartas sem dono. Chamar com o mutex em posse.
func (d *Directory) drawUnownedLocked(n int) ([]string, error) {
	free := make([]string, 0, card.CatalogSize())
	for _, c := range card.ListCards() {
		if _, taken := d.owned[c.ID()]; !taken {
			free = append(free, c.ID())
		}
	}
	if len(free) < n {
		return nil, ErrCatalogDrained
	}

	d.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	return free[:n], nil
}

// Get devolve um retrato do jogador tirado sob o mutex. Mutações posteriores
// na mão (TransferCard, ReleaseCard, GrantCard) não alcançam o retrato, então
// o chamador pode ler Hand/HandSize/Wins sem sincronizar com o Directory.
func (d *Directory) Get(id string) (*Player, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p.clone(), nil
}

func (d *Directory) GetByName(name string) (*Player, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byName[name]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return d.players[id].clone(), nil
}

// OwnsCard responde se a carta está na mão do jogador.
func (d *Directory) OwnsCard(playerID, cardID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.owned[cardID] == playerID
}

// HandOf retorna uma cópia da mão atual do jogador.
func (d *Directory) HandOf(playerID string) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p.Hand(), nil
}

// TransferCard move uma carta da mão de 'from' para a mão de 'to'.
// A operação é atômica: ou a carta troca de dono, ou nada muda.
func (d *Directory) TransferCard(from, to, cardID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	src, ok := d.players[from]
	if !ok {
		return fmt.Errorf("transfer source: %w", ErrPlayerNotFound)
	}
	dst, ok := d.players[to]
	if !ok {
		return fmt.Errorf("transfer destination: %w", ErrPlayerNotFound)
	}
	if d.owned[cardID] != from || !src.ownsCard(cardID) {
		return fmt.Errorf("transfer of %s from %s: %w", cardID, from, ErrCardNotOwned)
	}

	src.removeCard(cardID)
	dst.hand = append(dst.hand, cardID)
	d.owned[cardID] = to
	return nil
}

// poolOwner é o dono-sentinela das cartas largadas num pote de apostas.
// Cartas com esse dono não estão em mão nenhuma, mas também nunca voltam ao
// sorteio de mãos iniciais: elas pertencem a uma partida em andamento.
const poolOwner = "#pool"

// ReleaseCard tira a carta da mão do jogador e a marca como parte de um
// pote. A carta fica sem mão até alguém recebê-la via GrantCard.
func (d *Directory) ReleaseCard(playerID, cardID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if d.owned[cardID] != playerID || !p.ownsCard(cardID) {
		return fmt.Errorf("release of %s by %s: %w", cardID, playerID, ErrCardNotOwned)
	}

	p.removeCard(cardID)
	d.owned[cardID] = poolOwner
	return nil
}

// GrantCard entrega uma carta de pote à mão do jogador.
func (d *Directory) GrantCard(playerID, cardID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	if d.owned[cardID] != poolOwner {
		return fmt.Errorf("grant of %s to %s: card is not pooled: %w", cardID, playerID, ErrCardNotOwned)
	}

	p.hand = append(p.hand, cardID)
	d.owned[cardID] = playerID
	return nil
}

// RecordWin incrementa o contador persistente de vitórias.
func (d *Directory) RecordWin(playerID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.wins++
	return nil
}
