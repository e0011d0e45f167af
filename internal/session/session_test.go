package session

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"cardbattle/internal/game/card"
	"cardbattle/internal/game/player"
	"cardbattle/internal/game/resolver"
	"cardbattle/internal/network"

	"github.com/stretchr/testify/require"
)

// fakeNotifier grava tudo que a sessão manda para a sala.
type fakeNotifier struct {
	mu     sync.Mutex
	events []network.Message
}

func (n *fakeNotifier) Broadcast(code string, msg network.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, msg)
}

func (n *fakeNotifier) SendTo(code, playerID string, msg network.Message) {}

func (n *fakeNotifier) count(msgType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, m := range n.events {
		if m.Type == msgType {
			total++
		}
	}
	return total
}

func (n *fakeNotifier) has(msgType string) bool { return n.count(msgType) > 0 }

type fakeRecorder struct {
	mu       sync.Mutex
	rounds   int
	finishes int
	winnerID string
}

func (r *fakeRecorder) RecordRound(code string, winners []string, winningNumber int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rounds++
}

func (r *fakeRecorder) RecordFinish(code, winnerID string, standings []Standing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishes++
	r.winnerID = winnerID
}

// fixedSource devolve sempre o mesmo valor, dando sorteios previsíveis:
// IntN(10) = 2 (número vencedor 3 no modo aposta).
type fixedSource struct{}

func (fixedSource) Uint64() uint64 { return 1 << 62 }

// fixture monta uma sessão viva com Directory real: a posse de cartas faz
// parte do comportamento sob teste.
type fixture struct {
	dir     *player.Directory
	notif   *fakeNotifier
	rec     *fakeRecorder
	sess    *Session
	players []*player.Player
}

func newFixture(t *testing.T, cfg Config, nPlayers int, rng *rand.Rand) *fixture {
	t.Helper()
	require.NoError(t, card.InitGlobalCatalog())

	f := &fixture{
		dir:   player.NewDirectory(rand.New(rand.NewPCG(7, 11))),
		notif: &fakeNotifier{},
		rec:   &fakeRecorder{},
	}

	var err error
	f.sess, err = New("TEST01", cfg, Deps{
		Directory: f.dir,
		Notifier:  f.notif,
		Recorder:  f.rec,
		RNG:       rng,
	})
	require.NoError(t, err)

	go f.sess.Run()
	t.Cleanup(f.sess.Close)

	for i := 0; i < nPlayers; i++ {
		p, err := f.dir.Create(fmt.Sprintf("player-%d", i))
		require.NoError(t, err)
		f.players = append(f.players, p)
		require.NoError(t, f.sess.Join(p.ID()))
		require.NoError(t, f.sess.Connect(p.ID()))
	}
	return f
}

// startPlaying leva a sessão até playing: host inicia e cada jogador
// seleciona as primeiras cartas da mão.
func (f *fixture) startPlaying(t *testing.T, cardsPerRound int) {
	t.Helper()
	require.NoError(t, f.sess.Start(f.players[0].ID()))
	for _, p := range f.players {
		require.NoError(t, f.sess.SelectCards(p.ID(), p.Hand()[:cardsPerRound]))
	}
	require.Equal(t, StatePlaying, f.sess.Snapshot().State)
}

func (f *fixture) byID(id string) *player.Player {
	for _, p := range f.players {
		if p.ID() == id {
			return p
		}
	}
	return nil
}

// handSize relê a mão pelo Directory: os *Player do fixture são retratos da
// hora do registro e não enxergam transferências.
func (f *fixture) handSize(t *testing.T, id string) int {
	t.Helper()
	hand, err := f.dir.HandOf(id)
	require.NoError(t, err)
	return len(hand)
}

// totalCards soma mãos e pote; deve ser invariante durante a partida inteira.
func (f *fixture) totalCards(t *testing.T) int {
	t.Helper()
	snap := f.sess.Snapshot()
	total := snap.PoolSize
	for _, p := range f.players {
		total += f.handSize(t, p.ID())
	}
	return total
}

// decisivePlay procura um par de cartas (uma de cada escrow) com valores
// estritamente diferentes em algum atributo, para o vencedor do duelo ser
// conhecido sem depender do sorteio de desempate.
func decisivePlay(t *testing.T, openerEscrow, otherEscrow []string) (openerCard, otherCard string, attr card.Attribute, openerWins bool) {
	t.Helper()
	for _, a := range card.AllAttributes {
		for _, oc := range openerEscrow {
			co, err := card.GetCard(oc)
			require.NoError(t, err)
			for _, xc := range otherEscrow {
				cx, err := card.GetCard(xc)
				require.NoError(t, err)
				if co.Value(a) != cx.Value(a) {
					return oc, xc, a, co.Value(a) > cx.Value(a)
				}
			}
		}
	}
	t.Fatal("no decisive card pair found")
	return "", "", "", false
}

// --- lifecycle ---

func TestJoinAndStartLifecycle(t *testing.T) {
	cfg := Config{MaxPlayers: 3, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)

	// Re-join é rejeitado sem efeito.
	err := f.sess.Join(f.players[0].ID())
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeAlreadyJoined, ge.Code)

	// Só o host (primeiro a entrar) pode iniciar.
	err = f.sess.Start(f.players[1].ID())
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeNotHost, ge.Code)

	require.NoError(t, f.sess.Start(f.players[0].ID()))
	require.Equal(t, StateSelecting, f.sess.Snapshot().State)
	require.True(t, f.notif.has(EventStartingSoon))

	// Depois de selecting, ninguém mais entra.
	late, err := f.dir.Create("late")
	require.NoError(t, err)
	err = f.sess.Join(late.ID())
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeWrongGameState, ge.Code)
}

func TestHostRolePassesOnWaitingSurrender(t *testing.T) {
	cfg := Config{MaxPlayers: 4, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 3, nil)

	// O primeiro a entrar se rende ainda na espera: perde o papel de host.
	require.NoError(t, f.sess.Surrender(f.players[0].ID()))

	err := f.sess.Start(f.players[0].ID())
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeNotHost, ge.Code)

	// O host agora é o primeiro assento ativo.
	err = f.sess.Start(f.players[2].ID())
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeNotHost, ge.Code)

	require.NoError(t, f.sess.Start(f.players[1].ID()))
	require.Equal(t, StateSelecting, f.sess.Snapshot().State)
}

func TestJoinRejectsWhenFull(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)

	extra, err := f.dir.Create("extra")
	require.NoError(t, err)

	err = f.sess.Join(extra.ID())
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeAlreadyFull, ge.Code)
}

func TestSelectCardsValidation(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)
	require.NoError(t, f.sess.Start(f.players[0].ID()))

	p0, p1 := f.players[0], f.players[1]
	var ge *GameError

	// Contagem errada.
	err := f.sess.SelectCards(p0.ID(), p0.Hand()[:2])
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeWrongCardCount, ge.Code)

	// Carta de outro jogador.
	err = f.sess.SelectCards(p0.ID(), []string{p0.Hand()[0], p0.Hand()[1], p1.Hand()[0]})
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeCardNotOwned, ge.Code)

	// Carta repetida.
	err = f.sess.SelectCards(p0.ID(), []string{p0.Hand()[0], p0.Hand()[0], p0.Hand()[1]})
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeWrongCardCount, ge.Code)

	// Submissão válida é aceita uma única vez; a segunda não sobrescreve.
	first := p0.Hand()[:3]
	require.NoError(t, f.sess.SelectCards(p0.ID(), first))
	err = f.sess.SelectCards(p0.ID(), p0.Hand()[3:6])
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeAlreadySubmitted, ge.Code)

	snap := f.sess.Snapshot()
	for _, seat := range snap.Seats {
		if seat.PlayerID == p0.ID() {
			require.Equal(t, 3, seat.EscrowLeft)
			require.True(t, seat.Submitted)
		}
	}
}

// --- duelo ---

func TestDuelRoundTransfersLoserCard(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 4, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)
	f.startPlaying(t, 4)

	before := f.totalCards(t)

	snap := f.sess.Snapshot()
	opener := f.byID(snap.TurnPlayerID)
	require.NotNil(t, opener)
	var other *player.Player
	for _, p := range f.players {
		if p.ID() != opener.ID() {
			other = p
		}
	}

	openerEscrow := opener.Hand()[:4]
	otherEscrow := other.Hand()[:4]
	oc, xc, attr, openerWins := decisivePlay(t, openerEscrow, otherEscrow)

	// Quem não é da vez não abre a rodada.
	err := f.sess.PlayCard(other.ID(), xc, string(attr))
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeNotYourTurn, ge.Code)

	require.NoError(t, f.sess.PlayCard(opener.ID(), oc, string(attr)))
	require.NoError(t, f.sess.PlayCard(other.ID(), xc, ""))

	require.Equal(t, 1, f.notif.count(EventRoundResolved))
	require.True(t, f.notif.has(EventHandsUpdated))

	winner, loser := opener, other
	lost := xc
	if !openerWins {
		winner, loser = other, opener
		lost = oc
	}
	require.True(t, f.dir.OwnsCard(winner.ID(), lost))
	require.Equal(t, player.StartingHandSize+1, f.handSize(t, winner.ID()))
	require.Equal(t, player.StartingHandSize-1, f.handSize(t, loser.ID()))

	// Conservação: nenhuma carta surgiu nem sumiu.
	require.Equal(t, before, f.totalCards(t))
	require.Equal(t, 1, f.rec.rounds)
}

func TestDuelReplayedCardRejected(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)
	f.startPlaying(t, 3)

	snap := f.sess.Snapshot()
	opener := f.byID(snap.TurnPlayerID)

	require.NoError(t, f.sess.PlayCard(opener.ID(), opener.Hand()[0], "speed"))

	// Jogar de novo na mesma rodada é rejeitado.
	err := f.sess.PlayCard(opener.ID(), opener.Hand()[1], "")
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeAlreadySubmitted, ge.Code)

	// Carta fora do escrow (na mão, mas não selecionada) também.
	var other *player.Player
	for _, p := range f.players {
		if p.ID() != opener.ID() {
			other = p
		}
	}
	err = f.sess.PlayCard(other.ID(), other.Hand()[5], "")
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeCardNotEscrowed, ge.Code)
}

func TestDuelSurrenderOffTurnSkipsSeat(t *testing.T) {
	cfg := Config{MaxPlayers: 3, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 3, nil)
	f.startPlaying(t, 3)

	snap := f.sess.Snapshot()
	var offTurn *player.Player
	for _, p := range f.players {
		if p.ID() != snap.TurnPlayerID {
			offTurn = p
			break
		}
	}

	require.NoError(t, f.sess.Surrender(offTurn.ID()))
	require.True(t, f.notif.has(EventPlayerSurrendered))

	snap = f.sess.Snapshot()
	require.Equal(t, StatePlaying, snap.State)
	actives := 0
	for _, seat := range snap.Seats {
		if seat.Active {
			actives++
			require.NotEqual(t, offTurn.ID(), seat.PlayerID)
		}
	}
	require.Equal(t, 2, actives)

	// A rodada fecha só com os dois ativos restantes.
	opener := f.byID(snap.TurnPlayerID)
	var other *player.Player
	for _, p := range f.players {
		if p.ID() != opener.ID() && p.ID() != offTurn.ID() {
			other = p
		}
	}
	require.NoError(t, f.sess.PlayCard(opener.ID(), opener.Hand()[0], "rarity"))
	require.NoError(t, f.sess.PlayCard(other.ID(), other.Hand()[0], ""))
	require.Equal(t, 1, f.notif.count(EventRoundResolved))

	// O turno seguinte nunca cai no rendido.
	snap = f.sess.Snapshot()
	if snap.State == StatePlaying {
		require.NotEqual(t, offTurn.ID(), snap.TurnPlayerID)
	}
}

func TestSurrenderedDeclarerNeverNamedInSnapshot(t *testing.T) {
	cfg := Config{MaxPlayers: 3, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 3, nil)
	f.startPlaying(t, 3)

	snap := f.sess.Snapshot()
	opener := f.byID(snap.TurnPlayerID)
	require.NotNil(t, opener)

	// O declarante abre a rodada e se rende em seguida.
	require.NoError(t, f.sess.PlayCard(opener.ID(), opener.Hand()[0], "force"))
	require.NoError(t, f.sess.Surrender(opener.ID()))

	// O atributo segue declarado, mas a vez não pertence a um rendido.
	snap = f.sess.Snapshot()
	require.Equal(t, StatePlaying, snap.State)
	require.Equal(t, "force", snap.DeclaredAttr)
	require.Empty(t, snap.TurnPlayerID)

	// Os dois restantes fecham a rodada normalmente.
	for _, p := range f.players {
		if p.ID() == opener.ID() {
			continue
		}
		require.NoError(t, f.sess.PlayCard(p.ID(), p.Hand()[0], ""))
	}
	require.Equal(t, 1, f.notif.count(EventRoundResolved))

	// A rotação seguinte cai num assento ativo, nunca no rendido.
	snap = f.sess.Snapshot()
	if snap.State == StatePlaying {
		require.NotEmpty(t, snap.TurnPlayerID)
		require.NotEqual(t, opener.ID(), snap.TurnPlayerID)
	}
}

func TestSurrenderLeavesSingleSurvivorAsWinner(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)
	f.startPlaying(t, 3)

	require.NoError(t, f.sess.Surrender(f.players[0].ID()))

	snap := f.sess.Snapshot()
	require.Equal(t, StateFinished, snap.State)
	require.True(t, f.notif.has(EventGameFinished))
	require.Equal(t, f.players[1].ID(), f.rec.winnerID)
	champ, err := f.dir.Get(f.players[1].ID())
	require.NoError(t, err)
	require.Equal(t, 1, champ.Wins())

	// As cartas do rendido continuam com ele.
	require.Equal(t, player.StartingHandSize, f.handSize(t, f.players[0].ID()))
}

func TestDuelFinishesWhenEscrowExhausted(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)
	f.startPlaying(t, 3)

	escrows := map[string][]string{
		f.players[0].ID(): append([]string(nil), f.players[0].Hand()[:3]...),
		f.players[1].ID(): append([]string(nil), f.players[1].Hand()[:3]...),
	}

	for round := 0; round < 3; round++ {
		snap := f.sess.Snapshot()
		require.Equal(t, StatePlaying, snap.State, "round %d", round)

		opener := f.byID(snap.TurnPlayerID)
		var other *player.Player
		for _, p := range f.players {
			if p.ID() != opener.ID() {
				other = p
			}
		}

		oc, xc, attr, _ := decisivePlay(t, escrows[opener.ID()], escrows[other.ID()])
		require.NoError(t, f.sess.PlayCard(opener.ID(), oc, string(attr)))
		require.NoError(t, f.sess.PlayCard(other.ID(), xc, ""))

		removeID(escrows, opener.ID(), oc)
		removeID(escrows, other.ID(), xc)
	}

	snap := f.sess.Snapshot()
	require.Equal(t, StateFinished, snap.State)
	require.Equal(t, 3, f.rec.rounds)
	require.Equal(t, 1, f.rec.finishes)

	// Classificação: maior mão primeiro, e o líder é o vencedor registrado.
	require.Equal(t, 2*player.StartingHandSize, f.totalCards(t))
	if f.rec.winnerID != "" {
		leaderSize := f.handSize(t, f.rec.winnerID)
		for _, p := range f.players {
			require.GreaterOrEqual(t, leaderSize, f.handSize(t, p.ID()))
		}
	}
}

func removeID(escrows map[string][]string, pid, cardID string) {
	list := escrows[pid]
	for i, id := range list {
		if id == cardID {
			escrows[pid] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// --- aposta ---

func TestBettingRoundForfeitsLoserCardToPool(t *testing.T) {
	cfg := Config{MaxPlayers: 3, CardsPerRound: 3, Mode: ModeBetting, SettleDelay: 10 * time.Millisecond}
	rng := rand.New(fixedSource{}) // número vencedor: 3
	f := newFixture(t, cfg, 3, rng)
	f.startPlaying(t, 3)

	before := f.totalCards(t)

	// Cenário clássico: apostas 3, 3, 7 com sorteio 3.
	require.NoError(t, f.sess.PlaceBet(f.players[0].ID(), f.players[0].Hand()[0], 3))
	require.NoError(t, f.sess.PlaceBet(f.players[1].ID(), f.players[1].Hand()[0], 3))

	loserCard := f.players[2].Hand()[0]
	require.NoError(t, f.sess.PlaceBet(f.players[2].ID(), loserCard, 7))

	require.Equal(t, 1, f.notif.count(EventRoundResolved))

	// A carta perdida foi para o pote; com 1 carta e 2 vencedores a partilha
	// é zero e o resto acumula.
	snap := f.sess.Snapshot()
	require.Equal(t, 1, snap.PoolSize)
	require.False(t, f.dir.OwnsCard(f.players[2].ID(), loserCard))
	require.Equal(t, player.StartingHandSize-1, f.handSize(t, f.players[2].ID()))
	require.Equal(t, player.StartingHandSize, f.handSize(t, f.players[0].ID()))
	require.Equal(t, before, f.totalCards(t))

	// Durante o settle, apostas são rejeitadas...
	err := f.sess.PlaceBet(f.players[0].ID(), f.players[0].Hand()[1], 5)
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeWrongGameState, ge.Code)

	// ...até o timer abrir a próxima rodada.
	require.Eventually(t, func() bool { return f.notif.has(EventNextRound) },
		time.Second, 5*time.Millisecond)
}

func TestBettingSingleWinnerTakesPool(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeBetting, SettleDelay: 5 * time.Millisecond}
	rng := rand.New(fixedSource{}) // número vencedor: 3, sempre
	f := newFixture(t, cfg, 2, rng)
	f.startPlaying(t, 3)

	winner, loser := f.players[0], f.players[1]
	lost := loser.Hand()[0]

	require.NoError(t, f.sess.PlaceBet(winner.ID(), winner.Hand()[0], 3))
	require.NoError(t, f.sess.PlaceBet(loser.ID(), lost, 8))

	// Partilha 1/1: o vencedor leva a carta do perdedor e o pote zera.
	require.True(t, f.dir.OwnsCard(winner.ID(), lost))
	require.Equal(t, player.StartingHandSize+1, f.handSize(t, winner.ID()))
	require.Equal(t, 0, f.sess.Snapshot().PoolSize)
}

func TestBettingRejectsOutOfRangeNumber(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeBetting}
	f := newFixture(t, cfg, 2, nil)
	f.startPlaying(t, 3)

	var ge *GameError
	for _, n := range []int{0, 11, -3} {
		err := f.sess.PlaceBet(f.players[0].ID(), f.players[0].Hand()[0], n)
		require.ErrorAs(t, err, &ge)
		require.Equal(t, CodeInvalidNumber, ge.Code)
	}
	require.Equal(t, 1, resolver.MinBet)
	require.Equal(t, 10, resolver.MaxBet)

	// Comando do modo errado.
	err := f.sess.PlayCard(f.players[0].ID(), f.players[0].Hand()[0], "force")
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeWrongGameState, ge.Code)
}

// --- conexão ---

func TestDisconnectPreservesSeat(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)
	f.startPlaying(t, 3)

	p0 := f.players[0]
	f.sess.Disconnect(p0.ID())
	require.Eventually(t, func() bool { return f.notif.has(EventPlayerDisconnected) },
		time.Second, 5*time.Millisecond)

	snap := f.sess.Snapshot()
	for _, seat := range snap.Seats {
		if seat.PlayerID == p0.ID() {
			require.False(t, seat.Connected)
			require.True(t, seat.Active, "queda de canal nunca rende o jogador")
			require.Equal(t, 3, seat.EscrowLeft)
		}
	}

	// Reconectar restaura tudo e avisa a sala.
	require.NoError(t, f.sess.Connect(p0.ID()))
	require.True(t, f.notif.has(EventPlayerReconnected))

	snap = f.sess.Snapshot()
	for _, seat := range snap.Seats {
		if seat.PlayerID == p0.ID() {
			require.True(t, seat.Connected)
		}
	}
}

func TestDisconnectedOpenerLosesTurn(t *testing.T) {
	cfg := Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 2, nil)
	f.startPlaying(t, 3)

	snap := f.sess.Snapshot()
	opener := snap.TurnPlayerID

	f.sess.Disconnect(opener)
	require.Eventually(t, func() bool {
		s := f.sess.Snapshot()
		return s.TurnPlayerID != "" && s.TurnPlayerID != opener
	}, time.Second, 5*time.Millisecond)
	require.True(t, f.notif.has(EventTurnAdvanced))
}

// --- timeout de seleção ---

func TestSelectionTimeoutForcesStart(t *testing.T) {
	cfg := Config{
		MaxPlayers:       3,
		CardsPerRound:    3,
		Mode:             ModeDuel,
		SelectionTimeout: 20 * time.Millisecond,
	}
	f := newFixture(t, cfg, 3, nil)
	require.NoError(t, f.sess.Start(f.players[0].ID()))

	// Só dois confirmam; o terceiro dorme no ponto.
	require.NoError(t, f.sess.SelectCards(f.players[0].ID(), f.players[0].Hand()[:3]))
	require.NoError(t, f.sess.SelectCards(f.players[1].ID(), f.players[1].Hand()[:3]))

	require.Eventually(t, func() bool {
		return f.sess.Snapshot().State == StatePlaying
	}, time.Second, 5*time.Millisecond)

	snap := f.sess.Snapshot()
	for _, seat := range snap.Seats {
		if seat.PlayerID == f.players[2].ID() {
			require.False(t, seat.Active)
		} else {
			require.True(t, seat.Active)
		}
	}
}

// --- bounds de configuração ---

func TestConfigBounds(t *testing.T) {
	require.NoError(t, card.InitGlobalCatalog())
	dir := player.NewDirectory(nil)
	deps := Deps{Directory: dir, Notifier: &fakeNotifier{}}

	cases := []struct {
		name string
		cfg  Config
	}{
		{"maxPlayers=1", Config{MaxPlayers: 1, CardsPerRound: 3}},
		{"maxPlayers=9", Config{MaxPlayers: 9, CardsPerRound: 3}},
		{"cardsPerRound=2", Config{MaxPlayers: 2, CardsPerRound: 2}},
		{"cardsPerRound=11", Config{MaxPlayers: 2, CardsPerRound: 11}},
		{"unknown mode", Config{MaxPlayers: 2, CardsPerRound: 3, Mode: "tournament"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("BOUNDS", tc.cfg, deps)
			var ge *GameError
			require.ErrorAs(t, err, &ge)
			require.Equal(t, KindValidation, ge.Kind)
			require.Equal(t, CodeInvalidConfig, ge.Code)
		})
	}

	// Dentro dos limites passa, com defaults preenchidos.
	s, err := New("BOUNDS", Config{MaxPlayers: 2, CardsPerRound: 3}, deps)
	require.NoError(t, err)
	require.Equal(t, ModeDuel, s.Mode())
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	cfg := Config{MaxPlayers: 4, CardsPerRound: 3, Mode: ModeDuel}
	f := newFixture(t, cfg, 1, nil)

	err := f.sess.Start(f.players[0].ID())
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeInsufficientPlayers, ge.Code)
}
