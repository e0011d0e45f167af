package session

import (
	"log"
	"math/rand/v2"
	"time"

	"cardbattle/internal/game/player"
	"cardbattle/internal/game/resolver"
	"cardbattle/internal/network"
)

// Estados da máquina da sessão. As transições só acontecem na ordem
// enumerada; a única exceção é o salto terminal para finished quando resta
// um único sobrevivente ativo.
const (
	StateWaiting   = "waiting"
	StateSelecting = "selecting"
	StatePlaying   = "playing"
	StateFinished  = "finished"
)

// Notifier é como a sessão fala com os canais da sala. O gateway implementa;
// os testes usam um gravador fake.
type Notifier interface {
	// Broadcast entrega o evento a todos os canais associados à sessão.
	Broadcast(code string, msg network.Message)

	// SendTo entrega o evento só ao canal de um jogador (se conectado).
	SendTo(code, playerID string, msg network.Message)
}

// Recorder recebe os resultados canônicos para consumo externo (relay NATS).
// Pode ser nil: sessão sem relay funciona normalmente.
type Recorder interface {
	RecordRound(code string, winners []string, winningNumber int)
	RecordFinish(code, winnerID string, standings []Standing)
}

// seat é a vaga de um jogador no roster. A sessão referencia jogadores do
// Directory, nunca é dona deles.
type seat struct {
	playerID  string
	connected bool
	active    bool
	submitted bool

	// everConnected distingue a primeira associação de canal de uma
	// reconexão, para o evento certo ir pra sala.
	everConnected bool

	// escrow guarda os ids selecionados para a partida que ainda não foram
	// jogados. As cartas continuam registradas na mão do Directory; o
	// escrow só marca o que está comprometido com esta sessão.
	escrow []string
}

func (st *seat) inEscrow(cardID string) bool {
	for _, id := range st.escrow {
		if id == cardID {
			return true
		}
	}
	return false
}

func (st *seat) removeFromEscrow(cardID string) {
	for i, id := range st.escrow {
		if id == cardID {
			st.escrow = append(st.escrow[:i], st.escrow[i+1:]...)
			return
		}
	}
}

// Session é o ator dono de uma partida: roster, rodada corrente, escrow e
// pote. Todo o estado abaixo é tocado exclusivamente pela goroutine de Run.
type Session struct {
	code string
	cfg  Config

	directory *player.Directory
	notifier  Notifier
	recorder  Recorder
	res       resolver.Resolver
	rng       *rand.Rand

	state string
	seats []*seat

	// Rodada corrente.
	turnIdx      int
	declaredAttr string // atributo declarado pelo jogador da vez (duelo)
	entries      map[string]resolver.Entry
	entryOrder   []string // ordem de chegada, para resolução determinística
	pool         []string // pote compartilhado (modo aposta)
	settling     bool     // entre o resultado e o próximo round de aposta

	incoming chan command
	quit     chan struct{}

	settleTimer *time.Timer
	selectTimer *time.Timer

	createdAt  time.Time
	finishedAt time.Time
}

// Deps agrupa os colaboradores injetados na sessão.
type Deps struct {
	Directory *player.Directory
	Notifier  Notifier
	Recorder  Recorder
	RNG       *rand.Rand
}

func New(code string, cfg Config, deps Deps) (*Session, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	rng := deps.RNG
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var res resolver.Resolver
	switch cfg.Mode {
	case ModeBetting:
		res = resolver.NewBetting()
	default:
		res = resolver.NewDuel()
	}

	return &Session{
		code:      code,
		cfg:       cfg,
		directory: deps.Directory,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		res:       res,
		rng:       rng,
		state:     StateWaiting,
		entries:   make(map[string]resolver.Entry),
		incoming:  make(chan command),
		quit:      make(chan struct{}),
		createdAt: time.Now(),
	}, nil
}

func (s *Session) Code() string { return s.code }
func (s *Session) Mode() Mode   { return s.cfg.Mode }

// Run é o loop do ator. Comandos, o settle da aposta e o timeout de seleção
// chegam todos por aqui, um de cada vez. O loop continua vivo depois de
// finished (para servir snapshots) até o registry chamar Close.
func (s *Session) Run() {
	log.Printf("[Session %s] actor started (mode=%s, maxPlayers=%d, cardsPerRound=%d)",
		s.code, s.cfg.Mode, s.cfg.MaxPlayers, s.cfg.CardsPerRound)

	defer func() {
		s.stopTimers()
		log.Printf("[Session %s] actor stopped", s.code)
	}()

	for {
		select {
		case cmd := <-s.incoming:
			s.dispatch(cmd)

		case <-timerChan(s.settleTimer):
			s.settleTimer = nil
			s.openNextBettingRound()

		case <-timerChan(s.selectTimer):
			s.selectTimer = nil
			s.expireSelection()

		case <-s.quit:
			return
		}
	}
}

// Close encerra a goroutine do ator. Chamado pelo janitor do registry.
func (s *Session) Close() {
	close(s.quit)
}

// timerChan torna o select nil-seguro: timer ausente = canal nil, que nunca
// dispara.
func timerChan(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

func (s *Session) stopTimers() {
	if s.settleTimer != nil {
		s.settleTimer.Stop()
		s.settleTimer = nil
	}
	if s.selectTimer != nil {
		s.selectTimer.Stop()
		s.selectTimer = nil
	}
}

func (s *Session) dispatch(cmd command) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- s.handleJoin(c.playerID)
	case startCmd:
		c.reply <- s.handleStart(c.playerID)
	case selectCardsCmd:
		c.reply <- s.handleSelectCards(c.playerID, c.cards)
	case playCardCmd:
		c.reply <- s.handlePlayCard(c.playerID, c.cardID, c.attribute)
	case placeBetCmd:
		c.reply <- s.handlePlaceBet(c.playerID, c.cardID, c.number)
	case surrenderCmd:
		c.reply <- s.handleSurrender(c.playerID)
	case connectCmd:
		c.reply <- s.handleConnect(c.playerID)
	case disconnectCmd:
		s.handleDisconnect(c.playerID)
	case snapshotCmd:
		c.reply <- s.buildSnapshot()
	}
}

// --- API pública (síncrona, chamada pelo gateway e pela API REST) ---

func (s *Session) do(send func() command) error {
	reply := make(chan error, 1)
	select {
	case s.incoming <- withReply(send(), reply):
		return <-reply
	case <-s.quit:
		return conflictErr(CodeWrongGameState, "session %s is closed", s.code)
	}
}

// withReply injeta o canal de resposta no comando. Mantido ao lado de 'do'
// para os dois evoluírem juntos quando um comando novo aparecer.
func withReply(cmd command, reply chan error) command {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply = reply
		return c
	case startCmd:
		c.reply = reply
		return c
	case selectCardsCmd:
		c.reply = reply
		return c
	case playCardCmd:
		c.reply = reply
		return c
	case placeBetCmd:
		c.reply = reply
		return c
	case surrenderCmd:
		c.reply = reply
		return c
	case connectCmd:
		c.reply = reply
		return c
	}
	return cmd
}

func (s *Session) Join(playerID string) error {
	return s.do(func() command { return joinCmd{playerID: playerID} })
}

func (s *Session) Start(playerID string) error {
	return s.do(func() command { return startCmd{playerID: playerID} })
}

func (s *Session) SelectCards(playerID string, cards []string) error {
	return s.do(func() command { return selectCardsCmd{playerID: playerID, cards: cards} })
}

func (s *Session) PlayCard(playerID, cardID, attribute string) error {
	return s.do(func() command { return playCardCmd{playerID: playerID, cardID: cardID, attribute: attribute} })
}

func (s *Session) PlaceBet(playerID, cardID string, number int) error {
	return s.do(func() command { return placeBetCmd{playerID: playerID, cardID: cardID, number: number} })
}

func (s *Session) Surrender(playerID string) error {
	return s.do(func() command { return surrenderCmd{playerID: playerID} })
}

// Connect marca o canal do jogador como associado (primeira conexão ou
// reconexão). O gateway chama depois de registrar a associação.
func (s *Session) Connect(playerID string) error {
	return s.do(func() command { return connectCmd{playerID: playerID} })
}

// Disconnect marca o canal como caído. Nunca remove a vaga do roster e nunca
// rende o jogador: reconectar recupera tudo.
func (s *Session) Disconnect(playerID string) {
	select {
	case s.incoming <- disconnectCmd{playerID: playerID}:
	case <-s.quit:
	}
}

// Snapshot devolve o modelo de leitura canônico da sessão. É o que a API
// REST serve e o que um cliente reconectado recebe para ressincronizar — o
// estado do cliente nunca é autoritativo.
func (s *Session) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case s.incoming <- snapshotCmd{reply: reply}:
		return <-reply
	case <-s.quit:
		return Snapshot{Code: s.code, State: StateFinished}
	}
}

// --- helpers de broadcast ---

func (s *Session) broadcast(msg network.Message) {
	s.notifier.Broadcast(s.code, msg)
}

func (s *Session) seatOf(playerID string) *seat {
	for _, st := range s.seats {
		if st.playerID == playerID {
			return st
		}
	}
	return nil
}

func (s *Session) activeCount() int {
	n := 0
	for _, st := range s.seats {
		if st.active {
			n++
		}
	}
	return n
}

// firstActiveSeat varre na ordem do roster. Em WAITING é quem detém o papel
// de host; quando só resta um ativo, é o sobrevivente.
func (s *Session) firstActiveSeat() *seat {
	for _, st := range s.seats {
		if st.active {
			return st
		}
	}
	return nil
}
