package session

import (
	"log"
	"sort"
	"time"

	"cardbattle/internal/game/card"
	"cardbattle/internal/game/resolver"
	"cardbattle/internal/network"
)

// --- WAITING ---

func (s *Session) handleJoin(playerID string) error {
	if s.seatOf(playerID) != nil {
		return conflictErr(CodeAlreadyJoined, "player %s already joined session %s", playerID, s.code)
	}
	if s.state != StateWaiting {
		return conflictErr(CodeWrongGameState, "session %s is no longer accepting players", s.code)
	}
	if _, err := s.directory.Get(playerID); err != nil {
		return notFoundErr(CodeUnknownPlayer, "player %s does not exist", playerID)
	}
	if len(s.seats) >= s.cfg.MaxPlayers {
		return conflictErr(CodeAlreadyFull, "session %s already has %d players", s.code, s.cfg.MaxPlayers)
	}

	s.seats = append(s.seats, &seat{playerID: playerID, active: true})
	s.broadcast(network.NewMessage(EventPlayerJoined, playerEventPayload{PlayerID: playerID}))
	return nil
}

func (s *Session) handleStart(playerID string) error {
	if s.state != StateWaiting {
		return conflictErr(CodeWrongGameState, "session %s already started", s.code)
	}
	// O papel de host passa adiante se o primeiro a entrar se rendeu ainda
	// na espera; assentos inativos também não contam para o mínimo.
	host := s.firstActiveSeat()
	if host == nil || host.playerID != playerID {
		return authErr(CodeNotHost, "only the host can start the game")
	}
	if s.activeCount() < MinPlayers {
		return conflictErr(CodeInsufficientPlayers, "need at least %d players to start", MinPlayers)
	}

	s.state = StateSelecting
	if s.cfg.SelectionTimeout > 0 {
		s.selectTimer = time.NewTimer(s.cfg.SelectionTimeout)
	}
	s.broadcast(network.NewMessage(EventStartingSoon, startingSoonPayload{SelectionCount: s.cfg.CardsPerRound}))
	return nil
}

// --- SELECTING ---

func (s *Session) handleSelectCards(playerID string, cards []string) error {
	if s.state != StateSelecting {
		return conflictErr(CodeWrongGameState, "session %s is not selecting cards", s.code)
	}
	st := s.seatOf(playerID)
	if st == nil {
		return conflictErr(CodeNotInSession, "player %s is not in session %s", playerID, s.code)
	}
	if !st.active {
		return conflictErr(CodeNotActive, "player %s has surrendered", playerID)
	}
	if st.submitted {
		// Rejeita, nunca sobrescreve: a submissão guardada fica intacta.
		return conflictErr(CodeAlreadySubmitted, "player %s already confirmed a selection", playerID)
	}

	if len(cards) != s.cfg.CardsPerRound {
		return validationErr(CodeWrongCardCount, "must select exactly %d cards, got %d",
			s.cfg.CardsPerRound, len(cards))
	}
	seen := make(map[string]bool, len(cards))
	for _, id := range cards {
		if seen[id] {
			return validationErr(CodeWrongCardCount, "card %s selected twice", id)
		}
		seen[id] = true
		if !s.directory.OwnsCard(playerID, id) {
			return validationErr(CodeCardNotOwned, "card %s is not in player %s's hand", id, playerID)
		}
	}

	st.escrow = append([]string(nil), cards...)
	st.submitted = true
	s.broadcast(network.NewMessage(EventCardsConfirmed, cardsConfirmedPayload{
		PlayerID: playerID,
		Count:    len(cards),
	}))

	s.maybeStartPlaying()
	return nil
}

func (s *Session) maybeStartPlaying() {
	if s.state != StateSelecting {
		return
	}
	for _, st := range s.seats {
		if st.active && !st.submitted {
			return
		}
	}
	s.startPlaying()
}

func (s *Session) startPlaying() {
	if s.selectTimer != nil {
		s.selectTimer.Stop()
		s.selectTimer = nil
	}

	s.state = StatePlaying
	s.resetRound()

	payload := startedPayload{}
	if s.cfg.Mode == ModeDuel {
		s.turnIdx = s.firstTurnSeat()
		payload.TurnPlayerID = s.seats[s.turnIdx].playerID
	}
	s.broadcast(network.NewMessage(EventStarted, payload))
}

// expireSelection força o início com submissões parciais quando o timeout de
// seleção (desabilitado por padrão) estoura: quem não confirmou sai da
// partida.
func (s *Session) expireSelection() {
	if s.state != StateSelecting {
		return
	}
	log.Printf("[Session %s] selection window expired", s.code)

	for _, st := range s.seats {
		if st.active && !st.submitted {
			st.active = false
			s.broadcast(network.NewMessage(EventPlayerSurrendered, playerEventPayload{PlayerID: st.playerID}))
		}
	}

	switch s.activeCount() {
	case 0:
		s.finish("")
	case 1:
		s.finish(s.firstActiveSeat().playerID)
	default:
		s.startPlaying()
	}
}

// --- PLAYING: duelo ---

func (s *Session) handlePlayCard(playerID, cardID, attribute string) error {
	if s.cfg.Mode != ModeDuel {
		return conflictErr(CodeWrongGameState, "session %s is in betting mode, use PLACE_BET", s.code)
	}
	if s.state != StatePlaying {
		return conflictErr(CodeWrongGameState, "session %s is not in a round", s.code)
	}
	st := s.seatOf(playerID)
	if st == nil {
		return conflictErr(CodeNotInSession, "player %s is not in session %s", playerID, s.code)
	}
	if !st.active {
		return conflictErr(CodeNotActive, "player %s has surrendered", playerID)
	}
	if _, dup := s.entries[playerID]; dup {
		return conflictErr(CodeAlreadySubmitted, "player %s already played this round", playerID)
	}

	// O jogador da vez abre a rodada declarando o atributo; os demais só
	// podem jogar depois disso.
	opening := s.declaredAttr == ""
	var attr card.Attribute
	if opening {
		if s.seats[s.turnIdx].playerID != playerID {
			return conflictErr(CodeNotYourTurn, "it is %s's turn to declare the attribute",
				s.seats[s.turnIdx].playerID)
		}
		parsed, err := card.ParseAttribute(attribute)
		if err != nil {
			return validationErr(CodeInvalidAttribute, "attribute must be one of force, speed, intelligence, rarity")
		}
		attr = parsed
	} else {
		attr = card.Attribute(s.declaredAttr)
	}

	if !st.inEscrow(cardID) {
		return validationErr(CodeCardNotEscrowed, "card %s is not in player %s's selected set", cardID, playerID)
	}

	// Validações completas: agora sim pode mutar.
	if opening {
		s.declaredAttr = string(attr)
	}
	st.removeFromEscrow(cardID)
	s.entries[playerID] = resolver.Entry{PlayerID: playerID, CardID: cardID, Attribute: attr}
	s.entryOrder = append(s.entryOrder, playerID)

	s.broadcast(network.NewMessage(EventCardPlayed, cardEventPayload{PlayerID: playerID, CardID: cardID}))

	s.maybeResolveRound()
	return nil
}

// --- PLAYING: aposta ---

func (s *Session) handlePlaceBet(playerID, cardID string, number int) error {
	if s.cfg.Mode != ModeBetting {
		return conflictErr(CodeWrongGameState, "session %s is in duel mode, use PLAY_CARD", s.code)
	}
	if s.state != StatePlaying || s.settling {
		return conflictErr(CodeWrongGameState, "session %s is not taking bets right now", s.code)
	}
	st := s.seatOf(playerID)
	if st == nil {
		return conflictErr(CodeNotInSession, "player %s is not in session %s", playerID, s.code)
	}
	if !st.active {
		return conflictErr(CodeNotActive, "player %s has surrendered", playerID)
	}
	if _, dup := s.entries[playerID]; dup {
		return conflictErr(CodeAlreadySubmitted, "player %s already bet this round", playerID)
	}
	if number < resolver.MinBet || number > resolver.MaxBet {
		return validationErr(CodeInvalidNumber, "number must be between %d and %d",
			resolver.MinBet, resolver.MaxBet)
	}
	if !st.inEscrow(cardID) {
		return validationErr(CodeCardNotEscrowed, "card %s is not in player %s's selected set", cardID, playerID)
	}

	st.removeFromEscrow(cardID)
	s.entries[playerID] = resolver.Entry{PlayerID: playerID, CardID: cardID, Number: number}
	s.entryOrder = append(s.entryOrder, playerID)

	// O número apostado fica retido até o settle: a sala só vê a carta.
	s.broadcast(network.NewMessage(EventCardBet, cardEventPayload{PlayerID: playerID, CardID: cardID}))

	s.maybeResolveRound()
	return nil
}

// --- resolução ---

// maybeResolveRound reavalia a completude da rodada como efeito colateral de
// cada submissão; nenhuma goroutine fica bloqueada esperando os demais.
func (s *Session) maybeResolveRound() {
	if s.state != StatePlaying || s.settling || len(s.entries) == 0 {
		return
	}
	if len(s.entries) < s.activeCount() {
		return
	}
	s.resolveRound()
}

func (s *Session) resolveRound() {
	round := resolver.Round{
		Entries: s.orderedEntries(),
		Active:  s.activeCount(),
		Pool:    s.pool,
	}

	out, err := s.res.Resolve(round, s.rng)
	if err != nil {
		// Violação de contrato do resolver: bug nosso, não do usuário.
		log.Printf("[Session %s] resolver rejected round: %v", s.code, err)
		return
	}

	for _, tb := range out.TieBreaks {
		s.broadcast(network.NewMessage(EventTieBreak, tieBreakPayload{Attribute: string(tb)}))
	}

	if out.Void {
		// Rodada nula: as cartas jogadas voltam ao escrow dos donos.
		for _, e := range round.Entries {
			if st := s.seatOf(e.PlayerID); st != nil {
				st.escrow = append(st.escrow, e.CardID)
			}
		}
	} else {
		s.applyOutcome(round, out)
	}

	resolved := roundResolvedPayload{
		Winners:   out.Winners,
		Transfers: out.Transfers,
		Void:      out.Void,
	}
	if s.cfg.Mode == ModeBetting {
		resolved.WinningNumber = out.WinningNumber
	}
	if resolved.Winners == nil {
		resolved.Winners = []string{}
	}
	s.broadcast(network.NewMessage(EventRoundResolved, resolved))
	s.broadcastHands()

	if s.recorder != nil {
		s.recorder.RecordRound(s.code, out.Winners, out.WinningNumber)
	}

	s.resetRound()
	s.afterRound()
}

func (s *Session) applyOutcome(round resolver.Round, out *resolver.Outcome) {
	switch s.cfg.Mode {
	case ModeDuel:
		// O vencedor leva todas as cartas jogadas, direto de mão em mão.
		for winner, cards := range out.Transfers {
			for _, cardID := range cards {
				owner := s.entryOwnerOf(round, cardID)
				if owner == "" {
					log.Printf("[Session %s] transfer of %s has no entry owner", s.code, cardID)
					continue
				}
				if err := s.directory.TransferCard(owner, winner, cardID); err != nil {
					log.Printf("[Session %s] transfer %s -> %s failed: %v", s.code, cardID, winner, err)
				}
			}
		}

	case ModeBetting:
		// Perdedores largam a carta apostada no pote; vencedores recebem a
		// partilha do pote. O resto fica acumulado em s.pool.
		winners := make(map[string]bool, len(out.Winners))
		for _, w := range out.Winners {
			winners[w] = true
		}
		for _, e := range round.Entries {
			if !winners[e.PlayerID] {
				if err := s.directory.ReleaseCard(e.PlayerID, e.CardID); err != nil {
					log.Printf("[Session %s] forfeit of %s failed: %v", s.code, e.CardID, err)
				}
			}
		}
		for winner, cards := range out.Transfers {
			for _, cardID := range cards {
				if err := s.directory.GrantCard(winner, cardID); err != nil {
					log.Printf("[Session %s] pool grant of %s to %s failed: %v", s.code, cardID, winner, err)
				}
			}
		}
		s.pool = out.PoolAfter
	}
}

// entryOwnerOf localiza quem jogou a carta nesta rodada.
func (s *Session) entryOwnerOf(round resolver.Round, cardID string) string {
	for _, e := range round.Entries {
		if e.CardID == cardID {
			return e.PlayerID
		}
	}
	return ""
}

func (s *Session) orderedEntries() []resolver.Entry {
	out := make([]resolver.Entry, 0, len(s.entries))
	for _, pid := range s.entryOrder {
		if e, ok := s.entries[pid]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *Session) resetRound() {
	s.entries = make(map[string]resolver.Entry)
	s.entryOrder = nil
	s.declaredAttr = ""
}

// afterRound decide o que vem depois de uma resolução: eliminação, fim de
// partida, avanço de turno ou o settle da aposta.
func (s *Session) afterRound() {
	// Quem ficou sem mão e sem escrow está fora.
	for _, st := range s.seats {
		if !st.active {
			continue
		}
		hand, err := s.directory.HandOf(st.playerID)
		if err == nil && len(hand) == 0 && len(st.escrow) == 0 {
			st.active = false
		}
	}

	switch s.activeCount() {
	case 0:
		s.finish("")
		return
	case 1:
		s.finish(s.firstActiveSeat().playerID)
		return
	}

	// A próxima rodada precisa de uma carta escrowed de cada ativo; quando o
	// conjunto selecionado esgota, a partida fecha pela classificação.
	for _, st := range s.seats {
		if st.active && len(st.escrow) == 0 {
			s.finish(s.leaderByHandSize())
			return
		}
	}

	switch s.cfg.Mode {
	case ModeDuel:
		s.advanceTurn()
		s.broadcast(network.NewMessage(EventTurnAdvanced, playerEventPayload{
			PlayerID: s.seats[s.turnIdx].playerID,
		}))
		s.broadcast(network.NewMessage(EventNextRound, nil))

	case ModeBetting:
		// Settle como callback cancelável, nunca um sleep: rendições e
		// desconexões durante a pausa continuam sendo processadas.
		s.settling = true
		s.settleTimer = time.NewTimer(s.cfg.SettleDelay)
	}
}

func (s *Session) openNextBettingRound() {
	if s.state != StatePlaying || !s.settling {
		return
	}
	s.settling = false
	s.broadcast(network.NewMessage(EventNextRound, nil))
}

// --- turnos (duelo) ---

func (s *Session) firstTurnSeat() int {
	for i, st := range s.seats {
		if st.active && st.connected {
			return i
		}
	}
	for i, st := range s.seats {
		if st.active {
			return i
		}
	}
	return 0
}

// advanceTurn gira para o próximo ativo e conectado, com wrap-around. Se
// ninguém ativo está conectado, cai para o próximo ativo — o índice de turno
// sempre aponta para um jogador ativo.
func (s *Session) advanceTurn() {
	n := len(s.seats)
	for i := 1; i <= n; i++ {
		idx := (s.turnIdx + i) % n
		if s.seats[idx].active && s.seats[idx].connected {
			s.turnIdx = idx
			return
		}
	}
	for i := 1; i <= n; i++ {
		idx := (s.turnIdx + i) % n
		if s.seats[idx].active {
			s.turnIdx = idx
			return
		}
	}
}

// --- rendição, conexão, desconexão ---

func (s *Session) handleSurrender(playerID string) error {
	if s.state == StateFinished {
		return conflictErr(CodeWrongGameState, "session %s already finished", s.code)
	}
	st := s.seatOf(playerID)
	if st == nil {
		return conflictErr(CodeNotInSession, "player %s is not in session %s", playerID, s.code)
	}
	if !st.active {
		return conflictErr(CodeNotActive, "player %s already surrendered", playerID)
	}

	wasTurnSeat := s.cfg.Mode == ModeDuel && s.state == StatePlaying &&
		s.seats[s.turnIdx] == st

	st.active = false
	// A jogada pendente sai da mesa; as cartas do rendido continuam dele.
	delete(s.entries, playerID)
	for i, pid := range s.entryOrder {
		if pid == playerID {
			s.entryOrder = append(s.entryOrder[:i], s.entryOrder[i+1:]...)
			break
		}
	}

	s.broadcast(network.NewMessage(EventPlayerSurrendered, playerEventPayload{PlayerID: playerID}))

	if s.activeCount() == 1 {
		s.finish(s.firstActiveSeat().playerID)
		return nil
	}
	if s.activeCount() == 0 {
		s.finish("")
		return nil
	}

	switch s.state {
	case StateSelecting:
		s.maybeStartPlaying()

	case StatePlaying:
		if wasTurnSeat && s.declaredAttr == "" {
			s.advanceTurn()
			s.broadcast(network.NewMessage(EventTurnAdvanced, playerEventPayload{
				PlayerID: s.seats[s.turnIdx].playerID,
			}))
		}
		s.maybeResolveRound()
	}
	return nil
}

func (s *Session) handleConnect(playerID string) error {
	st := s.seatOf(playerID)
	if st == nil {
		return conflictErr(CodeNotInSession, "player %s is not in session %s", playerID, s.code)
	}

	reconnect := st.everConnected
	st.connected = true
	st.everConnected = true

	if reconnect {
		s.broadcast(network.NewMessage(EventPlayerReconnected, playerEventPayload{PlayerID: playerID}))
	}
	return nil
}

// handleDisconnect preserva a vaga e a posição de turno do jogador: queda de
// canal nunca vira rendição automática.
func (s *Session) handleDisconnect(playerID string) {
	st := s.seatOf(playerID)
	if st == nil || !st.connected {
		return
	}
	st.connected = false
	s.broadcast(network.NewMessage(EventPlayerDisconnected, playerEventPayload{PlayerID: playerID}))

	// No duelo, uma rodada ainda não aberta não pode ficar presa num
	// declarante offline.
	if s.cfg.Mode == ModeDuel && s.state == StatePlaying &&
		s.declaredAttr == "" && s.seats[s.turnIdx] == st {
		s.advanceTurn()
		if s.seats[s.turnIdx] != st {
			s.broadcast(network.NewMessage(EventTurnAdvanced, playerEventPayload{
				PlayerID: s.seats[s.turnIdx].playerID,
			}))
		}
	}
}

// --- fim de jogo ---

func (s *Session) leaderByHandSize() string {
	best := ""
	bestSize := -1
	for _, st := range s.seats {
		if !st.active {
			continue
		}
		hand, err := s.directory.HandOf(st.playerID)
		if err != nil {
			continue
		}
		if len(hand) > bestSize {
			best = st.playerID
			bestSize = len(hand)
		}
	}
	return best
}

func (s *Session) finish(winnerID string) {
	s.stopTimers()
	s.settling = false
	s.state = StateFinished
	s.finishedAt = time.Now()

	if winnerID != "" {
		if err := s.directory.RecordWin(winnerID); err != nil {
			log.Printf("[Session %s] failed to record win for %s: %v", s.code, winnerID, err)
		}
	}

	standings := s.buildStandings()
	s.broadcast(network.NewMessage(EventGameFinished, gameFinishedPayload{
		WinnerID:  winnerID,
		Standings: standings,
	}))

	if s.recorder != nil {
		s.recorder.RecordFinish(s.code, winnerID, standings)
	}
	log.Printf("[Session %s] finished, winner=%q", s.code, winnerID)
}

func (s *Session) buildStandings() []Standing {
	standings := make([]Standing, 0, len(s.seats))
	for _, st := range s.seats {
		row := Standing{PlayerID: st.playerID}
		if p, err := s.directory.Get(st.playerID); err == nil {
			row.Name = p.Name()
			row.HandSize = p.HandSize()
			row.Wins = p.Wins()
		}
		standings = append(standings, row)
	}
	// Maior mão primeiro; empates mantêm a ordem do roster.
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].HandSize > standings[j].HandSize
	})
	return standings
}

func (s *Session) broadcastHands() {
	hands := make([]HandDelta, 0, len(s.seats))
	for _, st := range s.seats {
		size := 0
		if hand, err := s.directory.HandOf(st.playerID); err == nil {
			size = len(hand)
		}
		hands = append(hands, HandDelta{
			PlayerID:   st.playerID,
			HandSize:   size,
			EscrowLeft: len(st.escrow),
		})
	}
	s.broadcast(network.NewMessage(EventHandsUpdated, handsUpdatedPayload{Hands: hands}))
}
