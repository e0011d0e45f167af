package session

import "time"

// Mode seleciona a disciplina de resolução de rodada da sessão.
type Mode string

const (
	ModeDuel    Mode = "duel"
	ModeBetting Mode = "betting"
)

const (
	MinPlayers       = 2
	MaxPlayersLimit  = 8
	MinCardsPerRound = 3
	MaxCardsPerRound = 10

	defaultSettleDelay = 3 * time.Second
)

// Config é a configuração imutável de uma sessão, validada na criação.
type Config struct {
	MaxPlayers    int
	CardsPerRound int
	Mode          Mode

	// SelectionTimeout força o início com submissões parciais quando a fase
	// de seleção expira. Zero = desabilitado (o padrão; ver DESIGN.md).
	SelectionTimeout time.Duration

	// SettleDelay é a pausa entre o resultado de uma rodada de aposta e o
	// começo automático da próxima.
	SettleDelay time.Duration
}

func (c *Config) normalize() *GameError {
	if c.Mode == "" {
		c.Mode = ModeDuel
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = defaultSettleDelay
	}

	if c.Mode != ModeDuel && c.Mode != ModeBetting {
		return validationErr(CodeInvalidConfig, "unknown mode: %q", c.Mode)
	}
	if c.MaxPlayers < MinPlayers || c.MaxPlayers > MaxPlayersLimit {
		return validationErr(CodeInvalidConfig, "maxPlayers must be between %d and %d, got %d",
			MinPlayers, MaxPlayersLimit, c.MaxPlayers)
	}
	if c.CardsPerRound < MinCardsPerRound || c.CardsPerRound > MaxCardsPerRound {
		return validationErr(CodeInvalidConfig, "cardsPerRound must be between %d and %d, got %d",
			MinCardsPerRound, MaxCardsPerRound, c.CardsPerRound)
	}
	if c.SelectionTimeout < 0 || c.SettleDelay < 0 {
		return validationErr(CodeInvalidConfig, "timeouts must not be negative")
	}
	return nil
}
