package session

import "fmt"

// Kind classifica um erro de jogo para a borda decidir como reportar
// (status HTTP na API, evento ERROR no canal). Toda operação rejeitada
// deixa a sessão exatamente no estado anterior à chamada.
type Kind int

const (
	KindValidation Kind = iota
	KindConflict
	KindNotFound
	KindAuthorization
)

// GameError carrega um código de máquina estável além da mensagem, para o
// cliente reagir sem fazer parsing de texto.
type GameError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *GameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func validationErr(code, format string, args ...any) *GameError {
	return &GameError{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflictErr(code, format string, args ...any) *GameError {
	return &GameError{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFoundErr(code, format string, args ...any) *GameError {
	return &GameError{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func authErr(code, format string, args ...any) *GameError {
	return &GameError{Kind: KindAuthorization, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Códigos de erro expostos no protocolo.
const (
	CodeAlreadyFull         = "AlreadyFull"
	CodeAlreadyJoined       = "AlreadyJoined"
	CodeAlreadySubmitted    = "AlreadySubmitted"
	CodeCardNotEscrowed     = "CardNotEscrowed"
	CodeCardNotOwned        = "CardNotOwned"
	CodeInsufficientPlayers = "InsufficientPlayers"
	CodeInvalidAttribute    = "InvalidAttribute"
	CodeInvalidConfig       = "InvalidConfig"
	CodeInvalidNumber       = "InvalidNumber"
	CodeNotActive           = "NotActive"
	CodeNotHost             = "NotHost"
	CodeNotInSession        = "NotInSession"
	CodeNotYourTurn         = "NotYourTurn"
	CodeUnknownPlayer       = "UnknownPlayer"
	CodeUnknownSession      = "UnknownSession"
	CodeWrongCardCount      = "WrongCardCount"
	CodeWrongGameState      = "WrongGameState"
)
