package session

// As operações que mutam uma sessão formam uma união fechada de comandos
// tipados, decodificados e validados na borda do canal. Cada comando entra
// no canal 'incoming' da sessão e é aplicado um por vez, em ordem de
// chegada, pela goroutine de Run (disciplina single-writer por sessão).
type command interface {
	isCommand()
}

type joinCmd struct {
	playerID string
	reply    chan error
}

type startCmd struct {
	playerID string
	reply    chan error
}

type selectCardsCmd struct {
	playerID string
	cards    []string
	reply    chan error
}

type playCardCmd struct {
	playerID  string
	cardID    string
	attribute string
	reply     chan error
}

type placeBetCmd struct {
	playerID string
	cardID   string
	number   int
	reply    chan error
}

type surrenderCmd struct {
	playerID string
	reply    chan error
}

type connectCmd struct {
	playerID string
	reply    chan error
}

type disconnectCmd struct {
	playerID string
}

type snapshotCmd struct {
	reply chan Snapshot
}

func (joinCmd) isCommand()        {}
func (startCmd) isCommand()       {}
func (selectCardsCmd) isCommand() {}
func (playCardCmd) isCommand()    {}
func (placeBetCmd) isCommand()    {}
func (surrenderCmd) isCommand()   {}
func (connectCmd) isCommand()     {}
func (disconnectCmd) isCommand()  {}
func (snapshotCmd) isCommand()    {}
