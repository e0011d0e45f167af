package session

import (
	"log"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// Sessões terminadas continuam servindo snapshots por este período antes
	// de o janitor derrubar o ator.
	defaultRetention   = 5 * time.Minute
	defaultSweepPeriod = time.Minute
)

// Registry é a tabela viva de sessões do processo. Criação, lookup e
// destruição passam por aqui; o estado interno de cada sessão continua sendo
// assunto exclusivo do ator dela.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	deps      Deps
	retention time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRegistry(deps Deps) *Registry {
	r := &Registry{
		sessions:  make(map[string]*Session),
		deps:      deps,
		retention: defaultRetention,
		stop:      make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Create abre uma sessão nova com um código de convite fresco e sobe a
// goroutine do ator.
func (r *Registry) Create(cfg Config) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.newCodeLocked()
	if err != nil {
		return nil, err
	}

	s, err := New(code, cfg, r.deps)
	if err != nil {
		return nil, err
	}

	r.sessions[code] = s
	go s.Run()
	log.Printf("[Registry] session %s created (mode=%s)", code, s.Mode())
	return s, nil
}

// newCodeLocked sorteia códigos até achar um livre. Com 26^6 combinações e
// poucas dezenas de sessões vivas, colisão é raridade; o laço é só higiene.
func (r *Registry) newCodeLocked() (string, error) {
	for {
		code, err := gonanoid.Generate(codeAlphabet, codeLength)
		if err != nil {
			return "", err
		}
		if _, taken := r.sessions[code]; !taken {
			return code, nil
		}
	}
}

// Lookup resolve um código de convite para a sessão viva.
func (r *Registry) Lookup(code string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[code]
	if !ok {
		return nil, notFoundErr(CodeUnknownSession, "no session with code %s", code)
	}
	return s, nil
}

// List devolve snapshots das sessões vivas, opcionalmente filtradas por
// estado ("" = todas).
func (r *Registry) List(state string) []Snapshot {
	r.mu.RLock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.RUnlock()

	// Snapshots fora do lock do registry: cada um roda uma volta no ator da
	// sessão e não deve segurar os demais lookups.
	out := make([]Snapshot, 0, len(live))
	for _, s := range live {
		snap := s.Snapshot()
		if state == "" || snap.State == state {
			out = append(out, snap)
		}
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Destroy encerra o ator e remove a sessão da tabela.
func (r *Registry) Destroy(code string) {
	r.mu.Lock()
	s, ok := r.sessions[code]
	if ok {
		delete(r.sessions, code)
	}
	r.mu.Unlock()

	if ok {
		s.Close()
		log.Printf("[Registry] session %s destroyed", code)
	}
}

// Shutdown derruba o janitor e todos os atores. Usado no desligamento do
// processo.
func (r *Registry) Shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })

	r.mu.Lock()
	defer r.mu.Unlock()
	for code, s := range r.sessions {
		s.Close()
		delete(r.sessions, code)
	}
}

// janitor varre periodicamente as sessões terminadas cujo período de
// retenção expirou.
func (r *Registry) janitor() {
	ticker := time.NewTicker(defaultSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.retention)
	for _, snap := range r.List(StateFinished) {
		if !snap.FinishedAt.IsZero() && snap.FinishedAt.Before(cutoff) {
			r.Destroy(snap.Code)
		}
	}
}
