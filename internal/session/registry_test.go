package session

import (
	"strings"
	"testing"

	"cardbattle/internal/game/card"
	"cardbattle/internal/game/player"

	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	require.NoError(t, card.InitGlobalCatalog())
	r := NewRegistry(Deps{
		Directory: player.NewDirectory(nil),
		Notifier:  &fakeNotifier{},
	})
	t.Cleanup(r.Shutdown)
	return r
}

func TestRegistryCreateAssignsFreshCode(t *testing.T) {
	r := newTestRegistry(t)

	s1, err := r.Create(Config{MaxPlayers: 2, CardsPerRound: 3})
	require.NoError(t, err)
	s2, err := r.Create(Config{MaxPlayers: 4, CardsPerRound: 5, Mode: ModeBetting})
	require.NoError(t, err)

	require.Len(t, s1.Code(), codeLength)
	require.Equal(t, strings.ToUpper(s1.Code()), s1.Code())
	require.NotEqual(t, s1.Code(), s2.Code())
	require.Equal(t, 2, r.Count())

	// Códigos são alfanuméricos maiúsculos: nada fora do alfabeto declarado,
	// que por sua vez só tem A-Z e 0-9.
	for _, code := range []string{s1.Code(), s2.Code()} {
		for _, ch := range code {
			require.Contains(t, codeAlphabet, string(ch))
		}
	}
	require.Regexp(t, `^[A-Z0-9]+$`, codeAlphabet)
}

func TestRegistryCreateRejectsBadConfig(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Create(Config{MaxPlayers: 1, CardsPerRound: 3})
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeInvalidConfig, ge.Code)
	require.Equal(t, 0, r.Count())
}

func TestRegistryLookup(t *testing.T) {
	r := newTestRegistry(t)

	s, err := r.Create(Config{MaxPlayers: 2, CardsPerRound: 3})
	require.NoError(t, err)

	found, err := r.Lookup(s.Code())
	require.NoError(t, err)
	require.Same(t, s, found)

	_, err = r.Lookup("NOPE99")
	var ge *GameError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, CodeUnknownSession, ge.Code)
	require.Equal(t, KindNotFound, ge.Kind)
}

func TestRegistryListFiltersByState(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Create(Config{MaxPlayers: 2, CardsPerRound: 3})
	require.NoError(t, err)
	_, err = r.Create(Config{MaxPlayers: 2, CardsPerRound: 3, Mode: ModeBetting})
	require.NoError(t, err)

	require.Len(t, r.List(""), 2)
	require.Len(t, r.List(StateWaiting), 2)
	require.Empty(t, r.List(StatePlaying))
}

func TestRegistryDestroy(t *testing.T) {
	r := newTestRegistry(t)

	s, err := r.Create(Config{MaxPlayers: 2, CardsPerRound: 3})
	require.NoError(t, err)

	r.Destroy(s.Code())
	_, err = r.Lookup(s.Code())
	require.Error(t, err)
	require.Equal(t, 0, r.Count())

	// Destruir de novo é inofensivo.
	r.Destroy(s.Code())
}

func TestRegistrySweepReapsExpiredSessions(t *testing.T) {
	r := newTestRegistry(t)
	r.retention = 0 // qualquer sessão terminada já expirou

	s, err := r.Create(Config{MaxPlayers: 2, CardsPerRound: 3})
	require.NoError(t, err)

	waiting, err := r.Create(Config{MaxPlayers: 2, CardsPerRound: 3})
	require.NoError(t, err)

	// Termina a primeira sessão na marra: dois entram, um se rende.
	dir := r.deps.Directory
	p1, err := dir.Create("sweep-1")
	require.NoError(t, err)
	p2, err := dir.Create("sweep-2")
	require.NoError(t, err)
	require.NoError(t, s.Join(p1.ID()))
	require.NoError(t, s.Join(p2.ID()))
	require.NoError(t, s.Start(p1.ID()))
	require.NoError(t, s.SelectCards(p1.ID(), p1.Hand()[:3]))
	require.NoError(t, s.SelectCards(p2.ID(), p2.Hand()[:3]))
	require.NoError(t, s.Surrender(p2.ID()))
	require.Equal(t, StateFinished, s.Snapshot().State)

	r.sweep()

	_, err = r.Lookup(s.Code())
	require.Error(t, err)

	// Sessões vivas sobrevivem à varredura.
	_, err = r.Lookup(waiting.Code())
	require.NoError(t, err)
}
