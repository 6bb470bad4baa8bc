package app

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spygame/internal/domain"
)

func TestGenerateRoomCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 200; i++ {
		code, err := GenerateRoomCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestRegistry_CreateRoomRetriesCollisions(t *testing.T) {
	codes := []string{"111111", "111111", "222222"}
	i := 0
	gen := func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}

	env := newTestEnv(t, domain.DefaultSettings())
	reg := NewRegistry(NewMemoryStore(), env.registry.factory, discardLogger(), WithCodeGenerator(gen))

	first, _, err := reg.CreateRoom("Host", "c1")
	require.NoError(t, err)
	second, _, err := reg.CreateRoom("Host", "c2")
	require.NoError(t, err)

	assert.Equal(t, "111111", first.Code)
	assert.Equal(t, "222222", second.Code)
	assert.Equal(t, 2, reg.RoomCount())
}

func TestRegistry_CodeSpaceExhausted(t *testing.T) {
	env := newTestEnv(t, domain.DefaultSettings())
	reg := NewRegistry(NewMemoryStore(), env.registry.factory, discardLogger(),
		WithCodeGenerator(func() (string, error) { return "333333", nil }))

	_, _, err := reg.CreateRoom("Host", "c1")
	require.NoError(t, err)

	_, _, err = reg.CreateRoom("Other", "c2")
	assert.ErrorIs(t, err, domain.ErrCodeSpaceExhausted)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestRegistry_ResolveConnection(t *testing.T) {
	env := newTestEnv(t, domain.DefaultSettings())
	reg := env.registry

	room, join, err := reg.CreateRoom("Host", "c1")
	require.NoError(t, err)

	route, err := reg.ResolveConnection("c1")
	require.NoError(t, err)
	assert.Equal(t, Route{PlayerID: join.Player.ID, RoomCode: room.Code}, route)

	_, err = reg.ResolveConnection("unknown")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	prev, ok := reg.Unbind("c1")
	assert.True(t, ok)
	assert.Equal(t, route, prev)
	_, err = reg.ResolveConnection("c1")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestRegistry_LookupRoom(t *testing.T) {
	env := newTestEnv(t, domain.DefaultSettings())

	room, _, err := env.registry.CreateRoom("Host", "c1")
	require.NoError(t, err)

	found, err := env.registry.LookupRoom(room.Code)
	require.NoError(t, err)
	assert.Same(t, room, found)

	_, err = env.registry.LookupRoom("000000")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRegistry_SweepEmptyRooms(t *testing.T) {
	env := newTestEnv(t, domain.DefaultSettings())
	reg := env.registry
	grace := 10 * time.Minute

	active, _, err := reg.CreateRoom("Alive", "c-alive")
	require.NoError(t, err)
	abandoned, join, err := reg.CreateRoom("Gone", "c-gone")
	require.NoError(t, err)

	abandoned.Lock()
	_, err = abandoned.MarkDisconnected(join.Player.ID, "c-gone", env.clock.Now())
	abandoned.Unlock()
	require.NoError(t, err)

	env.clock.Advance(5 * time.Minute)
	assert.Empty(t, reg.SweepEmptyRooms(grace))

	env.clock.Advance(5 * time.Minute)
	evicted := reg.SweepEmptyRooms(grace)
	assert.Equal(t, []string{abandoned.Code}, evicted)

	_, err = reg.LookupRoom(abandoned.Code)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = reg.ResolveConnection("c-gone")
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	_, err = reg.LookupRoom(active.Code)
	assert.NoError(t, err)

	abandoned.Lock()
	_, err = abandoned.AddOrReattachPlayer("Gone", "c-back", env.clock.Now())
	abandoned.Unlock()
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRegistry_SweepSparesRejoinedRoom(t *testing.T) {
	env := newTestEnv(t, domain.DefaultSettings())
	reg := env.registry

	room, join, err := reg.CreateRoom("Host", "c1")
	require.NoError(t, err)

	room.Lock()
	_, err = room.MarkDisconnected(join.Player.ID, "c1", env.clock.Now())
	require.NoError(t, err)
	_, err = room.AddOrReattachPlayer("Host", "c2", env.clock.Now())
	require.NoError(t, err)
	room.Unlock()

	env.clock.Advance(time.Hour)
	assert.Empty(t, reg.SweepEmptyRooms(10*time.Minute))
}

func TestRegistry_SummaryAndStats(t *testing.T) {
	env := newTestEnv(t, domain.DefaultSettings())
	reg := env.registry

	room, _, err := reg.CreateRoom("Host", "c1")
	require.NoError(t, err)

	summary, err := reg.RoomSummary(room.Code)
	require.NoError(t, err)
	assert.Equal(t, room.Code, summary.Code)
	assert.Equal(t, domain.PhaseLobby, summary.Phase)
	assert.Equal(t, 1, summary.PlayerCount)
	assert.True(t, summary.CanJoin)

	_, err = reg.RoomSummary("000000")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	stats := reg.Stats()
	assert.Equal(t, Stats{Rooms: 1, Players: 1, ConnectedPlayers: 1}, stats)
}

func TestRegistry_SweeperEvicts(t *testing.T) {
	env := newTestEnvWithClock(t, domain.DefaultSettings(), time.Now)
	reg := env.registry

	room, join, err := reg.CreateRoom("Host", "c1")
	require.NoError(t, err)
	room.Lock()
	_, err = room.MarkDisconnected(join.Player.ID, "c1", time.Now())
	room.Unlock()
	require.NoError(t, err)

	evicted := make(chan []string, 1)
	reg.StartSweeper(10*time.Millisecond, 0, func(codes []string) {
		select {
		case evicted <- codes:
		default:
		}
	})

	select {
	case codes := <-evicted:
		assert.Equal(t, []string{room.Code}, codes)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not evict the empty room")
	}
}
