package domain

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxSpyHistory bounds the per-room record used by FairSpyPicker
const maxSpyHistory = 32

// Settings holds configurable room parameters
type Settings struct {
	MinPlayers            int
	MaxPlayers            int
	DiscussionDuration    time.Duration
	AllowNicknameTakeover bool
}

// DefaultSettings returns the default room settings
func DefaultSettings() Settings {
	return Settings{
		MinPlayers:            3,
		MaxPlayers:            9,
		DiscussionDuration:    5 * time.Minute,
		AllowNicknameTakeover: true,
	}
}

// Room is one game session. All methods expect the caller to hold the room
// lock; the room is the unit of mutual exclusion.
type Room struct {
	Code      string
	HostID    string
	Players   map[string]*Player
	Phase     Phase
	Round     *Round
	Settings  Settings
	CreatedAt time.Time
	EmptyAt   *time.Time

	joinOrder   []string
	spyHistory  []string
	gamesPlayed int
	closed      bool

	words  WordBank
	picker SpyPicker
	rng    *rand.Rand
	newID  func() string
	mu     sync.Mutex
}

// RoomOption customizes a new room
type RoomOption func(*Room)

// WithSettings overrides the default settings
func WithSettings(s Settings) RoomOption {
	return func(r *Room) { r.Settings = s }
}

// WithRand sets the random source used for spy, word and turn order
func WithRand(rng *rand.Rand) RoomOption {
	return func(r *Room) { r.rng = rng }
}

// WithSpyPicker sets the spy selection policy
func WithSpyPicker(p SpyPicker) RoomOption {
	return func(r *Room) { r.picker = p }
}

// WithIDGenerator sets the player id generator
func WithIDGenerator(gen func() string) RoomOption {
	return func(r *Room) { r.newID = gen }
}

// NewRoom creates an empty room in the lobby phase
func NewRoom(code string, words WordBank, now time.Time, opts ...RoomOption) *Room {
	r := &Room{
		Code:      code,
		Players:   make(map[string]*Player),
		Phase:     PhaseLobby,
		Settings:  DefaultSettings(),
		CreatedAt: now,
		words:     words,
		picker:    UniformSpyPicker{},
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(randomSeed()))
	}
	return r
}

func randomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// Lock acquires the room lock
func (r *Room) Lock() {
	r.mu.Lock()
}

// Unlock releases the room lock
func (r *Room) Unlock() {
	r.mu.Unlock()
}

// JoinResult describes a successful AddOrReattachPlayer
type JoinResult struct {
	Player         *Player
	Reattached     bool
	PreviousConnID string // connection the seat was taken from, if any
	HostChanged    bool
}

// AddOrReattachPlayer seats a player. A nickname already on the roster is a
// reconnection: the seat keeps its id, role, flip and vote state. Reconnection
// is checked before capacity so a full room never locks out its own players.
func (r *Room) AddOrReattachPlayer(nickname, connID string, now time.Time) (*JoinResult, error) {
	if r.closed {
		return nil, ErrRoomNotFound
	}

	if existing := r.playerByNickname(nickname); existing != nil {
		if existing.IsConnected && existing.ConnectionID != connID && !r.Settings.AllowNicknameTakeover {
			return nil, ErrDuplicateActiveNickname
		}

		result := &JoinResult{Player: existing, Reattached: true}
		if existing.ConnectionID != connID {
			result.PreviousConnID = existing.ConnectionID
		}
		existing.Attach(connID)
		r.EmptyAt = nil
		result.HostChanged = r.ensureConnectedHost()
		return result, nil
	}

	if r.Phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if len(r.Players) >= r.Settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	player := NewPlayer(r.newID(), nickname, connID, now)
	r.Players[player.ID] = player
	r.joinOrder = append(r.joinOrder, player.ID)
	r.EmptyAt = nil

	result := &JoinResult{Player: player}
	if r.HostID == "" {
		r.setHost(player.ID)
		result.HostChanged = true
	} else {
		result.HostChanged = r.ensureConnectedHost()
	}
	return result, nil
}

// DisconnectResult describes the effect of MarkDisconnected
type DisconnectResult struct {
	Applied     bool
	HostChanged bool
	Empty       bool
}

// MarkDisconnected keeps the seat but marks it offline. connID guards against
// a stale connection closing after the seat was taken over by a newer one.
func (r *Room) MarkDisconnected(playerID, connID string, now time.Time) (DisconnectResult, error) {
	player, ok := r.Players[playerID]
	if !ok {
		return DisconnectResult{}, ErrPlayerNotFound
	}
	if connID != "" && player.ConnectionID != connID {
		return DisconnectResult{}, nil
	}

	player.Detach()
	result := DisconnectResult{Applied: true}
	if player.IsHost {
		result.HostChanged = r.ensureConnectedHost()
	}
	if r.ConnectedCount() == 0 {
		if r.EmptyAt == nil {
			t := now
			r.EmptyAt = &t
		}
		result.Empty = true
	}
	return result, nil
}

// GameStart is what a successful StartGame hands to the gateway: a public
// announcement and one private card per player.
type GameStart struct {
	Announcement GameStartedPayload
	Roles        map[string]RoleCard
}

// StartGame assigns a spy, a word and a turn order. The phase check and the
// phase change happen under the same lock, so a duplicate start is rejected
// with ErrAlreadyStarting and never produces a second assignment.
func (r *Room) StartGame(playerID, categoryID string, now time.Time) (*GameStart, error) {
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if _, ok := r.Players[playerID]; !ok {
		return nil, ErrPlayerNotFound
	}
	if !r.IsHost(playerID) {
		return nil, ErrNotHost
	}
	switch {
	case r.Phase.InGame():
		return nil, ErrAlreadyStarting
	case r.Phase != PhaseLobby:
		return nil, ErrWrongPhase
	}
	if len(r.Players) < r.Settings.MinPlayers {
		return nil, ErrTooFewPlayers
	}

	category, words, err := r.words.Words(categoryID)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrUnknownCategory
	}

	roster := r.rosterIDs()
	spyID := r.picker.PickSpy(r.rng, roster, r.spyHistory)
	word := words[r.rng.Intn(len(words))]

	order := make([]string, len(roster))
	copy(order, roster)
	r.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	if err := r.transition(PhaseCardFlipping); err != nil {
		return nil, err
	}
	for _, p := range r.Players {
		p.ResetForNewGame()
	}
	r.gamesPlayed++
	r.Round = NewRound(r.gamesPlayed, category, word, spyID, order, now)
	r.recordSpy(spyID)

	roles := make(map[string]RoleCard, len(roster))
	for _, id := range roster {
		roles[id] = r.Round.RoleCardFor(id)
	}

	return &GameStart{
		Announcement: GameStartedPayload{
			Phase:               r.Phase,
			Category:            category,
			RosterSize:          len(roster),
			TurnOrder:           append([]string(nil), order...),
			CurrentTurnPlayerID: r.Round.CurrentTurn(),
		},
		Roles: roles,
	}, nil
}

// FlipResult is the outcome of a valid flip
type FlipResult struct {
	Reveal     RoleCard
	NextTurn   string
	AllFlipped bool
	EndsAt     time.Time
}

// FlipCard reveals the caller's own card when it is their turn. The last flip
// opens the questions phase with an absolute deadline.
func (r *Room) FlipCard(playerID string, now time.Time) (*FlipResult, error) {
	if r.Phase != PhaseCardFlipping || r.Round == nil {
		return nil, ErrWrongPhase
	}
	player, ok := r.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if !r.Round.IsPlayerTurn(playerID) {
		return nil, ErrNotYourTurn
	}
	if player.HasFlippedCard {
		return nil, ErrAlreadyFlipped
	}

	player.HasFlippedCard = true
	r.Round.CardsFlipped++
	result := &FlipResult{Reveal: r.Round.RoleCardFor(playerID)}

	if r.Round.CardsFlipped == len(r.Players) {
		if err := r.transition(PhaseQuestions); err != nil {
			return nil, err
		}
		r.Round.TurnCursor = len(r.Round.TurnOrder)
		r.Round.EndsAt = now.Add(r.Settings.DiscussionDuration)
		result.AllFlipped = true
		result.EndsAt = r.Round.EndsAt
		return result, nil
	}

	r.Round.TurnCursor++
	result.NextTurn = r.Round.CurrentTurn()
	return result, nil
}

// SkipToVoting lets the host end the discussion early
func (r *Room) SkipToVoting(playerID string) error {
	if _, ok := r.Players[playerID]; !ok {
		return ErrPlayerNotFound
	}
	if !r.IsHost(playerID) {
		return ErrNotHost
	}
	if r.Phase != PhaseQuestions {
		return ErrWrongPhase
	}
	return r.openVoting()
}

// ExpireDiscussion moves questions to voting once the deadline has passed.
// It reports whether a transition happened; calling it at any time is safe.
func (r *Room) ExpireDiscussion(now time.Time) bool {
	if r.Phase != PhaseQuestions || r.Round == nil || !r.Round.DeadlinePassed(now) {
		return false
	}
	return r.openVoting() == nil
}

func (r *Room) openVoting() error {
	if err := r.transition(PhaseVoting); err != nil {
		return err
	}
	r.Round.EndsAt = time.Time{}
	return nil
}

// VoteOutcome is the outcome of an accepted vote. Results is set once every
// player has voted.
type VoteOutcome struct {
	Progress VoteProgressPayload
	Results  *Results
}

// CastVote records exactly one vote per player per game. Self-votes are allowed.
func (r *Room) CastVote(voterID, targetID string) (*VoteOutcome, error) {
	if r.Phase != PhaseVoting || r.Round == nil {
		return nil, ErrWrongPhase
	}
	voter, ok := r.Players[voterID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	if r.Round.HasVoted(voterID) {
		return nil, ErrAlreadyVoted
	}
	if _, ok := r.Players[targetID]; !ok {
		return nil, ErrUnknownTarget
	}

	r.Round.Votes[voterID] = targetID
	voter.HasVoted = true

	outcome := &VoteOutcome{Progress: *r.VoteProgress()}
	if len(r.Round.Votes) == len(r.Players) {
		if err := r.transition(PhaseResults); err != nil {
			return nil, err
		}
		r.Round.Results = Tally(r.Round.Votes, r.Round.SpyID, r.Round.Word, r.rosterIDs())
		outcome.Results = r.Round.Results
	}
	return outcome, nil
}

// ResetToLobby clears all per-game state and keeps the roster. It is valid
// from results (the only backward edge) and as a no-op in the lobby.
func (r *Room) ResetToLobby(playerID string) error {
	if _, ok := r.Players[playerID]; !ok {
		return ErrPlayerNotFound
	}
	if !r.IsHost(playerID) {
		return ErrNotHost
	}
	switch r.Phase {
	case PhaseResults:
		if err := r.transition(PhaseLobby); err != nil {
			return err
		}
	case PhaseLobby:
	default:
		return ErrWrongPhase
	}

	r.Round = nil
	for _, p := range r.Players {
		p.ResetForNewGame()
	}
	return nil
}

// IsHost checks if the given player is the host
func (r *Room) IsHost(playerID string) bool {
	return playerID != "" && r.HostID == playerID
}

// Player returns a player by ID
func (r *Room) Player(playerID string) (*Player, error) {
	player, ok := r.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// PlayerCount returns the roster size, connected or not
func (r *Room) PlayerCount() int {
	return len(r.Players)
}

// ConnectedCount returns the number of connected players
func (r *Room) ConnectedCount() int {
	count := 0
	for _, p := range r.Players {
		if p.IsConnected {
			count++
		}
	}
	return count
}

// CanJoin reports whether a brand-new player could take a seat
func (r *Room) CanJoin() bool {
	return !r.closed && r.Phase == PhaseLobby && len(r.Players) < r.Settings.MaxPlayers
}

// ConnectionIDs returns the live connection of every connected player, in join order
func (r *Room) ConnectionIDs() []string {
	ids := make([]string, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		if p := r.Players[id]; p.IsConnected && p.ConnectionID != "" {
			ids = append(ids, p.ConnectionID)
		}
	}
	return ids
}

// ConnectionOf returns the live connection of one player, or ""
func (r *Room) ConnectionOf(playerID string) string {
	if p, ok := r.Players[playerID]; ok && p.IsConnected {
		return p.ConnectionID
	}
	return ""
}

// Roster returns the public player list in join order
func (r *Room) Roster() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(r.joinOrder))
	for _, id := range r.joinOrder {
		players = append(players, r.Players[id].ToInfo())
	}
	return players
}

// PlayersUpdated returns the roster snapshot payload
func (r *Room) PlayersUpdated() *PlayersUpdatedPayload {
	return &PlayersUpdatedPayload{
		Players: r.Roster(),
		HostID:  r.HostID,
	}
}

// VoteProgress returns the current voting progress
func (r *Room) VoteProgress() *VoteProgressPayload {
	votes := 0
	if r.Round != nil {
		votes = len(r.Round.Votes)
	}
	return &VoteProgressPayload{
		VotesIn:      votes,
		TotalPlayers: len(r.Players),
	}
}

// StateFor returns the room as one member may see it. The role card is the
// member's own and is only included while a game is running.
func (r *Room) StateFor(playerID string) *RoomStatePayload {
	state := &RoomStatePayload{
		RoomCode: r.Code,
		Phase:    r.Phase,
		HostID:   r.HostID,
		Players:  r.Roster(),
	}
	if r.Round == nil {
		return state
	}

	state.Category = r.Round.Category
	state.TurnOrder = append([]string(nil), r.Round.TurnOrder...)

	switch r.Phase {
	case PhaseCardFlipping:
		state.CurrentTurnPlayerID = r.Round.CurrentTurn()
	case PhaseQuestions:
		if r.Round.HasDeadline() {
			endsAt := r.Round.EndsAt
			state.EndsAt = &endsAt
		}
	case PhaseVoting:
		state.VoteProgress = r.VoteProgress()
	case PhaseResults:
		state.Results = r.Round.Results
	}

	if r.Phase.InGame() {
		if _, ok := r.Players[playerID]; ok {
			card := r.Round.RoleCardFor(playerID)
			state.Role = &card
		}
	}
	return state
}

// Evictable reports whether the registry may drop this room: nobody has been
// connected for the grace window, or the room was reset and then abandoned.
func (r *Room) Evictable(now time.Time, grace time.Duration) bool {
	if r.closed {
		return true
	}
	if r.EmptyAt == nil {
		return false
	}
	if r.Phase == PhaseLobby && r.gamesPlayed > 0 {
		return true
	}
	return now.Sub(*r.EmptyAt) >= grace
}

// Close marks the room as torn down; later joins see ErrRoomNotFound
func (r *Room) Close() {
	r.closed = true
}

// Closed reports whether the room was torn down
func (r *Room) Closed() bool {
	return r.closed
}

// GamesPlayed returns how many games were started in this room
func (r *Room) GamesPlayed() int {
	return r.gamesPlayed
}

func (r *Room) transition(to Phase) error {
	if !r.Phase.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	r.Phase = to
	return nil
}

func (r *Room) playerByNickname(nickname string) *Player {
	for _, id := range r.joinOrder {
		if p := r.Players[id]; p.Nickname == nickname {
			return p
		}
	}
	return nil
}

func (r *Room) rosterIDs() []string {
	return append([]string(nil), r.joinOrder...)
}

func (r *Room) recordSpy(playerID string) {
	r.spyHistory = append(r.spyHistory, playerID)
	if len(r.spyHistory) > maxSpyHistory {
		r.spyHistory = r.spyHistory[len(r.spyHistory)-maxSpyHistory:]
	}
}

// ensureConnectedHost moves host to the earliest-joined connected player when
// the current host is offline. With nobody connected the host stays assigned.
func (r *Room) ensureConnectedHost() bool {
	if host, ok := r.Players[r.HostID]; ok && host.IsConnected {
		return false
	}
	for _, id := range r.joinOrder {
		if r.Players[id].IsConnected {
			r.setHost(id)
			return true
		}
	}
	return false
}

func (r *Room) setHost(playerID string) {
	for id, p := range r.Players {
		p.IsHost = id == playerID
	}
	r.HostID = playerID
}
