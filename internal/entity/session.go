package entity

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
)

type Outcome string

const (
	OutcomeContinue Outcome = "continue"
	OutcomeWin      Outcome = "win"
	OutcomeTie      Outcome = "tie"
)

type SessionOption func(*Session)

// WithCoinFlip - replaces the random draw that picks the first mover of the first round.
func WithCoinFlip(flip func() bool) SessionOption {
	return func(that *Session) {
		that.coinFlip = flip
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(that *Session) {
		that.now = now
	}
}

// Session is one match: Waiting -> Setup -> Playing -> Over, and back to Setup on a
// rematch or to Waiting when a player leaves. All methods are safe for concurrent use.
type Session struct {
	ID       string
	Kind     GameKind
	Capacity int

	mu      sync.Mutex
	state   GameState
	players []*Player
	board   Board

	ready      map[string]struct{}
	setupAcks  map[string]struct{}
	votes      map[string]struct{}
	setupBegun bool

	// firstMover indexes players. Drawn once per session, it alternates on every rematch.
	firstMover int
	coinFlip   func() bool

	createdAt time.Time
	updatedAt time.Time
	now       func() time.Time
}

func NewSession(id string, kind GameKind, capacity int, board Board, opts ...SessionOption) *Session {
	session := &Session{
		ID:        id,
		Kind:      kind,
		Capacity:  capacity,
		state:     StateWaiting,
		board:     board,
		ready:     make(map[string]struct{}),
		setupAcks: make(map[string]struct{}),
		votes:     make(map[string]struct{}),
		coinFlip:  defaultCoinFlip,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(session)
	}

	if !session.coinFlip() {
		session.firstMover = 1 % capacity
	}

	session.createdAt = session.now()
	session.updatedAt = session.createdAt

	return session
}

func defaultCoinFlip() bool {
	return rand.Intn(2) == 0 //nolint: gosec // it's ok
}

func (that *Session) State() GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

func (that *Session) PlayerCount() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.players)
}

func (that *Session) PlayerIDs() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.playerIDs()
}

func (that *Session) HasPlayer(connectionID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.indexOf(connectionID) >= 0
}

// OpponentOf - connection id of the first other player in the session.
func (that *Session) OpponentOf(connectionID string) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.indexOf(connectionID) < 0 {
		return "", false
	}

	for _, player := range that.players {
		if player.ConnectionID != connectionID {
			return player.ConnectionID, true
		}
	}

	return "", false
}

func (that *Session) IsReady(connectionID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, ok := that.ready[connectionID]
	return ok
}

func (that *Session) UpdatedAt() time.Time {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.updatedAt
}

// AddPlayer - seats a player; the session moves to Setup once it reaches capacity.
func (that *Session) AddPlayer(player *Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state != StateWaiting {
		return fmt.Errorf("%w: cannot join a game in state %s", apperror.ErrWrongState, that.state)
	}

	if that.indexOf(player.ConnectionID) >= 0 {
		return apperror.ErrAlreadyInGame
	}

	if len(that.players) >= that.Capacity {
		return fmt.Errorf("%w: %d players", apperror.ErrGameFull, len(that.players))
	}

	player.resetRound()
	that.players = append(that.players, player)

	if len(that.players) == that.Capacity {
		that.state = StateSetup
		that.setupBegun = false
		clear(that.setupAcks)
		clear(that.votes)
	}

	that.touch()
	that.mustHoldInvariants()

	return nil
}

// RemovePlayer - unseats a player. Leaving a non-waiting game sends the session back
// to Waiting with a cleared board. Returns the ids of the players left behind.
func (that *Session) RemovePlayer(connectionID string) ([]string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx := that.indexOf(connectionID)
	if idx < 0 {
		return that.playerIDs(), false
	}

	that.players = append(that.players[:idx], that.players[idx+1:]...)
	delete(that.ready, connectionID)
	delete(that.setupAcks, connectionID)
	delete(that.votes, connectionID)

	if that.state != StateWaiting {
		that.resetToWaiting()
	}

	that.touch()
	that.mustHoldInvariants()

	return that.playerIDs(), true
}

// MarkReady - records that the client finished wiring its connection. Returns true
// exactly once per setup phase, when the last player of a full game becomes ready.
func (that *Session) MarkReady(connectionID string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.indexOf(connectionID) < 0 {
		return false, apperror.ErrPlayerNotInGame
	}

	that.ready[connectionID] = struct{}{}
	that.touch()

	if that.state != StateSetup || that.setupBegun || !that.everyoneIn(that.ready) {
		return false, nil
	}

	that.setupBegun = true

	return true, nil
}

// FinishSetup - acknowledges setup for one player. The first acknowledgement of a round
// decides the symbols: the caller gets the requested one (X if invalid) and the others
// the opposite. Returns true when the last acknowledgement starts play.
func (that *Session) FinishSetup(connectionID string, symbol Symbol) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx := that.indexOf(connectionID)
	if idx < 0 {
		return false, apperror.ErrPlayerNotInGame
	}

	if that.state != StateSetup {
		return false, fmt.Errorf("%w: cannot finish setup in state %s", apperror.ErrWrongState, that.state)
	}

	if !that.setupBegun {
		return false, apperror.ErrSetupNotBegun
	}

	if _, done := that.setupAcks[connectionID]; done {
		return false, nil
	}

	if len(that.setupAcks) == 0 {
		if !symbol.IsValid() {
			symbol = SymbolX
		}

		for i, player := range that.players {
			if i == idx {
				player.Symbol = symbol
			} else {
				player.Symbol = symbol.Opposite()
			}
		}
	}

	that.setupAcks[connectionID] = struct{}{}
	that.touch()

	if !that.everyoneIn(that.setupAcks) {
		return false, nil
	}

	for _, player := range that.players {
		player.Stats.RecordSymbol(player.Symbol)
		player.HasTurn = false
	}

	that.players[that.firstMover].HasTurn = true
	that.state = StatePlaying
	that.mustHoldInvariants()

	return true, nil
}

// Mark - places the caller's symbol, passes the turn and evaluates the board.
// A rejected mark leaves the session untouched.
func (that *Session) Mark(connectionID string, row, col int) (Outcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx := that.indexOf(connectionID)
	if idx < 0 {
		return "", apperror.ErrPlayerNotInGame
	}

	switch that.state {
	case StateWaiting, StateSetup:
		return "", apperror.ErrGameIsNotStarted
	case StateOver:
		return "", apperror.ErrGameFinished
	case StatePlaying:
	}

	mover := that.players[idx]
	if !mover.HasTurn {
		return "", apperror.ErrNotYourTurn
	}

	if err := that.board.Mark(mover.Symbol, row, col); err != nil {
		return "", fmt.Errorf("failed to mark cell [%d, %d]: %w", row, col, err)
	}

	mover.HasTurn = false
	that.players[(idx+1)%len(that.players)].HasTurn = true

	outcome := that.evaluate(mover)

	that.touch()
	that.mustHoldInvariants()

	return outcome, nil
}

// VotePlayAgain - counts one vote per player. When every player voted the board is
// cleared, the first mover alternates and the session goes back to Setup.
func (that *Session) VotePlayAgain(connectionID string) (bool, int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.indexOf(connectionID) < 0 {
		return false, 0, apperror.ErrPlayerNotInGame
	}

	if that.state != StateOver {
		return false, len(that.votes), fmt.Errorf("%w: cannot vote in state %s", apperror.ErrWrongState, that.state)
	}

	that.votes[connectionID] = struct{}{}
	that.touch()

	if len(that.votes) < len(that.players) {
		return false, len(that.votes), nil
	}

	clear(that.votes)
	clear(that.setupAcks)
	that.firstMover = (that.firstMover + 1) % that.Capacity
	that.board.Clear()

	for _, player := range that.players {
		player.resetRound()
	}

	that.state = StateSetup
	that.setupBegun = true
	that.mustHoldInvariants()

	return true, 0, nil
}

func (that *Session) Snapshot() GameView {
	that.mu.Lock()
	defer that.mu.Unlock()

	players := make([]Player, 0, len(that.players))
	for _, player := range that.players {
		players = append(players, player.Clone())
	}

	return GameView{
		ID:       that.ID,
		Kind:     that.Kind,
		State:    that.state,
		Capacity: that.Capacity,
		Board:    that.board.Cells(),
		Players:  players,
	}
}

func (that *Session) Summary() Summary {
	that.mu.Lock()
	defer that.mu.Unlock()

	names := make([]string, 0, len(that.players))
	for _, player := range that.players {
		names = append(names, player.Name)
	}

	return Summary{
		ID:          that.ID,
		Kind:        that.Kind,
		State:       that.state,
		PlayerNames: names,
		PlayerCount: len(that.players),
		Capacity:    that.Capacity,
		UpdatedAt:   that.updatedAt,
	}
}

func (that *Session) evaluate(mover *Player) Outcome {
	switch {
	case that.board.IsWinFor(mover.Symbol):
		for _, player := range that.players {
			if player == mover {
				player.GameOverState = Win
			} else {
				player.GameOverState = Lose
			}
		}
	case that.board.IsFull():
		for _, player := range that.players {
			player.GameOverState = Tie
		}
	default:
		return OutcomeContinue
	}

	for _, player := range that.players {
		player.Stats.RecordResult(player.GameOverState)
		player.HasTurn = false
	}

	that.state = StateOver

	if mover.GameOverState == Win {
		return OutcomeWin
	}

	return OutcomeTie
}

func (that *Session) resetToWaiting() {
	that.state = StateWaiting
	that.setupBegun = false
	that.board.Clear()
	clear(that.setupAcks)
	clear(that.votes)

	for _, player := range that.players {
		player.resetRound()
	}
}

func (that *Session) everyoneIn(set map[string]struct{}) bool {
	if len(that.players) != that.Capacity {
		return false
	}

	for _, player := range that.players {
		if _, ok := set[player.ConnectionID]; !ok {
			return false
		}
	}

	return true
}

func (that *Session) indexOf(connectionID string) int {
	for i, player := range that.players {
		if player.ConnectionID == connectionID {
			return i
		}
	}

	return -1
}

func (that *Session) playerIDs() []string {
	ids := make([]string, 0, len(that.players))
	for _, player := range that.players {
		ids = append(ids, player.ConnectionID)
	}

	return ids
}

func (that *Session) touch() {
	that.updatedAt = that.now()
}

// mustHoldInvariants panics when the session reached a state no operation can produce.
// The websocket server recovers per connection, so only the offending handler dies.
func (that *Session) mustHoldInvariants() {
	if len(that.players) > that.Capacity {
		panic(fmt.Errorf("%w: session %s has %d/%d players", apperror.ErrInvariantBroken, that.ID, len(that.players), that.Capacity))
	}

	if that.state != StatePlaying {
		return
	}

	if len(that.players) != that.Capacity {
		panic(fmt.Errorf("%w: session %s is playing with %d/%d players", apperror.ErrInvariantBroken, that.ID, len(that.players), that.Capacity))
	}

	turns := 0
	for _, player := range that.players {
		if player.HasTurn {
			turns++
		}
	}

	if turns != 1 {
		panic(fmt.Errorf("%w: session %s has %d turn holders", apperror.ErrInvariantBroken, that.ID, turns))
	}
}
