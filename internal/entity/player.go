package entity

const PreferredSymbolNone = "None"

type Player struct {
	ConnectionID  string        `json:"connection_id"`
	Name          string        `json:"name"`
	Symbol        Symbol        `json:"symbol,omitempty"`
	HasTurn       bool          `json:"has_turn"`
	GameOverState GameOverState `json:"game_over_state"`
	Stats         Stats         `json:"stats"`
}

// Stats holds the per-connection counters. They only change when a round ends,
// except for the symbol history which is appended when setup completes.
type Stats struct {
	Wins          int      `json:"wins"`
	Losses        int      `json:"losses"`
	Ties          int      `json:"ties"`
	SymbolHistory []Symbol `json:"symbol_history,omitempty"`

	PreferredSymbol string `json:"preferred_symbol"`
}

func NewPlayer(connectionID, name string) *Player {
	return &Player{
		ConnectionID:  connectionID,
		Name:          name,
		GameOverState: NotOver,
		Stats:         Stats{PreferredSymbol: PreferredSymbolNone},
	}
}

// Clone - returns a deep copy that is safe to hand out of the session lock.
func (that *Player) Clone() Player {
	cp := *that
	if that.Stats.SymbolHistory != nil {
		cp.Stats.SymbolHistory = append([]Symbol(nil), that.Stats.SymbolHistory...)
	}

	return cp
}

// resetRound clears everything a round assigns; stats survive.
func (that *Player) resetRound() {
	that.Symbol = EmptySymbol
	that.HasTurn = false
	that.GameOverState = NotOver
}

func (that *Stats) RecordSymbol(symbol Symbol) {
	that.SymbolHistory = append(that.SymbolHistory, symbol)
	that.PreferredSymbol = preferredSymbol(that.SymbolHistory)
}

func (that *Stats) RecordResult(state GameOverState) {
	switch state {
	case Win:
		that.Wins++
	case Lose:
		that.Losses++
	case Tie:
		that.Ties++
	case NotOver:
	}
}

// preferredSymbol - X when X makes up at least half of the history.
func preferredSymbol(history []Symbol) string {
	if len(history) == 0 {
		return PreferredSymbolNone
	}

	xTimes := 0
	for _, symbol := range history {
		if symbol == SymbolX {
			xTimes++
		}
	}

	if 2*xTimes >= len(history) {
		return string(SymbolX)
	}

	return string(SymbolO)
}
