package game

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
	"github.com/rocketscienceinc/tictactoe-hub/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-hub/internal/tictactoe"
)

// Constructor builds a fresh session of one game kind.
type Constructor func(id string, opts ...entity.SessionOption) *entity.Session

// Registry maps every supported game kind to its constructor. It is filled once at
// startup and read-only afterwards.
type Registry struct {
	constructors map[entity.GameKind]Constructor
	newID        func(kind string) string
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: map[entity.GameKind]Constructor{
			entity.KindTicTacToe: newTicTacToe,
		},
		newID: pkg.GenerateGameID,
	}
}

// New - creates a session of the given kind with a fresh id.
func (that *Registry) New(kind entity.GameKind, opts ...entity.SessionOption) (*entity.Session, error) {
	constructor, ok := that.constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrUnknownGameKind, kind)
	}

	return constructor(that.newID(string(kind)), opts...), nil
}

func (that *Registry) Kinds() []entity.GameKind {
	kinds := make([]entity.GameKind, 0, len(that.constructors))
	for kind := range that.constructors {
		kinds = append(kinds, kind)
	}

	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	return kinds
}

func newTicTacToe(id string, opts ...entity.SessionOption) *entity.Session {
	return entity.NewSession(id, entity.KindTicTacToe, tictactoe.Capacity, tictactoe.NewBoard(), opts...)
}
