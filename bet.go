package lotofacil

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// BetKind tells how a saved bet was produced
type BetKind string

const (
	BetSimple     BetKind = "simple"
	BetSimulation BetKind = "simulation"
	BetStrategy   BetKind = "strategy"
)

// Valid reports whether k is a known kind
func (k BetKind) Valid() bool {
	switch k {
	case BetSimple, BetSimulation, BetStrategy:
		return true
	}
	return false
}

// Bet is a named group of games kept by the bet store
type Bet struct {
	ID           string    `json:"id"`
	Kind         BetKind   `json:"kind"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	GameSize     int       `json:"game_size"`
	Games        []Game    `json:"games"`
	FixedNumbers []Number  `json:"fixed_numbers,omitempty"`
}

// NewBet creates a bet with a fresh UUID. The game size is taken from the first game.
func NewBet(kind BetKind, name string, games []Game, fixed []Number) (*Bet, error) {
	bet := &Bet{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
		Games:     games,
	}
	if len(games) > 0 {
		bet.GameSize = len(games[0])
	}
	if len(fixed) > 0 {
		bet.FixedNumbers = UniqueSorted(fixed)
	}
	if err := bet.Validate(); err != nil {
		return nil, err
	}
	return bet, nil
}

// Validate checks the bet before it is stored
func (b *Bet) Validate() error {
	if b == nil {
		return ErrInvalidParameters.WithDetails("nil bet")
	}
	if b.ID == "" {
		return ErrInvalidParameters.WithDetails("bet id is required")
	}
	if !b.Kind.Valid() {
		return ErrInvalidParameters.WithDetailsf("unknown bet kind %q", b.Kind)
	}
	if len(b.Games) == 0 {
		return ErrInvalidParameters.WithDetails("bet has no games")
	}
	if err := validateGameSize(b.GameSize); err != nil {
		return err
	}
	for i, g := range b.Games {
		if len(g) != b.GameSize {
			return ErrInvalidGameSize.WithDetailsf("game %d has %d numbers, bet uses %d", i+1, len(g), b.GameSize)
		}
		if err := g.Validate(); err != nil {
			return err
		}
	}
	return validateNumbers(b.FixedNumbers)
}
