package oracle

import (
	"errors"
	"fmt"

	"github.com/corentings/chess/v2"
)

var (
	ErrInvalidPosition = errors.New("position descriptor is not a valid FEN")
	ErrInvalidMove     = errors.New("move is unparsable or illegal in this position")
)

// ParsePosition builds a fresh game from a FEN descriptor.
func ParsePosition(fen string) (*chess.Game, error) {
	option, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}

	return chess.NewGame(option), nil
}

// ParseMove decodes a UCI move descriptor and checks it is legal in the
// game's current position.
func ParseMove(game *chess.Game, uci string) (*chess.Move, error) {
	move, err := chess.UCINotation{}.Decode(game.Position(), uci)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	if !isLegal(game, move) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMove, uci)
	}

	return move, nil
}

func isLegal(game *chess.Game, move *chess.Move) bool {
	for _, legal := range game.ValidMoves() {
		if legal.S1() == move.S1() && legal.S2() == move.S2() && legal.Promo() == move.Promo() {
			return true
		}
	}

	return false
}

// ApplyMove pushes an already-validated move and classifies the resulting
// position. A classification failure means the engine reported a result
// outside its contract and the caller must not sign anything.
func ApplyMove(game *chess.Game, move *chess.Move) (string, Outcome, error) {
	err := game.Move(move, nil)
	if err != nil {
		return "", InProgress, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	outcome, err := classifyOutcome(game.Outcome())
	if err != nil {
		return "", InProgress, err
	}

	return game.FEN(), outcome, nil
}

func classifyOutcome(engineOutcome chess.Outcome) (Outcome, error) {
	switch engineOutcome {
	case chess.NoOutcome:
		return InProgress, nil
	case chess.WhiteWon:
		return WhiteWin, nil
	case chess.BlackWon:
		return BlackWin, nil
	case chess.Draw:
		return Draw, nil
	}

	return InProgress, fmt.Errorf("%w: %q", ErrUnknownResult, string(engineOutcome))
}
