package oracle

import (
	"errors"
	"fmt"
	"time"
)

// Outcome codes are part of the signed payload of schema v3. Never renumber.
type Outcome uint8

const (
	InProgress Outcome = 0
	WhiteWin   Outcome = 1
	BlackWin   Outcome = 2
	Draw       Outcome = 3
)

var ErrUnknownResult = errors.New("unrecognized result string from rules engine")

// OutcomeFromResult maps a rules-engine result string to an Outcome. The
// mapping is total over the four strings the engine contract allows; anything
// else is an internal-consistency error, never coerced to a default.
func OutcomeFromResult(result string) (Outcome, error) {
	switch result {
	case "":
		return InProgress, nil
	case "1-0":
		return WhiteWin, nil
	case "0-1":
		return BlackWin, nil
	case "1/2-1/2":
		return Draw, nil
	}

	return InProgress, fmt.Errorf("%w: %q", ErrUnknownResult, result)
}

func (o Outcome) Result() string {
	switch o {
	case WhiteWin:
		return "1-0"
	case BlackWin:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	case InProgress:
	}

	return ""
}

func (o Outcome) GameOver() bool {
	return o != InProgress
}

type MoveRequest struct {
	GameID  uint64 `json:"game_id"`
	FEN     string `json:"fen"`
	UCIMove string `json:"uci_move"`
}

type Attestation struct {
	GameID   uint64  `json:"game_id"`
	NewFEN   string  `json:"new_fen"`
	GameOver bool    `json:"game_over"`
	Outcome  Outcome `json:"outcome"`
	Result   string  `json:"result"`
	Schema   Schema  `json:"schema"`

	Signature string `json:"signature"`
}

type VerifyRequest struct {
	GameID   uint64  `json:"game_id"`
	PriorFEN string  `json:"prior_fen"`
	NewFEN   string  `json:"new_fen"`
	Outcome  Outcome `json:"outcome"`
	Schema   Schema  `json:"schema"`

	Signature string `json:"signature"`
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Signer string `json:"signer"`
}

type IdentityResponse struct {
	Signer string `json:"signer"`
	Schema Schema `json:"schema"`
}

type JournalEntry struct {
	ID       string    `json:"id"`
	PriorFEN string    `json:"prior_fen"`
	IssuedAt time.Time `json:"issued_at"`

	Attestation Attestation `json:"attestation"`
}
