package journal

import "github.com/aemery/gambit/internal/pkg/oracle"

type GameIndex struct {
	GameID uint64 `json:"game_id"`
	Issued uint64 `json:"issued"`

	Entries []oracle.JournalEntry `json:"entries"`
}
