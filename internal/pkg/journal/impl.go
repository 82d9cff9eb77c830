package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"go.etcd.io/bbolt"

	"github.com/aemery/gambit/internal/pkg/common"
	"github.com/aemery/gambit/internal/pkg/oracle"
)

var (
	ErrEntriesBucketNotFound = errors.New("entries bucket doesn't exist")
	ErrCountBucketNotFound   = errors.New("count bucket doesn't exist")
)

// JournalService drains issued attestations off the request path and keeps an
// append-only audit trail. The oracle never reads it while handling a move.
type JournalService struct {
	DatabaseService *common.DatabaseService

	EntrySource <-chan oracle.JournalEntry
}

func NewJournalService(i do.Injector) (*JournalService, error) {
	databaseService := do.MustInvoke[*common.DatabaseService](i)
	entrySource := do.MustInvokeNamed[<-chan oracle.JournalEntry](i, "journal-source")

	result := &JournalService{
		DatabaseService: databaseService,

		EntrySource: entrySource,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		journalGroup := apiGroup.Group("/journal")

		journalGroup.GET("/:game_id", result.GetGame)
	})

	return result, nil
}

func (s *JournalService) Start() {
	go s.processEntries()
}

func (s *JournalService) HandleEntry(entry oracle.JournalEntry) error {
	marshaled, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	gameKey := common.Uint64ToBytes(entry.Attestation.GameID)
	entryKey := append(common.Uint64ToBytes(entry.Attestation.GameID), []byte(entry.ID)...)

	err = s.DatabaseService.DB.Update(func(tx *bbolt.Tx) error {
		entries := tx.Bucket([]byte(common.JournalEntriesBucket))
		if entries == nil {
			return ErrEntriesBucketNotFound
		}

		count := tx.Bucket([]byte(common.JournalCountBucket))
		if count == nil {
			return ErrCountBucketNotFound
		}

		err := entries.Put(entryKey, marshaled)
		if err != nil {
			return fmt.Errorf("failed to put journal entry: %w", err)
		}

		issued := common.BytesToUint64(count.Get(gameKey), 0)

		err = count.Put(gameKey, common.Uint64ToBytes(issued+1))
		if err != nil {
			return fmt.Errorf("failed to put issued count: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to journal attestation: %w", err)
	}

	return nil
}

func (s *JournalService) GetGame(c echo.Context) error {
	gameID, err := strconv.ParseUint(c.Param("game_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid game id")
	}

	index := GameIndex{
		GameID: gameID,

		Entries: []oracle.JournalEntry{},
	}

	err = s.DatabaseService.DB.View(func(tx *bbolt.Tx) error {
		entries := tx.Bucket([]byte(common.JournalEntriesBucket))
		if entries == nil {
			return ErrEntriesBucketNotFound
		}

		count := tx.Bucket([]byte(common.JournalCountBucket))
		if count == nil {
			return ErrCountBucketNotFound
		}

		prefix := common.Uint64ToBytes(gameID)
		index.Issued = common.BytesToUint64(count.Get(prefix), 0)

		cursor := entries.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			var entry oracle.JournalEntry

			err := json.Unmarshal(v, &entry)
			if err != nil {
				return fmt.Errorf("failed to unmarshal journal entry: %w", err)
			}

			index.Entries = append(index.Entries, entry)
		}

		return nil
	})
	if err != nil {
		c.Logger().Error(err)

		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read journal")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, index, "  ")
}

func (s *JournalService) processEntries() {
	for entry := range s.EntrySource {
		_ = s.HandleEntry(entry)
	}
}
