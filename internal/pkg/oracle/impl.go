package oracle

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"

	"github.com/aemery/gambit/internal/pkg/common"
	"github.com/aemery/gambit/internal/pkg/signer"
)

type OracleService struct {
	Signer *signer.SignerService
	Schema Schema

	JournalSink chan<- JournalEntry
}

func NewOracleService(i do.Injector) (*OracleService, error) {
	signerService, err := do.Invoke[*signer.SignerService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer service: %w", err)
	}

	schema, err := ParseSchema(do.MustInvokeNamed[int](i, "schema"))
	if err != nil {
		return nil, fmt.Errorf("failed to select schema: %w", err)
	}

	journalSink := do.MustInvokeNamed[chan<- JournalEntry](i, "journal-sink")

	result := &OracleService{
		Signer: signerService,
		Schema: schema,

		JournalSink: journalSink,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(func(e *echo.Echo) {
		apiGroup := e.Group("/api")

		oracleGroup := apiGroup.Group("/oracle")

		oracleGroup.POST("/move", result.PostMove)
		oracleGroup.POST("/verify", result.PostVerify)
		oracleGroup.GET("/identity", result.GetIdentity)
	})

	return result, nil
}

//nolint:funlen
func (s *OracleService) PostMove(c echo.Context) error {
	var request MoveRequest

	err := c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	game, err := ParsePosition(request.FEN)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	move, err := ParseMove(game, request.UCIMove)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	newFEN, outcome, err := ApplyMove(game, move)
	if err != nil {
		if errors.Is(err, ErrInvalidMove) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}

		c.Logger().Error(err)

		return echo.NewHTTPError(http.StatusInternalServerError, "failed to classify game outcome")
	}

	message, err := s.Schema.Message(Transition{
		GameID:   request.GameID,
		PriorFEN: request.FEN,
		NewFEN:   newFEN,
		Outcome:  outcome,
	})
	if err != nil {
		c.Logger().Error(err)

		return echo.NewHTTPError(http.StatusInternalServerError, "failed to canonicalize transition")
	}

	signature, err := s.Signer.Sign(message)
	if err != nil {
		c.Logger().Error(err)

		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign transition")
	}

	attestation := Attestation{
		GameID:   request.GameID,
		NewFEN:   newFEN,
		GameOver: outcome.GameOver(),
		Outcome:  outcome,
		Result:   outcome.Result(),
		Schema:   s.Schema,

		Signature: signature,
	}

	if s.JournalSink != nil {
		entryID, err := uuid.NewV7()
		if err != nil {
			c.Logger().Error(err)
		} else {
			s.JournalSink <- JournalEntry{
				ID:       entryID.String(),
				PriorFEN: request.FEN,
				IssuedAt: time.Now().UTC(),

				Attestation: attestation,
			}
		}
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, attestation, "  ")
}

func (s *OracleService) PostVerify(c echo.Context) error {
	var request VerifyRequest

	err := c.Bind(&request)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if request.Outcome > Draw {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "unknown outcome code")
	}

	message, err := request.Schema.Message(Transition{
		GameID:   request.GameID,
		PriorFEN: request.PriorFEN,
		NewFEN:   request.NewFEN,
		Outcome:  request.Outcome,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	recovered, err := signer.RecoverAddress(message, request.Signature)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, VerifyResponse{
		Valid:  recovered == s.Signer.Address(),
		Signer: recovered,
	}, "  ")
}

func (s *OracleService) GetIdentity(c echo.Context) error {
	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, IdentityResponse{
		Signer: s.Signer.Address(),
		Schema: s.Schema,
	}, "  ")
}
