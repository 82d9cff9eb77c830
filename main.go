package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/aemery/gambit/internal/pkg/common"
	"github.com/aemery/gambit/internal/pkg/journal"
	"github.com/aemery/gambit/internal/pkg/oracle"
	"github.com/aemery/gambit/internal/pkg/signer"
)

type GambitService struct {
	EchoService *common.EchoService `do:""`

	OracleService  *oracle.OracleService   `do:""`
	JournalService *journal.JournalService `do:""`
}

func runServer(_ context.Context, cmd *cli.Command) error {
	i := do.New()

	do.ProvideNamedValue(i, "port", cmd.Int("port"))
	do.ProvideNamedValue(i, "data-dir", cmd.String("data-dir"))

	do.ProvideNamedValue(i, "private-key", cmd.String("private-key"))
	do.ProvideNamedValue(i, "schema", cmd.Int("schema"))

	entryChan := make(chan oracle.JournalEntry, 1000)
	var entrySource <-chan oracle.JournalEntry = entryChan
	var entrySink chan<- oracle.JournalEntry = entryChan

	do.ProvideNamedValue(i, "journal-source", entrySource)
	do.ProvideNamedValue(i, "journal-sink", entrySink)

	do.Provide(i, common.NewEchoService)
	do.Provide(i, common.NewDatabaseService)
	do.Provide(i, signer.NewSignerService)

	do.Provide(i, oracle.NewOracleService)
	do.Provide(i, journal.NewJournalService)

	do.Provide(i, do.InvokeStruct[GambitService])

	gambitService, err := do.Invoke[GambitService](i)
	if err != nil {
		return fmt.Errorf("failed to create gambit service: %w", err)
	}

	log.Printf("attesting as %s under schema v%d",
		gambitService.OracleService.Signer.Address(),
		gambitService.OracleService.Schema)

	gambitService.JournalService.Start()

	//nolint:wrapcheck
	return gambitService.EchoService.Start()
}

func main() {
	//nolint:exhaustruct
	cmd := &cli.Command{
		Name: "gambit",
		Commands: []*cli.Command{
			{
				Name: "server",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Value:   3000, //nolint:mnd
						Sources: cli.EnvVars("GAMBIT_PORT"),
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Value:   "./gambit/data",
						Sources: cli.EnvVars("GAMBIT_DATA_DIR"),
					},
					&cli.StringFlag{
						Name:    "private-key",
						Value:   "",
						Sources: cli.EnvVars("GAMBIT_PRIVATE_KEY"),
					},
					&cli.IntFlag{
						Name:    "schema",
						Value:   3, //nolint:mnd
						Sources: cli.EnvVars("GAMBIT_SCHEMA"),
					},
				},
				Action: runServer,
			},
		},
		DefaultCommand: "server",
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
