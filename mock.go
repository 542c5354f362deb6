package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/crudcheck/crud-contract-tests/mockapi"
	"github.com/crudcheck/crud-contract-tests/servicedef"

	"github.com/spf13/cobra"
)

const shutdownTimeout = time.Second * 5

var (
	mockPort         int
	mockUsers        int
	mockSeed         int64
	mockDeleteStatus int
	mockLatency      time.Duration
	mockQuiet        bool
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve an in-memory users API",
	Long: "Serves /users and /users/{id} from memory, for trying out suites without a real API.\n" +
		"Stops on interrupt.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if mockUsers < 0 {
			return errors.New("--users must not be negative")
		}
		options := mockapi.Options{
			DeleteStatus: mockDeleteStatus,
			Latency:      mockLatency,
		}
		if !mockQuiet {
			options.Logger = log.New(os.Stdout, "", log.LstdFlags)
		}
		store := mockapi.NewUserStore(servicedef.FakeUsers(mockUsers, mockSeed))
		server, err := mockapi.Start(mockPort, mockapi.NewRouter(store, options))
		if err != nil {
			return fmt.Errorf("could not start mock API: %w", err)
		}
		fmt.Printf("Mock users API listening at %s (%d users)\n", server.URL(), mockUsers)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- server.Wait() }()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	fs := mockCmd.Flags()
	fs.IntVar(&mockPort, "port", defaultPort, "port to listen on")
	fs.IntVar(&mockUsers, "users", 12, "number of generated users to start with")
	fs.Int64Var(&mockSeed, "seed", 0, "seed for the generated users (default random)")
	fs.IntVar(&mockDeleteStatus, "delete-status", 0, "status of a successful delete, 200 or 204 (default 200)")
	fs.DurationVar(&mockLatency, "latency", 0, "delay added to every response")
	fs.BoolVar(&mockQuiet, "quiet", false, "do not log requests")
	rootCmd.AddCommand(mockCmd)
}
