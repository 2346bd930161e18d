package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pushpam22priya/contract-management-sub000/internal/config"
	"github.com/pushpam22priya/contract-management-sub000/internal/logging"
	"github.com/pushpam22priya/contract-management-sub000/internal/repository"
	"github.com/pushpam22priya/contract-management-sub000/internal/services"
	"github.com/pushpam22priya/contract-management-sub000/pkg/models"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "contractctl",
		Short: "Operational companion for the contract management service",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")

	root.AddCommand(seedCmd())
	root.AddCommand(listCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads config and connects to the configured Postgres store,
// running migrations so the CLI works against a fresh database.
func openStore(ctx context.Context) (*repository.PostgresStore, *pgxpool.Pool, *config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	store := repository.NewPostgresStore(pool, cfg.Store.Collection)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, pool, cfg, nil
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed demo users and contracts, driving one through the review flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.NewLogger()

			store, pool, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			// Demo accounts
			for _, u := range []models.User{
				{Email: "owner@example.com", Name: "Olivia Owner"},
				{Email: "reviewer1@example.com", Name: "Rita Reviewer"},
				{Email: "reviewer2@example.com", Name: "Raj Reviewer"},
				{Email: "approver@example.com", Name: "Alan Approver"},
			} {
				if _, err := store.GetUserByEmail(ctx, u.Email); err == nil {
					logger.Info("Skipping existing user", "email", u.Email)
					continue
				}
				user := u
				if err := store.CreateUser(ctx, &user); err != nil {
					log.Printf("Failed to create user %s: %v", u.Email, err)
				} else {
					logger.Info("Seeded user", "email", u.Email)
				}
			}

			existing, err := store.LoadAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to load contracts: %w", err)
			}
			if len(existing) > 0 {
				logger.Info("Contracts already present, skipping contract seed", "count", len(existing))
				return nil
			}

			engine := services.NewContractService(store, nil, logger, cfg.Store.OptimisticLocking)

			start := time.Now()
			end := start.AddDate(1, 0, 0)
			seeds := []services.CreateContractInput{
				{Title: "Master Services Agreement", ClientName: "Acme Corp", Category: "services", Value: "120000", StartDate: &start, EndDate: &end, CreatedBy: "owner@example.com"},
				{Title: "Mutual NDA", ClientName: "Globex", Category: "nda", CreatedBy: "owner@example.com"},
				{Title: "Software License", ClientName: "Initech", Category: "license", Value: "45000", CreatedBy: "owner@example.com"},
			}

			var first string
			for _, in := range seeds {
				res := engine.CreateContract(ctx, in)
				if !res.Success {
					log.Printf("Failed to create contract %q: %s", in.Title, res.Message)
					continue
				}
				if first == "" {
					first = res.Contract.ID
				}
				logger.Info("Seeded contract", "title", in.Title, "id", res.Contract.ID)
			}

			// Drive the first contract through the review flow so the demo
			// environment shows every lifecycle stage.
			if first != "" {
				steps := []func() services.Result{
					func() services.Result {
						return engine.SubmitForReview(ctx, first, []string{"reviewer1@example.com", "reviewer2@example.com"}, "approver@example.com")
					},
					func() services.Result { return engine.MarkAsReviewed(ctx, first, "reviewer1@example.com") },
					func() services.Result { return engine.MarkAsReviewed(ctx, first, "reviewer2@example.com") },
					func() services.Result { return engine.ApproveContract(ctx, first, "approver@example.com") },
				}
				for _, step := range steps {
					if res := step(); !res.Success {
						return fmt.Errorf("seed workflow step failed: %s", res.Message)
					}
				}
				logger.Info("Drove seed contract to waiting_for_signature", "id", first)
			}

			logger.Info("Seeding complete!")
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contracts with their display status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, pool, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			contracts, err := store.LoadAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to load contracts: %w", err)
			}

			now := time.Now()
			fmt.Printf("%-38s %-28s %-22s %s\n", "ID", "TITLE", "STATUS", "CLIENT")
			for _, c := range contracts {
				view := models.NewContractView(c, now)
				fmt.Printf("%-38s %-28s %-22s %s\n", c.ID, truncate(c.Title, 28), view.DisplayStatus, c.ClientName)
			}
			fmt.Printf("\n%d contract(s)\n", len(contracts))
			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
