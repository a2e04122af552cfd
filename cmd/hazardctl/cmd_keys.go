package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kiranshivaraju/hazardlens/internal/apikey"
	"github.com/kiranshivaraju/hazardlens/internal/config"
	"github.com/kiranshivaraju/hazardlens/internal/store"
	"github.com/kiranshivaraju/hazardlens/pkg/models"
)

var keysFlags struct {
	name   string
	scopes []string
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage server API keys",
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an API key and print it once",
	Long: `Create an API key directly in the database named by DATABASE_URL.

Usage:
  hazardctl keys create --name ops --scope read --scope admin

The raw key is printed once; only its bcrypt hash is stored.`,
	Args: cobra.NoArgs,
	RunE: runKeysCreate,
}

// keyCreator is the part of the store keys create needs.
type keyCreator interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

func init() {
	f := keysCreateCmd.Flags()
	f.StringVar(&keysFlags.name, "name", "", "Human-readable key name (required)")
	f.StringSliceVar(&keysFlags.scopes, "scope", nil, "Scope to grant: read or admin (repeatable, default read)")
	_ = keysCreateCmd.MarkFlagRequired("name")
	keysCmd.AddCommand(keysCreateCmd)
}

func runKeysCreate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadParts(config.PartDatabase)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := cmd.Context()
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return createKey(cmd, store.NewPostgresStore(pool))
}

func createKey(cmd *cobra.Command, keys keyCreator) error {
	name := strings.TrimSpace(keysFlags.name)
	if name == "" {
		return fmt.Errorf("--name must not be blank")
	}
	scopes, err := apikey.NormalizeScopes(keysFlags.scopes)
	if err != nil {
		return err
	}

	minted, err := apikey.Generate()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      name,
		KeyHash:   minted.Hash,
		KeyPrefix: minted.Prefix,
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := keys.CreateAPIKey(cmd.Context(), key); err != nil {
		return fmt.Errorf("store key: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id:     %s\n", key.ID)
	fmt.Fprintf(out, "scopes: %s\n", strings.Join(scopes, ","))
	fmt.Fprintf(out, "key:    %s\n", minted.Raw)
	fmt.Fprintln(out, "Store this key now; it cannot be shown again.")
	return nil
}
