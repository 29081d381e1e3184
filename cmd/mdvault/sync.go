package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/cuemby/mdvault/pkg/log"
	"github.com/cuemby/mdvault/pkg/note"
	"github.com/cuemby/mdvault/pkg/types"
	"github.com/cuemby/mdvault/pkg/vault"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Scan the vault root and commit any changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		store, err := vault.Open[note.Line](cfg.Root, scanConfig(cfg))
		if err != nil {
			return fmt.Errorf("open vault: %w", err)
		}

		sy, err := vault.BeginSync(store)
		if err != nil {
			return fmt.Errorf("begin sync: %w", err)
		}

		ctx := context.Background()
		populated, err := vault.Populate(ctx, sy, note.Extract)
		if err != nil {
			return fmt.Errorf("populate: %w", err)
		}

		flattened := vault.InnerFlatten(populated)

		newStore, err := vault.Commit(flattened)
		if err != nil {
			if errors.Is(err, types.ErrLengthMismatch) {
				return fmt.Errorf("sync aborted, nothing committed: %w", err)
			}
			return fmt.Errorf("commit: %w", err)
		}

		log.WithComponent("cli").Info().
			Int("cache_items", newStore.CacheSize()).
			Msg("sync complete")
		fmt.Printf("sync complete: %d items cached\n", newStore.CacheSize())
		return nil
	},
}
