package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/cuemby/mdvault/pkg/note"
	"github.com/cuemby/mdvault/pkg/vault"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print every (file, line) pair currently cached",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		fromDisk, _ := cmd.Flags().GetBool("from-disk")
		count, _ := cmd.Flags().GetBool("count")
		upper, _ := cmd.Flags().GetBool("upper")

		store, err := vault.Open[note.Line](cfg.Root, scanConfig(cfg))
		if err != nil {
			return fmt.Errorf("open vault: %w", err)
		}

		if count {
			total, err := vault.Fold(context.Background(), store, 0, func(acc int, _ string, _ note.Line) int {
				return acc + 1
			})
			if err != nil {
				return fmt.Errorf("fold: %w", err)
			}
			fmt.Println(total)
			return nil
		}

		if upper {
			out, err := vault.MapFn(context.Background(), store, func(key string, line note.Line) (string, error) {
				return key + ":" + strings.ToUpper(line.Text), nil
			})
			if err != nil {
				return fmt.Errorf("map: %w", err)
			}
			for _, s := range out {
				fmt.Println(s)
			}
			return nil
		}

		if fromDisk {
			seq, closeFn, err := store.DiskIter(context.Background())
			if err != nil {
				return fmt.Errorf("disk iteration: %w", err)
			}
			defer closeFn()
			for key, line := range seq {
				fmt.Printf("%s:%d: %s\n", key, line.Num, line.Text)
			}
			return nil
		}

		for key, line := range store.Iter() {
			fmt.Printf("%s:%d: %s\n", key, line.Num, line.Text)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().Bool("from-disk", false, "Bypass the in-memory cache and read straight from the database")
	queryCmd.Flags().Bool("count", false, "Print the total line count via a disk fold instead of listing lines")
	queryCmd.Flags().Bool("upper", false, "Print every line upper-cased via a disk map instead of listing lines")
}
