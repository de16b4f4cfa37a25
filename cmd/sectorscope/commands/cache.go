package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cacheCmd groups cache maintenance subcommands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the data cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show cache entry counts and total size",
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	info, err := a.store.Info(ctx)
	if err != nil {
		return fmt.Errorf("read cache info: %w", err)
	}

	fmt.Printf("backend:  %s\n", a.cfg.Cache.Backend)
	fmt.Printf("entries:  %d total, %d valid, %d expired\n",
		info.TotalEntries, info.ValidEntries, info.ExpiredEntries)
	fmt.Printf("size:     %.2f MB\n", info.SizeMB())
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := a.store.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	fmt.Printf("removed %d cache entries\n", removed)
	return nil
}
