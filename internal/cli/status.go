package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/r0zar/streakwatch/internal/core/config"
	"github.com/r0zar/streakwatch/internal/core/domain"
	"github.com/r0zar/streakwatch/internal/infra/cache"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync progress and cache state for the configured partition",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := cache.NewRedisStore(cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	keys := cache.NewKeys(cfg.Partition)

	state, _ := cache.GetJSON[domain.SyncState](ctx, store, keys.SyncState())
	events, _ := cache.GetJSON[[]domain.Event](ctx, store, keys.ParsedEvents())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FIELD\tVALUE")
	_, _ = fmt.Fprintf(w, "partition\t%s\n", cfg.Partition)
	_, _ = fmt.Fprintf(w, "last processed block\t%d\n", state.LastProcessedBlock)
	_, _ = fmt.Fprintf(w, "last processed tx\t%s\n", state.LastProcessedTxID)
	_, _ = fmt.Fprintf(w, "fully synced\t%v\n", state.IsFullySynced)
	_, _ = fmt.Fprintf(w, "last offset\t%d\n", state.LastOffset)
	_, _ = fmt.Fprintf(w, "events parsed (total)\t%d\n", state.TotalEventsParsed)
	_, _ = fmt.Fprintf(w, "api calls (total)\t%d\n", state.TotalAPICallsMade)
	_, _ = fmt.Fprintf(w, "cached events\t%d\n", len(events))
	if state.LastSyncTimestamp > 0 {
		_, _ = fmt.Fprintf(w, "last sync\t%s\n",
			time.UnixMilli(state.LastSyncTimestamp).Format(time.RFC3339))
	}
	_ = w.Flush()
}
