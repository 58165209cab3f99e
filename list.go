package main

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/EasterCompany/dex-runway-service/config"
	"github.com/EasterCompany/dex-runway-service/internal/storage"
	"github.com/EasterCompany/dex-runway-service/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type campaignLister interface {
	List(ctx context.Context) ([]types.CampaignSummary, error)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [pattern...]",
		Short: "List stored campaigns, newest first",
		Long:  "List stored campaigns. Optional glob patterns (* and ?) filter by campaign id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			store := storage.NewManager(storage.NewFileStore(cfg.Storage.Dir), nil, nil, zap.NewNop())
			return ListCampaigns(cmd.Context(), store, args, cmd.OutOrStdout())
		},
	}
}

// ListCampaigns prints the stored campaigns whose id matches any of patterns.
// No patterns matches everything.
func ListCampaigns(ctx context.Context, store campaignLister, patterns []string, out io.Writer) error {
	summaries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list campaigns: %w", err)
	}

	var matching []types.CampaignSummary
	for _, s := range summaries {
		if len(patterns) == 0 || matchesAnyPattern(s.ID, patterns) {
			matching = append(matching, s)
		}
	}

	if len(matching) == 0 {
		fmt.Fprintln(out, "No campaigns found")
		return nil
	}

	fmt.Fprintf(out, "Total campaigns: %d\n\n", len(matching))
	for i, s := range matching {
		created := time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, "%4d. %s  %s  [%s] %s\n", i+1, s.ID, created, s.Designer, s.Goal)
	}
	return nil
}

func matchesAnyPattern(id string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesPattern(id, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern matches id against a glob where * is any run and ? any one character.
func matchesPattern(id, pattern string) bool {
	regexPattern := regexp.QuoteMeta(pattern)
	regexPattern = strings.ReplaceAll(regexPattern, `\*`, ".*")
	regexPattern = strings.ReplaceAll(regexPattern, `\?`, ".")

	matched, err := regexp.MatchString("^"+regexPattern+"$", id)
	return err == nil && matched
}
