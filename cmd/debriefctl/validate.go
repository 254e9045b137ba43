package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/synergy-debrief/internal/content"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a content document and print its summary",
	Long: `Loads a JSON or YAML content document, checks ids, references and debrief answers,
and prints the same summary the API serves on /v1/content.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	store, err := loadStore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), store.Summary())
}

func loadStore(ctx context.Context, path string) (*content.Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return content.NewLoader(content.FileSource{Path: path}, nil, newLogger()).Load(ctx)
}
