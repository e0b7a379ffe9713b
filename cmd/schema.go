package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rthomason/storelens/internal/database"
	"github.com/rthomason/storelens/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the live schema description used in generation prompts",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	desc, err := schema.NewIntrospector(db.Pool()).Describe(ctx)
	if err != nil {
		return err
	}

	fmt.Println(desc.RenderForPrompt())

	return nil
}
