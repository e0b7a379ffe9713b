package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/rthomason/storelens/internal/database"
	"github.com/rthomason/storelens/internal/errors"
	"github.com/rthomason/storelens/internal/pipeline"
	"github.com/rthomason/storelens/internal/schema"
)

var (
	askShowRows bool
	askShowSQL  bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the database one question and print the answer",
	Long: `Ask a natural-language question against the configured database.

Examples:
  storelens ask "Which customers spent the most?"
  storelens ask --sql "What was revenue by country last month?"
  storelens ask --rows --max-rows 20 "Show recent orders"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askShowRows, "rows", false, "Print the result rows after the answer")
	askCmd.Flags().BoolVar(&askShowSQL, "sql", false, "Print the executed SQL before the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	question := strings.TrimSpace(args[0])
	if question == "" {
		return errors.New(errors.ErrTypeValidation, "question must not be empty")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := buildPipeline(cfg, schema.NewIntrospector(db.Pool()), db)
	if err != nil {
		return err
	}

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Suffix = " Thinking..."
	spin.Start()

	resp, err := p.Run(ctx, pipeline.Request{Question: question})
	spin.Stop()

	if err != nil {
		return err
	}

	if askShowSQL {
		fmt.Println(resp.SQL)
		fmt.Println()
	}

	fmt.Println(resp.Answer)

	if askShowRows && len(resp.Rows) > 0 {
		fmt.Println()
		printRows(resp)
	}

	fmt.Printf("\n%d rows in %dms\n", resp.Meta.RowCount, resp.Meta.ExecutionTimeMS)

	return nil
}

func printRows(resp *pipeline.Response) {
	for i, row := range resp.Rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, row[k]))
		}

		fmt.Printf("%d. %s\n", i+1, strings.Join(parts, "  "))
	}
}
