package interpret

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rthomason/storelens/internal/config"
	"github.com/rthomason/storelens/internal/database"
	"github.com/rthomason/storelens/internal/errors"
	"github.com/rthomason/storelens/internal/llm"
	"github.com/rthomason/storelens/internal/logging"
	"github.com/rthomason/storelens/internal/schema"
)

const sampleRowsInPrompt = 5

// leakagePattern removes a trailing line fragment where the model started
// talking about the statement instead of the business
var leakagePattern = regexp.MustCompile(`(?i)(sql|query|select|from|where)[^\n]*$`)

// Formatter writes the narrative answer for an executed result
type Formatter struct {
	service          llm.Service
	maxTokens        int
	useLocalFallback bool
}

// NewFormatter builds a formatter. A nil service forces template answers.
func NewFormatter(service llm.Service, llmCfg config.LLMConfig) *Formatter {
	return &Formatter{
		service:          service,
		maxTokens:        llmCfg.AnswerMaxTokens,
		useLocalFallback: llmCfg.UseLocalFallback || service == nil,
	}
}

// Answer produces the narrative for a result. It never fails: backend
// trouble degrades to the deterministic template answer.
func (f *Formatter) Answer(ctx context.Context, question, sql string, rows *database.RowSet, desc *schema.Description) string {
	if f.useLocalFallback {
		return LocalAnswer(question, sql, rows)
	}

	class := Classify(sql)
	bizCtx := BuildContext(class, rows)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: personaFor(class)},
		{Role: llm.RoleUser, Content: answerPrompt(question, sql, class, bizCtx, rows, desc)},
	}

	reply, err := f.service.Chat(ctx, messages, llm.Options{
		MaxTokens:   f.maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		fmtErr := errors.Wrap(err, errors.ErrTypeAnswerFormat, "backend did not produce an answer")
		logging.GetLogger().WithError(fmtErr).Warn("Answer backend failed, using template answer")

		return LocalAnswer(question, sql, rows)
	}

	answer := strings.TrimSpace(leakagePattern.ReplaceAllString(reply, ""))
	if answer == "" {
		return LocalAnswer(question, sql, rows)
	}

	return answer
}

// answerPrompt assembles the user prompt: question, database context,
// classification, result sample, and extracted business context
func answerPrompt(question, sql string, class Classification, bizCtx BusinessContext, rows *database.RowSet, desc *schema.Description) string {
	var b strings.Builder

	b.WriteString("BUSINESS QUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nDATABASE CONTEXT:\n")
	fmt.Fprintf(&b, "- Tables available: %s\n", strings.Join(tableNames(desc), ", "))
	b.WriteString("- Primary relationships: customers -> orders -> order_items -> products\n")
	b.WriteString("- Revenue calculation: quantity * unit_price in order_items table\n")

	fmt.Fprintf(&b, "\nQUERY TYPE DETECTED: %s\n", classTitle(class))

	b.WriteString("\nEXECUTED SQL (for context only - do not mention in answer):\n")
	b.WriteString(sql)

	b.WriteString("\n\nRESULTS SUMMARY:\n")
	b.WriteString(dataSummary(bizCtx, rows))

	b.WriteString(`

INSTRUCTIONS FOR YOUR ANSWER:
1. Directly address the business question
2. Focus on insights, not data mechanics
3. Use business terminology
4. Be concise and professional
5. Do NOT mention SQL, queries, or technical details
6. Format: Main insight -> Supporting details -> Optional follow-up
7. Length: 2-4 sentences maximum

Provide your business answer now:`)

	return b.String()
}

func dataSummary(bizCtx BusinessContext, rows *database.RowSet) string {
	if rows.Empty() {
		return "Query returned no results."
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Query returned %d records.\n", rows.Len())

	cols := rows.Columns
	suffix := ""
	if len(cols) > 8 {
		cols = cols[:8]
		suffix = "..."
	}
	fmt.Fprintf(&b, "Columns: %s%s\n", strings.Join(cols, ", "), suffix)

	display := rows.Len()
	if display > sampleRowsInPrompt {
		display = sampleRowsInPrompt
	}

	fmt.Fprintf(&b, "\nSample data (first %d rows):", display)

	for i := 0; i < display; i++ {
		fmt.Fprintf(&b, "\nRow %d: {%s}", i+1, formatRecord(rows.Columns, rows.Records[i]))
	}

	if len(bizCtx.KeyMetrics) > 0 {
		b.WriteString("\n\nKey Metrics Found:")
		for _, m := range bizCtx.KeyMetrics {
			fmt.Fprintf(&b, "\n- %s: %s", m.Column, formatAmount(m.Total))
		}
	}

	if len(bizCtx.Trends) > 0 {
		b.WriteString("\n\nTrends Identified:")
		for _, trend := range bizCtx.Trends {
			fmt.Fprintf(&b, "\n- %s", trend)
		}
	}

	if len(bizCtx.Insights) > 0 {
		b.WriteString("\n\nQuick Insights:")
		for _, insight := range bizCtx.Insights {
			fmt.Fprintf(&b, "\n- %s", insight)
		}
	}

	return b.String()
}

func formatRecord(columns []string, record []any) string {
	parts := make([]string, 0, len(record))

	for i, v := range record {
		name := fmt.Sprintf("col%d", i)
		if i < len(columns) {
			name = columns[i]
		}

		var rendered string
		if f, ok := toFloat(v); ok {
			rendered = fmt.Sprintf("%.2f", f)
		} else {
			rendered = fmt.Sprint(v)
			if len(rendered) > 30 {
				rendered = rendered[:30] + "..."
			}
		}

		parts = append(parts, name+": "+rendered)
	}

	return strings.Join(parts, ", ")
}

func tableNames(desc *schema.Description) []string {
	if desc == nil || len(desc.Tables) == 0 {
		return []string{"customers", "products", "orders", "order_items"}
	}

	names := make([]string, 0, len(desc.Tables))
	for _, t := range desc.Tables {
		names = append(names, t.Name)
	}

	return names
}

func classTitle(class Classification) string {
	words := strings.Split(string(class), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}

	return strings.Join(words, " ")
}
