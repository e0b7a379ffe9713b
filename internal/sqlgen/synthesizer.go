// Package sqlgen turns natural-language questions into SQL. The primary path
// asks a generative backend with the live schema in the prompt; a keyword
// decision table serves as the deterministic fallback so a statement is
// always produced.
package sqlgen

import (
	"context"
	"strings"

	"github.com/rthomason/storelens/internal/config"
	"github.com/rthomason/storelens/internal/errors"
	"github.com/rthomason/storelens/internal/llm"
	"github.com/rthomason/storelens/internal/logging"
	"github.com/rthomason/storelens/internal/schema"
)

// Source records which path produced a statement
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Candidate is a statement ready for the safety gate
type Candidate struct {
	SQL    string
	Source Source
}

// stop sequences cut the model off before it starts explaining itself
var stopSequences = []string{"```", "Explanation:", "Here's", "The query"}

// Synthesizer generates SQL candidates for questions
type Synthesizer struct {
	service          llm.Service
	maxRows          int
	maxTokens        int
	useLocalFallback bool
}

// NewSynthesizer builds a synthesizer. A nil service forces the local
// fallback path.
func NewSynthesizer(service llm.Service, llmCfg config.LLMConfig, maxRows int) *Synthesizer {
	return &Synthesizer{
		service:          service,
		maxRows:          maxRows,
		maxTokens:        llmCfg.SQLMaxTokens,
		useLocalFallback: llmCfg.UseLocalFallback || service == nil,
	}
}

// Generate produces a candidate statement for the question. It never fails:
// any backend problem degrades to the local decision table.
func (s *Synthesizer) Generate(ctx context.Context, question string, desc *schema.Description) Candidate {
	logger := logging.GetLogger()

	if s.useLocalFallback {
		return Candidate{SQL: LocalSQL(question, desc, s.maxRows), Source: SourceFallback}
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(desc, s.maxRows)},
		{Role: llm.RoleUser, Content: userPrompt(question)},
	}

	reply, err := s.service.Chat(ctx, messages, llm.Options{
		MaxTokens:   s.maxTokens,
		Temperature: 0.0,
		Stop:        stopSequences,
	})
	if err != nil {
		genErr := errors.Wrap(err, errors.ErrTypeSQLGeneration, "backend did not produce a statement")
		logger.WithError(genErr).Warn("SQL generation backend failed, using local fallback")

		return Candidate{SQL: LocalSQL(question, desc, s.maxRows), Source: SourceFallback}
	}

	if !strings.Contains(strings.ToUpper(reply), "SELECT") {
		logger.Warn("Backend reply contained no SELECT, using local fallback")
		return Candidate{SQL: LocalSQL(question, desc, s.maxRows), Source: SourceFallback}
	}

	sql := Clean(reply, s.maxRows)
	if sql == "" {
		logger.Warn("Backend reply unusable after normalization, using local fallback")
		return Candidate{SQL: LocalSQL(question, desc, s.maxRows), Source: SourceFallback}
	}

	if RequiresJoins(question) && !strings.Contains(strings.ToUpper(sql), "JOIN") {
		logger.Warn("Multi-table question generated without JOINs, attempting repair")
		sql = RepairJoins(sql, question)
	}

	return Candidate{SQL: sql, Source: SourceGenerated}
}
