// Package pipeline orchestrates one question end to end: schema snapshot,
// SQL synthesis, safety gate, bounded execution, narrative answer. Each run
// is stateless; nothing is cached between questions.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rthomason/storelens/internal/database"
	"github.com/rthomason/storelens/internal/errors"
	"github.com/rthomason/storelens/internal/logging"
	"github.com/rthomason/storelens/internal/sanitize"
	"github.com/rthomason/storelens/internal/schema"
	"github.com/rthomason/storelens/internal/sqlgen"
)

// Request is one natural-language question
type Request struct {
	Question      string `json:"question"`
	IncludeSchema bool   `json:"include_schema"`
	MaxRows       int    `json:"max_rows,omitempty"`
}

// Meta carries bookkeeping about a run
type Meta struct {
	RowCount        int    `json:"row_count"`
	ExecutionTimeMS int64  `json:"execution_time_ms"`
	RequestID       string `json:"request_id"`
	Source          string `json:"source"`
}

// Response is the full result of a run
type Response struct {
	SQL    string           `json:"sql"`
	Rows   []map[string]any `json:"rows"`
	Answer string           `json:"answer"`
	Schema string           `json:"schema,omitempty"`
	Meta   Meta             `json:"meta"`
}

// SchemaSource yields a point-in-time schema snapshot
type SchemaSource interface {
	Describe(ctx context.Context) (*schema.Description, error)
}

// Generator produces a SQL candidate for a question
type Generator interface {
	Generate(ctx context.Context, question string, desc *schema.Description) sqlgen.Candidate
}

// Executor runs a statement and returns its rows
type Executor interface {
	Execute(ctx context.Context, sql string, args ...any) (*database.RowSet, error)
}

// Answerer writes the narrative for an executed result
type Answerer interface {
	Answer(ctx context.Context, question, sql string, rows *database.RowSet, desc *schema.Description) string
}

// Pipeline wires the stages together
type Pipeline struct {
	schemaSource SchemaSource
	generator    Generator
	executor     Executor
	answerer     Answerer
	maxRows      int
}

// New assembles a pipeline with the configured default row bound
func New(schemaSource SchemaSource, generator Generator, executor Executor, answerer Answerer, maxRows int) *Pipeline {
	return &Pipeline{
		schemaSource: schemaSource,
		generator:    generator,
		executor:     executor,
		answerer:     answerer,
		maxRows:      maxRows,
	}
}

// Run answers one question. A fresh schema snapshot is taken per run so the
// prompt always reflects the live database.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	requestID := uuid.New().String()
	logger := logging.GetLogger().WithField("request_id", requestID)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, errors.New(errors.ErrTypeValidation, "question must not be empty")
	}

	desc, err := p.schemaSource.Describe(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSchemaLoad, "failed to load database schema")
	}

	candidate := p.generator.Generate(ctx, question, desc)
	logger.WithFields(map[string]interface{}{
		"source": string(candidate.Source),
		"sql":    candidate.SQL,
	}).Info("Generated SQL")

	if !sanitize.IsSafeSelect(candidate.SQL) {
		return nil, errors.New(errors.ErrTypeSQLRejected,
			"generated SQL did not pass safety checks (non-SELECT or disallowed keywords)").
			WithSuggestion("Rephrase the question so it reads data instead of changing it")
	}

	maxRows := p.maxRows
	if req.MaxRows > 0 {
		maxRows = req.MaxRows
	}

	wrapped, args := sanitize.WrapWithLimit(candidate.SQL, maxRows)

	start := time.Now()

	rows, err := p.executor.Execute(ctx, wrapped, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeSQLExecution, "query execution failed")
	}

	execMS := time.Since(start).Milliseconds()

	answer := p.answerer.Answer(ctx, question, candidate.SQL, rows, desc)

	resp := &Response{
		SQL:    candidate.SQL,
		Rows:   rows.Maps(),
		Answer: answer,
		Meta: Meta{
			RowCount:        rows.Len(),
			ExecutionTimeMS: execMS,
			RequestID:       requestID,
			Source:          string(candidate.Source),
		},
	}

	if req.IncludeSchema {
		resp.Schema = desc.RenderForPrompt()
	}

	logger.WithFields(map[string]interface{}{
		"row_count":         resp.Meta.RowCount,
		"execution_time_ms": resp.Meta.ExecutionTimeMS,
	}).Info("Question answered")

	return resp, nil
}
