// Package copilot orchestrates one natural language question end to end:
// SQL generation, guard validation, execution with a single auto-repair
// round, result validation, chart selection, and explanation.
package copilot

import (
	"context"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/chart"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/datasource"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/guard"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/llm"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/validate"
	"github.com/rs/zerolog/log"
)

const explainSampleRows = 5

// Result is the successful outcome of one question.
type Result struct {
	SQL         guard.SafeQuery
	Table       *table.Table
	Warnings    []validate.Warning
	Chart       *chart.Spec
	Explanation string

	Repaired  bool
	Elapsed   time.Duration
	ExecuteMS int64
}

// Orchestrator wires the generator, the data source, and the pure
// decision components together. Safe for concurrent use; per-session
// state lives in Session objects.
type Orchestrator struct {
	gen        llm.Generator
	src        datasource.Source
	classifier *chart.Classifier
	kpis       string
	schema     schemaCache
}

// New creates an orchestrator. kpis is the rendered KPI glossary text
// included in every generation prompt.
func New(gen llm.Generator, src datasource.Source, kpis string) *Orchestrator {
	return &Orchestrator{
		gen:        gen,
		src:        src,
		classifier: chart.New(),
		kpis:       kpis,
	}
}

// Schema returns the (cached) schema description of the data source.
func (o *Orchestrator) Schema(ctx context.Context) (string, error) {
	return o.schema.load(ctx, o.src)
}

// InvalidateSchema drops the cached schema text, forcing a refetch on
// the next question.
func (o *Orchestrator) InvalidateSchema() { o.schema.invalidate() }

// Ask runs the full pipeline for one question within a session.
//
// Guard rejections are terminal and returned as *guard.Rejection; they
// are never auto-repaired. An execution failure triggers exactly one
// repair round; a second failure of any kind is terminal. The session
// history is appended once a query passes guard validation, so
// follow-up questions can reference it even when execution failed.
func (o *Orchestrator) Ask(ctx context.Context, sess *Session, question string) (*Result, error) {
	start := time.Now()

	schema, err := o.Schema(ctx)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	raw, err := o.gen.GenerateSQL(ctx, question, schema, o.kpis, sess.History())
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	// One history entry per question, carrying whichever SQL last passed
	// validation. Written even when execution later fails so follow-ups
	// can still reference the attempt.
	var validated string
	defer func() {
		if validated != "" {
			sess.Append(question, validated)
		}
	}()

	safe, err := guard.Validate(raw)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("generated sql rejected")
		return nil, err
	}
	validated = string(safe)

	repaired := false
	execStart := time.Now()
	tbl, execErr := o.src.Query(ctx, string(safe))
	if execErr != nil {
		log.Warn().Err(execErr).Str("session", sess.ID).Msg("query failed, attempting repair")

		fixedRaw, err := o.gen.RepairSQL(ctx, question, schema, string(safe), execErr.Error())
		if err != nil {
			return nil, &GenerationError{Repair: true, Err: err}
		}
		fixed, err := guard.Validate(fixedRaw)
		if err != nil {
			return nil, err
		}
		validated = string(fixed)

		execStart = time.Now()
		tbl, err = o.src.Query(ctx, string(fixed))
		if err != nil {
			return nil, &ExecutionError{SQL: string(fixed), Repaired: true, Err: err}
		}
		safe = fixed
		repaired = true
	}
	execMS := time.Since(execStart).Milliseconds()

	warnings := validate.Check(tbl, string(safe))
	spec := o.classifier.Classify(tbl, question)

	explanation := o.explain(ctx, question, string(safe), tbl)

	log.Info().
		Str("session", sess.ID).
		Str("source", o.src.Name()).
		Int("rows", tbl.RowCount()).
		Int("warnings", len(warnings)).
		Bool("repaired", repaired).
		Dur("elapsed", time.Since(start)).
		Msg("question answered")

	return &Result{
		SQL:         safe,
		Table:       tbl,
		Warnings:    warnings,
		Chart:       spec,
		Explanation: explanation,
		Repaired:    repaired,
		Elapsed:     time.Since(start),
		ExecuteMS:   execMS,
	}, nil
}

// explain asks the model to summarize the results. Failures degrade to
// an empty explanation; the response is still usable without one.
func (o *Orchestrator) explain(ctx context.Context, question, sql string, tbl *table.Table) string {
	if tbl.Empty() {
		return ""
	}
	text, err := o.gen.Explain(ctx, question, sql, tbl.ColumnNames(), tbl.Head(explainSampleRows), tbl.RowCount())
	if err != nil {
		log.Warn().Err(err).Msg("explanation unavailable")
		return ""
	}
	return text
}
