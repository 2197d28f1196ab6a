// Package engine orchestrates one query invocation end to end: validate the
// intent, plan the traversals, run them against the graph store, and shape
// the answer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scoregraph/scoregraph/internal/adapters/graphstore"
	"github.com/scoregraph/scoregraph/internal/domain/intent"
	"github.com/scoregraph/scoregraph/internal/domain/plan"
	"github.com/scoregraph/scoregraph/internal/domain/result"
	"github.com/scoregraph/scoregraph/internal/domain/teams"
	"github.com/scoregraph/scoregraph/pkg/logger"
	"github.com/scoregraph/scoregraph/pkg/metrics"
)

// Engine is the query engine. It owns no state beyond configuration and
// counters; every invocation is independent.
type Engine struct {
	mu sync.RWMutex

	runner   graphstore.Runner
	verifier graphstore.Verifier
	planner  *plan.Planner

	timeout    time.Duration
	topLimit   int
	teamFanout int

	logger logger.Logger

	// Invocation counters for the stats endpoint.
	queriesTotal  atomic.Int64
	queriesFailed atomic.Int64
}

// Default invocation budget.
const defaultQueryTimeout = 10 * time.Second

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		timeout:    defaultQueryTimeout,
		topLimit:   5,
		teamFanout: 8,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}
	e.planner = plan.New(
		plan.WithTopLimit(e.topLimit),
		plan.WithTeamFanout(e.teamFanout),
	)
	return e
}

// Query runs one invocation from a raw parameter bag to a typed answer.
// Validation failures never touch the store; topic existence is checked
// before the main traversal; the whole invocation shares one deadline.
func (e *Engine) Query(ctx context.Context, raw map[string]string) (result.Result, error) {
	start := time.Now()
	invocation := uuid.NewString()
	kind := strings.TrimSpace(raw[intent.ParamIntentKind])

	res, err := e.query(ctx, raw, invocation)

	e.queriesTotal.Add(1)
	elapsed := time.Since(start)
	metrics.RecordQueryDuration(kind, float64(elapsed.Milliseconds()))
	if err != nil {
		e.queriesFailed.Add(1)
		metrics.RecordQuery(kind, statusOf(err))
		e.logger.Warn(ctx, "query failed",
			logger.String("invocation", invocation),
			logger.String("intent", kind),
			logger.Error(err),
		)
		return result.Result{}, err
	}

	metrics.RecordQuery(kind, "ok")
	e.logger.Info(ctx, "query served",
		logger.String("invocation", invocation),
		logger.String("intent", kind),
		logger.String("kind", res.Kind),
		logger.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (e *Engine) query(ctx context.Context, raw map[string]string, invocation string) (result.Result, error) {
	if e.runner == nil {
		return result.Result{}, ErrNotReady
	}

	qi, err := intent.Validate(raw)
	if err != nil {
		return result.Result{}, err
	}

	pl, err := e.planner.Build(qi)
	if err != nil {
		return result.Result{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.runChecks(ctx, qi, pl.Checks); err != nil {
		return result.Result{}, e.mapTimeout(err)
	}

	rowSets, err := e.runTraversals(ctx, pl)
	if err != nil {
		return result.Result{}, e.mapTimeout(err)
	}

	if qi.Kind == intent.KindFormTeams {
		return e.formTeams(qi, rowSets[0])
	}

	var rows []graphstore.Row
	rowSplit := 0
	for i, set := range rowSets {
		if i == 0 {
			rowSplit = len(set)
		}
		rows = append(rows, set...)
	}
	if len(rowSets) < 2 {
		rowSplit = 0
	}
	return result.Format(qi, rows, rowSplit)
}

// runChecks verifies every requested topic exists at the grade. All missing
// topics are reported together so the caller fixes the query in one round.
func (e *Engine) runChecks(ctx context.Context, qi intent.QueryIntent, checks []plan.Spec) error {
	for _, check := range checks {
		rows, err := e.runner.Run(ctx, check.Cypher, check.Params)
		if err != nil {
			return err
		}

		known := make(map[string]bool, len(rows))
		for _, row := range rows {
			props, ok := row["t"].(map[string]any)
			if !ok {
				continue
			}
			if name, ok := props["name"].(string); ok {
				known[strings.ToLower(name)] = true
			}
		}

		var missing []string
		for _, topic := range qi.Topics() {
			if !known[strings.ToLower(topic)] {
				missing = append(missing, topic)
			}
		}
		if len(missing) > 0 {
			metrics.RecordTopicCheckFailed()
			sort.Strings(missing)
			return fmt.Errorf("%w: %s at grade %s", ErrTopicNotFound, strings.Join(missing, ", "), qi.Grade)
		}
	}
	return nil
}

// runTraversals executes the plan's traversals, concurrently when the plan
// allows it. Results keep the plan's traversal order either way.
func (e *Engine) runTraversals(ctx context.Context, pl plan.Plan) ([][]graphstore.Row, error) {
	rowSets := make([][]graphstore.Row, len(pl.Traversals))

	if pl.Concurrent && len(pl.Traversals) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, spec := range pl.Traversals {
			g.Go(func() error {
				rows, err := e.runOne(gctx, spec)
				if err != nil {
					return err
				}
				rowSets[i] = rows
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return rowSets, nil
	}

	for i, spec := range pl.Traversals {
		rows, err := e.runOne(ctx, spec)
		if err != nil {
			return nil, err
		}
		rowSets[i] = rows
	}
	return rowSets, nil
}

func (e *Engine) runOne(ctx context.Context, spec plan.Spec) ([]graphstore.Row, error) {
	start := time.Now()
	rows, err := e.runner.Run(ctx, spec.Cypher, spec.Params)
	metrics.RecordTraversal(float64(time.Since(start).Milliseconds()))
	if err != nil {
		return nil, fmt.Errorf("traversal %s: %w", spec.ID, err)
	}
	return rows, nil
}

// formTeams converts the ranked traversal rows and partitions them.
func (e *Engine) formTeams(qi intent.QueryIntent, rows []graphstore.Row) (result.Result, error) {
	ranked := make([]teams.StudentScore, 0, len(rows))
	for _, row := range rows {
		s := teams.StudentScore{Name: stringAt(row, plan.ColStudentName)}
		if qi.DualTopic() {
			s.Score = floatAt(row, plan.ColScoreA)
			s.ScoreB = floatAt(row, plan.ColScoreB)
		} else {
			s.Score = floatAt(row, plan.ColScore)
		}
		ranked = append(ranked, s)
	}

	set, err := teams.Form(ranked, teams.Input{
		TopicA:    qi.TopicA,
		TopicB:    qi.TopicB,
		Grade:     qi.Grade,
		DualTopic: qi.DualTopic(),
	})
	if err != nil {
		return result.Result{}, err
	}
	metrics.RecordTeamsFormed(len(set.Teams), len(ranked))
	return result.FromTeams(set), nil
}

// Health reports whether the engine can reach its store.
func (e *Engine) Health(ctx context.Context) error {
	if e.verifier == nil {
		return nil
	}
	return e.verifier.Verify(ctx)
}

// GetStats returns engine counters for monitoring.
func (e *Engine) GetStats() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return map[string]any{
		"queriesTotal":  e.queriesTotal.Load(),
		"queriesFailed": e.queriesFailed.Load(),
		"queryTimeout":  e.timeout.String(),
		"topLimit":      e.topLimit,
		"teamFanout":    e.teamFanout,
	}
}

func (e *Engine) mapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	}
	return err
}

// statusOf buckets an error for the queries metric.
func statusOf(err error) string {
	switch {
	case errors.Is(err, intent.ErrUnsupportedIntent), errors.Is(err, intent.ErrMissingParameter):
		return "invalid"
	case errors.Is(err, ErrTopicNotFound), errors.Is(err, result.ErrNoData), errors.Is(err, teams.ErrNoStudents):
		return "not_found"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, graphstore.ErrConnection):
		return "upstream"
	default:
		return "error"
	}
}

func stringAt(row graphstore.Row, key string) string {
	if s, ok := row[key].(string); ok {
		return s
	}
	return ""
}

func floatAt(row graphstore.Row, key string) float64 {
	switch n := row[key].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
