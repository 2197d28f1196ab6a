// Package plan maps a validated query intent onto parameterized graph
// traversals. Planning is pure: the same intent always yields the same plan,
// and no I/O happens here.
package plan

import (
	"fmt"

	"github.com/saulfrancisco-ruizacevedo/gocypher"

	"github.com/scoregraph/scoregraph/internal/domain/intent"
)

// TemplateID names a traversal shape. Useful for logging and for fakes that
// dispatch on the template rather than on raw Cypher text.
type TemplateID string

// Traversal template identifiers.
const (
	TemplateHighestByGrade   TemplateID = "highest_by_grade"
	TemplateHighestAllGrades TemplateID = "highest_all_grades"
	TemplateTopByGrade       TemplateID = "top_by_grade"
	TemplateTopAllGrades     TemplateID = "top_all_grades"
	TemplateTopicsByGrade    TemplateID = "topics_by_grade"
	TemplateTeamSingle       TemplateID = "team_single"
	TemplateTeamDual         TemplateID = "team_dual"
	TemplateStatistics       TemplateID = "statistics"
	TemplateCompare          TemplateID = "compare"
)

// Row keys shared between the traversal templates and the formatter.
const (
	ColStudentName = "student_name"
	ColScore       = "score"
	ColScoreA      = "score_a"
	ColScoreB      = "score_b"
	ColGrade       = "grade"
	ColCount       = "cnt"
	ColAverage     = "average"
	ColMinimum     = "minimum"
	ColMaximum     = "maximum"
)

// Topic matching is case-insensitive in every template; the canonical casing
// produced by the validator is a reporting concern, not a lookup key.
const (
	cypherHighestByGrade = `MATCH (s:Student)-[r:SCORED_IN]->(t:Topic)
WHERE toLower(t.name) = toLower($topic) AND t.grade = $grade
RETURN s.name AS student_name, r.score AS score
ORDER BY r.score DESC, s.name ASC
LIMIT 1`

	cypherHighestAllGrades = `MATCH (s:Student)-[r:SCORED_IN]->(t:Topic)
WHERE toLower(t.name) = toLower($topic)
RETURN s.name AS student_name, r.score AS score, t.grade AS grade
ORDER BY r.score DESC, s.name ASC
LIMIT 1`

	cypherTopByGrade = `MATCH (s:Student)-[r:SCORED_IN]->(t:Topic)
WHERE toLower(t.name) = toLower($topic) AND t.grade = $grade
RETURN s.name AS student_name, r.score AS score
ORDER BY r.score DESC, s.name ASC
LIMIT $limit`

	cypherTopAllGrades = `MATCH (s:Student)-[r:SCORED_IN]->(t:Topic)
WHERE toLower(t.name) = toLower($topic)
RETURN s.name AS student_name, r.score AS score, t.grade AS grade
ORDER BY r.score DESC, s.name ASC
LIMIT $limit`

	cypherTeamSingle = `MATCH (s:Student)-[r:SCORED_IN]->(t:Topic)
WHERE toLower(t.name) = toLower($topic) AND t.grade = $grade
RETURN s.name AS student_name, r.score AS score
ORDER BY r.score DESC, s.name ASC
LIMIT $limit`

	cypherTeamDual = `MATCH (s:Student)-[r1:SCORED_IN]->(t1:Topic {grade: $grade}),
      (s)-[r2:SCORED_IN]->(t2:Topic {grade: $grade})
WHERE toLower(t1.name) = toLower($topic_a)
  AND toLower(t2.name) = toLower($topic_b)
RETURN s.name AS student_name, r1.score AS score_a, r2.score AS score_b
ORDER BY r1.score + r2.score DESC, s.name ASC
LIMIT $limit`

	cypherStatistics = `MATCH (s:Student)-[r:SCORED_IN]->(t:Topic)
WHERE toLower(t.name) = toLower($topic) AND t.grade = $grade
RETURN count(r) AS cnt, avg(r.score) AS average, min(r.score) AS minimum, max(r.score) AS maximum`

	cypherCompare = `MATCH (s:Student)-[r:SCORED_IN]->(t:Topic)
WHERE toLower(t.name) = toLower($topic) AND t.grade = $grade
RETURN count(r) AS cnt, avg(r.score) AS average`
)

// Spec is one parameterized traversal: an identifier, the Cypher text, and
// its bind parameters.
type Spec struct {
	ID     TemplateID
	Cypher string
	Params map[string]any
}

// Plan bundles everything one invocation must run. Checks execute before
// Traversals and gate them; Traversals marked Concurrent are independent of
// each other and may be issued in parallel.
type Plan struct {
	Intent     intent.QueryIntent
	Checks     []Spec
	Traversals []Spec
	Concurrent bool
}

// Planner builds plans under the engine's result-set caps.
type Planner struct {
	topLimit   int
	teamFanout int
}

// Default result-set caps.
const (
	defaultTopLimit   = 5
	defaultTeamFanout = 8
)

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithTopLimit caps the find_top_students result set.
func WithTopLimit(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.topLimit = n
		}
	}
}

// WithTeamFanout caps how many ranked students feed team formation.
func WithTeamFanout(n int) Option {
	return func(p *Planner) {
		if n > 0 {
			p.teamFanout = n
		}
	}
}

// New creates a Planner with configuration options.
func New(opts ...Option) *Planner {
	p := &Planner{
		topLimit:   defaultTopLimit,
		teamFanout: defaultTeamFanout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Build maps the intent onto its traversal plan.
func (p *Planner) Build(in intent.QueryIntent) (Plan, error) {
	out := Plan{Intent: in}

	switch in.Kind {
	case intent.KindFindHighest:
		if in.Grade == "" {
			out.Traversals = []Spec{{
				ID:     TemplateHighestAllGrades,
				Cypher: cypherHighestAllGrades,
				Params: map[string]any{"topic": in.TopicA},
			}}
		} else {
			out.Traversals = []Spec{{
				ID:     TemplateHighestByGrade,
				Cypher: cypherHighestByGrade,
				Params: map[string]any{"topic": in.TopicA, "grade": in.Grade},
			}}
		}

	case intent.KindFindTopStudents:
		if in.Grade == "" {
			out.Traversals = []Spec{{
				ID:     TemplateTopAllGrades,
				Cypher: cypherTopAllGrades,
				Params: map[string]any{"topic": in.TopicA, "limit": p.topLimit},
			}}
		} else {
			out.Traversals = []Spec{{
				ID:     TemplateTopByGrade,
				Cypher: cypherTopByGrade,
				Params: map[string]any{"topic": in.TopicA, "grade": in.Grade, "limit": p.topLimit},
			}}
		}

	case intent.KindFormTeams:
		check, err := topicsByGrade(in.Grade)
		if err != nil {
			return Plan{}, err
		}
		out.Checks = []Spec{check}
		if in.DualTopic() {
			out.Traversals = []Spec{{
				ID:     TemplateTeamDual,
				Cypher: cypherTeamDual,
				Params: map[string]any{
					"topic_a": in.TopicA,
					"topic_b": in.TopicB,
					"grade":   in.Grade,
					"limit":   p.teamFanout,
				},
			}}
		} else {
			out.Traversals = []Spec{{
				ID:     TemplateTeamSingle,
				Cypher: cypherTeamSingle,
				Params: map[string]any{"topic": in.TopicA, "grade": in.Grade, "limit": p.teamFanout},
			}}
		}

	case intent.KindGetStatistics:
		out.Traversals = []Spec{{
			ID:     TemplateStatistics,
			Cypher: cypherStatistics,
			Params: map[string]any{"topic": in.TopicA, "grade": in.Grade},
		}}

	case intent.KindCompareTopics:
		// The two aggregates are independent; the engine may issue them
		// concurrently as long as both finish before formatting.
		out.Traversals = []Spec{
			{ID: TemplateCompare, Cypher: cypherCompare, Params: map[string]any{"topic": in.TopicA, "grade": in.Grade}},
			{ID: TemplateCompare, Cypher: cypherCompare, Params: map[string]any{"topic": in.TopicB, "grade": in.Grade}},
		}
		out.Concurrent = true

	default:
		return Plan{}, fmt.Errorf("%w: %q", ErrUnplannable, in.Kind)
	}

	return out, nil
}

// topicsByGrade builds the existence-check traversal: list every topic node
// at the grade so the engine can verify the requested topics before the main
// traversal runs.
func topicsByGrade(grade string) (Spec, error) {
	qb := gocypher.NewQueryBuilder().
		Match(gocypher.N("t", "Topic").WithProperties(map[string]interface{}{"grade": grade})).
		Return("t")

	cypher, params, err := qb.Build()
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %w", ErrUnplannable, err)
	}
	return Spec{ID: TemplateTopicsByGrade, Cypher: cypher, Params: params}, nil
}
