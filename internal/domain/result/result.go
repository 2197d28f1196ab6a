// Package result turns raw traversal rows into the typed answer envelopes
// the query API returns.
package result

import (
	"fmt"
	"math"

	"github.com/scoregraph/scoregraph/internal/domain/intent"
	"github.com/scoregraph/scoregraph/internal/domain/plan"
	"github.com/scoregraph/scoregraph/internal/domain/teams"
)

// Result kinds, one per answer shape.
const (
	KindScalarAnswer = "scalar_answer"
	KindRankedList   = "ranked_list"
	KindStatistics   = "statistics"
	KindComparison   = "comparison"
	KindTeamSet      = "team_set"
)

// Result is the envelope carried back to the caller. Exactly one payload
// pointer is set, matching Kind.
type Result struct {
	Kind       string         `json:"kind"`
	Scalar     *ScalarAnswer  `json:"scalar,omitempty"`
	Ranked     *RankedList    `json:"ranked,omitempty"`
	Statistics *Statistics    `json:"statistics,omitempty"`
	Comparison *Comparison    `json:"comparison,omitempty"`
	TeamSet    *teams.TeamSet `json:"team_set,omitempty"`
}

// FromTeams wraps a formed team set in the answer envelope.
func FromTeams(set teams.TeamSet) Result {
	return Result{Kind: KindTeamSet, TeamSet: &set}
}

// ScalarAnswer names the single best-scoring student.
type ScalarAnswer struct {
	Student string  `json:"student"`
	Score   float64 `json:"score"`
	Topic   string  `json:"topic"`
	Grade   string  `json:"grade,omitempty"`
}

// RankedEntry is one row of a ranked list, 1-indexed.
type RankedEntry struct {
	Rank    int     `json:"rank"`
	Student string  `json:"student"`
	Score   float64 `json:"score"`
	Grade   string  `json:"grade,omitempty"`
}

// RankedList is an ordered run of top scorers.
type RankedList struct {
	Topic   string        `json:"topic"`
	Grade   string        `json:"grade,omitempty"`
	Entries []RankedEntry `json:"entries"`
}

// Statistics aggregates one topic at one grade. Average keeps full float
// precision; rendering rounds, computation never does.
type Statistics struct {
	Topic   string  `json:"topic"`
	Grade   string  `json:"grade"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

// DisplayAverage renders the average to one decimal place.
func (s Statistics) DisplayAverage() string {
	return fmt.Sprintf("%.1f", math.Round(s.Average*10)/10)
}

// Comparison sets two topic averages side by side at one grade.
type Comparison struct {
	TopicA        string  `json:"topic_a"`
	TopicB        string  `json:"topic_b"`
	Grade         string  `json:"grade"`
	TopicAAverage float64 `json:"topic_a_average"`
	TopicBAverage float64 `json:"topic_b_average"`
	TopicACount   int     `json:"topic_a_count"`
	TopicBCount   int     `json:"topic_b_count"`
	Winner        string  `json:"winner"`
	Margin        float64 `json:"margin"`
}

// WinnerTie marks a comparison whose averages are exactly equal.
const WinnerTie = "tie"

// Format builds the Result for a non-team intent from its traversal rows.
// Team formation has its own path through the teams package; passing a
// form_teams intent here is a programming error.
//
// For compare_topics, rows holds the topic A traversal's rows followed by
// topic B's, with rowSplit marking the boundary.
func Format(qi intent.QueryIntent, rows []map[string]any, rowSplit int) (Result, error) {
	switch qi.Kind {
	case intent.KindFindHighest:
		return formatScalar(qi, rows)
	case intent.KindFindTopStudents:
		return formatRanked(qi, rows)
	case intent.KindGetStatistics:
		return formatStatistics(qi, rows)
	case intent.KindCompareTopics:
		return formatComparison(qi, rows, rowSplit)
	default:
		return Result{}, fmt.Errorf("no formatter for intent %q", qi.Kind)
	}
}

func formatScalar(qi intent.QueryIntent, rows []map[string]any) (Result, error) {
	if len(rows) == 0 {
		return Result{}, noData(qi)
	}
	row := rows[0]
	answer := &ScalarAnswer{
		Student: asString(row[plan.ColStudentName]),
		Score:   asFloat(row[plan.ColScore]),
		Topic:   qi.TopicA,
		Grade:   qi.Grade,
	}
	if answer.Grade == "" {
		answer.Grade = asString(row[plan.ColGrade])
	}
	return Result{Kind: KindScalarAnswer, Scalar: answer}, nil
}

func formatRanked(qi intent.QueryIntent, rows []map[string]any) (Result, error) {
	if len(rows) == 0 {
		return Result{}, noData(qi)
	}
	list := &RankedList{Topic: qi.TopicA, Grade: qi.Grade, Entries: make([]RankedEntry, 0, len(rows))}
	for i, row := range rows {
		entry := RankedEntry{
			Rank:    i + 1,
			Student: asString(row[plan.ColStudentName]),
			Score:   asFloat(row[plan.ColScore]),
		}
		if qi.Grade == "" {
			entry.Grade = asString(row[plan.ColGrade])
		}
		list.Entries = append(list.Entries, entry)
	}
	return Result{Kind: KindRankedList, Ranked: list}, nil
}

func formatStatistics(qi intent.QueryIntent, rows []map[string]any) (Result, error) {
	stats, err := statsFromRows(qi, rows)
	if err != nil {
		return Result{}, err
	}
	return Result{Kind: KindStatistics, Statistics: stats}, nil
}

func formatComparison(qi intent.QueryIntent, rows []map[string]any, rowSplit int) (Result, error) {
	if rowSplit < 0 || rowSplit > len(rows) {
		return Result{}, fmt.Errorf("row split %d out of range for %d rows", rowSplit, len(rows))
	}

	statsA, err := statsFromRows(qi, rows[:rowSplit])
	if err != nil {
		return Result{}, err
	}
	qiB := qi
	qiB.TopicA = qi.TopicB
	statsB, err := statsFromRows(qiB, rows[rowSplit:])
	if err != nil {
		return Result{}, err
	}

	cmp := &Comparison{
		TopicA:        qi.TopicA,
		TopicB:        qi.TopicB,
		Grade:         qi.Grade,
		TopicAAverage: statsA.Average,
		TopicBAverage: statsB.Average,
		TopicACount:   statsA.Count,
		TopicBCount:   statsB.Count,
	}
	switch {
	case statsA.Average > statsB.Average:
		cmp.Winner = qi.TopicA
		cmp.Margin = statsA.Average - statsB.Average
	case statsB.Average > statsA.Average:
		cmp.Winner = qi.TopicB
		cmp.Margin = statsB.Average - statsA.Average
	default:
		cmp.Winner = WinnerTie
	}
	return Result{Kind: KindComparison, Comparison: cmp}, nil
}

// statsFromRows reads one aggregate row. The grouped traversal returns a row
// only when at least one score exists, so zero rows means no data.
func statsFromRows(qi intent.QueryIntent, rows []map[string]any) (*Statistics, error) {
	if len(rows) == 0 {
		return nil, noData(qi)
	}
	row := rows[0]
	count := asInt(row[plan.ColCount])
	if count == 0 {
		return nil, noData(qi)
	}
	return &Statistics{
		Topic:   qi.TopicA,
		Grade:   qi.Grade,
		Count:   count,
		Average: asFloat(row[plan.ColAverage]),
		Minimum: asFloat(row[plan.ColMinimum]),
		Maximum: asFloat(row[plan.ColMaximum]),
	}, nil
}

func noData(qi intent.QueryIntent) error {
	if qi.Grade != "" {
		return fmt.Errorf("%w: no scores for %q at grade %s", ErrNoData, qi.TopicA, qi.Grade)
	}
	return fmt.Errorf("%w: no scores for %q", ErrNoData, qi.TopicA)
}

// The driver records scores as int64 or float64 depending on how they were
// written; accept both.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
