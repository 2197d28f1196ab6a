package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scoregraph/scoregraph/internal/adapters/graphstore"
	engine "github.com/scoregraph/scoregraph/internal/app"
	"github.com/scoregraph/scoregraph/internal/domain/intent"
	"github.com/scoregraph/scoregraph/internal/domain/plan"
	"github.com/scoregraph/scoregraph/internal/domain/result"
	. "github.com/smartystreets/goconvey/convey"
)

// planFor exposes the traversal texts the engine will issue, so stubs can be
// keyed exactly.
func planFor(t *testing.T, raw map[string]string) plan.Plan {
	t.Helper()
	qi, err := intent.Validate(raw)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	pl, err := plan.New().Build(qi)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return pl
}

func topicRow(name, grade string) graphstore.Row {
	return graphstore.Row{"t": map[string]any{"name": name, "grade": grade}}
}

func TestQueryFindHighest(t *testing.T) {
	Convey("Given a store with one top scorer", t, func() {
		raw := map[string]string{
			intent.ParamIntentKind: "find_highest",
			intent.ParamTopicA:     "light",
			intent.ParamGrade:      "6",
		}
		pl := planFor(t, raw)

		store := graphstore.NewMemstore()
		store.Stub(pl.Traversals[0].Cypher, []graphstore.Row{
			{plan.ColStudentName: "Tanya Patel", plan.ColScore: int64(10)},
		})
		e := engine.New(engine.WithRunner(store))

		Convey("When the query runs", func() {
			res, err := e.Query(context.Background(), raw)

			Convey("Then a scalar answer names the student with canonical topic casing", func() {
				So(err, ShouldBeNil)
				So(res.Kind, ShouldEqual, result.KindScalarAnswer)
				So(res.Scalar.Student, ShouldEqual, "Tanya Patel")
				So(res.Scalar.Topic, ShouldEqual, "Light")
			})

			Convey("Then the invocation counters advance", func() {
				stats := e.GetStats()
				So(stats["queriesTotal"], ShouldEqual, int64(1))
				So(stats["queriesFailed"], ShouldEqual, int64(0))
			})
		})
	})
}

func TestQueryValidation(t *testing.T) {
	Convey("Given an engine over a fresh store", t, func() {
		store := graphstore.NewMemstore()
		e := engine.New(engine.WithRunner(store))

		Convey("When the topic is missing", func() {
			_, err := e.Query(context.Background(), map[string]string{
				intent.ParamIntentKind: "find_highest",
			})

			Convey("Then validation fails before any traversal", func() {
				So(errors.Is(err, intent.ErrMissingParameter), ShouldBeTrue)
				So(store.Calls(), ShouldBeEmpty)
			})
		})

		Convey("When the intent kind is unknown", func() {
			_, err := e.Query(context.Background(), map[string]string{
				intent.ParamIntentKind: "find_weakest",
				intent.ParamTopicA:     "Light",
			})

			Convey("Then the intent is rejected without store I/O", func() {
				So(errors.Is(err, intent.ErrUnsupportedIntent), ShouldBeTrue)
				So(store.Calls(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given an engine without a runner", t, func() {
		e := engine.New()
		_, err := e.Query(context.Background(), map[string]string{
			intent.ParamIntentKind: "find_highest",
			intent.ParamTopicA:     "Light",
		})

		Convey("Then it refuses to serve", func() {
			So(errors.Is(err, engine.ErrNotReady), ShouldBeTrue)
		})
	})
}

func TestQueryTopicExistenceCheck(t *testing.T) {
	Convey("Given a grade that only knows the Light topic", t, func() {
		raw := map[string]string{
			intent.ParamIntentKind: "form_teams",
			intent.ParamTopicA:     "light",
			intent.ParamTopicB:     "human body",
			intent.ParamGrade:      "6",
		}
		pl := planFor(t, raw)

		store := graphstore.NewMemstore()
		store.Stub(pl.Checks[0].Cypher, []graphstore.Row{topicRow("Light", "6")})
		e := engine.New(engine.WithRunner(store))

		Convey("When a dual-topic team query runs", func() {
			_, err := e.Query(context.Background(), raw)

			Convey("Then the missing topic is named exactly", func() {
				So(errors.Is(err, engine.ErrTopicNotFound), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Human Body")
				So(err.Error(), ShouldContainSubstring, "grade 6")
				So(err.Error(), ShouldNotContainSubstring, "Light,")
			})

			Convey("Then no student traversal ever ran", func() {
				calls := store.Calls()
				So(calls, ShouldHaveLength, 1)
				So(calls[0].Cypher, ShouldEqual, pl.Checks[0].Cypher)
			})
		})
	})
}

func TestQueryFormTeams(t *testing.T) {
	Convey("Given both topics exist and four students scored in both", t, func() {
		raw := map[string]string{
			intent.ParamIntentKind: "form_teams",
			intent.ParamTopicA:     "light",
			intent.ParamTopicB:     "human body",
			intent.ParamGrade:      "6",
		}
		pl := planFor(t, raw)

		store := graphstore.NewMemstore()
		store.Stub(pl.Checks[0].Cypher, []graphstore.Row{
			topicRow("Light", "6"),
			topicRow("Human Body", "6"),
		})
		store.Stub(pl.Traversals[0].Cypher, []graphstore.Row{
			{plan.ColStudentName: "Tanya Patel", plan.ColScoreA: int64(10), plan.ColScoreB: int64(4)},
			{plan.ColStudentName: "Arjun Kumar", plan.ColScoreA: int64(3), plan.ColScoreB: int64(9)},
			{plan.ColStudentName: "Meera Iyer", plan.ColScoreA: int64(6), plan.ColScoreB: int64(5)},
			{plan.ColStudentName: "Rahul Singh", plan.ColScoreA: int64(4), plan.ColScoreB: int64(6)},
		})
		e := engine.New(engine.WithRunner(store))

		Convey("When the team query runs", func() {
			res, err := e.Query(context.Background(), raw)

			Convey("Then a team set of two pairs comes back", func() {
				So(err, ShouldBeNil)
				So(res.Kind, ShouldEqual, result.KindTeamSet)
				So(res.TeamSet, ShouldNotBeNil)
				So(res.TeamSet.Teams, ShouldHaveLength, 2)
				So(res.TeamSet.Teams[0].Members[0].Strengths, ShouldResemble, []string{"Light"})
				So(res.TeamSet.Teams[0].Members[1].Strengths, ShouldResemble, []string{"Human Body"})
			})
		})
	})
}

func TestQueryCompareTopics(t *testing.T) {
	Convey("Given two topics with identical aggregates", t, func() {
		raw := map[string]string{
			intent.ParamIntentKind: "compare_topics",
			intent.ParamTopicA:     "light",
			intent.ParamTopicB:     "human body",
			intent.ParamGrade:      "6",
		}
		pl := planFor(t, raw)

		store := graphstore.NewMemstore()
		store.Stub(pl.Traversals[0].Cypher, []graphstore.Row{
			{plan.ColCount: int64(3), plan.ColAverage: 7.0},
		})
		e := engine.New(engine.WithRunner(store))

		Convey("When the comparison runs", func() {
			res, err := e.Query(context.Background(), raw)

			Convey("Then both aggregates were issued and the result is a tie", func() {
				So(err, ShouldBeNil)
				So(res.Kind, ShouldEqual, result.KindComparison)
				So(res.Comparison.Winner, ShouldEqual, result.WinnerTie)
				So(res.Comparison.Margin, ShouldEqual, 0.0)
				So(store.Calls(), ShouldHaveLength, 2)
			})
		})
	})
}

func TestQueryNoData(t *testing.T) {
	Convey("Given a topic with no recorded scores", t, func() {
		raw := map[string]string{
			intent.ParamIntentKind: "find_top_students",
			intent.ParamTopicA:     "light",
			intent.ParamGrade:      "6",
		}

		store := graphstore.NewMemstore()
		e := engine.New(engine.WithRunner(store))

		Convey("When the query runs", func() {
			_, err := e.Query(context.Background(), raw)

			Convey("Then no data is reported for the topic", func() {
				So(errors.Is(err, result.ErrNoData), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Light")
			})
		})
	})
}

// blockingRunner parks until its context expires, standing in for a slow
// store.
type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, cypher string, params map[string]any) ([]graphstore.Row, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestQueryTimeout(t *testing.T) {
	Convey("Given a store slower than the query budget", t, func() {
		e := engine.New(
			engine.WithRunner(blockingRunner{}),
			engine.WithQueryTimeout(10*time.Millisecond),
		)

		Convey("When the query runs", func() {
			_, err := e.Query(context.Background(), map[string]string{
				intent.ParamIntentKind: "find_highest",
				intent.ParamTopicA:     "Light",
				intent.ParamGrade:      "6",
			})

			Convey("Then the budget is reported as a timeout", func() {
				So(errors.Is(err, engine.ErrTimeout), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "10ms")
			})
		})
	})
}

func TestHealth(t *testing.T) {
	Convey("Given an engine with a verifier", t, func() {
		store := graphstore.NewMemstore()
		e := engine.New(engine.WithRunner(store), engine.WithVerifier(store))

		Convey("Then health reflects store reachability", func() {
			So(e.Health(context.Background()), ShouldBeNil)
		})
	})
}
