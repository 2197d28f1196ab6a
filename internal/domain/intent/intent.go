// Package intent turns the caller's raw parameter bag into a typed,
// normalized query intent. Validation happens here, before any store I/O.
package intent

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Kind identifies the analytic request the caller declared.
type Kind string

// Supported intent kinds.
const (
	KindFindHighest     Kind = "find_highest"
	KindFindTopStudents Kind = "find_top_students"
	KindFormTeams       Kind = "form_teams"
	KindGetStatistics   Kind = "get_statistics"
	KindCompareTopics   Kind = "compare_topics"
)

// Raw parameter bag keys.
const (
	ParamIntentKind = "intent_kind"
	ParamTopicA     = "topic_a"
	ParamTopicB     = "topic_b"
	ParamGrade      = "grade"
)

// QueryIntent is the validated, normalized form of one engine invocation.
// It is built fresh per call and never persisted.
type QueryIntent struct {
	Kind   Kind
	TopicA string
	TopicB string // empty unless a dual-topic request
	Grade  string // empty means search across grades (where allowed)
}

// DualTopic reports whether the intent names a second topic.
func (q QueryIntent) DualTopic() bool { return q.TopicB != "" }

// Topics returns the topic names the intent references, in declaration order.
func (q QueryIntent) Topics() []string {
	if q.DualTopic() {
		return []string{q.TopicA, q.TopicB}
	}
	return []string{q.TopicA}
}

// rawQuery mirrors the parameter bag for struct-tag validation.
// grade is required for the grade-scoped intents; topic_b only for
// comparisons (team formation falls back to single-topic mode without it).
type rawQuery struct {
	IntentKind string `validate:"required,oneof=find_highest find_top_students form_teams get_statistics compare_topics"`
	TopicA     string `validate:"required"`
	TopicB     string `validate:"required_if=IntentKind compare_topics"`
	Grade      string `validate:"required_if=IntentKind form_teams,required_if=IntentKind get_statistics,required_if=IntentKind compare_topics"`
}

var validate = validator.New() //nolint:gochecknoglobals // validator instances are meant to be shared

// Validate parses and validates a raw parameter bag into a QueryIntent.
// Pure; no side effects. All failures are reported as ErrUnsupportedIntent
// or ErrMissingParameter wrapped with the offending field.
func Validate(raw map[string]string) (QueryIntent, error) {
	rq := rawQuery{
		IntentKind: strings.TrimSpace(raw[ParamIntentKind]),
		TopicA:     strings.TrimSpace(raw[ParamTopicA]),
		TopicB:     strings.TrimSpace(raw[ParamTopicB]),
		Grade:      strings.TrimSpace(raw[ParamGrade]),
	}

	if err := validate.Struct(rq); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return QueryIntent{}, classify(verrs[0], rq)
		}
		return QueryIntent{}, fmt.Errorf("%w: %w", ErrMissingParameter, err)
	}

	return QueryIntent{
		Kind:   Kind(rq.IntentKind),
		TopicA: NormalizeTopic(rq.TopicA),
		TopicB: NormalizeTopic(rq.TopicB),
		Grade:  rq.Grade,
	}, nil
}

// classify maps a validator failure onto the engine's error taxonomy.
func classify(fe validator.FieldError, rq rawQuery) error {
	if fe.Tag() == "oneof" {
		return fmt.Errorf("%w: %q", ErrUnsupportedIntent, rq.IntentKind)
	}
	return fmt.Errorf("%w: %s", ErrMissingParameter, paramName(fe.Field()))
}

// paramName converts a struct field name back to its bag key.
func paramName(field string) string {
	switch field {
	case "IntentKind":
		return ParamIntentKind
	case "TopicA":
		return ParamTopicA
	case "TopicB":
		return ParamTopicB
	case "Grade":
		return ParamGrade
	default:
		return field
	}
}

// NormalizeTopic converts a topic name to its canonical casing: first letter
// of each word upper-cased, the rest lowered. Idempotent by construction;
// topic matching in traversals is case-insensitive regardless, so the
// canonical form only fixes what the engine reports back.
func NormalizeTopic(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
