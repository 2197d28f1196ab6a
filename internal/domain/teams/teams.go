// Package teams partitions ranked student scores into balanced study teams.
//
// "Balanced" here means rank-contiguous: the ranked input is cut into
// consecutive chunks, so team 1 holds the strongest students. There is no
// cross-team balancing pass; the complementary-strength narrative attached to
// each member is the balancing signal in dual-topic mode. That chunking rule
// is load-bearing and must not be replaced with a smarter partition.
package teams

import (
	"fmt"
	"strings"
)

// Team sizing policy: fixed thresholds, not a computed optimum.
const (
	largeGroupMin = 6
	largeTeamSize = 3
	smallTeamSize = 2
)

// TypeStudyBuddy tags every team produced by this engine.
const TypeStudyBuddy = "study_buddy"

// StudentScore is one ranked entry. In single-topic mode only Score is set;
// in dual-topic mode Score holds the first topic's score and ScoreB the
// second, with ranking already done on their sum by the traversal.
type StudentScore struct {
	Name   string
	Score  float64
	ScoreB float64
}

// Member is one student inside a team, with the topics they can coach and
// the topics they need coaching in.
type Member struct {
	Name      string   `json:"name"`
	Strengths []string `json:"strengths"`
	NeedsHelp []string `json:"needs_help"`
}

// Team is one study group.
type Team struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Members      []Member `json:"members"`
	PairingLogic string   `json:"pairing_logic"`
}

// TeamSet is the full partition of the ranked input. Every input student
// appears in exactly one team. Solo marks the degenerate one-student case.
type TeamSet struct {
	Teams []Team `json:"teams"`
	Solo  bool   `json:"-"`
}

// Input carries the query context the rationale strings are phrased in.
type Input struct {
	TopicA    string
	TopicB    string
	Grade     string
	DualTopic bool
}

// Form partitions ranked (descending) student scores into study teams.
// An empty input is an error, not an empty TeamSet: callers must be able to
// tell "no qualifying students" apart from "teams formed".
func Form(ranked []StudentScore, in Input) (TeamSet, error) {
	if len(ranked) == 0 {
		return TeamSet{}, fmt.Errorf("%w: %s", ErrNoStudents, scopeLabel(in))
	}

	if len(ranked) == 1 {
		only := ranked[0]
		return TeamSet{
			Solo: true,
			Teams: []Team{{
				Name:         "Study Team 1",
				Type:         TypeStudyBuddy,
				Members:      []Member{soloMember(only, in)},
				PairingLogic: fmt.Sprintf("%s is the only student with scores in %s; they study solo.", only.Name, scopeLabel(in)),
			}},
		}, nil
	}

	size := smallTeamSize
	if len(ranked) >= largeGroupMin {
		size = largeTeamSize
	}

	var set TeamSet
	for start := 0; start < len(ranked); start += size {
		end := start + size
		if end > len(ranked) {
			end = len(ranked)
		}
		chunk := ranked[start:end]

		team := Team{
			Name: fmt.Sprintf("Study Team %d", len(set.Teams)+1),
			Type: TypeStudyBuddy,
		}
		for i, s := range chunk {
			if in.DualTopic {
				team.Members = append(team.Members, dualMember(s, in))
			} else {
				team.Members = append(team.Members, rankedMember(s, in, i == 0))
			}
		}
		team.PairingLogic = pairingLogic(team.Members, in)
		set.Teams = append(set.Teams, team)
	}

	return set, nil
}

// soloMember describes the lone student. With two topics their stronger one
// is still worth reporting; with one topic they simply own it.
func soloMember(s StudentScore, in Input) Member {
	if in.DualTopic {
		return dualMember(s, in)
	}
	return Member{Name: s.Name, Strengths: []string{in.TopicA}, NeedsHelp: []string{}}
}

// dualMember assigns strengths by the higher of the two topic scores. Exact
// ties count the first topic as the strength.
func dualMember(s StudentScore, in Input) Member {
	if s.Score >= s.ScoreB {
		return Member{Name: s.Name, Strengths: []string{in.TopicA}, NeedsHelp: []string{in.TopicB}}
	}
	return Member{Name: s.Name, Strengths: []string{in.TopicB}, NeedsHelp: []string{in.TopicA}}
}

// rankedMember assigns the single-topic rationale: the top-ranked member of
// each team coaches the topic, the rest receive help in it.
func rankedMember(s StudentScore, in Input, lead bool) Member {
	if lead {
		return Member{Name: s.Name, Strengths: []string{in.TopicA}, NeedsHelp: []string{}}
	}
	return Member{Name: s.Name, Strengths: []string{}, NeedsHelp: []string{in.TopicA}}
}

// pairingLogic renders the team's complementary-strength narrative.
func pairingLogic(members []Member, in Input) string {
	if in.DualTopic {
		parts := make([]string, 0, len(members))
		for _, m := range members {
			parts = append(parts, fmt.Sprintf("%s is strong in %s and needs help in %s",
				m.Name, m.Strengths[0], m.NeedsHelp[0]))
		}
		return strings.Join(parts, ". ") + "."
	}

	lead := members[0].Name
	if len(members) == 1 {
		return fmt.Sprintf("%s studies %s solo in this team.", lead, in.TopicA)
	}
	others := make([]string, 0, len(members)-1)
	for _, m := range members[1:] {
		others = append(others, m.Name)
	}
	return fmt.Sprintf("%s leads on %s and supports %s.", lead, in.TopicA, strings.Join(others, ", "))
}

// scopeLabel phrases the topic/grade scope for messages.
func scopeLabel(in Input) string {
	if in.DualTopic {
		return fmt.Sprintf("%s and %s (grade %s)", in.TopicA, in.TopicB, in.Grade)
	}
	return fmt.Sprintf("%s (grade %s)", in.TopicA, in.Grade)
}
