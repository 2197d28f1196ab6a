package teams_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/scoregraph/scoregraph/internal/domain/teams"
	. "github.com/smartystreets/goconvey/convey"
)

func rankedStudents(n int) []teams.StudentScore {
	out := make([]teams.StudentScore, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, teams.StudentScore{
			Name:  fmt.Sprintf("Student %02d", i+1),
			Score: float64(100 - i),
		})
	}
	return out
}

func singleTopic() teams.Input {
	return teams.Input{TopicA: "Light", Grade: "6"}
}

func dualTopic() teams.Input {
	return teams.Input{TopicA: "Light", TopicB: "Human Body", Grade: "6", DualTopic: true}
}

func TestFormPartition(t *testing.T) {
	Convey("Given ranked students of various sizes", t, func() {
		Convey("When seven students are partitioned", func() {
			set, err := teams.Form(rankedStudents(7), singleTopic())

			Convey("Then team sizes should be 3,3,1 in rank order", func() {
				So(err, ShouldBeNil)
				So(set.Teams, ShouldHaveLength, 3)
				So(set.Teams[0].Members, ShouldHaveLength, 3)
				So(set.Teams[1].Members, ShouldHaveLength, 3)
				So(set.Teams[2].Members, ShouldHaveLength, 1)
				So(set.Teams[0].Members[0].Name, ShouldEqual, "Student 01")
				So(set.Teams[2].Members[0].Name, ShouldEqual, "Student 07")
			})
		})

		Convey("When four students are partitioned", func() {
			set, err := teams.Form(rankedStudents(4), singleTopic())

			Convey("Then team sizes should be 2,2", func() {
				So(err, ShouldBeNil)
				So(set.Teams, ShouldHaveLength, 2)
				So(set.Teams[0].Members, ShouldHaveLength, 2)
				So(set.Teams[1].Members, ShouldHaveLength, 2)
			})
		})

		Convey("When the partition is checked for totality", func() {
			for _, n := range []int{2, 3, 4, 5, 6, 7, 8, 11} {
				set, err := teams.Form(rankedStudents(n), singleTopic())
				So(err, ShouldBeNil)

				size := 2
				if n >= 6 {
					size = 3
				}
				wantTeams := (n + size - 1) / size
				So(set.Teams, ShouldHaveLength, wantTeams)

				seen := map[string]int{}
				for _, team := range set.Teams {
					So(team.Type, ShouldEqual, teams.TypeStudyBuddy)
					for _, m := range team.Members {
						seen[m.Name]++
					}
				}

				Convey(fmt.Sprintf("Then all %d students appear exactly once", n), func() {
					So(seen, ShouldHaveLength, n)
					for _, count := range seen {
						So(count, ShouldEqual, 1)
					}
				})
			}
		})

		Convey("When teams are named", func() {
			set, err := teams.Form(rankedStudents(5), singleTopic())

			Convey("Then names should be 1-indexed in rank order", func() {
				So(err, ShouldBeNil)
				So(set.Teams[0].Name, ShouldEqual, "Study Team 1")
				So(set.Teams[1].Name, ShouldEqual, "Study Team 2")
			})
		})
	})
}

func TestFormSolo(t *testing.T) {
	Convey("Given exactly one ranked student", t, func() {
		set, err := teams.Form(rankedStudents(1), singleTopic())

		Convey("Then a single solo team should be returned", func() {
			So(err, ShouldBeNil)
			So(set.Solo, ShouldBeTrue)
			So(set.Teams, ShouldHaveLength, 1)
			So(set.Teams[0].Members, ShouldHaveLength, 1)
			So(set.Teams[0].PairingLogic, ShouldContainSubstring, "solo")
		})
	})
}

func TestFormEmpty(t *testing.T) {
	Convey("Given no qualifying students", t, func() {
		_, err := teams.Form(nil, dualTopic())

		Convey("Then the error should name the topics and grade", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, teams.ErrNoStudents), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Light")
			So(err.Error(), ShouldContainSubstring, "Human Body")
			So(err.Error(), ShouldContainSubstring, "grade 6")
		})
	})
}

func TestFormDualTopicRationale(t *testing.T) {
	Convey("Given dual-topic scores", t, func() {
		ranked := []teams.StudentScore{
			{Name: "Tanya Patel", Score: 10, ScoreB: 4},
			{Name: "Arjun Kumar", Score: 3, ScoreB: 9},
		}
		set, err := teams.Form(ranked, dualTopic())

		Convey("Then strengths should follow the higher relative score", func() {
			So(err, ShouldBeNil)
			So(set.Teams, ShouldHaveLength, 1)
			members := set.Teams[0].Members
			So(members[0].Strengths, ShouldResemble, []string{"Light"})
			So(members[0].NeedsHelp, ShouldResemble, []string{"Human Body"})
			So(members[1].Strengths, ShouldResemble, []string{"Human Body"})
			So(members[1].NeedsHelp, ShouldResemble, []string{"Light"})
		})

		Convey("Then the pairing logic should mention both members", func() {
			So(set.Teams[0].PairingLogic, ShouldContainSubstring, "Tanya Patel")
			So(set.Teams[0].PairingLogic, ShouldContainSubstring, "Arjun Kumar")
		})

		Convey("And an exact tie counts the first topic as the strength", func() {
			tied, err := teams.Form([]teams.StudentScore{
				{Name: "A", Score: 5, ScoreB: 5},
				{Name: "B", Score: 4, ScoreB: 6},
			}, dualTopic())
			So(err, ShouldBeNil)
			So(tied.Teams[0].Members[0].Strengths, ShouldResemble, []string{"Light"})
		})
	})
}

func TestFormSingleTopicRationale(t *testing.T) {
	Convey("Given single-topic scores", t, func() {
		set, err := teams.Form(rankedStudents(2), singleTopic())

		Convey("Then the lead should coach and the rest receive help", func() {
			So(err, ShouldBeNil)
			members := set.Teams[0].Members
			So(members[0].Strengths, ShouldResemble, []string{"Light"})
			So(members[0].NeedsHelp, ShouldBeEmpty)
			So(members[1].Strengths, ShouldBeEmpty)
			So(members[1].NeedsHelp, ShouldResemble, []string{"Light"})
		})
	})
}

func TestTeamSetSerialization(t *testing.T) {
	Convey("Given a formed team set", t, func() {
		ranked := []teams.StudentScore{
			{Name: "Tanya Patel", Score: 10, ScoreB: 4},
			{Name: "Arjun Kumar", Score: 3, ScoreB: 9},
		}
		set, err := teams.Form(ranked, dualTopic())
		So(err, ShouldBeNil)

		Convey("When serialized to JSON", func() {
			raw, err := json.Marshal(set)
			So(err, ShouldBeNil)

			var decoded map[string]any
			So(json.Unmarshal(raw, &decoded), ShouldBeNil)

			Convey("Then the structure should match the consumer contract", func() {
				teamList, ok := decoded["teams"].([]any)
				So(ok, ShouldBeTrue)
				So(teamList, ShouldHaveLength, 1)

				team, ok := teamList[0].(map[string]any)
				So(ok, ShouldBeTrue)
				So(team["name"], ShouldEqual, "Study Team 1")
				So(team["type"], ShouldEqual, "study_buddy")
				So(team, ShouldContainKey, "members")
				So(team, ShouldContainKey, "pairing_logic")

				members, ok := team["members"].([]any)
				So(ok, ShouldBeTrue)
				first, ok := members[0].(map[string]any)
				So(ok, ShouldBeTrue)
				So(first, ShouldContainKey, "name")
				So(first, ShouldContainKey, "strengths")
				So(first, ShouldContainKey, "needs_help")
			})

			Convey("Then the solo flag should stay out of the payload", func() {
				So(decoded, ShouldNotContainKey, "solo")
			})
		})
	})
}
