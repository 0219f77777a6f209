package model

import (
	"fmt"
	"math"
	"time"
)

// ContributionScore is a score for a skill. The value is absent when it
// could not be computed (the source produced NaN).
type ContributionScore struct {
	skill   SkillTag
	value   float64
	present bool
}

// NewContributionScore wraps value; NaN becomes an absent score.
func NewContributionScore(skill SkillTag, value float64) ContributionScore {
	if math.IsNaN(value) {
		return ContributionScore{skill: skill}
	}
	return ContributionScore{skill: skill, value: value, present: true}
}

// Skill returns the skill this score applies to.
func (s ContributionScore) Skill() SkillTag { return s.skill }

// Value returns the score and whether it is present.
func (s ContributionScore) Value() (float64, bool) { return s.value, s.present }

// String formats the score as skill:value.
func (s ContributionScore) String() string {
	if !s.present {
		return fmt.Sprintf("%s:absent", s.skill)
	}
	return fmt.Sprintf("%s:%f", s.skill, s.value)
}

// DetailedContributionScore is a raw score together with where it came from.
//
// Records are deliberately not comparable with ==: two records with identical
// fields are still distinct observations. Callers that need to match records
// must compare the fields they care about.
type DetailedContributionScore struct {
	_ [0]func()

	score        ContributionScore
	scoreTime    time.Time
	project      Project
	contribution ContributionID
	contributor  Contributor
	originator   ScoreOriginator
}

// NewDetailedContributionScore validates and builds a record.
func NewDetailedContributionScore(
	score ContributionScore,
	scoreTime time.Time,
	project Project,
	contribution ContributionID,
	contributor Contributor,
	originator ScoreOriginator,
) (DetailedContributionScore, error) {
	if _, err := ParseSkillTag(string(score.skill)); err != nil {
		return DetailedContributionScore{}, err
	}
	if scoreTime.IsZero() {
		return DetailedContributionScore{}, ErrMissingTime
	}
	if _, err := ParseProject(string(project)); err != nil {
		return DetailedContributionScore{}, err
	}
	if _, err := ParseContributionID(string(contribution)); err != nil {
		return DetailedContributionScore{}, err
	}
	if _, err := ParseContributor(string(contributor)); err != nil {
		return DetailedContributionScore{}, err
	}
	if _, err := ParseScoreOriginator(string(originator)); err != nil {
		return DetailedContributionScore{}, err
	}
	return DetailedContributionScore{
		score:        score,
		scoreTime:    scoreTime,
		project:      project,
		contribution: contribution,
		contributor:  contributor,
		originator:   originator,
	}, nil
}

// Score returns the skill score carried by the record.
func (d DetailedContributionScore) Score() ContributionScore { return d.score }

// Skill returns the skill the score applies to.
func (d DetailedContributionScore) Skill() SkillTag { return d.score.skill }

// Value returns the raw score and whether it is present.
func (d DetailedContributionScore) Value() (float64, bool) { return d.score.Value() }

// ScoreTime returns when the scored contribution was made.
func (d DetailedContributionScore) ScoreTime() time.Time { return d.scoreTime }

// Project returns the project of the scored contribution.
func (d DetailedContributionScore) Project() Project { return d.project }

// ContributionID returns the id of the scored contribution.
func (d DetailedContributionScore) ContributionID() ContributionID { return d.contribution }

// Contributor returns the author of the scored contribution.
func (d DetailedContributionScore) Contributor() Contributor { return d.contributor }

// Originator returns the scorer that produced the record.
func (d DetailedContributionScore) Originator() ScoreOriginator { return d.originator }

// String formats the record for logs.
func (d DetailedContributionScore) String() string {
	return fmt.Sprintf("%s[%s %s %s %s %s]", d.originator, d.score, d.project,
		d.contribution, d.contributor, d.scoreTime.Format(time.RFC3339))
}
