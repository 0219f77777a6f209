// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// SkillTag identifies a skill domain, e.g. "JAVA".
type SkillTag string

// ScoreOriginator identifies the scorer that produced a raw score.
type ScoreOriginator string

// Contributor identifies the author of a contribution.
type Contributor string

// Project identifies the project a contribution belongs to.
type Project string

// ContributionID identifies a single contribution (e.g. a commit hash).
type ContributionID string

// Identifiers are plain comparable strings: two values are equal iff their
// underlying strings are equal, so they are safe as map keys.

func (s SkillTag) String() string        { return string(s) }
func (o ScoreOriginator) String() string { return string(o) }
func (c Contributor) String() string     { return string(c) }
func (p Project) String() string         { return string(p) }
func (id ContributionID) String() string { return string(id) }

// ParseSkillTag validates and returns a SkillTag.
func ParseSkillTag(v string) (SkillTag, error) {
	if err := nonBlank("skill tag", v); err != nil {
		return "", err
	}
	return SkillTag(v), nil
}

// ParseScoreOriginator validates and returns a ScoreOriginator.
func ParseScoreOriginator(v string) (ScoreOriginator, error) {
	if err := nonBlank("score originator", v); err != nil {
		return "", err
	}
	return ScoreOriginator(v), nil
}

// ParseContributor validates and returns a Contributor.
func ParseContributor(v string) (Contributor, error) {
	if err := nonBlank("contributor", v); err != nil {
		return "", err
	}
	return Contributor(v), nil
}

// ParseProject validates and returns a Project.
func ParseProject(v string) (Project, error) {
	if err := nonBlank("project", v); err != nil {
		return "", err
	}
	return Project(v), nil
}

// ParseContributionID validates and returns a ContributionID.
func ParseContributionID(v string) (ContributionID, error) {
	if err := nonBlank("contribution id", v); err != nil {
		return "", err
	}
	return ContributionID(v), nil
}

func nonBlank(kind, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%s: %w", kind, ErrBlankIdentifier)
	}
	return nil
}
