package model

import "time"

// Contribution is a single change recorded in version-control history.
// Fields mirror the JSON-lines export consumed by the file source.
type Contribution struct {
	ID          ContributionID     `json:"id"`
	Project     Project            `json:"project"`
	Contributor Contributor        `json:"contributor"`
	Time        time.Time          `json:"time"`
	Message     string             `json:"message,omitempty"`
	Items       []ContributionItem `json:"items,omitempty"`
}

// ContributionItem is one file touched by a contribution.
type ContributionItem struct {
	Path            string `json:"path"`
	PreviousContent string `json:"previous_content,omitempty"`
	Content         string `json:"content,omitempty"`
}

// Validate reports whether the identifying fields are present.
func (c *Contribution) Validate() error {
	if _, err := ParseContributionID(string(c.ID)); err != nil {
		return err
	}
	if _, err := ParseProject(string(c.Project)); err != nil {
		return err
	}
	if _, err := ParseContributor(string(c.Contributor)); err != nil {
		return err
	}
	if c.Time.IsZero() {
		return ErrMissingTime
	}
	return nil
}
