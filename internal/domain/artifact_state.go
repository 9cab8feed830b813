package domain

// ArtifactKind names the three on-disk artifact variants that the Artifact
// Merger produces, each with its own merge rule (spec §4.8).
type ArtifactKind string

const (
	ArtifactKindNarrative ArtifactKind = "narrative"
	ArtifactKindChangelog ArtifactKind = "changelog"
	ArtifactKindDailyLog  ArtifactKind = "daily-log"
)
