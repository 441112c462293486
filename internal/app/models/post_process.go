package models

// PostProcessOutcome is what a pass did with one pending document.
type PostProcessOutcome string

const (
	// OutcomeSkipped: no patient identifier, the document stays pending untouched.
	OutcomeSkipped PostProcessOutcome = "skipped"
	// OutcomeArchived: enrichment finished and the document moved to the archive.
	OutcomeArchived PostProcessOutcome = "archived"
	// OutcomeLeftPending: the household relationship could not be made yet.
	OutcomeLeftPending PostProcessOutcome = "left_pending"
	// OutcomeFailedArchived: processing failed and the archive failure policy applied.
	OutcomeFailedArchived PostProcessOutcome = "failed_archived"
	// OutcomeFailedRetained: processing failed and the retain failure policy applied.
	OutcomeFailedRetained PostProcessOutcome = "failed_retained"
	// OutcomeArchiveFailed: the document was ready to archive but the move failed.
	OutcomeArchiveFailed PostProcessOutcome = "archive_failed"
)

var PostProcessOutcomes = []PostProcessOutcome{
	OutcomeSkipped,
	OutcomeArchived,
	OutcomeLeftPending,
	OutcomeFailedArchived,
	OutcomeFailedRetained,
	OutcomeArchiveFailed,
}

// FailurePolicy decides where a document goes when its processing fails.
type FailurePolicy string

const (
	FailurePolicyArchive FailurePolicy = "archive"
	FailurePolicyRetain  FailurePolicy = "retain"
)
