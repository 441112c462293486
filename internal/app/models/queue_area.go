package models

import "fmt"

// QueueArea is one of the storage areas a form document can live in. A document is in
// exactly one area at a time.
type QueueArea string

const (
	QueueAreaPending     QueueArea = "pending"
	QueueAreaArchive     QueueArea = "archive"
	QueueAreaError       QueueArea = "error"
	QueueAreaRetryIntake QueueArea = "retry-intake"
)

var QueueAreas = []QueueArea{
	QueueAreaPending,
	QueueAreaArchive,
	QueueAreaError,
	QueueAreaRetryIntake,
}

// queueTransitions lists the moves a document may make between areas. Archive is terminal.
// retry-intake -> error only exists to undo a resubmission that could not be completed.
var queueTransitions = map[QueueArea][]QueueArea{
	QueueAreaPending:     {QueueAreaArchive, QueueAreaError},
	QueueAreaError:       {QueueAreaRetryIntake},
	QueueAreaRetryIntake: {QueueAreaPending, QueueAreaError},
}

func (a QueueArea) Valid() bool {
	for _, area := range QueueAreas {
		if a == area {
			return true
		}
	}
	return false
}

func (a QueueArea) String() string {
	return string(a)
}

// CanMoveTo reports whether a document in a may be moved to target.
func (a QueueArea) CanMoveTo(target QueueArea) bool {
	for _, allowed := range queueTransitions[a] {
		if allowed == target {
			return true
		}
	}
	return false
}

func ParseQueueArea(value string) (QueueArea, error) {
	area := QueueArea(value)
	if !area.Valid() {
		return "", fmt.Errorf("unknown queue area %q", value)
	}
	return area, nil
}
