package events

import "github.com/mkravets/reposcout/internal/domain/models"

var RunCompletedTopic = "RunCompletedEvent"

type RunCompleted struct {
	Run models.JobRun
}
