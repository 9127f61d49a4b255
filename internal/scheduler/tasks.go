package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskArchiveQuotePDF = "quotes.pdf.archive"

type ArchiveQuotePDFPayload struct {
	RunID string `json:"runId"`
}

func NewArchiveQuotePDFTask(payload ArchiveQuotePDFPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskArchiveQuotePDF, data), nil
}

func ParseArchiveQuotePDFPayload(task *asynq.Task) (ArchiveQuotePDFPayload, error) {
	var payload ArchiveQuotePDFPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ArchiveQuotePDFPayload{}, err
	}
	return payload, nil
}
