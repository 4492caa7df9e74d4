package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskCRMSync = "crm.sync"

type CRMSyncPayload struct {
	LeadID string `json:"leadId"`
	Target string `json:"target"`
}

func NewCRMSyncTask(payload CRMSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCRMSync, data), nil
}

func ParseCRMSyncPayload(task *asynq.Task) (CRMSyncPayload, error) {
	var payload CRMSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CRMSyncPayload{}, err
	}
	return payload, nil
}
