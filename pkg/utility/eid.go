package utility

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecutionID identifies one run of a pipeline in its logs.
type ExecutionID = uuid.UUID

var (
	executionID     ExecutionID
	executionIDOnce sync.Once
	executionIDMu   sync.RWMutex
)

func GetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {
		executionIDMu.Lock()
		defer executionIDMu.Unlock()
		executionID = uuid.Must(uuid.NewV7())
	})

	executionIDMu.RLock()
	defer executionIDMu.RUnlock()
	return executionID
}

func ResetExecutionID() ExecutionID {
	GetExecutionID()

	executionIDMu.Lock()
	defer executionIDMu.Unlock()

	executionID = uuid.Must(uuid.NewV7())
	return executionID
}

func ExecutionIDField() zap.Field {
	return zap.Stringer("execution_id", GetExecutionID())
}
