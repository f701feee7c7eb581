package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/scaffoldlab/scaffold-backend/internal/types"
)

// HistoryEntry is one row of an entity's rendered version history,
// ordered oldest-first for display.
type HistoryEntry struct {
	VersionID     uuid.UUID `json:"version_id"`
	VersionNumber int       `json:"version_number"`
	Action        string    `json:"action"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	Content       string    `json:"content"`
}

// historyAction maps a version's provenance tag onto the closed set of
// display actions: init, approve, reject, manual_edit, llm_refine,
// revert.
func historyAction(changeType string) string {
	switch changeType {
	case types.ChangeTypePipeline:
		return "init"
	case types.ChangeTypeAccept:
		return "approve"
	case types.ChangeTypeReject:
		return "reject"
	case types.ChangeTypeManualEdit:
		return "manual_edit"
	case types.ChangeTypeLLMEdit:
		return "llm_refine"
	case types.ChangeTypeRevert:
		return "revert"
	default:
		return changeType
	}
}
