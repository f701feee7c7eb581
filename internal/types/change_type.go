package types

// Provenance tags recorded on every version row. Used for audit and
// history rendering only, never for branching logic.
const (
	ChangeTypePipeline   = "pipeline"
	ChangeTypeManualEdit = "manual_edit"
	ChangeTypeLLMEdit    = "llm_edit"
	ChangeTypeAccept     = "accept"
	ChangeTypeReject     = "reject"
	ChangeTypeRevert     = "revert"
)
