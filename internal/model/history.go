package model

import "time"

// ActionType is the kind of action stored in the history log.
type ActionType string

// History action types.
const (
	ActionClassification ActionType = "classification"
	ActionEmptyFolder    ActionType = "empty-folder"
)

// Empty-folder sub-actions stored in HistoryDetail.Action.
const (
	FolderActionDelete  = "delete"
	FolderActionRestore = "restore"
	FolderActionPurge   = "purge"
)

// HistoryDetail is the typed payload of a history entry.
type HistoryDetail struct {
	FilesMoved *int               `json:"files_moved,omitempty"`
	Action     string             `json:"action,omitempty"`
	Mode       ClassificationMode `json:"mode,omitempty"`
	Rules      []string           `json:"rules,omitempty"`
	Count      int                `json:"count,omitempty"`
	Cancelled  bool               `json:"cancelled,omitempty"`
}

// HistoryEntry is one recorded action.
type HistoryEntry struct {
	Timestamp      time.Time     `json:"timestamp"`
	Type           ActionType    `json:"type"`
	SourcePath     string        `json:"source_path,omitempty"`
	DestPath       string        `json:"dest_path,omitempty"`
	QuarantinePath string        `json:"quarantine_path,omitempty"`
	Detail         HistoryDetail `json:"detail"`
	ID             int64         `json:"id"`
}

// Restorable reports whether the entry points at a quarantined directory.
func (e HistoryEntry) Restorable() bool {
	return e.Type == ActionEmptyFolder &&
		e.Detail.Action == FolderActionDelete &&
		e.QuarantinePath != ""
}
