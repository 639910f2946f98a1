package domain

import "time"

type AuditAction string

const (
	AuditDocumentUploaded AuditAction = "DOCUMENT_UPLOADED"
	AuditDocumentDeleted  AuditAction = "DOCUMENT_DELETED"
	AuditWorkflowCreated  AuditAction = "WORKFLOW_CREATED"
	AuditWorkflowUpdated  AuditAction = "WORKFLOW_UPDATED"
	AuditWorkflowDeleted  AuditAction = "WORKFLOW_DELETED"
	AuditWorkflowToggled  AuditAction = "WORKFLOW_TOGGLED"
	AuditWorkflowFired    AuditAction = "WORKFLOW_TRIGGERED"
)

// AuditEntry records one security- or workflow-relevant action.
type AuditEntry struct {
	ID           string            `json:"id"`
	Actor        string            `json:"actor"`
	Action       AuditAction       `json:"action"`
	ResourceType string            `json:"resource_type,omitempty"`
	ResourceID   string            `json:"resource_id,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// AuditFilter narrows audit log listings. Zero values mean "no filter".
type AuditFilter struct {
	Action       AuditAction
	ResourceType string
}
