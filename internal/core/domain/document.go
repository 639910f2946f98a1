package domain

import "time"

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusError      DocumentStatus = "error"
)

// IsTerminal reports whether a document may never change status again.
// Workflow evaluation runs exactly once, on the transition into processed.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusProcessed || s == StatusError
}

type EntityType string

const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
	EntityDate         EntityType = "DATE"
	EntityTime         EntityType = "TIME"
	EntityMoney        EntityType = "MONEY"
	EntityPercentage   EntityType = "PERCENTAGE"
	EntityNumber       EntityType = "NUMBER"
	EntityEmail        EntityType = "EMAIL"
	EntityPhone        EntityType = "PHONE"
	EntityReference    EntityType = "REFERENCE_NUMBER"
	EntityOther        EntityType = "OTHER"
)

// Entity is a typed span of information extracted from a document.
// Entities are produced once at processing time and never mutated after.
type Entity struct {
	Type  EntityType `json:"type"`
	Value string     `json:"value"`
}

type Document struct {
	ID             string         `json:"id"`
	Filename       string         `json:"filename"`
	MimeType       string         `json:"mime_type"`
	FileSize       int64          `json:"file_size"`
	StoragePath    string         `json:"storage_path"`
	Folder         string         `json:"folder,omitempty"`
	Classification string         `json:"classification,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"`
	ExtractedText  string         `json:"-"`
	Tags           []string       `json:"tags"`
	Entities       []Entity       `json:"entities,omitempty"`
	Status         DocumentStatus `json:"status"`
	Error          string         `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// EntityValues returns the values of every entity of the given type,
// preserving extraction order.
func (d *Document) EntityValues(t EntityType) []string {
	var out []string
	for _, e := range d.Entities {
		if e.Type == t {
			out = append(out, e.Value)
		}
	}
	return out
}

// ProcessingResult is what the ML pipeline produces for one document.
type ProcessingResult struct {
	Text           string   `json:"text"`
	Classification string   `json:"classification"`
	Confidence     float64  `json:"confidence"`
	Entities       []Entity `json:"entities"`
}

// SearchHit is one scored document in a search result page.
type SearchHit struct {
	DocumentID     string    `json:"id"`
	Filename       string    `json:"filename"`
	Classification string    `json:"classification,omitempty"`
	Snippet        string    `json:"snippet"`
	Score          float64   `json:"score"`
	CreatedAt      time.Time `json:"created_at"`
}

// SearchQuery carries a full-text query plus optional filters.
type SearchQuery struct {
	Text           string
	Classification string
	EntityType     EntityType
	EntityValue    string
	Page           int
	PageSize       int
}

// DocumentFilter narrows list queries. Zero values mean "no filter".
type DocumentFilter struct {
	Classification string
	Status         DocumentStatus
}

// ClassificationStats maps classification label (or "unclassified") and
// status to document counts.
type ClassificationStats struct {
	ByClassification map[string]int `json:"by_classification"`
	ByStatus         map[string]int `json:"by_status"`
	Total            int            `json:"total"`
}
