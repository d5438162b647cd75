package models

// Contract lifecycle statuses, as emitted by the backend.
const (
	ContractUploading = "uploading"
	ContractAnalyzing = "analyzing"
	ContractPending   = "pending"
	ContractAnalyzed  = "analyzed"
	ContractCompleted = "completed"
	ContractFailed    = "failed"
)

// Risk statuses.
const (
	RiskPending    = "pending"
	RiskProcessing = "processing"
	RiskResolved   = "resolved"
)

// Risk severity levels (the backend's "type" field).
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Member statuses.
const (
	MemberActive   = "active"
	MemberInactive = "inactive"
	MemberPending  = "pending"
)
