package models

import (
	"time"
)

// -------------------------------------------------------
// Enums
// -------------------------------------------------------

// ExtractionSource records which path produced the document text.
type ExtractionSource string

const (
	SourceDigital ExtractionSource = "digital"
	SourceOCR     ExtractionSource = "ocr"
)

// RiskLevel is derived from the ESG total score ratio.
// A high signal score maps to LOW risk: the label describes ESG deficiency risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ESGCategory names one of the three scoring tables.
type ESGCategory string

const (
	CategoryEnvironmental ESGCategory = "environmental"
	CategorySocial        ESGCategory = "social"
	CategoryGovernance    ESGCategory = "governance"
)

// ApprovalStatus is the credit decision shown on a report.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// -------------------------------------------------------
// Extraction
// -------------------------------------------------------

// ExtractionResult is produced once per upload and never persisted.
type ExtractionResult struct {
	Text      string           `json:"text"`
	Source    ExtractionSource `json:"source"`
	PageCount int              `json:"pageCount"`
}

// PageImage is a rendered page owned by one OCR pass.
type PageImage struct {
	Path      string `json:"path"`
	PageIndex int    `json:"pageIndex"` // zero-based
}

// PageText is the OCR output for a single page.
type PageText struct {
	PageIndex  int     `json:"pageIndex"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0..1, zero when the engine reports none
}

// -------------------------------------------------------
// ESG
// -------------------------------------------------------

// ESGResult is a pure function of the scored text.
type ESGResult struct {
	Environmental   int                      `json:"environmental"`
	Social          int                      `json:"social"`
	Governance      int                      `json:"governance"`
	TotalScore      int                      `json:"totalScore"`
	RiskLevel       RiskLevel                `json:"riskLevel"`
	Insights        []string                 `json:"insights"`
	DetectedSignals map[ESGCategory][]string `json:"detectedSignals"`
}

// -------------------------------------------------------
// Reports
// -------------------------------------------------------

// Metric is a single labelled figure on a report.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Borrower carries the counterparty fields printed on a report.
// Empty fields are replaced with defaults at render time.
type Borrower struct {
	Name          string `json:"name,omitempty"`
	Industry      string `json:"industry,omitempty"`
	Jurisdiction  string `json:"jurisdiction,omitempty"`
	FacilityType  string `json:"facilityType,omitempty"`
	FacilityValue string `json:"facilityValue,omitempty"`
	CreditRating  string `json:"creditRating,omitempty"`
}

// AuditEntry is one line of a report's audit trail.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
}

// ReportData is the input to the report renderer.
type ReportData struct {
	Title          string         `json:"title"`
	Metrics        []Metric       `json:"metrics"`
	RiskScore      float64        `json:"riskScore"`
	Borrower       Borrower       `json:"borrower"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	AuditTrail     []AuditEntry   `json:"auditTrail"`
	ESG            *ESGResult     `json:"esg,omitempty"`
	Notes          string         `json:"notes,omitempty"` // markdown
}
