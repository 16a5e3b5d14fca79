package store

import (
	"fmt"
	"strings"
	"time"
)

// Roles understood by the platform. Every non-admin role owns exactly one
// record collection.
const (
	RoleAdmin         = "admin"
	RoleCybersecurity = "cybersecurity"
	RoleDatascience   = "datascience"
	RoleITOperations  = "it_operations"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleCybersecurity, RoleDatascience, RoleITOperations:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type SessionRecord struct {
	ID         string     `json:"id"`
	UserID     int64      `json:"user_id"`
	Username   string     `json:"username"`
	Role       string     `json:"role"`
	CSRFToken  string     `json:"-"`
	IP         string     `json:"ip"`
	UserAgent  string     `json:"user_agent"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt time.Time  `json:"last_seen_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Revoked    bool       `json:"revoked"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

type AuditEntry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// Incident severity and status enums.
var (
	incidentSeverities = []string{"low", "medium", "high", "critical"}
	incidentStatuses   = []string{"open", "investigating", "resolved", "closed"}
	datasetStatuses    = []string{"active", "archived", "deprecated"}
	ticketPriorities   = []string{"low", "medium", "high", "urgent"}
	ticketStatuses     = []string{"open", "in_progress", "waiting", "resolved", "closed"}
)

// Legacy exports used free-text labels; normalize them to the current enums.
var legacyEnumAliases = map[string]string{
	"in progress":      "in_progress",
	"waiting for user": "waiting",
}

func normalizeEnum(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if mapped, ok := legacyEnumAliases[v]; ok {
		return mapped
	}
	return v
}

func enumAllowed(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

type Incident struct {
	ID                  string     `json:"incident_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	ThreatType          string     `json:"threat_type"`
	Severity            string     `json:"severity"`
	Status              string     `json:"status"`
	AssignedTo          string     `json:"assigned_to"`
	CreatedAt           time.Time  `json:"created_at"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolutionTimeHours *float64   `json:"resolution_time_hours,omitempty"`
	SourceIP            string     `json:"source_ip"`
	TargetSystem        string     `json:"target_system"`
}

func (i *Incident) isResolved() bool {
	return i.Status == "resolved" || i.Status == "closed"
}

// normalize recomputes derived fields and checks the resolution invariant:
// resolved_at is present exactly when the status is resolved or closed, and
// the stored resolution time always equals resolved_at - created_at.
func (i *Incident) normalize(now time.Time) error {
	i.Severity = normalizeEnum(i.Severity)
	i.Status = normalizeEnum(i.Status)
	if i.CreatedAt.IsZero() {
		i.CreatedAt = now.UTC()
	}
	if strings.TrimSpace(i.ID) == "" || strings.TrimSpace(i.Title) == "" || strings.TrimSpace(i.ThreatType) == "" {
		return fmt.Errorf("%w: incident_id, title and threat_type are required", ErrValidation)
	}
	if !enumAllowed(i.Severity, incidentSeverities) {
		return fmt.Errorf("%w: unknown severity %q", ErrValidation, i.Severity)
	}
	if !enumAllowed(i.Status, incidentStatuses) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, i.Status)
	}
	if i.isResolved() && i.ResolvedAt == nil {
		t := now.UTC()
		i.ResolvedAt = &t
	}
	if !i.isResolved() {
		if i.ResolvedAt != nil {
			return fmt.Errorf("%w: resolved_at set while status is %q", ErrValidation, i.Status)
		}
		i.ResolutionTimeHours = nil
		return nil
	}
	if i.ResolvedAt.Before(i.CreatedAt) {
		return fmt.Errorf("%w: resolved_at precedes created_at", ErrValidation)
	}
	hours := round2(i.ResolvedAt.Sub(i.CreatedAt).Hours())
	i.ResolutionTimeHours = &hours
	return nil
}

type Dataset struct {
	ID               string     `json:"dataset_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	SourceDepartment string     `json:"source_department"`
	FileFormat       string     `json:"file_format"`
	SizeMB           float64    `json:"size_mb"`
	RowCount         int64      `json:"row_count"`
	ColumnCount      int64      `json:"column_count"`
	UploadedBy       string     `json:"uploaded_by"`
	UploadDate       time.Time  `json:"upload_date"`
	LastAccessed     *time.Time `json:"last_accessed,omitempty"`
	QualityScore     float64    `json:"quality_score"`
	Status           string     `json:"status"`
	StorageLocation  string     `json:"storage_location"`
	// NeedsArchiving is derived on read, never stored.
	NeedsArchiving bool `json:"needs_archiving"`
}

const (
	archiveAfter          = 90 * 24 * time.Hour
	largeDatasetSizeMB    = 500
	largeDatasetArchAfter = 30 * 24 * time.Hour
)

// computeNeedsArchiving: only active datasets are candidates; a dataset that
// was never accessed, or not accessed within the window, needs archiving.
// Large datasets get a shorter window.
func (d *Dataset) computeNeedsArchiving(now time.Time) {
	if d.Status != "active" {
		d.NeedsArchiving = false
		return
	}
	window := archiveAfter
	if d.SizeMB >= largeDatasetSizeMB {
		window = largeDatasetArchAfter
	}
	if d.LastAccessed == nil {
		d.NeedsArchiving = true
		return
	}
	d.NeedsArchiving = now.Sub(*d.LastAccessed) > window
}

func (d *Dataset) normalize(now time.Time) error {
	d.Status = normalizeEnum(d.Status)
	if d.Status == "" {
		d.Status = "active"
	}
	if d.UploadDate.IsZero() {
		d.UploadDate = now.UTC()
	}
	if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: dataset_id and name are required", ErrValidation)
	}
	if !enumAllowed(d.Status, datasetStatuses) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, d.Status)
	}
	if d.SizeMB < 0 {
		return fmt.Errorf("%w: size_mb must be non-negative", ErrValidation)
	}
	if d.QualityScore < 0 || d.QualityScore > 100 {
		return fmt.Errorf("%w: quality_score out of range", ErrValidation)
	}
	d.computeNeedsArchiving(now)
	return nil
}

type Ticket struct {
	ID                  string     `json:"ticket_id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Category            string     `json:"category"`
	Priority            string     `json:"priority"`
	Status              string     `json:"status"`
	Requester           string     `json:"requester"`
	AssignedTo          string     `json:"assigned_to"`
	CreatedAt           time.Time  `json:"created_at"`
	FirstResponseAt     *time.Time `json:"first_response_at,omitempty"`
	ResolvedAt          *time.Time `json:"resolved_at,omitempty"`
	ResolutionTimeHours *float64   `json:"resolution_time_hours,omitempty"`
	SLAMet              *bool      `json:"sla_met,omitempty"`
	Department          string     `json:"department"`
	SatisfactionRating  *int       `json:"satisfaction_rating,omitempty"`
}

// SLAThresholds maps ticket priority to the resolution deadline in hours.
type SLAThresholds struct {
	Urgent float64
	High   float64
	Medium float64
	Low    float64
}

func (s SLAThresholds) For(priority string) float64 {
	switch priority {
	case "urgent":
		return s.Urgent
	case "high":
		return s.High
	case "medium":
		return s.Medium
	default:
		return s.Low
	}
}

func (t *Ticket) isResolved() bool {
	return t.Status == "resolved" || t.Status == "closed"
}

func (t *Ticket) normalize(now time.Time, sla SLAThresholds) error {
	t.Priority = normalizeEnum(t.Priority)
	t.Status = normalizeEnum(t.Status)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now.UTC()
	}
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Title) == "" || strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("%w: ticket_id, title and category are required", ErrValidation)
	}
	if !enumAllowed(t.Priority, ticketPriorities) {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, t.Priority)
	}
	if !enumAllowed(t.Status, ticketStatuses) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	if t.SatisfactionRating != nil && (*t.SatisfactionRating < 1 || *t.SatisfactionRating > 5) {
		return fmt.Errorf("%w: satisfaction_rating must be 1..5", ErrValidation)
	}
	if t.FirstResponseAt != nil && t.FirstResponseAt.Before(t.CreatedAt) {
		return fmt.Errorf("%w: first_response_at precedes created_at", ErrValidation)
	}
	if t.isResolved() && t.ResolvedAt == nil {
		n := now.UTC()
		t.ResolvedAt = &n
	}
	if !t.isResolved() {
		if t.ResolvedAt != nil {
			return fmt.Errorf("%w: resolved_at set while status is %q", ErrValidation, t.Status)
		}
		t.ResolutionTimeHours = nil
		// A legacy sla_met read from disk is kept until timestamps exist to
		// recompute it; a fresh ticket has none.
		return nil
	}
	if t.ResolvedAt.Before(t.CreatedAt) {
		return fmt.Errorf("%w: resolved_at precedes created_at", ErrValidation)
	}
	hours := round2(t.ResolvedAt.Sub(t.CreatedAt).Hours())
	t.ResolutionTimeHours = &hours
	met := hours <= sla.For(t.Priority)
	t.SLAMet = &met
	return nil
}

// Stats shapes mirror what the dashboards have always displayed.

type IncidentStats struct {
	Total              int            `json:"total"`
	ByStatus           map[string]int `json:"by_status"`
	BySeverity         map[string]int `json:"by_severity"`
	ByThreatType       map[string]int `json:"by_threat_type"`
	AvgResolutionHours float64        `json:"avg_resolution_hours"`
}

type DepartmentUsage struct {
	Count  int     `json:"count"`
	SizeMB float64 `json:"size_mb"`
}

type DatasetStats struct {
	Total           int                        `json:"total"`
	TotalSizeMB     float64                    `json:"total_size_mb"`
	TotalSizeGB     float64                    `json:"total_size_gb"`
	ByDepartment    map[string]DepartmentUsage `json:"by_department"`
	ByStatus        map[string]int             `json:"by_status"`
	AvgQualityScore float64                    `json:"avg_quality_score"`
}

type AssigneeLoad struct {
	Count              int     `json:"count"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

type TicketStats struct {
	Total              int                     `json:"total"`
	ByStatus           map[string]int          `json:"by_status"`
	ByCategory         map[string]int          `json:"by_category"`
	ByAssignee         map[string]AssigneeLoad `json:"by_assignee"`
	SLACompliancePct   float64                 `json:"sla_compliance_pct"`
	AvgResolutionHours float64                 `json:"avg_resolution_hours"`
}
