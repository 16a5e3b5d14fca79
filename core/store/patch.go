package store

import "time"

// Partial updates are explicit structs enumerating the mutable fields of each
// entity. Derived fields (resolution hours, sla_met, needs_archiving) and the
// record id cannot be patched; they are recomputed from their inputs on every
// write. Handlers decode patches with DisallowUnknownFields so an unknown key
// is a validation error, not a silent drop.

type IncidentPatch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	ThreatType   *string    `json:"threat_type,omitempty"`
	Severity     *string    `json:"severity,omitempty"`
	Status       *string    `json:"status,omitempty"`
	AssignedTo   *string    `json:"assigned_to,omitempty"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
	SourceIP     *string    `json:"source_ip,omitempty"`
	TargetSystem *string    `json:"target_system,omitempty"`
}

func (p IncidentPatch) apply(in *Incident) {
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.ThreatType != nil {
		in.ThreatType = *p.ThreatType
	}
	if p.Severity != nil {
		in.Severity = *p.Severity
	}
	if p.Status != nil {
		in.Status = normalizeEnum(*p.Status)
		// Reopening clears the resolution timestamp; normalize recomputes
		// the derived hours accordingly.
		if in.Status != "resolved" && in.Status != "closed" {
			in.ResolvedAt = nil
		}
	}
	if p.AssignedTo != nil {
		in.AssignedTo = *p.AssignedTo
	}
	if p.ResolvedAt != nil {
		t := p.ResolvedAt.UTC()
		in.ResolvedAt = &t
	}
	if p.SourceIP != nil {
		in.SourceIP = *p.SourceIP
	}
	if p.TargetSystem != nil {
		in.TargetSystem = *p.TargetSystem
	}
}

type DatasetPatch struct {
	Name             *string    `json:"name,omitempty"`
	Description      *string    `json:"description,omitempty"`
	SourceDepartment *string    `json:"source_department,omitempty"`
	FileFormat       *string    `json:"file_format,omitempty"`
	SizeMB           *float64   `json:"size_mb,omitempty"`
	RowCount         *int64     `json:"row_count,omitempty"`
	ColumnCount      *int64     `json:"column_count,omitempty"`
	LastAccessed     *time.Time `json:"last_accessed,omitempty"`
	QualityScore     *float64   `json:"quality_score,omitempty"`
	Status           *string    `json:"status,omitempty"`
	StorageLocation  *string    `json:"storage_location,omitempty"`
}

func (p DatasetPatch) apply(d *Dataset) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.SourceDepartment != nil {
		d.SourceDepartment = *p.SourceDepartment
	}
	if p.FileFormat != nil {
		d.FileFormat = *p.FileFormat
	}
	if p.SizeMB != nil {
		d.SizeMB = *p.SizeMB
	}
	if p.RowCount != nil {
		d.RowCount = *p.RowCount
	}
	if p.ColumnCount != nil {
		d.ColumnCount = *p.ColumnCount
	}
	if p.LastAccessed != nil {
		t := p.LastAccessed.UTC()
		d.LastAccessed = &t
	}
	if p.QualityScore != nil {
		d.QualityScore = *p.QualityScore
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.StorageLocation != nil {
		d.StorageLocation = *p.StorageLocation
	}
}

type TicketPatch struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Category           *string    `json:"category,omitempty"`
	Priority           *string    `json:"priority,omitempty"`
	Status             *string    `json:"status,omitempty"`
	Requester          *string    `json:"requester,omitempty"`
	AssignedTo         *string    `json:"assigned_to,omitempty"`
	FirstResponseAt    *time.Time `json:"first_response_at,omitempty"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	Department         *string    `json:"department,omitempty"`
	SatisfactionRating *int       `json:"satisfaction_rating,omitempty"`
}

func (p TicketPatch) apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = normalizeEnum(*p.Status)
		if t.Status != "resolved" && t.Status != "closed" {
			t.ResolvedAt = nil
			t.SLAMet = nil
		}
	}
	if p.Requester != nil {
		t.Requester = *p.Requester
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.FirstResponseAt != nil {
		ts := p.FirstResponseAt.UTC()
		t.FirstResponseAt = &ts
	}
	if p.ResolvedAt != nil {
		ts := p.ResolvedAt.UTC()
		t.ResolvedAt = &ts
	}
	if p.Department != nil {
		t.Department = *p.Department
	}
	if p.SatisfactionRating != nil {
		v := *p.SatisfactionRating
		t.SatisfactionRating = &v
	}
}
