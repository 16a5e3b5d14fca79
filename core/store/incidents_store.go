package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type IncidentsStore interface {
	Create(ctx context.Context, in *Incident) error
	Get(ctx context.Context, id string) (*Incident, error)
	List(ctx context.Context) ([]Incident, error)
	Update(ctx context.Context, id string, patch IncidentPatch) (*Incident, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*IncidentStats, error)
	ReplaceAll(ctx context.Context, incidents []Incident) error
	Count(ctx context.Context) (int, error)
}

type incidentsStore struct {
	db *sql.DB
}

func NewIncidentsStore(db *sql.DB) IncidentsStore {
	return &incidentsStore{db: db}
}

const incidentColumns = `incident_id, title, description, threat_type, severity, status, assigned_to, created_at, resolved_at, resolution_time_hours, source_ip, target_system`

func (s *incidentsStore) Create(ctx context.Context, in *Incident) error {
	if err := in.normalize(time.Now()); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cyber_incidents(`+incidentColumns+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		in.ID, in.Title, in.Description, in.ThreatType, in.Severity, in.Status, in.AssignedTo,
		fmtTime(in.CreatedAt), fmtTimePtr(in.ResolvedAt), nullFloat(in.ResolutionTimeHours),
		in.SourceIP, in.TargetSystem)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: incident %s already exists", ErrValidation, in.ID)
	}
	return err
}

func (s *incidentsStore) Get(ctx context.Context, id string) (*Incident, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+incidentColumns+` FROM cyber_incidents WHERE incident_id=?`, id)
	in, err := scanIncident(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return in, err
}

func scanIncident(scan func(...any) error) (*Incident, error) {
	in := Incident{}
	var created string
	var resolved sql.NullString
	var hours sql.NullFloat64
	if err := scan(&in.ID, &in.Title, &in.Description, &in.ThreatType, &in.Severity, &in.Status,
		&in.AssignedTo, &created, &resolved, &hours, &in.SourceIP, &in.TargetSystem); err != nil {
		return nil, err
	}
	var err error
	if in.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if in.ResolvedAt, err = scanTimePtr(resolved); err != nil {
		return nil, err
	}
	if hours.Valid {
		h := hours.Float64
		in.ResolutionTimeHours = &h
	}
	in.Severity = normalizeEnum(in.Severity)
	in.Status = normalizeEnum(in.Status)
	return &in, nil
}

func (s *incidentsStore) List(ctx context.Context) ([]Incident, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+incidentColumns+` FROM cyber_incidents ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Incident
	for rows.Next() {
		in, err := scanIncident(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	return out, rows.Err()
}

// Update loads the record, applies the patch, re-validates and recomputes
// derived fields, then writes the whole row back. Concurrent updates are
// last-write-wins.
func (s *incidentsStore) Update(ctx context.Context, id string, patch IncidentPatch) (*Incident, error) {
	in, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(in)
	if err := in.normalize(time.Now()); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE cyber_incidents
		SET title=?, description=?, threat_type=?, severity=?, status=?, assigned_to=?,
		    created_at=?, resolved_at=?, resolution_time_hours=?, source_ip=?, target_system=?
		WHERE incident_id=?`,
		in.Title, in.Description, in.ThreatType, in.Severity, in.Status, in.AssignedTo,
		fmtTime(in.CreatedAt), fmtTimePtr(in.ResolvedAt), nullFloat(in.ResolutionTimeHours),
		in.SourceIP, in.TargetSystem, id)
	if err != nil {
		return nil, err
	}
	if err := requireRowAffected(res); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *incidentsStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cyber_incidents WHERE incident_id=?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *incidentsStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cyber_incidents`).Scan(&n)
	return n, err
}

// Stats is always computed from the live table, never cached.
func (s *incidentsStore) Stats(ctx context.Context) (*IncidentStats, error) {
	st := &IncidentStats{
		ByStatus:     map[string]int{},
		BySeverity:   map[string]int{},
		ByThreatType: map[string]int{},
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cyber_incidents`).Scan(&st.Total); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, s.db, `SELECT status, COUNT(*) FROM cyber_incidents GROUP BY status`, st.ByStatus); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, s.db, `SELECT severity, COUNT(*) FROM cyber_incidents GROUP BY severity`, st.BySeverity); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, s.db, `SELECT threat_type, COUNT(*) FROM cyber_incidents GROUP BY threat_type`, st.ByThreatType); err != nil {
		return nil, err
	}
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(resolution_time_hours) FROM cyber_incidents WHERE resolved_at IS NOT NULL`).Scan(&avg); err != nil {
		return nil, err
	}
	if avg.Valid {
		st.AvgResolutionHours = round2(avg.Float64)
	}
	return st, nil
}

func (s *incidentsStore) ReplaceAll(ctx context.Context, incidents []Incident) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cyber_incidents`); err != nil {
		tx.Rollback()
		return err
	}
	now := time.Now()
	for i := range incidents {
		in := &incidents[i]
		if err := in.normalize(now); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cyber_incidents(`+incidentColumns+`)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
			in.ID, in.Title, in.Description, in.ThreatType, in.Severity, in.Status, in.AssignedTo,
			fmtTime(in.CreatedAt), fmtTimePtr(in.ResolvedAt), nullFloat(in.ResolutionTimeHours),
			in.SourceIP, in.TargetSystem); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func groupCount(ctx context.Context, db *sql.DB, query string, into map[string]int) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key sql.NullString
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[normalizeEnum(key.String)] += n
	}
	return rows.Err()
}
