package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type TicketsStore interface {
	Create(ctx context.Context, t *Ticket) error
	Get(ctx context.Context, id string) (*Ticket, error)
	List(ctx context.Context) ([]Ticket, error)
	Update(ctx context.Context, id string, patch TicketPatch) (*Ticket, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*TicketStats, error)
	ReplaceAll(ctx context.Context, tickets []Ticket) error
	Count(ctx context.Context) (int, error)
}

type ticketsStore struct {
	db  *sql.DB
	sla SLAThresholds
}

func NewTicketsStore(db *sql.DB, sla SLAThresholds) TicketsStore {
	return &ticketsStore{db: db, sla: sla}
}

const ticketColumns = `ticket_id, title, description, category, priority, status, requester, assigned_to, created_at, first_response_at, resolved_at, resolution_time_hours, sla_met, department, satisfaction_rating`

func (s *ticketsStore) Create(ctx context.Context, t *Ticket) error {
	if err := t.normalize(time.Now(), s.sla); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO it_tickets(`+ticketColumns+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Title, t.Description, t.Category, t.Priority, t.Status, t.Requester, t.AssignedTo,
		fmtTime(t.CreatedAt), fmtTimePtr(t.FirstResponseAt), fmtTimePtr(t.ResolvedAt),
		nullFloat(t.ResolutionTimeHours), legacyBoolText(t.SLAMet), t.Department, nullInt(t.SatisfactionRating))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: ticket %s already exists", ErrValidation, t.ID)
	}
	return err
}

func (s *ticketsStore) Get(ctx context.Context, id string) (*Ticket, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM it_tickets WHERE ticket_id=?`, id)
	t, err := scanTicket(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

func scanTicket(scan func(...any) error) (*Ticket, error) {
	t := Ticket{}
	var created string
	var firstResp, resolved, slaMet sql.NullString
	var hours sql.NullFloat64
	var rating sql.NullInt64
	if err := scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Priority, &t.Status,
		&t.Requester, &t.AssignedTo, &created, &firstResp, &resolved, &hours, &slaMet,
		&t.Department, &rating); err != nil {
		return nil, err
	}
	var err error
	if t.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if t.FirstResponseAt, err = scanTimePtr(firstResp); err != nil {
		return nil, err
	}
	if t.ResolvedAt, err = scanTimePtr(resolved); err != nil {
		return nil, err
	}
	if hours.Valid {
		h := hours.Float64
		t.ResolutionTimeHours = &h
	}
	if slaMet.Valid {
		t.SLAMet = parseLegacyBool(slaMet.String)
	}
	if rating.Valid {
		r := int(rating.Int64)
		t.SatisfactionRating = &r
	}
	t.Priority = normalizeEnum(t.Priority)
	t.Status = normalizeEnum(t.Status)
	return &t, nil
}

func (s *ticketsStore) List(ctx context.Context) ([]Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM it_tickets ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (s *ticketsStore) Update(ctx context.Context, id string, patch TicketPatch) (*Ticket, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(t)
	if err := t.normalize(time.Now(), s.sla); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE it_tickets
		SET title=?, description=?, category=?, priority=?, status=?, requester=?, assigned_to=?,
		    created_at=?, first_response_at=?, resolved_at=?, resolution_time_hours=?, sla_met=?,
		    department=?, satisfaction_rating=?
		WHERE ticket_id=?`,
		t.Title, t.Description, t.Category, t.Priority, t.Status, t.Requester, t.AssignedTo,
		fmtTime(t.CreatedAt), fmtTimePtr(t.FirstResponseAt), fmtTimePtr(t.ResolvedAt),
		nullFloat(t.ResolutionTimeHours), legacyBoolText(t.SLAMet), t.Department, nullInt(t.SatisfactionRating), id)
	if err != nil {
		return nil, err
	}
	if err := requireRowAffected(res); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ticketsStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM it_tickets WHERE ticket_id=?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *ticketsStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM it_tickets`).Scan(&n)
	return n, err
}

func (s *ticketsStore) Stats(ctx context.Context) (*TicketStats, error) {
	st := &TicketStats{
		ByStatus:   map[string]int{},
		ByCategory: map[string]int{},
		ByAssignee: map[string]AssigneeLoad{},
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM it_tickets`).Scan(&st.Total); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, s.db, `SELECT status, COUNT(*) FROM it_tickets GROUP BY status`, st.ByStatus); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, s.db, `SELECT category, COUNT(*) FROM it_tickets GROUP BY category`, st.ByCategory); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT assigned_to, COUNT(*), AVG(resolution_time_hours)
		FROM it_tickets WHERE assigned_to != '' GROUP BY assigned_to`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var assignee string
		var load AssigneeLoad
		var avg sql.NullFloat64
		if err := rows.Scan(&assignee, &load.Count, &avg); err != nil {
			return nil, err
		}
		if avg.Valid {
			load.AvgResolutionHours = round2(avg.Float64)
		}
		st.ByAssignee[assignee] = load
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// SLA compliance counts only resolved tickets that carry a verdict.
	var met, judged int
	if err := s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN LOWER(sla_met) IN ('true','yes','1','t','y') THEN 1 ELSE 0 END),0),
			COALESCE(SUM(CASE WHEN sla_met IS NOT NULL AND sla_met != '' THEN 1 ELSE 0 END),0)
		FROM it_tickets`).Scan(&met, &judged); err != nil {
		return nil, err
	}
	if judged > 0 {
		st.SLACompliancePct = round2(float64(met) / float64(judged) * 100)
	}
	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(resolution_time_hours) FROM it_tickets WHERE resolved_at IS NOT NULL`).Scan(&avg); err != nil {
		return nil, err
	}
	if avg.Valid {
		st.AvgResolutionHours = round2(avg.Float64)
	}
	return st, nil
}

func (s *ticketsStore) ReplaceAll(ctx context.Context, tickets []Ticket) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM it_tickets`); err != nil {
		tx.Rollback()
		return err
	}
	now := time.Now()
	for i := range tickets {
		t := &tickets[i]
		if err := t.normalize(now, s.sla); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO it_tickets(`+ticketColumns+`)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			t.ID, t.Title, t.Description, t.Category, t.Priority, t.Status, t.Requester, t.AssignedTo,
			fmtTime(t.CreatedAt), fmtTimePtr(t.FirstResponseAt), fmtTimePtr(t.ResolvedAt),
			nullFloat(t.ResolutionTimeHours), legacyBoolText(t.SLAMet), t.Department, nullInt(t.SatisfactionRating)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
