package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIncidentLifecycle(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &Incident{
		ID:         "INC-1",
		Title:      "Phishing wave",
		ThreatType: "Phishing",
		Severity:   "high",
		Status:     "open",
		CreatedAt:  created,
	}
	if err := incidents.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if in.ResolutionTimeHours != nil {
		t.Fatal("open incident must not carry resolution hours")
	}

	resolved := created.Add(24 * time.Hour)
	status := "resolved"
	got, err := incidents.Update(ctx, "INC-1", IncidentPatch{Status: &status, ResolvedAt: &resolved})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ResolutionTimeHours == nil || *got.ResolutionTimeHours != 24.0 {
		t.Fatalf("expected 24.0 resolution hours, got %v", got.ResolutionTimeHours)
	}

	// Reopening clears the resolution fields.
	status = "investigating"
	got, err = incidents.Update(ctx, "INC-1", IncidentPatch{Status: &status})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got.ResolvedAt != nil || got.ResolutionTimeHours != nil {
		t.Fatalf("reopened incident kept resolution fields: %+v", got)
	}
}

func TestIncidentResolvedStampsNow(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	in := &Incident{ID: "INC-2", Title: "Malware", ThreatType: "Malware", Severity: "critical", Status: "resolved"}
	before := time.Now().UTC()
	if err := incidents.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if in.ResolvedAt == nil {
		t.Fatal("resolved incident without timestamp must be stamped")
	}
	if in.ResolvedAt.Before(before.Add(-time.Minute)) {
		t.Fatalf("stamp too old: %v", in.ResolvedAt)
	}
}

func TestIncidentValidation(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	cases := []Incident{
		{ID: "", Title: "x", ThreatType: "Phishing", Severity: "low", Status: "open"},
		{ID: "INC-3", Title: "x", ThreatType: "Phishing", Severity: "extreme", Status: "open"},
		{ID: "INC-4", Title: "x", ThreatType: "Phishing", Severity: "low", Status: "done"},
	}
	for i := range cases {
		if err := incidents.Create(ctx, &cases[i]); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}

	// resolved_at on a non-resolved status is rejected.
	now := time.Now().UTC()
	bad := Incident{ID: "INC-5", Title: "x", ThreatType: "Phishing", Severity: "low", Status: "open", ResolvedAt: &now}
	if err := incidents.Create(ctx, &bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for resolved_at on open incident, got %v", err)
	}
}

func TestIncidentDuplicateID(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	a := Incident{ID: "INC-9", Title: "a", ThreatType: "DDoS", Severity: "low", Status: "open"}
	if err := incidents.Create(ctx, &a); err != nil {
		t.Fatalf("create: %v", err)
	}
	b := Incident{ID: "INC-9", Title: "b", ThreatType: "DDoS", Severity: "low", Status: "open"}
	if err := incidents.Create(ctx, &b); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation on duplicate id, got %v", err)
	}
}

func TestIncidentDeleteNotIdempotent(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	in := Incident{ID: "INC-10", Title: "a", ThreatType: "DDoS", Severity: "low", Status: "open"}
	if err := incidents.Create(ctx, &in); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := incidents.Delete(ctx, "INC-10"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := incidents.Delete(ctx, "INC-10"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if _, err := incidents.Get(ctx, "INC-10"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: expected ErrNotFound, got %v", err)
	}
}

func TestIncidentListInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	// Insertion order wins even when created_at runs backwards.
	times := []time.Time{
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, ts := range times {
		in := Incident{ID: "INC-" + string(rune('A'+i)), Title: "t", ThreatType: "Phishing", Severity: "low", Status: "open", CreatedAt: ts}
		if err := incidents.Create(ctx, &in); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	list, err := incidents.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 incidents, got %d", len(list))
	}
	for i, want := range []string{"INC-A", "INC-B", "INC-C"} {
		if list[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, list[i].ID)
		}
	}
}

func TestIncidentStats(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	empty, err := incidents.Stats(ctx)
	if err != nil {
		t.Fatalf("stats on empty table: %v", err)
	}
	if empty.Total != 0 || empty.AvgResolutionHours != 0 || len(empty.ByStatus) != 0 {
		t.Fatalf("empty stats not zeroed: %+v", empty)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res1 := base.Add(10 * time.Hour)
	res2 := base.Add(30 * time.Hour)
	seed := []Incident{
		{ID: "S-1", Title: "t", ThreatType: "Phishing", Severity: "high", Status: "resolved", CreatedAt: base, ResolvedAt: &res1},
		{ID: "S-2", Title: "t", ThreatType: "Phishing", Severity: "low", Status: "closed", CreatedAt: base, ResolvedAt: &res2},
		{ID: "S-3", Title: "t", ThreatType: "Malware", Severity: "high", Status: "open", CreatedAt: base},
	}
	for i := range seed {
		if err := incidents.Create(ctx, &seed[i]); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	st, err := incidents.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 3 {
		t.Fatalf("total: got %d", st.Total)
	}
	if st.ByThreatType["phishing"] != 2 || st.ByThreatType["malware"] != 1 {
		t.Fatalf("by_threat_type: %v", st.ByThreatType)
	}
	if st.BySeverity["high"] != 2 {
		t.Fatalf("by_severity: %v", st.BySeverity)
	}
	if st.AvgResolutionHours != 20.0 {
		t.Fatalf("avg_resolution_hours: got %v, want 20.0", st.AvgResolutionHours)
	}
}

func TestIncidentReplaceAll(t *testing.T) {
	db := openTestDB(t)
	incidents := NewIncidentsStore(db)
	ctx := context.Background()

	old := Incident{ID: "OLD-1", Title: "t", ThreatType: "Phishing", Severity: "low", Status: "open"}
	if err := incidents.Create(ctx, &old); err != nil {
		t.Fatalf("create: %v", err)
	}
	fresh := []Incident{
		{ID: "NEW-1", Title: "t", ThreatType: "DDoS", Severity: "low", Status: "open"},
		{ID: "NEW-2", Title: "t", ThreatType: "DDoS", Severity: "low", Status: "open"},
	}
	if err := incidents.ReplaceAll(ctx, fresh); err != nil {
		t.Fatalf("replace all: %v", err)
	}
	list, err := incidents.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "NEW-1" {
		t.Fatalf("replace did not swap contents: %+v", list)
	}
}
