package seed

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"mdip/config"
	"mdip/core/store"
	"mdip/core/utils"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "test.db")}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func testConfig(t *testing.T, dataDir string) *config.AppConfig {
	t.Helper()
	return &config.AppConfig{
		Seed: config.SeedConfig{DataDir: dataDir},
		SLA:  config.SLAConfig{UrgentHours: 4, HighHours: 8, MediumHours: 24, LowHours: 72},
		Bootstrap: config.BootstrapConfig{
			AdminUsername: "admin",
			AdminPassword: "bootstrap-pass",
		},
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

const incidentsCSV = `incident_id,title,description,threat_type,severity,status,assigned_to,created_at,resolved_at,source_ip,target_system
INC-001,Phishing email,Spoofed invoice,Phishing,high,resolved,kim,2024-01-01T08:00:00,2024-01-02T08:00:00,10.0.0.5,mail
INC-002,Port scan,External scan,Reconnaissance,low,open,,2024-01-03T09:30:00,,203.0.113.9,edge
`

const datasetsCSV = `dataset_id,name,description,source_department,file_format,size_mb,row_count,column_count,uploaded_by,upload_date,last_accessed,quality_score,status,storage_location
DS-001,sales_2023,Annual sales,sales,parquet,250.5,100000,30,alice,2024-01-01T00:00:00,2024-02-01T00:00:00,92.5,active,s3://dw/sales
`

const ticketsCSV = `ticket_id,title,description,category,priority,status,requester,assigned_to,created_at,first_response_at,resolved_at,sla_met,department,satisfaction_rating
TK-001,VPN down,Cannot connect,network,urgent,resolved,bob,lee,2024-01-01T08:00:00,2024-01-01T08:30:00,2024-01-01T10:00:00,,engineering,5
TK-002,New laptop,Hardware request,hardware,low,open,carol,,2024-01-02T09:00:00,,,,finance,
`

func TestLoadSampleDataIfEmpty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, incidentsFile, incidentsCSV)
	writeFile(t, dir, datasetsFile, datasetsCSV)
	writeFile(t, dir, ticketsFile, ticketsCSV)
	cfg := testConfig(t, dir)
	logger := utils.NewLogger()

	if err := LoadSampleDataIfEmpty(ctx, db, cfg, logger); err != nil {
		t.Fatalf("load: %v", err)
	}

	incidents := store.NewIncidentsStore(db)
	list, err := incidents.List(ctx)
	if err != nil {
		t.Fatalf("list incidents: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 incidents, got %d", len(list))
	}
	if list[0].ID != "INC-001" || list[0].ResolutionTimeHours == nil || *list[0].ResolutionTimeHours != 24.0 {
		t.Fatalf("seeded incident derived fields wrong: %+v", list[0])
	}

	tickets := store.NewTicketsStore(db, store.SLAThresholds{Urgent: 4, High: 8, Medium: 24, Low: 72})
	tk, err := tickets.Get(ctx, "TK-001")
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}
	// 2h resolution on an urgent ticket meets the 4h deadline.
	if tk.SLAMet == nil || !*tk.SLAMet {
		t.Fatalf("seeded ticket sla verdict wrong: %+v", tk.SLAMet)
	}
	if tk.SatisfactionRating == nil || *tk.SatisfactionRating != 5 {
		t.Fatalf("satisfaction rating: %+v", tk.SatisfactionRating)
	}
}

func TestLoadSampleDataSkipsNonEmptyCollections(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	incidents := store.NewIncidentsStore(db)
	existing := store.Incident{ID: "KEEP-1", Title: "t", ThreatType: "DDoS", Severity: "low", Status: "open"}
	if err := incidents.Create(ctx, &existing); err != nil {
		t.Fatalf("create: %v", err)
	}

	dir := t.TempDir()
	writeFile(t, dir, incidentsFile, incidentsCSV)
	cfg := testConfig(t, dir)
	if err := LoadSampleDataIfEmpty(ctx, db, cfg, utils.NewLogger()); err != nil {
		t.Fatalf("load: %v", err)
	}
	list, err := incidents.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "KEEP-1" {
		t.Fatalf("non-empty collection was reseeded: %+v", list)
	}
}

func TestReloadSampleDataReplaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	incidents := store.NewIncidentsStore(db)
	existing := store.Incident{ID: "OLD-1", Title: "t", ThreatType: "DDoS", Severity: "low", Status: "open"}
	if err := incidents.Create(ctx, &existing); err != nil {
		t.Fatalf("create: %v", err)
	}

	dir := t.TempDir()
	writeFile(t, dir, incidentsFile, incidentsCSV)
	cfg := testConfig(t, dir)
	counts, err := ReloadSampleData(ctx, db, cfg, utils.NewLogger())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if counts["incidents"] != 2 {
		t.Fatalf("counts: %v", counts)
	}
	list, err := incidents.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "INC-001" {
		t.Fatalf("reload did not replace contents: %+v", list)
	}
}

func TestEnsureDefaultAdmin(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cfg := testConfig(t, "")
	logger := utils.NewLogger()

	if err := EnsureDefaultAdmin(ctx, db, cfg, logger); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	users := store.NewUsersStore(db)
	admin, err := users.FindByUsername(ctx, "admin")
	if err != nil || admin == nil {
		t.Fatalf("admin missing: %v %v", admin, err)
	}
	if admin.Role != store.RoleAdmin {
		t.Fatalf("role: %q", admin.Role)
	}

	// A second run must not create a duplicate or reset the password.
	if err := EnsureDefaultAdmin(ctx, db, cfg, logger); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	all, err := users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 user, got %d", len(all))
	}
}

func TestEnsureDefaultAdminSkippedWithoutPassword(t *testing.T) {
	db := openTestDB(t)
	cfg := testConfig(t, "")
	cfg.Bootstrap.AdminPassword = ""
	if err := EnsureDefaultAdmin(context.Background(), db, cfg, utils.NewLogger()); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	users := store.NewUsersStore(db)
	admin, err := users.FindByUsername(context.Background(), "admin")
	if err != nil || admin != nil {
		t.Fatalf("admin should not exist: %v %v", admin, err)
	}
}
