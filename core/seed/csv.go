package seed

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mdip/config"
	"mdip/core/store"
	"mdip/core/utils"
)

// Sample data files, named after the tables they feed. Header rows use the
// column names.
const (
	incidentsFile = "cyber_incidents.csv"
	datasetsFile  = "datasets_metadata.csv"
	ticketsFile   = "it_tickets.csv"
)

// LoadSampleDataIfEmpty populates each empty collection from its CSV file in
// cfg.Seed.DataDir. A collection that already holds rows is left alone, so a
// restart never clobbers live data. Missing files are skipped.
func LoadSampleDataIfEmpty(ctx context.Context, db *sql.DB, cfg *config.AppConfig, logger *utils.Logger) error {
	dir := cfg.Seed.DataDir
	sla := store.SLAThresholds{
		Urgent: cfg.SLA.UrgentHours,
		High:   cfg.SLA.HighHours,
		Medium: cfg.SLA.MediumHours,
		Low:    cfg.SLA.LowHours,
	}

	incidents := store.NewIncidentsStore(db)
	if err := seedCollection(ctx, logger, filepath.Join(dir, incidentsFile), incidents.Count, func(rows []csvRow) error {
		records, err := incidentsFromRows(rows)
		if err != nil {
			return err
		}
		logger.Printf("seeding %d incidents", len(records))
		return incidents.ReplaceAll(ctx, records)
	}); err != nil {
		return err
	}

	datasets := store.NewDatasetsStore(db)
	if err := seedCollection(ctx, logger, filepath.Join(dir, datasetsFile), datasets.Count, func(rows []csvRow) error {
		records, err := datasetsFromRows(rows)
		if err != nil {
			return err
		}
		logger.Printf("seeding %d datasets", len(records))
		return datasets.ReplaceAll(ctx, records)
	}); err != nil {
		return err
	}

	tickets := store.NewTicketsStore(db, sla)
	return seedCollection(ctx, logger, filepath.Join(dir, ticketsFile), tickets.Count, func(rows []csvRow) error {
		records, err := ticketsFromRows(rows)
		if err != nil {
			return err
		}
		logger.Printf("seeding %d tickets", len(records))
		return tickets.ReplaceAll(ctx, records)
	})
}

// ReloadSampleData force-replaces every collection from the CSVs, the admin
// "reset demo data" path.
func ReloadSampleData(ctx context.Context, db *sql.DB, cfg *config.AppConfig, logger *utils.Logger) (map[string]int, error) {
	dir := cfg.Seed.DataDir
	sla := store.SLAThresholds{
		Urgent: cfg.SLA.UrgentHours,
		High:   cfg.SLA.HighHours,
		Medium: cfg.SLA.MediumHours,
		Low:    cfg.SLA.LowHours,
	}
	counts := map[string]int{}

	rows, err := readCSV(filepath.Join(dir, incidentsFile))
	if err != nil {
		return nil, err
	}
	if rows != nil {
		records, err := incidentsFromRows(rows)
		if err != nil {
			return nil, err
		}
		if err := store.NewIncidentsStore(db).ReplaceAll(ctx, records); err != nil {
			return nil, err
		}
		counts["incidents"] = len(records)
	}

	rows, err = readCSV(filepath.Join(dir, datasetsFile))
	if err != nil {
		return nil, err
	}
	if rows != nil {
		records, err := datasetsFromRows(rows)
		if err != nil {
			return nil, err
		}
		if err := store.NewDatasetsStore(db).ReplaceAll(ctx, records); err != nil {
			return nil, err
		}
		counts["datasets"] = len(records)
	}

	rows, err = readCSV(filepath.Join(dir, ticketsFile))
	if err != nil {
		return nil, err
	}
	if rows != nil {
		records, err := ticketsFromRows(rows)
		if err != nil {
			return nil, err
		}
		if err := store.NewTicketsStore(db, sla).ReplaceAll(ctx, records); err != nil {
			return nil, err
		}
		counts["tickets"] = len(records)
	}
	logger.Printf("sample data reloaded: %v", counts)
	return counts, nil
}

func seedCollection(ctx context.Context, logger *utils.Logger, path string, count func(context.Context) (int, error), load func([]csvRow) error) error {
	n, err := count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	rows, err := readCSV(path)
	if err != nil {
		return err
	}
	if rows == nil {
		logger.Printf("no sample file at %s, skipping", path)
		return nil
	}
	return load(rows)
}

// csvRow is one record keyed by header name, so column order in the file
// doesn't matter.
type csvRow map[string]string

func readCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}
	var rows []csvRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		row := csvRow{}
		for i, v := range rec {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r csvRow) timePtr(key string) (*time.Time, error) {
	v := r[key]
	if v == "" {
		return nil, nil
	}
	t, err := parseCSVTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r csvRow) time(key string) (time.Time, error) {
	v := r[key]
	if v == "" {
		return time.Time{}, nil
	}
	return parseCSVTime(v)
}

var csvTimeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCSVTime(v string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", v)
}

func (r csvRow) float(key string) (float64, error) {
	v := r[key]
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

func (r csvRow) int(key string) (int64, error) {
	v := r[key]
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

func incidentsFromRows(rows []csvRow) ([]store.Incident, error) {
	out := make([]store.Incident, 0, len(rows))
	for i, r := range rows {
		created, err := r.time("created_at")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		resolved, err := r.timePtr("resolved_at")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, store.Incident{
			ID:           r["incident_id"],
			Title:        r["title"],
			Description:  r["description"],
			ThreatType:   r["threat_type"],
			Severity:     r["severity"],
			Status:       r["status"],
			AssignedTo:   r["assigned_to"],
			CreatedAt:    created,
			ResolvedAt:   resolved,
			SourceIP:     r["source_ip"],
			TargetSystem: r["target_system"],
		})
	}
	return out, nil
}

func datasetsFromRows(rows []csvRow) ([]store.Dataset, error) {
	out := make([]store.Dataset, 0, len(rows))
	for i, r := range rows {
		uploaded, err := r.time("upload_date")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		accessed, err := r.timePtr("last_accessed")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		size, err := r.float("size_mb")
		if err != nil {
			return nil, fmt.Errorf("row %d: size_mb: %w", i+1, err)
		}
		rowCount, err := r.int("row_count")
		if err != nil {
			return nil, fmt.Errorf("row %d: row_count: %w", i+1, err)
		}
		colCount, err := r.int("column_count")
		if err != nil {
			return nil, fmt.Errorf("row %d: column_count: %w", i+1, err)
		}
		quality, err := r.float("quality_score")
		if err != nil {
			return nil, fmt.Errorf("row %d: quality_score: %w", i+1, err)
		}
		out = append(out, store.Dataset{
			ID:               r["dataset_id"],
			Name:             r["name"],
			Description:      r["description"],
			SourceDepartment: r["source_department"],
			FileFormat:       r["file_format"],
			SizeMB:           size,
			RowCount:         rowCount,
			ColumnCount:      colCount,
			UploadedBy:       r["uploaded_by"],
			UploadDate:       uploaded,
			LastAccessed:     accessed,
			QualityScore:     quality,
			Status:           r["status"],
			StorageLocation:  r["storage_location"],
		})
	}
	return out, nil
}

func ticketsFromRows(rows []csvRow) ([]store.Ticket, error) {
	out := make([]store.Ticket, 0, len(rows))
	for i, r := range rows {
		created, err := r.time("created_at")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		firstResp, err := r.timePtr("first_response_at")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		resolved, err := r.timePtr("resolved_at")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		var rating *int
		if v := r["satisfaction_rating"]; v != "" {
			n, err := r.int("satisfaction_rating")
			if err != nil {
				return nil, fmt.Errorf("row %d: satisfaction_rating: %w", i+1, err)
			}
			val := int(n)
			rating = &val
		}
		out = append(out, store.Ticket{
			ID:                 r["ticket_id"],
			Title:              r["title"],
			Description:        r["description"],
			Category:           r["category"],
			Priority:           r["priority"],
			Status:             r["status"],
			Requester:          r["requester"],
			AssignedTo:         r["assigned_to"],
			CreatedAt:          created,
			FirstResponseAt:    firstResp,
			ResolvedAt:         resolved,
			Department:         r["department"],
			SatisfactionRating: rating,
		})
	}
	return out, nil
}
