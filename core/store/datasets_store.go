package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type DatasetsStore interface {
	Create(ctx context.Context, d *Dataset) error
	Get(ctx context.Context, id string) (*Dataset, error)
	List(ctx context.Context) ([]Dataset, error)
	Update(ctx context.Context, id string, patch DatasetPatch) (*Dataset, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*DatasetStats, error)
	ReplaceAll(ctx context.Context, datasets []Dataset) error
	Count(ctx context.Context) (int, error)
}

type datasetsStore struct {
	db *sql.DB
}

func NewDatasetsStore(db *sql.DB) DatasetsStore {
	return &datasetsStore{db: db}
}

const datasetColumns = `dataset_id, name, description, source_department, file_format, size_mb, row_count, column_count, uploaded_by, upload_date, last_accessed, quality_score, status, storage_location`

func (s *datasetsStore) Create(ctx context.Context, d *Dataset) error {
	if err := d.normalize(time.Now()); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO datasets_metadata(`+datasetColumns+`)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.ID, d.Name, d.Description, d.SourceDepartment, d.FileFormat,
		d.SizeMB, d.RowCount, d.ColumnCount, d.UploadedBy,
		fmtTime(d.UploadDate), fmtTimePtr(d.LastAccessed), d.QualityScore, d.Status, d.StorageLocation)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: dataset %s already exists", ErrValidation, d.ID)
	}
	return err
}

func (s *datasetsStore) Get(ctx context.Context, id string) (*Dataset, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+datasetColumns+` FROM datasets_metadata WHERE dataset_id=?`, id)
	d, err := scanDataset(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

func scanDataset(scan func(...any) error) (*Dataset, error) {
	d := Dataset{}
	var uploaded string
	var accessed sql.NullString
	if err := scan(&d.ID, &d.Name, &d.Description, &d.SourceDepartment, &d.FileFormat,
		&d.SizeMB, &d.RowCount, &d.ColumnCount, &d.UploadedBy,
		&uploaded, &accessed, &d.QualityScore, &d.Status, &d.StorageLocation); err != nil {
		return nil, err
	}
	var err error
	if d.UploadDate, err = parseTime(uploaded); err != nil {
		return nil, err
	}
	if d.LastAccessed, err = scanTimePtr(accessed); err != nil {
		return nil, err
	}
	d.Status = normalizeEnum(d.Status)
	d.computeNeedsArchiving(time.Now())
	return &d, nil
}

func (s *datasetsStore) List(ctx context.Context) ([]Dataset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+datasetColumns+` FROM datasets_metadata ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Dataset
	for rows.Next() {
		d, err := scanDataset(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func (s *datasetsStore) Update(ctx context.Context, id string, patch DatasetPatch) (*Dataset, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.apply(d)
	if err := d.normalize(time.Now()); err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE datasets_metadata
		SET name=?, description=?, source_department=?, file_format=?, size_mb=?,
		    row_count=?, column_count=?, uploaded_by=?, upload_date=?, last_accessed=?,
		    quality_score=?, status=?, storage_location=?
		WHERE dataset_id=?`,
		d.Name, d.Description, d.SourceDepartment, d.FileFormat, d.SizeMB,
		d.RowCount, d.ColumnCount, d.UploadedBy, fmtTime(d.UploadDate), fmtTimePtr(d.LastAccessed),
		d.QualityScore, d.Status, d.StorageLocation, id)
	if err != nil {
		return nil, err
	}
	if err := requireRowAffected(res); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *datasetsStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets_metadata WHERE dataset_id=?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *datasetsStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM datasets_metadata`).Scan(&n)
	return n, err
}

func (s *datasetsStore) Stats(ctx context.Context) (*DatasetStats, error) {
	st := &DatasetStats{
		ByDepartment: map[string]DepartmentUsage{},
		ByStatus:     map[string]int{},
	}
	var totalSize, avgQuality sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size_mb),0), AVG(quality_score)
		FROM datasets_metadata`).Scan(&st.Total, &totalSize, &avgQuality); err != nil {
		return nil, err
	}
	st.TotalSizeMB = round2(totalSize.Float64)
	st.TotalSizeGB = round2(totalSize.Float64 / 1024)
	if avgQuality.Valid {
		st.AvgQualityScore = round2(avgQuality.Float64)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_department, COUNT(*), COALESCE(SUM(size_mb),0)
		FROM datasets_metadata GROUP BY source_department`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dept sql.NullString
		var u DepartmentUsage
		if err := rows.Scan(&dept, &u.Count, &u.SizeMB); err != nil {
			return nil, err
		}
		u.SizeMB = round2(u.SizeMB)
		st.ByDepartment[dept.String] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := groupCount(ctx, s.db, `SELECT status, COUNT(*) FROM datasets_metadata GROUP BY status`, st.ByStatus); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *datasetsStore) ReplaceAll(ctx context.Context, datasets []Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM datasets_metadata`); err != nil {
		tx.Rollback()
		return err
	}
	now := time.Now()
	for i := range datasets {
		d := &datasets[i]
		if err := d.normalize(now); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO datasets_metadata(`+datasetColumns+`)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			d.ID, d.Name, d.Description, d.SourceDepartment, d.FileFormat,
			d.SizeMB, d.RowCount, d.ColumnCount, d.UploadedBy,
			fmtTime(d.UploadDate), fmtTimePtr(d.LastAccessed), d.QualityScore, d.Status, d.StorageLocation); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
