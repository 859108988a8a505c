package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zenshift/zenshift-backend/internal/models"
)

// JournalRepo реализует хранилище записей журнала.
type JournalRepo struct {
	db *sql.DB
}

// NewJournalRepo создает репозиторий журналов поверх общего подключения.
func NewJournalRepo(s *Storage) *JournalRepo {
	return &JournalRepo{db: s.DB}
}

const journalColumns = `id, title, author, description, vertical, image_src, read_time,
	created_at, updated_at`

var (
	journalFilters = map[string]string{
		"vertical": "vertical",
	}
	journalSorts = map[string]string{
		"alphabetical": "title ASC",
		"newest":       "created_at DESC",
	}
)

// Create сохраняет новую запись журнала и возвращает её идентификатор.
func (r *JournalRepo) Create(ctx context.Context, j *models.Journal) (string, error) {
	const op = "storage.JournalRepo.Create"

	images, err := marshalJSON(j.ImageSrc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	query := `INSERT INTO journals (title, author, description, vertical, image_src, read_time)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := r.db.QueryRowContext(ctx, query,
		j.Title, j.Author, j.Description, j.Vertical, images,
		nullString(j.ReadTime)).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Get возвращает запись журнала по идентификатору.
func (r *JournalRepo) Get(ctx context.Context, id string) (*models.Journal, error) {
	const op = "storage.JournalRepo.Get"

	row := r.db.QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journals WHERE id = $1`, id)
	journal, err := scanJournal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return journal, nil
}

// Update перезаписывает запись журнала по идентификатору.
func (r *JournalRepo) Update(ctx context.Context, id string, j *models.Journal) error {
	const op = "storage.JournalRepo.Update"

	images, err := marshalJSON(j.ImageSrc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE journals
		      SET title = $1, author = $2, description = $3, vertical = $4,
			      image_src = $5, read_time = $6, updated_at = now()
		      WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		j.Title, j.Author, j.Description, j.Vertical, images, nullString(j.ReadTime), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// Delete удаляет запись журнала по идентификатору.
func (r *JournalRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.JournalRepo.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// List возвращает страницу записей журнала и общее количество по фильтру.
func (r *JournalRepo) List(ctx context.Context, filter models.ListFilter) ([]*models.Journal, int, error) {
	const op = "storage.JournalRepo.List"

	where, countArgs := whereClause(filter, journalFilters)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM journals`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	tail, args := listQuery(filter, journalFilters, journalSorts, "created_at DESC")
	rows, err := r.db.QueryContext(ctx, `SELECT `+journalColumns+` FROM journals`+tail, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Journal
	for rows.Next() {
		journal, err := scanJournal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, journal)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

func scanJournal(row rowScanner) (*models.Journal, error) {
	j := &models.Journal{}
	var (
		readTime sql.NullString
		images   []byte
	)
	if err := row.Scan(&j.ID, &j.Title, &j.Author, &j.Description, &j.Vertical,
		&images, &readTime, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.ReadTime = readTime.String
	if err := unmarshalJSON(images, &j.ImageSrc); err != nil {
		return nil, err
	}
	return j, nil
}
