package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zenshift/zenshift-backend/internal/models"
)

// BlogPostRepo реализует хранилище публикаций блога.
type BlogPostRepo struct {
	db *sql.DB
}

// NewBlogPostRepo создает репозиторий публикаций поверх общего подключения.
func NewBlogPostRepo(s *Storage) *BlogPostRepo {
	return &BlogPostRepo{db: s.DB}
}

const blogPostColumns = `id, title, description, vertical, image_src, read_time,
	created_at, updated_at`

var (
	blogPostFilters = map[string]string{
		"vertical": "vertical",
	}
	blogPostSorts = map[string]string{
		"alphabetical": "title ASC",
		"newest":       "created_at DESC",
	}
)

// Create сохраняет новую публикацию и возвращает её идентификатор.
func (r *BlogPostRepo) Create(ctx context.Context, b *models.BlogPost) (string, error) {
	const op = "storage.BlogPostRepo.Create"

	images, err := marshalJSON(b.ImageSrc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	query := `INSERT INTO blogposts (title, description, vertical, image_src, read_time)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id;`
	if err := r.db.QueryRowContext(ctx, query,
		b.Title, b.Description, b.Vertical, images, nullString(b.ReadTime)).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Get возвращает публикацию по идентификатору.
func (r *BlogPostRepo) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	const op = "storage.BlogPostRepo.Get"

	row := r.db.QueryRowContext(ctx, `SELECT `+blogPostColumns+` FROM blogposts WHERE id = $1`, id)
	post, err := scanBlogPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return post, nil
}

// Update перезаписывает публикацию по идентификатору.
func (r *BlogPostRepo) Update(ctx context.Context, id string, b *models.BlogPost) error {
	const op = "storage.BlogPostRepo.Update"

	images, err := marshalJSON(b.ImageSrc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE blogposts
		      SET title = $1, description = $2, vertical = $3,
			      image_src = $4, read_time = $5, updated_at = now()
		      WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		b.Title, b.Description, b.Vertical, images, nullString(b.ReadTime), id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// Delete удаляет публикацию по идентификатору.
func (r *BlogPostRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.BlogPostRepo.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM blogposts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// List возвращает страницу публикаций и общее количество по фильтру.
func (r *BlogPostRepo) List(ctx context.Context, filter models.ListFilter) ([]*models.BlogPost, int, error) {
	const op = "storage.BlogPostRepo.List"

	where, countArgs := whereClause(filter, blogPostFilters)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM blogposts`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	tail, args := listQuery(filter, blogPostFilters, blogPostSorts, "created_at DESC")
	rows, err := r.db.QueryContext(ctx, `SELECT `+blogPostColumns+` FROM blogposts`+tail, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.BlogPost
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, post)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

func scanBlogPost(row rowScanner) (*models.BlogPost, error) {
	b := &models.BlogPost{}
	var (
		readTime sql.NullString
		images   []byte
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Description, &b.Vertical,
		&images, &readTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.ReadTime = readTime.String
	if err := unmarshalJSON(images, &b.ImageSrc); err != nil {
		return nil, err
	}
	return b, nil
}
