package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zenshift/zenshift-backend/internal/models"
)

// ReviewRepo реализует хранилище отзывов о товарах.
type ReviewRepo struct {
	db *sql.DB
}

// NewReviewRepo создает репозиторий отзывов поверх общего подключения.
func NewReviewRepo(s *Storage) *ReviewRepo {
	return &ReviewRepo{db: s.DB}
}

const reviewColumns = `id, buyer_name, feedback_mark, review_text, is_verified_buyer,
	is_featured, product_id, created_at`

var (
	reviewFilters = map[string]string{
		"product_id": "product_id",
	}
	reviewSorts = map[string]string{
		"newest": "created_at DESC",
	}
)

// Create сохраняет новый отзыв и возвращает его идентификатор.
// Ссылочная целостность product_id обеспечивается внешним ключом базы.
func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) (string, error) {
	const op = "storage.ReviewRepo.Create"

	var id string
	query := `INSERT INTO reviews (buyer_name, feedback_mark, review_text,
			      is_verified_buyer, is_featured, product_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	if err := r.db.QueryRowContext(ctx, query,
		review.BuyerName, review.FeedbackMark, review.ReviewText,
		review.IsVerifiedBuyer, review.IsFeatured, review.ProductID).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Get возвращает отзыв по идентификатору.
func (r *ReviewRepo) Get(ctx context.Context, id string) (*models.Review, error) {
	const op = "storage.ReviewRepo.Get"

	row := r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	review, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return review, nil
}

// Update перезаписывает отзыв по идентификатору.
func (r *ReviewRepo) Update(ctx context.Context, id string, review *models.Review) error {
	const op = "storage.ReviewRepo.Update"

	query := `UPDATE reviews
		      SET buyer_name = $1, feedback_mark = $2, review_text = $3,
			      is_verified_buyer = $4, is_featured = $5, product_id = $6
		      WHERE id = $7`
	res, err := r.db.ExecContext(ctx, query,
		review.BuyerName, review.FeedbackMark, review.ReviewText,
		review.IsVerifiedBuyer, review.IsFeatured, review.ProductID, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// Delete удаляет отзыв по идентификатору.
func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.ReviewRepo.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// List возвращает страницу отзывов и общее количество по фильтру.
func (r *ReviewRepo) List(ctx context.Context, filter models.ListFilter) ([]*models.Review, int, error) {
	const op = "storage.ReviewRepo.List"

	where, countArgs := whereClause(filter, reviewFilters)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reviews`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	tail, args := listQuery(filter, reviewFilters, reviewSorts, "created_at DESC")
	rows, err := r.db.QueryContext(ctx, `SELECT `+reviewColumns+` FROM reviews`+tail, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, review)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

func scanReview(row rowScanner) (*models.Review, error) {
	review := &models.Review{}
	if err := row.Scan(&review.ID, &review.BuyerName, &review.FeedbackMark,
		&review.ReviewText, &review.IsVerifiedBuyer, &review.IsFeatured,
		&review.ProductID, &review.CreatedAt); err != nil {
		return nil, err
	}
	return review, nil
}
