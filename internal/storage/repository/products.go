package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zenshift/zenshift-backend/internal/models"
)

// ProductRepo реализует хранилище товаров каталога.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo создает репозиторий товаров поверх общего подключения.
func NewProductRepo(s *Storage) *ProductRepo {
	return &ProductRepo{db: s.DB}
}

const productColumns = `id, title, description, type, category, tools_type, image_src,
	rating, price, is_new_product, is_pick, details, created_at, updated_at`

var (
	productFilters = map[string]string{
		"type":       "type",
		"category":   "category",
		"tools_type": "tools_type",
	}
	productSorts = map[string]string{
		"alphabetical": "title ASC",
		"price":        "price ASC",
		"newest":       "created_at DESC",
	}
)

// Create сохраняет новый товар и возвращает его идентификатор.
func (r *ProductRepo) Create(ctx context.Context, p *models.Product) (string, error) {
	const op = "storage.ProductRepo.Create"

	images, err := marshalJSON(p.ImageSrc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	details, err := marshalJSON(p.Details)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var id string
	query := `INSERT INTO products (title, description, type, category, tools_type,
			      image_src, rating, price, is_new_product, is_pick, details)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id;`
	if err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, nullString(p.Type), nullString(p.Category),
		nullString(p.ToolsType), images, p.Rating, p.Price,
		p.IsNewProduct, p.IsPick, details).Scan(&id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Get возвращает товар по идентификатору.
func (r *ProductRepo) Get(ctx context.Context, id string) (*models.Product, error) {
	const op = "storage.ProductRepo.Get"

	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

// Update перезаписывает товар по идентификатору.
func (r *ProductRepo) Update(ctx context.Context, id string, p *models.Product) error {
	const op = "storage.ProductRepo.Update"

	images, err := marshalJSON(p.ImageSrc)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	details, err := marshalJSON(p.Details)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `UPDATE products
		      SET title = $1, description = $2, type = $3, category = $4, tools_type = $5,
			      image_src = $6, rating = $7, price = $8, is_new_product = $9,
			      is_pick = $10, details = $11, updated_at = now()
		      WHERE id = $12`
	res, err := r.db.ExecContext(ctx, query,
		p.Title, p.Description, nullString(p.Type), nullString(p.Category),
		nullString(p.ToolsType), images, p.Rating, p.Price,
		p.IsNewProduct, p.IsPick, details, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// Delete удаляет товар по идентификатору.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.ProductRepo.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// List возвращает страницу товаров и общее количество по фильтру.
func (r *ProductRepo) List(ctx context.Context, filter models.ListFilter) ([]*models.Product, int, error) {
	const op = "storage.ProductRepo.List"

	where, countArgs := whereClause(filter, productFilters)
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM products`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	tail, args := listQuery(filter, productFilters, productSorts, "created_at DESC")
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products`+tail, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, product)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return result, total, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	var (
		productType, category, toolsType sql.NullString
		images, details                  []byte
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &productType, &category,
		&toolsType, &images, &p.Rating, &p.Price, &p.IsNewProduct, &p.IsPick,
		&details, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Type = productType.String
	p.Category = category.String
	p.ToolsType = toolsType.String
	if err := unmarshalJSON(images, &p.ImageSrc); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(details, &p.Details); err != nil {
		return nil, err
	}
	return p, nil
}
