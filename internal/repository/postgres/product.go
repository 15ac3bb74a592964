package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

// ProductSource implements repository.ProductSource on the products table.
type ProductSource struct {
	db     DBTX
	tracer database.QueryTracer
}

// NewProductSource creates a PostgreSQL-backed product source.
func NewProductSource(db DBTX, tracer database.QueryTracer) *ProductSource {
	return &ProductSource{db: db, tracer: tracer}
}

const selectProducts = `
	SELECT id, category, brand, model, price, color, images, details,
	       specifications, rating, value, created_at
	FROM products
	ORDER BY created_at DESC NULLS LAST, id`

// FetchProducts returns every product, newest first.
func (s *ProductSource) FetchProducts(ctx context.Context) (products []domain.Product, err error) {
	ctx, done := s.tracer.Start(ctx, "select", selectProducts)
	defer func() { done(err) }()

	rows, err := s.db.Query(ctx, selectProducts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products = []domain.Product{}
	for rows.Next() {
		var (
			p         domain.Product
			id        string
			color     *string
			details   *string
			specsJSON []byte
			rating    *float64
			value     *string
			createdAt *time.Time
		)
		if err := rows.Scan(
			&id,
			&p.Category,
			&p.Brand,
			&p.Model,
			&p.Price,
			&color,
			&p.Images,
			&details,
			&specsJSON,
			&rating,
			&value,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		p.ID = domain.ProductID(id)
		if color != nil {
			p.Color = *color
		}
		if details != nil {
			p.Details = *details
		}
		if rating != nil {
			p.Rating = *rating
		}
		if value != nil {
			p.Value = *value
		}
		if createdAt != nil {
			p.CreatedAt = createdAt.UTC()
		}
		if p.Images == nil {
			p.Images = []string{}
		}
		if len(specsJSON) > 0 {
			// Specifications tolerates any shape, so this cannot fail.
			_ = json.Unmarshal(specsJSON, &p.Specifications)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// Ping checks the connection.
func (s *ProductSource) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Upsert writes products, replacing rows with the same id. It is used to
// seed the catalog.
func (s *ProductSource) Upsert(ctx context.Context, products []domain.Product) (err error) {
	query := `
		INSERT INTO products (id, category, brand, model, price, color, images, details,
		                      specifications, rating, value, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, NULLIF($8, ''), $9, $10, NULLIF($11, ''), $12)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			price = EXCLUDED.price,
			color = EXCLUDED.color,
			images = EXCLUDED.images,
			details = EXCLUDED.details,
			specifications = EXCLUDED.specifications,
			rating = EXCLUDED.rating,
			value = EXCLUDED.value,
			created_at = EXCLUDED.created_at`

	ctx, done := s.tracer.Start(ctx, "upsert", query)
	defer func() { done(err) }()

	for _, p := range products {
		specs, err := json.Marshal(p.Specifications)
		if err != nil {
			return fmt.Errorf("encode specifications of %s: %w", p.ID, err)
		}
		var createdAt *time.Time
		if p.HasCreatedAt() {
			createdAt = &p.CreatedAt
		}
		images := p.Images
		if images == nil {
			images = []string{}
		}
		if _, err := s.db.Exec(ctx, query,
			string(p.ID), p.Category, p.Brand, p.Model, p.Price, p.Color, images, p.Details,
			specs, p.Rating, p.Value, createdAt,
		); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
