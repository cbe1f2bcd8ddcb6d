package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bgskoro21/ecommerce-be/internal/domain"
	"github.com/bgskoro21/ecommerce-be/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, store_id, name, description, base_price, stock, has_variants, created_at, updated_at`

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts the product with its images, variants and options in
// one transaction.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	row := tx.QueryRow(ctx, `
		INSERT INTO products (store_id, name, description, base_price, stock, has_variants)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		p.StoreID, p.Name, p.Description, p.BasePrice, p.Stock, len(p.Variants) > 0,
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, err
	}

	if err = insertProductChildren(ctx, tx, created.ID, p); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	created.Images = p.Images
	created.Variants = p.Variants
	return created, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, input repository.ListProductsInput) ([]*domain.Product, int, error) {
	args := []any{input.StoreID}
	where := `store_id = $1`
	if input.Name != "" {
		args = append(args, "%"+input.Name+"%")
		where += ` AND name ILIKE $2`
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	offset := (input.Page - 1) * input.Size
	args = append(args, input.Size, offset)
	query := fmt.Sprintf(`
		SELECT `+productColumns+`
		FROM products
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, p := range products {
		if err := r.loadChildren(ctx, p); err != nil {
			return nil, 0, err
		}
	}
	return products, total, nil
}

// Update rewrites the product row and replaces images/variants when the
// caller supplies them, all in one transaction.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// has_variants only changes when the caller supplies a variant set;
	// an update that omits variants keeps the flag as is.
	var hasVariants *bool
	if p.Variants != nil {
		v := len(p.Variants) > 0
		hasVariants = &v
	}

	row := tx.QueryRow(ctx, `
		UPDATE products
		SET    name = $3, description = $4, base_price = $5, stock = $6,
		       has_variants = COALESCE($7, has_variants), updated_at = NOW()
		WHERE  id = $1 AND store_id = $2
		RETURNING `+productColumns,
		p.ID, p.StoreID, p.Name, p.Description, p.BasePrice, p.Stock, hasVariants,
	)
	updated, err := scanProduct(row)
	if err != nil {
		return nil, err
	}

	if p.Images != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, p.ID); err != nil {
			return nil, fmt.Errorf("delete product images: %w", err)
		}
	}
	if p.Variants != nil {
		if _, err = tx.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, p.ID); err != nil {
			return nil, fmt.Errorf("delete product variants: %w", err)
		}
	}
	if err = insertProductChildren(ctx, tx, p.ID, p); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	if err := r.loadChildren(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id, storeID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND store_id = $2`, id, storeID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// DeleteVariant removes one variant, scoped through its product to the
// owning store, and refreshes the product's has_variants flag in the
// same transaction.
func (r *ProductRepository) DeleteVariant(ctx context.Context, variantID, productID, storeID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		DELETE FROM product_variants v
		USING products p
		WHERE v.id = $1 AND v.product_id = $2
		  AND p.id = v.product_id AND p.store_id = $3`,
		variantID, productID, storeID)
	if err != nil {
		return fmt.Errorf("delete product variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrVariantNotFound
		return err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE products
		SET    has_variants = EXISTS (SELECT 1 FROM product_variants WHERE product_id = $1),
		       updated_at = NOW()
		WHERE  id = $1`,
		productID); err != nil {
		return fmt.Errorf("refresh has_variants: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertProductChildren(ctx context.Context, tx pgx.Tx, productID string, p *domain.Product) error {
	for _, img := range p.Images {
		if _, err := tx.Exec(ctx,
			`INSERT INTO product_images (product_id, image) VALUES ($1, $2)`,
			productID, img.Image,
		); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	for _, v := range p.Variants {
		var variantID string
		if err := tx.QueryRow(ctx, `
			INSERT INTO product_variants (product_id, price_adjustment, stock, image)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			productID, v.PriceAdjustment, v.Stock, v.Image,
		).Scan(&variantID); err != nil {
			return fmt.Errorf("insert product variant: %w", err)
		}

		for _, opt := range v.Options {
			if _, err := tx.Exec(ctx, `
				INSERT INTO product_variant_options (variant_id, variant_type_id, value)
				VALUES ($1, $2, $3)`,
				variantID, opt.VariantTypeID, opt.Value,
			); err != nil {
				return fmt.Errorf("insert variant option: %w", err)
			}
		}
	}
	return nil
}

func (r *ProductRepository) loadChildren(ctx context.Context, p *domain.Product) error {
	imgRows, err := r.pool.Query(ctx,
		`SELECT id, product_id, image FROM product_images WHERE product_id = $1 ORDER BY id`, p.ID)
	if err != nil {
		return fmt.Errorf("load product images: %w", err)
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var img domain.ProductImage
		if err := imgRows.Scan(&img.ID, &img.ProductID, &img.Image); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		p.Images = append(p.Images, img)
	}
	if err := imgRows.Err(); err != nil {
		return err
	}

	varRows, err := r.pool.Query(ctx, `
		SELECT id, product_id, price_adjustment, stock, image
		FROM product_variants WHERE product_id = $1 ORDER BY id`, p.ID)
	if err != nil {
		return fmt.Errorf("load product variants: %w", err)
	}
	defer varRows.Close()
	for varRows.Next() {
		var v domain.ProductVariant
		if err := varRows.Scan(&v.ID, &v.ProductID, &v.PriceAdjustment, &v.Stock, &v.Image); err != nil {
			return fmt.Errorf("scan product variant: %w", err)
		}
		p.Variants = append(p.Variants, v)
	}
	if err := varRows.Err(); err != nil {
		return err
	}

	for i := range p.Variants {
		optRows, err := r.pool.Query(ctx, `
			SELECT id, variant_id, variant_type_id, value
			FROM product_variant_options WHERE variant_id = $1 ORDER BY id`,
			p.Variants[i].ID)
		if err != nil {
			return fmt.Errorf("load variant options: %w", err)
		}
		for optRows.Next() {
			var o domain.VariantOption
			if err := optRows.Scan(&o.ID, &o.VariantID, &o.VariantTypeID, &o.Value); err != nil {
				optRows.Close()
				return fmt.Errorf("scan variant option: %w", err)
			}
			p.Variants[i].Options = append(p.Variants[i].Options, o)
		}
		optRows.Close()
		if err := optRows.Err(); err != nil {
			return err
		}
	}
	return nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Description, &p.BasePrice,
		&p.Stock, &p.HasVariants, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
