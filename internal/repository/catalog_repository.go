package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
)

// productColumns is the summary projection: no image blob, brand joined in.
const productColumns = `p.id, p.supplier_id, p.brand_id, p.name, p.ean, p.price, p.original_price, p.created_at,
       b.name AS brand_name, b.color AS brand_color`

// CatalogRepository reads products, icons, brands and promo images. The
// admin CRUD for these lives in another system; this API only resolves them.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ProductByID loads one product summary with its icons.
func (r *CatalogRepository) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.GetContext(ctx, &product,
		`SELECT `+productColumns+` FROM products p LEFT JOIN brands b ON b.id = p.brand_id WHERE p.id = $1`,
		id); err != nil {
		return nil, err
	}
	icons, err := r.iconsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	product.Icons = icons[id]
	return &product, nil
}

// ProductsByIDs loads product summaries keyed by id, icons included.
func (r *CatalogRepository) ProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	if len(ids) == 0 {
		return map[string]models.Product{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT `+productColumns+` FROM products p LEFT JOIN brands b ON b.id = p.brand_id WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build products query: %w", err)
	}
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	icons, err := r.iconsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make(map[string]models.Product, len(products))
	for _, product := range products {
		product.Icons = icons[product.ID]
		result[product.ID] = product
	}
	return result, nil
}

// ProductImagesByIDs loads only id → (image, mime) pairs for PDF rendering.
func (r *CatalogRepository) ProductImagesByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	if len(ids) == 0 {
		return map[string]models.Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, supplier_id, name, ean, price, image, image_mime FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build product images query: %w", err)
	}
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load product images: %w", err)
	}
	result := make(map[string]models.Product, len(products))
	for _, product := range products {
		result[product.ID] = product
	}
	return result, nil
}

func (r *CatalogRepository) iconsFor(ctx context.Context, productIDs []string) (map[string][]models.ProductIcon, error) {
	query, args, err := sqlx.In(
		`SELECT id, product_id, name, is_energy_class, image_url FROM product_icons WHERE product_id IN (?)`,
		productIDs)
	if err != nil {
		return nil, fmt.Errorf("build icons query: %w", err)
	}
	var icons []models.ProductIcon
	if err := r.db.SelectContext(ctx, &icons, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load product icons: %w", err)
	}
	result := make(map[string][]models.ProductIcon)
	for _, icon := range icons {
		result[icon.ProductID] = append(result[icon.ProductID], icon)
	}
	return result, nil
}

// PromoByID loads one promo image without its binary payload.
func (r *CatalogRepository) PromoByID(ctx context.Context, id string) (*models.PromoImage, error) {
	var promo models.PromoImage
	if err := r.db.GetContext(ctx, &promo,
		`SELECT id, supplier_id, brand_id, name, size, fill_date, created_at FROM promo_images WHERE id = $1`,
		id); err != nil {
		return nil, err
	}
	return &promo, nil
}

// PromosByIDs loads promo summaries keyed by id.
func (r *CatalogRepository) PromosByIDs(ctx context.Context, ids []string) (map[string]models.PromoImage, error) {
	if len(ids) == 0 {
		return map[string]models.PromoImage{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT id, supplier_id, brand_id, name, size, fill_date, created_at FROM promo_images WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build promos query: %w", err)
	}
	var promos []models.PromoImage
	if err := r.db.SelectContext(ctx, &promos, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load promos: %w", err)
	}
	result := make(map[string]models.PromoImage, len(promos))
	for _, promo := range promos {
		result[promo.ID] = promo
	}
	return result, nil
}

// PromoImagesByIDs loads promo binaries for PDF rendering.
func (r *CatalogRepository) PromoImagesByIDs(ctx context.Context, ids []string) (map[string]models.PromoImage, error) {
	if len(ids) == 0 {
		return map[string]models.PromoImage{}, nil
	}
	query, args, err := sqlx.In(
		`SELECT id, supplier_id, brand_id, name, size, fill_date, image, image_mime FROM promo_images WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build promo images query: %w", err)
	}
	var promos []models.PromoImage
	if err := r.db.SelectContext(ctx, &promos, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load promo images: %w", err)
	}
	result := make(map[string]models.PromoImage, len(promos))
	for _, promo := range promos {
		result[promo.ID] = promo
	}
	return result, nil
}

// SupplierSharesBrand reports whether the supplier is linked to the brand.
func (r *CatalogRepository) SupplierSharesBrand(ctx context.Context, supplierID, brandID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM supplier_brands WHERE supplier_id = $1 AND brand_id = $2`,
		supplierID, brandID); err != nil {
		return false, fmt.Errorf("check supplier brand: %w", err)
	}
	return count > 0, nil
}
