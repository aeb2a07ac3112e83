package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"dots-marketplace/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, key, name, COALESCE(description, ''), price, artist_name, category, images, attributes, created_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Key, &p.Name, &p.Description, &p.Price, &p.ArtistName, &p.Category, &p.Images, &p.Attributes, &p.CreatedAt)
	return p, err
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if category = strings.TrimSpace(category); category != "" {
		q += ` WHERE lower(category) = lower($1)`
		args = append(args, category)
	}
	q += ` ORDER BY created_at DESC, key`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("product repo: list failed", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("product repo: list rows failed", zap.String("category", category), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("product repo: list", zap.String("category", category), zap.Int("count", len(result)))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id::text = $1 OR key = $1 LIMIT 1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, key, name, description, price, artist_name, category, images, attributes)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), $5, $6, $7, COALESCE($8, '[]'::jsonb), COALESCE($9, '{}'::jsonb))
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price = EXCLUDED.price,
    artist_name = EXCLUDED.artist_name,
    category = EXCLUDED.category,
    images = EXCLUDED.images,
    attributes = EXCLUDED.attributes
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Key,
		product.Name,
		product.Description,
		product.Price,
		product.ArtistName,
		product.Category,
		product.Images,
		product.Attributes,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("product repo: upsert failed", zap.String("key", product.Key), zap.Error(err))
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for key=%s existing_id=%s import_id=%s", product.Key, res.ID, product.ID)
	}
	r.logger.Debug("product repo: upserted", zap.String("key", res.Key), zap.String("id", res.ID))
	return &res, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchConditions renders the filter as SQL predicates with positional args.
func searchConditions(f domain.ProductFilter) ([]string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if f.Category != "" {
		add("lower(category) = lower($%d)", f.Category)
	}
	if f.Artist != "" {
		add("lower(artist_name) = lower($%d)", f.Artist)
	}
	if f.MinPrice > 0 {
		add("price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("price <= $%d", f.MaxPrice)
	}
	if f.Featured {
		conds = append(conds, `attributes->>'featured' = 'true'`)
	}
	if f.Search != "" {
		add(`(name ILIKE $%[1]d OR COALESCE(description, '') ILIKE $%[1]d OR EXISTS (
    SELECT 1 FROM jsonb_array_elements_text(
        CASE WHEN jsonb_typeof(attributes->'tags') = 'array' THEN attributes->'tags' ELSE '[]'::jsonb END
    ) AS tag WHERE tag ILIKE $%[1]d))`, "%"+likeEscaper.Replace(f.Search)+"%")
	}
	return conds, args
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// priceBandExpr maps price onto an index into domain.PriceBands.
func priceBandExpr() string {
	var b strings.Builder
	b.WriteString("CASE")
	last := len(domain.PriceBands) - 1
	for i, band := range domain.PriceBands[:last] {
		fmt.Fprintf(&b, " WHEN price < %d THEN %d", band.Max, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", last)
	return b.String()
}

func (r *postgresRepo) Search(ctx context.Context, f domain.ProductFilter) (domain.ProductPage, error) {
	conds, args := searchConditions(f)
	where := whereClause(conds)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		r.logger.Error("product repo: search count failed", zap.Error(err))
		return domain.ProductPage{}, err
	}

	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset())
	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY created_at DESC, key LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, q, pageArgs...)
	if err != nil {
		r.logger.Error("product repo: search failed", zap.Error(err))
		return domain.ProductPage{}, err
	}
	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return domain.ProductPage{}, err
		}
		products = append(products, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.ProductPage{}, err
	}

	facets, err := r.facets(ctx, conds, args)
	if err != nil {
		r.logger.Error("product repo: search facets failed", zap.Error(err))
		return domain.ProductPage{}, err
	}
	r.logger.Debug("product repo: search", zap.Int("total", total), zap.Int("page", f.Page))
	return domain.NewProductPage(f, products, total, facets), nil
}

func (r *postgresRepo) facets(ctx context.Context, conds []string, args []any) (domain.ProductFacets, error) {
	facets := domain.ProductFacets{Artists: []domain.Facet{}}

	artistConds := append(append([]string{}, conds...), "artist_name <> ''")
	rows, err := r.pool.Query(ctx,
		`SELECT artist_name, COUNT(*) FROM products`+whereClause(artistConds)+` GROUP BY artist_name ORDER BY artist_name`,
		args...)
	if err != nil {
		return facets, err
	}
	for rows.Next() {
		var f domain.Facet
		if err := rows.Scan(&f.Name, &f.Count); err != nil {
			rows.Close()
			return facets, err
		}
		facets.Artists = append(facets.Artists, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return facets, err
	}

	counts := make([]int, len(domain.PriceBands))
	rows, err = r.pool.Query(ctx,
		`SELECT `+priceBandExpr()+` AS band, COUNT(*) FROM products`+whereClause(conds)+` GROUP BY band`,
		args...)
	if err != nil {
		return facets, err
	}
	defer rows.Close()
	for rows.Next() {
		var band, n int
		if err := rows.Scan(&band, &n); err != nil {
			return facets, err
		}
		if band >= 0 && band < len(counts) {
			counts[band] = n
		}
	}
	if err := rows.Err(); err != nil {
		return facets, err
	}
	for i, b := range domain.PriceBands {
		facets.PriceRanges = append(facets.PriceRanges, domain.Facet{Name: b.Label, Count: counts[i]})
	}
	return facets, nil
}
