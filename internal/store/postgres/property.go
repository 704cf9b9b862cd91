package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postpata/pata/internal/domain"
)

const propertyColumns = `id, title, description, price, location, landlord_id, bedrooms, bathrooms, area,
	is_available, is_featured, is_approved, image_urls, created_at, updated_at`

type PropertyRepo struct {
	pool *pgxpool.Pool
}

func NewPropertyRepo(pool *pgxpool.Pool) *PropertyRepo {
	return &PropertyRepo{pool: pool}
}

func scanProperty(row pgx.CollectableRow) (*domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Location, &p.LandlordID,
		&p.Bedrooms, &p.Bathrooms, &p.Area,
		&p.IsAvailable, &p.IsFeatured, &p.IsApproved, &p.ImageURLs,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return &p, nil
}

func (r *PropertyRepo) Create(ctx context.Context, p *domain.Property) error {
	images := p.ImageURLs
	if images == nil {
		images = []string{}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO properties (`+propertyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.Title, p.Description, p.Price, p.Location, p.LandlordID,
		p.Bedrooms, p.Bathrooms, p.Area,
		p.IsAvailable, p.IsFeatured, p.IsApproved, images,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("propertyRepo.Create: %w", domain.ErrConflict)
		}
		return fmt.Errorf("propertyRepo.Create: %w", err)
	}

	return nil
}

func (r *PropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("propertyRepo.GetByID: %w", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProperty)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("propertyRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("propertyRepo.GetByID: %w", err)
	}

	return p, nil
}

// Update writes the content columns. Flags and images are not touched.
func (r *PropertyRepo) Update(ctx context.Context, p *domain.Property) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE properties SET title = $1, description = $2, price = $3, location = $4,
		        bedrooms = $5, bathrooms = $6, area = $7, updated_at = $8
		 WHERE id = $9`,
		p.Title, p.Description, p.Price, p.Location,
		p.Bedrooms, p.Bathrooms, p.Area, p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("propertyRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("propertyRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

// Delete removes the property and its dependent rows in one transaction.
func (r *PropertyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM maintenance_requests WHERE property_id = $1`, id); err != nil {
			return fmt.Errorf("maintenance: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE property_id = $1`, id); err != nil {
			return fmt.Errorf("payments: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("propertyRepo.Delete: %w", err)
	}

	return nil
}

// Query counts and reads one range in a single read-only snapshot so the
// total matches the rows the range was cut from.
func (r *PropertyRepo) Query(ctx context.Context, q domain.PropertyQuery) ([]*domain.Property, int, error) {
	where, args := buildPropertyWhere(q.Filter)

	var (
		total int64
		items []*domain.Property
	)
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := pgx.BeginTxFunc(ctx, r.pool, opts, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM properties`+where, args...).Scan(&total); err != nil {
			return fmt.Errorf("count: %w", err)
		}

		sql, pageArgs := pageClause(`SELECT `+propertyColumns+` FROM properties`+where+
			` ORDER BY created_at DESC, seq ASC`, args, q.Offset, q.Limit)
		rows, err := tx.Query(ctx, sql, pageArgs...)
		if err != nil {
			return fmt.Errorf("select: %w", err)
		}
		items, err = pgx.CollectRows(rows, scanProperty)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("propertyRepo.Query: %w", err)
	}
	if items == nil {
		items = []*domain.Property{}
	}

	return items, int(total), nil
}

func (r *PropertyRepo) AppendImage(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE properties SET image_urls = array_append(image_urls, $1), updated_at = now() WHERE id = $2`,
		url, id,
	)
	if err != nil {
		return fmt.Errorf("propertyRepo.AppendImage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("propertyRepo.AppendImage: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *PropertyRepo) SetFlag(ctx context.Context, id uuid.UUID, flag domain.Flag, value bool) error {
	if !flag.Valid() {
		return fmt.Errorf("propertyRepo.SetFlag: unknown flag %q", flag)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE properties SET `+string(flag)+` = $1, updated_at = now() WHERE id = $2`,
		value, id,
	)
	if err != nil {
		return fmt.Errorf("propertyRepo.SetFlag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("propertyRepo.SetFlag: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *PropertyRepo) FlipFlag(ctx context.Context, id uuid.UUID, flag domain.Flag) (bool, error) {
	if !flag.Valid() {
		return false, fmt.Errorf("propertyRepo.FlipFlag: unknown flag %q", flag)
	}
	col := string(flag)

	var v bool
	err := r.pool.QueryRow(ctx,
		`UPDATE properties SET `+col+` = NOT `+col+`, updated_at = now() WHERE id = $1 RETURNING `+col,
		id,
	).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("propertyRepo.FlipFlag: %w", domain.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("propertyRepo.FlipFlag: %w", err)
	}

	return v, nil
}

// BulkApprove approves every listed property in one statement. Ids with no
// row are ignored.
func (r *PropertyRepo) BulkApprove(ctx context.Context, ids []uuid.UUID) error {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE properties SET is_approved = true, updated_at = now() WHERE id = ANY($1::uuid[])`,
		strs,
	)
	if err != nil {
		return fmt.Errorf("propertyRepo.BulkApprove: %w", err)
	}

	return nil
}

// buildPropertyWhere renders the filter as a WHERE clause with positional
// arguments. It returns "" when no constraint is active.
func buildPropertyWhere(f domain.PropertyFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.PriceMin != nil {
		add("price >= $%d", *f.PriceMin)
	}
	if f.PriceMax != nil {
		add("price <= $%d", *f.PriceMax)
	}
	if f.Location != nil {
		add(`location ILIKE $%d ESCAPE '\'`, "%"+escapeLike(*f.Location)+"%")
	}
	if f.Bedrooms != nil {
		add("bedrooms = $%d", *f.Bedrooms)
	}
	if f.IsAvailable != nil {
		add("is_available = $%d", *f.IsAvailable)
	}
	if f.IsFeatured != nil {
		add("is_featured = $%d", *f.IsFeatured)
	}
	if f.LandlordID != nil {
		add("landlord_id = $%d", *f.LandlordID)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// pageClause appends LIMIT/OFFSET placeholders. A zero limit reads to the end.
func pageClause(sql string, args []any, offset, limit int) (string, []any) {
	out := append([]any(nil), args...)
	if limit > 0 {
		out = append(out, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(out))
	}
	if offset > 0 {
		out = append(out, offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(out))
	}
	return sql, out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`) //nolint:gochecknoglobals // immutable replacer

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
