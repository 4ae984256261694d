package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"writespace-backend/internal/domains/blog/model"
	"writespace-backend/internal/shared/utils"
	"writespace-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const blogColumns = `
	b.id, b.blog_id, b.title, b.description, b.category, b.status, b.images,
	b.user_id, b.like_count, b.dislike_count, b.version, b.created_at, b.updated_at,
	u.id, u.name, u.email, u.contact_info, u.image`

const blogFrom = ` FROM blogs b JOIN users u ON u.id = b.user_id `

func scanBlog(row pgx.Row) (*model.Blog, error) {
	var b model.Blog
	var a model.Author
	err := row.Scan(
		&b.ID, &b.BlogID, &b.Title, &b.Description, &b.Category, &b.Status, &b.Images,
		&b.UserID, &b.LikeCount, &b.DislikeCount, &b.Version, &b.CreatedAt, &b.UpdatedAt,
		&a.ID, &a.Name, &a.Email, &a.ContactInfo, &a.Image,
	)
	if err != nil {
		return nil, err
	}
	if b.Images == nil {
		b.Images = []string{}
	}
	b.Author = &a
	return &b, nil
}

// ============================================
// WRITE
// ============================================

func (r *postgresRepository) Create(ctx context.Context, b *model.Blog) error {
	query := `
		INSERT INTO blogs (blog_id, title, description, category, status, images, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, like_count, dislike_count, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		b.BlogID, b.Title, b.Description, b.Category, b.Status, b.Images, b.UserID,
	).Scan(&b.ID, &b.Version, &b.LikeCount, &b.DislikeCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "blog_id") {
			return model.ErrDuplicateBlogID
		}
		return fmt.Errorf("create blog: %w", err)
	}
	return nil
}

func (r *postgresRepository) FindByRef(ctx context.Context, ref string) (*model.Blog, error) {
	column := "b.blog_id"
	var arg interface{} = ref
	if id, err := uuid.Parse(ref); err == nil {
		column, arg = "b.id", id
	}

	query := `SELECT ` + blogColumns + blogFrom + `WHERE ` + column + ` = $1`
	b, err := scanBlog(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBlogNotFound
		}
		return nil, fmt.Errorf("find blog: %w", err)
	}
	return b, nil
}

// Update - lock row (SELECT FOR UPDATE), so sánh version rồi mới ghi
func (r *postgresRepository) Update(ctx context.Context, b *model.Blog, expectedVersion int) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT version FROM blogs WHERE id = $1 FOR UPDATE`, b.ID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrBlogNotFound
			}
			return fmt.Errorf("lock blog: %w", err)
		}
		if current != expectedVersion {
			return model.ErrVersionConflict
		}

		query := `
			UPDATE blogs
			SET title = $2, description = $3, category = $4, status = $5, images = $6,
			    version = version + 1, updated_at = NOW()
			WHERE id = $1
			RETURNING version, updated_at
		`
		err = tx.QueryRow(ctx, query,
			b.ID, b.Title, b.Description, b.Category, b.Status, b.Images,
		).Scan(&b.Version, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update blog: %w", err)
		}
		return nil
	})
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	query := `
		UPDATE blogs
		SET status = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update blog status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBlogNotFound
	}
	return nil
}

// ============================================
// READ
// ============================================

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID, page model.Page) ([]model.Blog, int, error) {
	conditions := []string{"b.user_id = $1", "b.status <> $2"}
	args := []interface{}{userID, model.StatusDeleted}
	return r.list(ctx, conditions, args, page)
}

func (r *postgresRepository) ListPublished(ctx context.Context, search string, page model.Page) ([]model.Blog, int, error) {
	conditions := []string{"b.status = $1"}
	args := []interface{}{model.StatusPublished}

	if s := strings.TrimSpace(search); s != "" {
		args = append(args, utils.ContainsPattern(s))
		n := len(args)
		conditions = append(conditions, "("+utils.JoinWithOr([]string{
			fmt.Sprintf(`b.title ILIKE $%d ESCAPE '\'`, n),
			fmt.Sprintf(`b.category ILIKE $%d ESCAPE '\'`, n),
		})+")")
	}
	return r.list(ctx, conditions, args, page)
}

func (r *postgresRepository) list(ctx context.Context, conditions []string, args []interface{}, page model.Page) ([]model.Blog, int, error) {
	where := utils.JoinWithAnd(conditions)

	// Get total count
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blogs b WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}
	if total == 0 {
		return []model.Blog{}, 0, nil
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`,
		blogColumns, blogFrom, where, len(args)+1, len(args)+2)
	rows, err := r.pool.Query(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	blogs := make([]model.Blog, 0, page.Limit)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	return blogs, total, nil
}
