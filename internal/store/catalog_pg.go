package store

// Repository implementations (Postgres)

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookshop/internal/book"
)

// CatalogPG stores the catalog in the books table, one row per unit in
// stock. Prices travel as text so the numeric column round-trips through
// decimal without float conversion.
type CatalogPG struct {
	db *pgxpool.Pool
}

func NewCatalogPG(db *pgxpool.Pool) *CatalogPG {
	return &CatalogPG{db: db}
}

func (r *CatalogPG) ListAll(ctx context.Context) ([]book.Book, error) {
	const query = `
	SELECT title, author, price::text
	FROM books
	ORDER BY id
	`
	return r.queryBooks(ctx, query)
}

func (r *CatalogPG) SearchByTitle(ctx context.Context, substr string) ([]book.Book, error) {
	const query = `
	SELECT title, author, price::text
	FROM books
	WHERE strpos(title, $1) > 0
	ORDER BY id
	`
	return r.queryBooks(ctx, query, substr)
}

func (r *CatalogPG) SearchByAuthor(ctx context.Context, substr string) ([]book.Book, error) {
	const query = `
	SELECT title, author, price::text
	FROM books
	WHERE strpos(author, $1) > 0
	ORDER BY id
	`
	return r.queryBooks(ctx, query, substr)
}

func (r *CatalogPG) Insert(ctx context.Context, b book.Book) error {
	const query = `
	INSERT INTO books (title, author, price)
	VALUES ($1, $2, $3::numeric)
	`
	_, err := r.db.Exec(ctx, query, b.Title, b.Author, b.Price.String())
	return err
}

func (r *CatalogPG) DeleteOneMatching(ctx context.Context, b book.Book) (bool, error) {
	// LIMIT 1 via the inner select: only one unit per matching call.
	const query = `
	DELETE FROM books
	WHERE id = (
		SELECT id FROM books
		WHERE title = $1 AND author = $2 AND price = $3::numeric
		ORDER BY id
		LIMIT 1
	)
	`
	tag, err := r.db.Exec(ctx, query, b.Title, b.Author, b.Price.String())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CatalogPG) queryBooks(ctx context.Context, query string, args ...any) ([]book.Book, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []book.Book
	for rows.Next() {
		var title, author, priceText string
		if err := rows.Scan(&title, &author, &priceText); err != nil {
			return nil, err
		}
		price, err := book.ParsePrice(priceText)
		if err != nil {
			return nil, err
		}
		books = append(books, book.New(title, author, price))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}
