// Package store provides an interface for product storage operations.
package store

import "context"

// Product represents a product entity in the store.
type Product struct {
	PID   int64
	Name  string
	Price float64
}

// ProductStore is an interface for product storage operations.
// Implementations key every record by its PID and must keep Product.PID equal to that key.
type ProductStore interface {
	// Exists reports whether a product is stored under pid.
	Exists(ctx context.Context, pid int64) (bool, error)

	// FindByID retrieves a single product by its pid.
	// Returns ErrProductNotFound if no product exists with the given pid.
	FindByID(ctx context.Context, pid int64) (*Product, error)

	// Create inserts a new product.
	// Returns ErrProductConflict if a product with the same pid already exists.
	Create(ctx context.Context, product Product) (*Product, error)

	// Upsert stores product, replacing any record under the same pid.
	// The boolean result is true when no record existed before.
	Upsert(ctx context.Context, product Product) (*Product, bool, error)

	// Patch applies mutate to the stored product and saves the result.
	// Returns ErrProductNotFound if no product exists with the given pid; nothing is created.
	Patch(ctx context.Context, pid int64, mutate func(*Product)) (*Product, error)

	// DeleteByID removes a product by its pid.
	// Returns ErrProductNotFound if no product exists with the given pid.
	DeleteByID(ctx context.Context, pid int64) error

	// Count returns the number of stored products.
	Count(ctx context.Context) (int, error)
}
