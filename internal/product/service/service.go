// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"

	"github.com/abgdnv/productstore/internal/product/store"
	"github.com/abgdnv/productstore/pkg/optional"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "product-service"

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Exists reports whether a product with the given pid is stored.
	// Used by the existence guard in front of read, patch and delete.
	Exists(ctx context.Context, pid int64) (bool, error)

	// FindByID retrieves a single product by its pid.
	// Returns ErrProductNotFound if no product exists with the given pid.
	FindByID(ctx context.Context, pid int64) (*ProductDto, error)

	// Create adds a new product under the caller supplied pid and returns that pid.
	// Returns ErrProductConflict if the pid is already taken.
	Create(ctx context.Context, product ProductCreateDto) (int64, error)

	// Update replaces the product stored under pid, inserting it when absent.
	Update(ctx context.Context, pid int64, product ProductUpdateDto) (*ProductDto, error)

	// Patch changes only the supplied fields of an existing product.
	// Returns ErrProductNotFound if no product exists with the given pid.
	Patch(ctx context.Context, pid int64, patch ProductPatchDto) (*ProductDto, error)

	// DeleteByID removes a product by its pid.
	// Returns ErrProductNotFound if no product exists with the given pid.
	DeleteByID(ctx context.Context, pid int64) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	created    metric.Int64Counter
	deleted    metric.Int64Counter
	stored     metric.Int64UpDownCounter
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	meter := otel.Meter(meterName)
	created, err := meter.Int64Counter("products_created", metric.WithDescription("Number of products inserted by create or update"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_created counter: %v", err))
	}
	deleted, err := meter.Int64Counter("products_deleted", metric.WithDescription("Number of deleted products"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_deleted counter: %v", err))
	}
	stored, err := meter.Int64UpDownCounter("products_stored", metric.WithDescription("Number of products currently held in the store"))
	if err != nil {
		panic(fmt.Sprintf("failed to create products_stored counter: %v", err))
	}
	return &Service{
		repository: repo,
		created:    created,
		deleted:    deleted,
		stored:     stored,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Pointer fields distinguish a missing key from a zero value.
type ProductCreateDto struct {
	PID   *int64   `json:"pid"   validate:"required"`
	Name  *string  `json:"name"  validate:"required"`
	Price *float64 `json:"price" validate:"required"`
}

// ProductUpdateDto represents the full replacement body of a product.
type ProductUpdateDto struct {
	Name  *string  `json:"name"  validate:"required"`
	Price *float64 `json:"price" validate:"required"`
}

// ProductPatchDto represents a partial update; only fields present in the payload are applied.
type ProductPatchDto struct {
	Name  optional.Optional[string]  `json:"name"`
	Price optional.Optional[float64] `json:"price"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	PID   int64   `json:"pid"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Exists reports whether a product with the given pid is stored.
func (s *Service) Exists(ctx context.Context, pid int64) (bool, error) {
	ok, err := s.repository.Exists(ctx, pid)
	if err != nil {
		return false, fmt.Errorf("failed to check product with id %d: %w", pid, err)
	}
	return ok, nil
}

// FindByID retrieves a product by its pid and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given pid.
func (s *Service) FindByID(ctx context.Context, pid int64) (*ProductDto, error) {
	product, err := s.repository.FindByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product with id %d: %w", pid, err)
	}

	return toDto(product), nil
}

// Create stores a new product and returns its pid.
// Returns ErrProductConflict if the pid is already taken.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (int64, error) {
	p, err := s.repository.Create(ctx, store.Product{
		PID:   *product.PID,
		Name:  *product.Name,
		Price: *product.Price,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create product with id %d: %w", *product.PID, err)
	}
	s.recordInsert(ctx, "create")

	return p.PID, nil
}

// Update replaces the product stored under pid and returns it. A missing product is inserted.
func (s *Service) Update(ctx context.Context, pid int64, product ProductUpdateDto) (*ProductDto, error) {
	p, inserted, err := s.repository.Upsert(ctx, store.Product{
		PID:   pid,
		Name:  *product.Name,
		Price: *product.Price,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product with id %d: %w", pid, err)
	}
	if inserted {
		s.recordInsert(ctx, "update")
	}

	return toDto(p), nil
}

// Patch merges the supplied fields into the stored product and returns the result.
// Returns ErrProductNotFound if no product exists with the given pid.
func (s *Service) Patch(ctx context.Context, pid int64, patch ProductPatchDto) (*ProductDto, error) {
	p, err := s.repository.Patch(ctx, pid, func(p *store.Product) {
		if name, ok := patch.Name.Get(); ok {
			p.Name = name
		}
		if price, ok := patch.Price.Get(); ok {
			p.Price = price
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to patch product with id %d: %w", pid, err)
	}

	return toDto(p), nil
}

// DeleteByID deletes a product by its pid.
// Returns ErrProductNotFound if no product exists with the given pid.
func (s *Service) DeleteByID(ctx context.Context, pid int64) error {
	if err := s.repository.DeleteByID(ctx, pid); err != nil {
		return fmt.Errorf("failed to delete product with id %d: %w", pid, err)
	}
	s.deleted.Add(ctx, 1)
	s.stored.Add(ctx, -1)
	return nil
}

func (s *Service) recordInsert(ctx context.Context, operation string) {
	s.created.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	s.stored.Add(ctx, 1)
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		PID:   product.PID,
		Name:  product.Name,
		Price: product.Price,
	}
}
