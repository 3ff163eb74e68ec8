// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrProductNotFound is returned when no product is stored under the requested pid.
var ErrProductNotFound = errors.New("product not found")

// ErrProductConflict is returned by create when the pid is already taken.
var ErrProductConflict = errors.New("product already exists")
