// internal/domain/product/errors.go
package product

import "errors"

// Errors returned by the catalog services
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrPackSizeNotFound  = errors.New("pack size not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDuplicateSKU      = errors.New("sku already exists")
	ErrDuplicatePackSize = errors.New("pack size label already exists for this product")
	ErrDuplicateCategory = errors.New("category with similar name already exists")
	ErrCategoryInUse     = errors.New("category has products")
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrNoPackSizes       = errors.New("product needs at least one pack size")
)
