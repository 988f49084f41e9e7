package catalog

import (
	"fmt"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
)

// Kind discriminates the outcome of a service operation.
type Kind int

const (
	KindOK Kind = iota
	KindCreated
	KindNoContent
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindCreated:
		return "created"
	case KindNoContent:
		return "no_content"
	case KindNotFound:
		return "not_found"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Result is what every Service operation returns. Product is set for OK and
// Created on single-item operations, Products for List, and Location only
// for Created.
type Result struct {
	Kind     Kind
	Product  model.Product
	Products []model.Product
	Location string
}

// OK wraps a single product.
func OK(p model.Product) Result { return Result{Kind: KindOK, Product: p} }

// OKList wraps a product listing.
func OKList(ps []model.Product) Result { return Result{Kind: KindOK, Products: ps} }

// Created wraps a newly created product and the path it can be fetched from.
func Created(p model.Product, location string) Result {
	return Result{Kind: KindCreated, Product: p, Location: location}
}

// NoContent reports a successful operation with nothing to return.
func NoContent() Result { return Result{Kind: KindNoContent} }

// NotFound reports that the requested id is absent.
func NotFound() Result { return Result{Kind: KindNotFound} }
