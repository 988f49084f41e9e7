// Package catalog implements the product operations exposed over HTTP.
package catalog

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
	"github.com/fairyhunter13/product-catalog-service/internal/obs"
)

// Repository is the product collection the service operates on.
type Repository interface {
	List() []model.Product
	Len() int
	Get(id int) (model.Product, error)
	Create(in model.ProductInput) model.Product
	Update(id int, in model.ProductInput) (model.Product, error)
	Delete(id int) error
	// Observe registers fn to receive the collection size after each
	// mutation, in mutation order.
	Observe(fn func(n int))
}

// SizeObserver is told the collection size after every mutation.
type SizeObserver interface {
	SetProducts(n int)
}

// Service maps product operations onto a Repository and reports each
// outcome as a Result.
type Service struct {
	repo Repository
}

// NewService returns a Service over repo. observer may be nil.
func NewService(repo Repository, observer SizeObserver) *Service {
	if observer != nil {
		repo.Observe(observer.SetProducts)
	}
	return &Service{repo: repo}
}

// Len reports the collection size without logging.
func (s *Service) Len() int {
	return s.repo.Len()
}

// Location is the path a product can be fetched from.
func Location(id int) string {
	return fmt.Sprintf("/products/%d", id)
}

func (s *Service) List() Result {
	obs.Logger.Info("products_list")
	return OKList(s.repo.List())
}

func (s *Service) Get(id int) (Result, error) {
	obs.Logger.Info("product_get", "product_id", id)
	p, err := s.repo.Get(id)
	if errors.Is(err, errors.NotFound) {
		obs.Logger.Warn("product_not_found", "product_id", id)
		return NotFound(), nil
	}
	if err != nil {
		return Result{}, errors.Annotatef(err, "getting product %d", id)
	}
	return OK(p), nil
}

// Create never fails; the input is taken as-is.
func (s *Service) Create(in model.ProductInput) Result {
	obs.Logger.Info("product_create", "product_name", in.Name)
	p := s.repo.Create(in)
	obs.Logger.Info("product_created", "product_id", p.ID)
	return Created(p, Location(p.ID))
}

func (s *Service) Update(id int, in model.ProductInput) (Result, error) {
	obs.Logger.Info("product_update", "product_id", id)
	p, err := s.repo.Update(id, in)
	if errors.Is(err, errors.NotFound) {
		obs.Logger.Warn("product_not_found", "product_id", id, "op", "update")
		return NotFound(), nil
	}
	if err != nil {
		return Result{}, errors.Annotatef(err, "updating product %d", id)
	}
	return OK(p), nil
}

func (s *Service) Delete(id int) (Result, error) {
	obs.Logger.Info("product_delete", "product_id", id)
	err := s.repo.Delete(id)
	if errors.Is(err, errors.NotFound) {
		obs.Logger.Warn("product_not_found", "product_id", id, "op", "delete")
		return NotFound(), nil
	}
	if err != nil {
		return Result{}, errors.Annotatef(err, "deleting product %d", id)
	}
	return NoContent(), nil
}
