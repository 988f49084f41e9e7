// Package model defines domain types used by the service.
package model

// Product is a catalog entry. Values are replaced wholesale on update,
// never mutated in place.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ProductInput carries the client-supplied fields for create and update.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// WithID builds a Product from the input fields and the given id.
func (in ProductInput) WithID(id int) Product {
	return Product{ID: id, Name: in.Name, Description: in.Description, Price: in.Price}
}
