package domain

// Category is static reference data for complaint classification.
type Category struct {
	ID   string
	Name string
}
