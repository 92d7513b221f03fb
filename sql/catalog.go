package sql

// Catalog holds the functions available to the engine.
type Catalog struct {
	FunctionRegistry
}

// NewCatalog returns a new empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{FunctionRegistry: NewFunctionRegistry()}
}
