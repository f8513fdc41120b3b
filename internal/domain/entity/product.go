package entity

// Product vista de solo lectura del catálogo que consume el motor de stock
// (activo, SKU y nombre para alertas; proveedor para sugerencias de reorden).
type Product struct {
	ID         string
	SKU        string
	Name       string
	IsActive   bool
	SupplierID string // vacío = sin proveedor preferido
}

// Supplier referencia de proveedor para enriquecer las sugerencias de reorden.
type Supplier struct {
	ID           string
	Name         string
	LeadTimeDays int
}
