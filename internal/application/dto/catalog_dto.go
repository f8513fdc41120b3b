package dto

// ProductResponse respuesta de producto.
type ProductResponse struct {
	ID         string `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	IsActive   bool   `json:"is_active"`
	SupplierID string `json:"supplier_id,omitempty"`
}

// SupplierResponse respuesta de proveedor.
type SupplierResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LeadTimeDays int    `json:"lead_time_days"`
}

// WarehouseResponse respuesta de bodega.
type WarehouseResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}
