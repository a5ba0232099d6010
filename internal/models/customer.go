package models

// Customer represents a row of the customers table.
type Customer struct {
	CustomerID string `db:"customer_id"`
	Name       string `db:"name"`
	TaxID      string `db:"tax_id"`
	AuditFields
}
