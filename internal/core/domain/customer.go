package domain

// Customer owns an account. Name and TaxID are free-form; no format is enforced.
type Customer struct {
	CustomerID string `json:"customerID"` // Primary Key
	Name       string `json:"name"`
	TaxID      string `json:"taxID"` // National id, e.g. CPF
	AuditFields
}
