package dto

import (
	"agrostock/internal/core/id"
	"agrostock/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest is the request body for creating a supplier.
// Exactly one of cpf and cnpj may be set.
type CreateSupplierRequest struct {
	Code          string  `json:"code"`
	Name          string  `json:"name" binding:"required"`
	CPF           *string `json:"cpf"`
	CNPJ          *string `json:"cnpj"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contactPerson"`
}

// ToEntity converts the DTO to a domain entity owned by the tenant.
func (r *CreateSupplierRequest) ToEntity(tenantID id.ID) *supplier.Supplier {
	s := supplier.NewSupplier(tenantID, r.Code, r.Name)
	s.CPF = r.CPF
	s.CNPJ = r.CNPJ
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.ContactPerson = r.ContactPerson
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
type UpdateSupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	CPF           *string `json:"cpf"`
	CNPJ          *string `json:"cnpj"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	ContactPerson *string `json:"contactPerson"`
	Version       int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies the update onto an existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Name = r.Name
	s.CPF = r.CPF
	s.CNPJ = r.CNPJ
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.ContactPerson = r.ContactPerson
	s.Version = r.Version
}

// SupplierResponse is the response body for a supplier.
type SupplierResponse struct {
	CatalogResponse
	CPF           *string `json:"cpf,omitempty"`
	CNPJ          *string `json:"cnpj,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
}

// FromSupplier creates a response DTO from a domain entity.
func FromSupplier(s *supplier.Supplier) *SupplierResponse {
	return &SupplierResponse{
		CatalogResponse: FromCatalog(s.Catalog),
		CPF:             s.CPF,
		CNPJ:            s.CNPJ,
		Email:           s.Email,
		Phone:           s.Phone,
		Address:         s.Address,
		ContactPerson:   s.ContactPerson,
	}
}
