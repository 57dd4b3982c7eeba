package dto

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"max=200"`
	GSTIN   string `json:"gstin" validate:"max=30"`
	Website string `json:"website"`
	Address string `json:"address"`
	Mobile  string `json:"mobile" validate:"max=40"`
	Email   string `json:"email"`
	Logo    string `json:"logo"`
}

// UpdateCompanyRequest entrada para PATCH (solo se aplican los campos presentes).
type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	GSTIN   *string `json:"gstin" validate:"omitempty,max=30"`
	Website *string `json:"website"`
	Address *string `json:"address"`
	Mobile  *string `json:"mobile" validate:"omitempty,max=40"`
	Email   *string `json:"email"`
	Logo    *string `json:"logo"`
}

// CompanyResponse salida de una empresa. Logo vacío se serializa como null.
type CompanyResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	GSTIN   string  `json:"gstin,omitempty"`
	Website string  `json:"website,omitempty"`
	Address string  `json:"address,omitempty"`
	Mobile  string  `json:"mobile,omitempty"`
	Email   string  `json:"email,omitempty"`
	Logo    *string `json:"logo"`
}
