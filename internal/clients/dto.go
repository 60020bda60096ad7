package clients

type CreateClientRequest struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type UpdateClientRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type ListClientsRequest struct {
	Search  string `json:"search"`
	Page    int    `json:"page" validate:"gte=0"`
	PerPage int    `json:"per_page" validate:"gte=0,lte=200"`
}
