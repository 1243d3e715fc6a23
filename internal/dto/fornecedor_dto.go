package dto

type CriarFornecedorRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=150"`
	CNPJ     string  `json:"cnpj"     validate:"required,min=14,max=18"`
	Telefone *string `json:"telefone"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Endereco *string `json:"endereco"`
}

type AtualizarFornecedorRequest struct {
	Nome     *string `json:"nome"     validate:"omitempty,min=2,max=150"`
	CNPJ     *string `json:"cnpj"     validate:"omitempty,min=14,max=18"`
	Telefone *string `json:"telefone"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Endereco *string `json:"endereco"`
}

type FornecedorResponse struct {
	ID       uint    `json:"id"`
	Nome     string  `json:"nome"`
	CNPJ     string  `json:"cnpj"`
	Telefone *string `json:"telefone"`
	Email    *string `json:"email"`
	Endereco *string `json:"endereco"`
}
