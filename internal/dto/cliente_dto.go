package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=2,max=100"`
	CPF      string  `json:"cpf"      validate:"required,min=11,max=14"`
	Email    string  `json:"email"    validate:"required,email"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
	Senha    string  `json:"senha"    validate:"required,min=6"`
}

type AtualizarClienteRequest struct {
	Nome     *string `json:"nome"     validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
}

type AlterarSenhaRequest struct {
	SenhaAtual string `json:"senha_atual" validate:"required"`
	NovaSenha  string `json:"nova_senha"  validate:"required,min=6"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID       uint    `json:"id"`
	Nome     string  `json:"nome"`
	CPF      string  `json:"cpf"`
	Email    string  `json:"email"`
	Telefone *string `json:"telefone"`
	Endereco *string `json:"endereco"`
	Role     string  `json:"role"`
}
