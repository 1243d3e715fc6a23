package service

import (
	"context"
	"errors"
	"strings"

	"lojaesportiva/internal/dto"
	"lojaesportiva/internal/model"
	"lojaesportiva/internal/repository"

	"gorm.io/gorm"
)

// CredentialVerifier hashes and checks passwords. Implemented by
// infra.BcryptVerifier; tests use a plain-text fake.
type CredentialVerifier interface {
	Hash(senha string) (string, error)
	Compare(hash, senha string) error
}

type ClienteService interface {
	Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error)
	ObterPorID(ctx context.Context, id uint) (*dto.ClienteResponse, error)
	Atualizar(ctx context.Context, id uint, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error)
	Remover(ctx context.Context, id uint) error
	AlterarSenha(ctx context.Context, id uint, req dto.AlterarSenhaRequest) error
}

type clienteService struct {
	repo     repository.ClienteRepository
	verifier CredentialVerifier
}

func NewClienteService(repo repository.ClienteRepository, verifier CredentialVerifier) ClienteService {
	return &clienteService{repo: repo, verifier: verifier}
}

// Criar registers a storefront customer. Public sign-up never grants admin;
// admins are provisioned with cmd/seedadmin.
func (s *clienteService) Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error) {
	cpf := apenasDigitos(req.CPF)
	if len(cpf) != 11 {
		return nil, invalid("cpf", "CPF deve conter 11 dígitos")
	}
	if len(req.Senha) < 6 {
		return nil, invalid("senha", "senha deve ter no mínimo 6 caracteres")
	}
	email := normalizarEmail(req.Email)

	if err := s.checarDuplicado(ctx, cpf, email, 0); err != nil {
		return nil, err
	}

	hash, err := s.verifier.Hash(req.Senha)
	if err != nil {
		return nil, err
	}
	c := &model.Cliente{
		Nome:      strings.TrimSpace(req.Nome),
		CPF:       cpf,
		Email:     email,
		Telefone:  apenasDigitosPtr(req.Telefone),
		Endereco:  req.Endereco,
		SenhaHash: hash,
		Role:      model.RoleCustomer,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, conflictOr(err, "CPF ou e-mail já cadastrado")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) ObterPorID(ctx context.Context, id uint) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "cliente", id)
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Atualizar(ctx context.Context, id uint, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "cliente", id)
	}
	if req.Email != nil {
		email := normalizarEmail(*req.Email)
		if email != c.Email {
			if err := s.checarDuplicado(ctx, "", email, id); err != nil {
				return nil, err
			}
		}
		c.Email = email
	}
	if req.Nome != nil {
		c.Nome = strings.TrimSpace(*req.Nome)
	}
	if req.Telefone != nil {
		c.Telefone = apenasDigitosPtr(req.Telefone)
	}
	if req.Endereco != nil {
		c.Endereco = req.Endereco
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, conflictOr(err, "CPF ou e-mail já cadastrado")
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Remover(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return conflictOr(notFoundOr(err, "cliente", id), "cliente possui pedidos vinculados")
	}
	return nil
}

func (s *clienteService) AlterarSenha(ctx context.Context, id uint, req dto.AlterarSenhaRequest) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "cliente", id)
	}
	if err := s.verifier.Compare(c.SenhaHash, req.SenhaAtual); err != nil {
		return ErrCredenciaisInvalidas
	}
	if len(req.NovaSenha) < 6 {
		return invalid("nova_senha", "senha deve ter no mínimo 6 caracteres")
	}
	hash, err := s.verifier.Hash(req.NovaSenha)
	if err != nil {
		return err
	}
	c.SenhaHash = hash
	return s.repo.Update(ctx, c)
}

// checarDuplicado rejects a cpf or email already used by another customer.
// Empty values are skipped.
func (s *clienteService) checarDuplicado(ctx context.Context, cpf, email string, id uint) error {
	if cpf != "" {
		existing, err := s.repo.FindByCPF(ctx, cpf)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil && existing.ID != id {
			return &ConflictError{Msg: "CPF já cadastrado"}
		}
	}
	if email != "" {
		existing, err := s.repo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing != nil && existing.ID != id {
			return &ConflictError{Msg: "e-mail já cadastrado"}
		}
	}
	return nil
}

func normalizarEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:       c.ID,
		Nome:     c.Nome,
		CPF:      c.CPF,
		Email:    c.Email,
		Telefone: c.Telefone,
		Endereco: c.Endereco,
		Role:     c.Role,
	}
}
