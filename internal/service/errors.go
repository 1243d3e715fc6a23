package service

import (
	"errors"
	"fmt"
)

// Kind classifies service errors for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindInsufficientStock
	KindConflict
	KindUnauthorized
	KindForbidden
	KindTransaction
)

// ValidationError reports a malformed request. Field names the offending
// input (e.g. "items[0].quantity").
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d não encontrado", e.Entity, e.ID)
}

// InsufficientStockError is raised when a cart line asks for more units than
// the product has.
type InsufficientStockError struct {
	ProdutoID  uint
	Nome       string
	Disponivel int
	Solicitado int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para o produto %q. Disponível: %d, Solicitado: %d",
		e.Nome, e.Disponivel, e.Solicitado)
}

// ConflictError reports a uniqueness or referential conflict.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

// TransactionError wraps any failure raised inside an atomic unit of work.
// Nothing the transaction wrote was kept.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transação revertida: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

var (
	ErrCredenciaisInvalidas = errors.New("credenciais inválidas")
	ErrAcessoNegado         = errors.New("acesso negado")
)

// KindOf returns the outermost recognised kind of err. A TransactionError is
// reported as KindTransaction even when it wraps a domain error; callers that
// want the cause can use errors.As.
func KindOf(err error) Kind {
	var (
		txErr    *TransactionError
		valErr   *ValidationError
		nfErr    *NotFoundError
		stockErr *InsufficientStockError
		cfErr    *ConflictError
	)
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &txErr):
		return KindTransaction
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &nfErr):
		return KindNotFound
	case errors.As(err, &stockErr):
		return KindInsufficientStock
	case errors.As(err, &cfErr):
		return KindConflict
	case errors.Is(err, ErrCredenciaisInvalidas):
		return KindUnauthorized
	case errors.Is(err, ErrAcessoNegado):
		return KindForbidden
	}
	return KindInternal
}
