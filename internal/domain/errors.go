// package domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Structural errors abort an ingestion before any row-level output. They
// are never retried through the synchronous fallback, since the same
// structural problem would recur on the same bytes.
var (
	ErrMissingRequiredColumns = errors.New("colunas obrigatórias (data, histórico) não encontradas na planilha")
	ErrEmptySheet             = errors.New("planilha vazia ou sem linhas de dados")
	ErrUndecodableInput       = errors.New("arquivo não pôde ser decodificado como planilha")
)

// ErrCancelled is returned when the caller cancels an ingestion. It is
// terminal and never triggers fallback; partial work is discarded.
var ErrCancelled = errors.New("ingestão cancelada pelo chamador")

// ErrTimeout marks a background run that outlived its wall-clock budget.
var ErrTimeout = errors.New("tempo limite do processamento em segundo plano excedido")

// IsStructural reports whether err is one of the fatal schema/decode errors.
func IsStructural(err error) bool {
	return errors.Is(err, ErrMissingRequiredColumns) ||
		errors.Is(err, ErrEmptySheet) ||
		errors.Is(err, ErrUndecodableInput)
}

// FallbackError is the hard failure reported when the background run and
// the synchronous fallback both failed. It keeps both causes for
// diagnostics.
type FallbackError struct {
	Background error
	Sync       error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("processamento em segundo plano falhou (%v) e o fallback síncrono também falhou (%v)", e.Background, e.Sync)
}

// Unwrap exposes both causes to errors.Is / errors.As.
func (e *FallbackError) Unwrap() []error {
	return []error{e.Background, e.Sync}
}
