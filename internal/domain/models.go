// package domain/models.go
package domain

import (
	"github.com/shopspring/decimal"
)

// PaymentType classifies a statement row by the payment instrument
// recognized in its description.
type PaymentType string

// Constants for payment types.
const (
	PaymentPixRecebido   PaymentType = "PIX RECEBIDO"
	PaymentPixEnviado    PaymentType = "PIX ENVIADO"
	PaymentTed           PaymentType = "TED"
	PaymentDoc           PaymentType = "DOC"
	PaymentCartao        PaymentType = "CARTAO"
	PaymentDinheiro      PaymentType = "DINHEIRO"
	PaymentBoleto        PaymentType = "BOLETO"
	PaymentTransferencia PaymentType = "TRANSFERENCIA"
	PaymentDeposito      PaymentType = "DEPOSITO"
	PaymentSaque         PaymentType = "SAQUE"
	PaymentOutros        PaymentType = "OUTROS"
)

// RowStatus is the validation outcome of a normalized row.
type RowStatus string

// Constants for row validation statuses.
const (
	RowValid   RowStatus = "valid"
	RowWarning RowStatus = "warning"
	RowError   RowStatus = "error"
)

// RecordStatus is the reconciliation state of a persisted record. The
// pipeline only ever emits RecordPendente; the conference collaborators
// move records through the remaining states.
type RecordStatus string

// Constants for record statuses.
const (
	RecordPendente      RecordStatus = "pendente"
	RecordConferido     RecordStatus = "conferido"
	RecordNaoEncontrado RecordStatus = "nao_encontrado"
)

// NormalizedRow is one statement row after field parsing and validation.
// Immutable once built.
type NormalizedRow struct {
	Date                string          `json:"date"` // canonical DD-MM-YYYY, "" when unparseable
	PaymentType         PaymentType     `json:"payment_type"`
	Identifier          string          `json:"identifier"` // CPF digits only, "" when absent
	Value               decimal.Decimal `json:"value"`
	OriginalDescription string          `json:"original_description"`
	ValidationStatus    RowStatus       `json:"validation_status"`
	ValidationMessage   string          `json:"validation_message,omitempty"`
}

// TransactionRecord is a NormalizedRow tagged for persistence and lookup.
type TransactionRecord struct {
	NormalizedRow
	OriginHash    string       `json:"origin_hash"`
	ValueCents    int64        `json:"value_cents"`
	Status        RecordStatus `json:"status"`
	OperationDate string       `json:"operation_date"` // the day the batch is filed under
}

// ValueCentsIndex maps an exact integer-cents value to the origin hashes
// of the records carrying it, in insertion order. Monetary comparisons
// downstream go through this index, never through floating point.
type ValueCentsIndex map[int64][]string

// Lookup returns the record identifiers with the exact cents value.
func (idx ValueCentsIndex) Lookup(cents int64) []string {
	return idx[cents]
}

// ParseStats aggregates counters over one ingestion batch. TotalValue sums
// the absolute values of valid rows only.
type ParseStats struct {
	TotalRows        int             `json:"total_rows"`
	ValidRows        int             `json:"valid_rows"`
	RowsWithWarnings int             `json:"rows_with_warnings"`
	RowsWithErrors   int             `json:"rows_with_errors"`
	TotalValue       decimal.Decimal `json:"total_value"`
}

// ParseReport is the human-readable outcome of parsing one spreadsheet.
// Rows excludes error rows; their messages stay in Errors.
type ParseReport struct {
	Success  bool            `json:"success"`
	Rows     []NormalizedRow `json:"rows"`
	Errors   []string        `json:"errors"`
	Warnings []string        `json:"warnings"`
	Stats    ParseStats      `json:"stats"`
}

// IngestResult is everything one successful ingestion call produces.
type IngestResult struct {
	Report  ParseReport         `json:"report"`
	Index   ValueCentsIndex     `json:"index"`
	Records []TransactionRecord `json:"records"`
}
