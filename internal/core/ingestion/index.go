package ingestion

import (
	"ingestion-service/internal/domain"

	"github.com/shopspring/decimal"
)

var decimalHundred = decimal.NewFromInt(100)

// buildIndex agrupa os identificadores dos registros por valor em centavos,
// preservando a ordem de inserção por chave. Reconstruir o índice a partir
// de registros persistidos produz conteúdo idêntico ao de uma construção
// nova sobre os mesmos registros; a conferência depende disso para busca
// exata em O(1).
func buildIndex(records []domain.TransactionRecord) domain.ValueCentsIndex {
	idx := make(domain.ValueCentsIndex, len(records))
	for _, rec := range records {
		idx[rec.ValueCents] = append(idx[rec.ValueCents], rec.OriginHash)
	}
	return idx
}
