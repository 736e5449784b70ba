package ingestion

import (
	"strings"

	"ingestion-service/internal/domain"
)

// validateRow classifica a linha normalizada segundo as regras de negócio
// e preenche status e mensagem. Erros excluem a linha dos registros;
// avisos a mantêm.
func validateRow(row *domain.NormalizedRow) {
	if row.Date == "" {
		row.ValidationStatus = domain.RowError
		row.ValidationMessage = "data inválida ou ausente"
		return
	}

	if strings.TrimSpace(row.OriginalDescription) == "" {
		row.ValidationStatus = domain.RowWarning
		row.ValidationMessage = "histórico vazio"
		return
	}

	if row.Value.IsZero() {
		row.ValidationStatus = domain.RowWarning
		row.ValidationMessage = "valor zerado"
		return
	}

	row.ValidationStatus = domain.RowValid
}
