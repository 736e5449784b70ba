package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"ingestion-service/internal/domain"
)

// originHashLen é o tamanho do prefixo hexadecimal usado como chave de
// deduplicação.
const originHashLen = 16

// originHash calcula a chave determinística de deduplicação de uma linha:
// SHA-256 sobre "data|cpf|centavos|histórico minúsculo e aparado",
// truncado para originHashLen caracteres hexadecimais. Uma única estratégia
// em todos os caminhos de execução: a mesma linha lógica produz sempre o
// mesmo hash, seja no caminho síncrono ou em segundo plano.
func originHash(date, identifier string, valueCents int64, description string) string {
	payload := fmt.Sprintf("%s|%s|%d|%s",
		date,
		identifier,
		valueCents,
		strings.ToLower(strings.TrimSpace(description)),
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])[:originHashLen]
}

// valueCents converte o valor decimal para centavos inteiros
// (round(valor*100)); toda comparação monetária do índice usa inteiros.
func valueCents(row domain.NormalizedRow) int64 {
	return row.Value.Mul(decimalHundred).Round(0).IntPart()
}
