package ingestion

import (
	"strings"

	"ingestion-service/internal/domain"
)

// columnMap é o resultado da detecção de colunas: índice da coluna para
// cada campo semântico, ou -1 quando ausente. Data e histórico são
// obrigatórios; valor pode ser substituído pelo par crédito/débito.
type columnMap struct {
	Date        int
	Description int
	Value       int
	Credit      int
	Debit       int
}

// Dicionários de apelidos por campo, já na forma normalizada (ver
// normalizeText). A ordem importa: o primeiro apelido que casar vence.
var (
	dateAliases        = []string{"DATA MOVIMENTO", "DATA MOV", "DATA LANCAMENTO", "DATA", "DT", "DIA"}
	descriptionAliases = []string{"HISTORICO", "DESCRICAO", "LANCAMENTO", "DETALHE", "MEMO", "TRANSACAO"}
	valueAliases       = []string{"VALOR", "QUANTIA", "MONTANTE"}
	creditAliases      = []string{"CREDITO", "ENTRADA", "DEPOSITO"}
	debitAliases       = []string{"DEBITO", "SAIDA", "RETIRADA"}
)

// headerScanRows limita a busca pelo cabeçalho às primeiras linhas; acima
// disso extratos reais trazem apenas metadados de conta.
const headerScanRows = 5

// detectColumns procura a linha de cabeçalho nas primeiras headerScanRows
// linhas e mapeia as colunas para campos semânticos. A primeira linha
// candidata em que data e histórico resolvem é aceita; a busca para ali.
// Sem essa linha, a ingestão inteira aborta com ErrMissingRequiredColumns.
func detectColumns(rows [][]string) (columnMap, int, error) {
	limit := headerScanRows
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		m := mapHeaderRow(rows[i])
		if m.Date >= 0 && m.Description >= 0 {
			return m, i, nil
		}
	}
	return columnMap{}, -1, domain.ErrMissingRequiredColumns
}

// mapHeaderRow resolve cada campo independentemente: varre as células em
// ordem e, por célula, os apelidos em ordem; o primeiro casamento por
// substring vence. Sem pontuação além de "resolveu ou não".
func mapHeaderRow(row []string) columnMap {
	m := columnMap{Date: -1, Description: -1, Value: -1, Credit: -1, Debit: -1}

	normalized := make([]string, len(row))
	for i, cell := range row {
		normalized[i] = normalizeText(cell)
	}

	m.Date = firstAliasMatch(normalized, dateAliases)
	m.Description = firstAliasMatch(normalized, descriptionAliases)
	m.Value = firstAliasMatch(normalized, valueAliases)
	m.Credit = firstAliasMatch(normalized, creditAliases)
	m.Debit = firstAliasMatch(normalized, debitAliases)
	return m
}

func firstAliasMatch(normalizedCells []string, aliases []string) int {
	for i, cell := range normalizedCells {
		if cell == "" {
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(cell, alias) {
				return i
			}
		}
	}
	return -1
}
