package ingestion

import (
	"context"
	"fmt"

	"ingestion-service/internal/domain"

	"github.com/shopspring/decimal"
)

// runPipeline executa o pipeline completo sobre os bytes de uma planilha:
// decodificação, detecção de colunas, parsing por linha, validação, hash e
// índice. É uma computação sequencial pura na ordem das linhas de origem;
// o chamador decide em qual goroutine ela roda. O cancelamento é
// cooperativo: o contexto é checado em cada fronteira de etapa e entre
// blocos de linhas, e trabalho parcial é descartado.
func (s *service) runPipeline(ctx context.Context, data []byte, operationDate string, emit ProgressFunc) (*domain.IngestResult, error) {
	if emit == nil {
		emit = func(ProgressEvent) {}
	}

	emit(ProgressEvent{pctReading, StageReading, "lendo arquivo"})
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	rows, err := decodeSheet(data)
	if err != nil {
		return nil, err
	}

	emit(ProgressEvent{pctParsing, StageParsing, fmt.Sprintf("%d linhas decodificadas", len(rows))})
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	emit(ProgressEvent{pctConverting, StageConverting, "detectando colunas"})
	cols, headerIdx, err := detectColumns(rows)
	if err != nil {
		return nil, err
	}
	emit(ProgressEvent{pctAnalyzing, StageAnalyzing, fmt.Sprintf("cabeçalho na linha %d", headerIdx+1)})
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	dataRows := rows[headerIdx+1:]
	report := domain.ParseReport{
		Rows:     []domain.NormalizedRow{},
		Errors:   []string{},
		Warnings: []string{},
		Stats:    domain.ParseStats{TotalValue: decimal.Zero},
	}

	chunk := s.cfg.ChunkRows
	if chunk <= 0 {
		chunk = defaultChunkRows
	}

	for i, row := range dataRows {
		if i%chunk == 0 {
			if err := ctx.Err(); err != nil {
				return nil, domain.ErrCancelled
			}
			emit(ProgressEvent{chunkPct(i, len(dataRows)), StageProcessing, fmt.Sprintf("processando linha %d de %d", i+1, len(dataRows))})
		}

		description := cellAt(row, cols.Description)
		normalized := domain.NormalizedRow{
			Date:                parseDate(cellAt(row, cols.Date)),
			PaymentType:         classifyPayment(description),
			Identifier:          extractCPF(description),
			Value:               resolveValue(row, cols),
			OriginalDescription: description,
		}
		validateRow(&normalized)

		report.Stats.TotalRows++
		switch normalized.ValidationStatus {
		case domain.RowError:
			report.Stats.RowsWithErrors++
			report.Errors = append(report.Errors, fmt.Sprintf("linha %d: %s", headerIdx+i+2, normalized.ValidationMessage))
		case domain.RowWarning:
			report.Stats.RowsWithWarnings++
			report.Warnings = append(report.Warnings, fmt.Sprintf("linha %d: %s", headerIdx+i+2, normalized.ValidationMessage))
			report.Rows = append(report.Rows, normalized)
		default:
			report.Stats.ValidRows++
			report.Stats.TotalValue = report.Stats.TotalValue.Add(normalized.Value.Abs())
			report.Rows = append(report.Rows, normalized)
		}
	}
	report.Success = len(report.Errors) == 0

	emit(ProgressEvent{pctNormalizing, StageNormalizing, "calculando hashes de origem"})
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	records := make([]domain.TransactionRecord, 0, len(report.Rows))
	for _, row := range report.Rows {
		cents := valueCents(row)
		records = append(records, domain.TransactionRecord{
			NormalizedRow: row,
			OriginHash:    originHash(row.Date, row.Identifier, cents, row.OriginalDescription),
			ValueCents:    cents,
			Status:        domain.RecordPendente,
			OperationDate: operationDate,
		})
	}

	emit(ProgressEvent{pctIndexing, StageIndexing, "montando índice por centavos"})
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	index := buildIndex(records)

	emit(ProgressEvent{pctDone, StageDone, fmt.Sprintf("%d registros gerados", len(records))})
	return &domain.IngestResult{Report: report, Index: index, Records: records}, nil
}
