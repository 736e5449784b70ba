package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"ingestion-service/internal/api/responses"
	"ingestion-service/internal/core/ingestion"
	"ingestion-service/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IngestionHandler lida com as requisições da API de ingestão de extratos.
type IngestionHandler struct {
	service ingestion.Service
}

// NewIngestionHandler cria um novo handler de ingestão.
func NewIngestionHandler(service ingestion.Service) *IngestionHandler {
	return &IngestionHandler{service: service}
}

// HandleIngest processa o upload de um extrato bancário (.csv, .xls, .xlsx)
// e devolve o relatório de parsing, os registros e o índice por centavos.
func (h *IngestionHandler) HandleIngest(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo de extrato (.csv, .xls, .xlsx) não encontrado ou inválido")
		return
	}

	operationDate := c.PostForm("operationDate")
	if _, err := time.Parse("02-01-2006", operationDate); err != nil {
		responses.Error(c, http.StatusBadRequest, "Campo operationDate ausente ou fora do formato DD-MM-YYYY")
		return
	}

	opts := ingestion.Options{
		ForceSync: c.PostForm("sync") == "true",
		OnProgress: func(ev ingestion.ProgressEvent) {
			responses.Logger().Debug("progresso da ingestão",
				zap.Int("pct", ev.Percentage),
				zap.String("stage", string(ev.Stage)),
				zap.String("msg", ev.Message))
		},
	}
	if ms := c.PostForm("timeoutMs"); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil || n <= 0 {
			responses.Error(c, http.StatusBadRequest, "Campo timeoutMs inválido")
			return
		}
		opts.Timeout = time.Duration(n) * time.Millisecond
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de extrato")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível ler o arquivo de extrato")
		return
	}

	result, err := h.service.Ingest(c.Request.Context(), data, operationDate, opts)
	if err != nil {
		h.writeIngestError(c, err)
		return
	}

	responses.Success(c, result, fmt.Sprintf("%d registros processados", len(result.Records)))
}

// HandleReindex reconstrói o índice por centavos a partir de registros já
// persistidos, sem reprocessar a planilha.
func (h *IngestionHandler) HandleReindex(c *gin.Context) {
	var records []domain.TransactionRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo inválido: esperado um array de registros", err.Error())
		return
	}

	index := h.service.Reindex(records)
	responses.Success(c, index, fmt.Sprintf("índice reconstruído para %d registros", len(records)))
}

func (h *IngestionHandler) writeIngestError(c *gin.Context, err error) {
	var fbErr *domain.FallbackError

	switch {
	case domain.IsStructural(err):
		responses.Error(c, http.StatusUnprocessableEntity, "Planilha rejeitada", err.Error())
	case errors.Is(err, domain.ErrCancelled):
		responses.Error(c, http.StatusRequestTimeout, "Ingestão cancelada", err.Error())
	case errors.As(err, &fbErr):
		responses.Error(c, http.StatusInternalServerError, "Falha no processamento e no fallback", fbErr.Background.Error(), fbErr.Sync.Error())
	case errors.Is(err, domain.ErrTimeout):
		responses.Error(c, http.StatusGatewayTimeout, "Tempo limite excedido", err.Error())
	default:
		responses.Error(c, http.StatusInternalServerError, "Erro ao processar o extrato", err.Error())
	}
}
