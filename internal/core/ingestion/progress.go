package ingestion

// Stage identifica a etapa do pipeline sendo reportada.
type Stage string

// Etapas fixas do pipeline, na ordem em que ocorrem.
const (
	StageReading     Stage = "reading"
	StageParsing     Stage = "parsing"
	StageConverting  Stage = "converting"
	StageAnalyzing   Stage = "analyzing"
	StageProcessing  Stage = "processing"
	StageNormalizing Stage = "normalizing"
	StageIndexing    Stage = "indexing"
	StageDone        Stage = "done"
)

// Percentuais fixos de cada etapa; StageProcessing progride de 45 a 80 por
// bloco de linhas.
const (
	pctReading        = 5
	pctParsing        = 15
	pctConverting     = 25
	pctAnalyzing      = 35
	pctProcessingFrom = 45
	pctProcessingTo   = 80
	pctNormalizing    = 85
	pctIndexing       = 95
	pctDone           = 100
)

// ProgressEvent é um evento discreto de progresso. Os percentuais são
// monotônicos e o evento final é sempre 100; a entrega é melhor esforço e
// um consumidor lento pode observar eventos coalescidos.
type ProgressEvent struct {
	Percentage int    `json:"percentage"`
	Stage      Stage  `json:"stage"`
	Message    string `json:"message"`
}

// ProgressFunc recebe eventos de progresso durante uma ingestão.
type ProgressFunc func(ProgressEvent)

// chunkPct interpola o percentual de processamento para done de total
// linhas, limitado à faixa 45..80.
func chunkPct(done, total int) int {
	if total <= 0 {
		return pctProcessingTo
	}
	pct := pctProcessingFrom + (pctProcessingTo-pctProcessingFrom)*done/total
	if pct > pctProcessingTo {
		pct = pctProcessingTo
	}
	return pct
}
