package ingestion

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ingestion-service/internal/domain"

	"github.com/shopspring/decimal"
)

// canonicalDateLayout é o formato canônico de data do pipeline (DD-MM-YYYY).
const canonicalDateLayout = "02-01-2006"

// dateLayouts são as formas string aceitas, dia/mês/ano com posições fixas.
var dateLayouts = []string{
	"02/01/2006",
	"02/01/06",
	"02-01-2006",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006 15:04:05",
	"2006-01-02T15:04:05",
}

// parseDate converte uma célula de data em DD-MM-YYYY canônico. Aceita
// formas string comuns e o serial numérico interno do Excel. Entrada não
// reconhecida devolve string vazia; o validador decide o que fazer com ela.
func parseDate(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDateLayout)
		}
	}

	// serial Excel; o intervalo 35000..47000 (~1995..2028) evita tratar
	// valores monetários ou códigos como datas
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		if f > 35000 && f < 47000 {
			return excelSerialToDate(f).Format(canonicalDateLayout)
		}
	}

	return ""
}

// excelSerialToDate converte o serial de dias do Excel (base 1899-12-30).
func excelSerialToDate(serial float64) time.Time {
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	frac := serial - float64(int64(serial))
	duration := time.Duration(int64(serial)*24) * time.Hour
	duration += time.Duration(frac * 24 * float64(time.Hour))
	return base.Add(duration)
}

// parseMoney interpreta valores monetários brasileiros/anglo: remove R$ e
// espaços, resolve separador de milhar vs decimal pela última ocorrência de
// '.' e ',', aceita negativos por sinal ou parênteses. Entrada não numérica
// ou vazia vale zero.
func parseMoney(cell string) decimal.Decimal {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	if lastComma > lastDot {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if lastDot > lastComma {
		if strings.Count(s, ".") > 1 {
			parts := strings.Split(s, ".")
			decimalPart := parts[len(parts)-1]
			intPart := strings.Join(parts[:len(parts)-1], "")
			s = intPart + "." + decimalPart
		}
	} else {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	var filtered []rune
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			filtered = append(filtered, r)
		}
	}
	s = string(filtered)
	if s == "" || s == "." {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d.Round(2)
}

// resolveValue calcula o valor da linha: coluna única de valor quando
// existe; senão crédito se não zerado, senão -abs(débito).
func resolveValue(row []string, cols columnMap) decimal.Decimal {
	if cols.Value >= 0 {
		return parseMoney(cellAt(row, cols.Value))
	}
	credit := parseMoney(cellAt(row, cols.Credit))
	if !credit.IsZero() {
		return credit
	}
	return parseMoney(cellAt(row, cols.Debit)).Abs().Neg()
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// paymentPattern associa um rótulo de tipo de pagamento ao padrão que o
// reconhece no histórico normalizado.
type paymentPattern struct {
	label   domain.PaymentType
	pattern *regexp.Regexp
}

// paymentPatterns é testado em ordem e o primeiro casamento vence. A ordem
// importa: "TRANSFERENCIA PIX RECEBIDA" precisa casar com PIX antes do
// padrão genérico de transferência.
var paymentPatterns = []paymentPattern{
	{domain.PaymentPixRecebido, regexp.MustCompile(`PIX\s*(RECEB|CRED|ENTRADA)|RECEB\w*\s+PIX`)},
	{domain.PaymentPixEnviado, regexp.MustCompile(`PIX\s*(ENVIAD|ENV|DEB|SAIDA)|ENVIO\s+PIX`)},
	{domain.PaymentTed, regexp.MustCompile(`\bTED\b`)},
	{domain.PaymentDoc, regexp.MustCompile(`\bDOC\b`)},
	{domain.PaymentCartao, regexp.MustCompile(`CARTAO|\bCARD\b|MAQUININHA`)},
	{domain.PaymentDinheiro, regexp.MustCompile(`DINHEIRO|ESPECIE`)},
	{domain.PaymentBoleto, regexp.MustCompile(`BOLETO|\bBOL\b|TITULO`)},
	{domain.PaymentTransferencia, regexp.MustCompile(`TRANSFERENCIA|TRANSF`)},
	{domain.PaymentDeposito, regexp.MustCompile(`DEPOSITO|\bDEP\b`)},
	{domain.PaymentSaque, regexp.MustCompile(`SAQUE|RETIRADA`)},
}

// classifyPayment rotula o histórico com o tipo de pagamento; sem
// casamento, OUTROS.
func classifyPayment(description string) domain.PaymentType {
	normalized := normalizeText(description)
	for _, p := range paymentPatterns {
		if p.pattern.MatchString(normalized) {
			return p.label
		}
	}
	return domain.PaymentOutros
}

// cpfRegex reconhece um CPF de 11 dígitos com pontuação opcional.
var cpfRegex = regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`)

var nonDigitRegex = regexp.MustCompile(`\D`)

// extractCPF devolve os dígitos do primeiro CPF encontrado no histórico,
// ou string vazia.
func extractCPF(description string) string {
	match := cpfRegex.FindString(description)
	if match == "" {
		return ""
	}
	return nonDigitRegex.ReplaceAllString(match, "")
}
