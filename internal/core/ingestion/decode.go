package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"ingestion-service/internal/domain"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decodeSheet transforma os bytes de entrada numa planilha bruta (linhas de
// células string). Tenta xlsx (excelize), depois xls legado (xlsReader) e
// por fim CSV; o formato do arquivo chega como blob opaco, sem extensão.
func decodeSheet(data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptySheet
	}

	if rows, err := decodeXLSX(data); err == nil {
		return nonEmptyRows(rows)
	}

	if rows, err := decodeXLS(data); err == nil {
		return nonEmptyRows(rows)
	}

	// bytes binários que não são xlsx nem xls não valem uma tentativa de CSV
	if bytes.IndexByte(data, 0x00) >= 0 {
		return nil, domain.ErrUndecodableInput
	}

	rows, err := decodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUndecodableInput, err)
	}
	return nonEmptyRows(rows)
}

func decodeXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("arquivo xlsx sem planilhas")
	}
	return f.GetRows(sheets[0])
}

func decodeXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("arquivo xls sem planilhas")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
	}
	var allRows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		allRows = append(allRows, cells)
	}
	return allRows, nil
}

func decodeCSV(data []byte) ([][]string, error) {
	// extratos exportados por bancos brasileiros costumam vir em ISO-8859-1
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		if err != nil {
			return nil, err
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	return reader.ReadAll()
}

// sniffDelimiter decide entre ';' e ',' contando ocorrências na primeira
// linha não vazia.
func sniffDelimiter(data []byte) rune {
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") >= strings.Count(line, ",") && strings.Contains(line, ";") {
			return ';'
		}
		return ','
	}
	return ','
}

// nonEmptyRows descarta linhas totalmente vazias e falha com ErrEmptySheet
// quando nada sobra.
func nonEmptyRows(rows [][]string) ([][]string, error) {
	var kept [][]string
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil, domain.ErrEmptySheet
	}
	return kept, nil
}
