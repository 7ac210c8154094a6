package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/rutgers-seed/proposal-portal/internal/logger"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	minColumnWidth = 15
)

// Renderer превращает набор листов в файл.
type Renderer interface {
	Format() string
	Render(w io.Writer, wb *Workbook) error
}

// RendererFor возвращает рендерер по имени формата; неизвестный формат даёт xlsx.
func RendererFor(format string) Renderer {
	if strings.EqualFold(format, FormatCSV) {
		return CSVRenderer{}
	}
	return XLSXRenderer{}
}

// Render пробует primary, при ошибке пишет fallback и возвращает фактический формат.
// В w попадает только результат успешного рендера.
func Render(w io.Writer, wb *Workbook, primary, fallback Renderer) (string, error) {
	var buf bytes.Buffer
	err := primary.Render(&buf, wb)
	if err == nil {
		_, err = w.Write(buf.Bytes())
		return primary.Format(), err
	}
	if fallback == nil {
		return "", fmt.Errorf("export: не удалось сформировать %s: %w", primary.Format(), err)
	}

	logger.Entry(logrus.Fields{"format": primary.Format(), "error": err.Error()}).
		Warn("export: переключение на запасной формат")

	buf.Reset()
	if err := fallback.Render(&buf, wb); err != nil {
		return "", fmt.Errorf("export: не удалось сформировать %s: %w", fallback.Format(), err)
	}
	_, err = w.Write(buf.Bytes())
	return fallback.Format(), err
}

// XLSXRenderer многолистовая книга через excelize.
type XLSXRenderer struct{}

func (XLSXRenderer) Format() string { return FormatXLSX }

func (XLSXRenderer) Render(w io.Writer, wb *Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	for _, sheet := range wb.Sheets() {
		name := SanitizeSheetName(sheet.Name)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("export: лист %q: %w", name, err)
		}
		if err := writeSheet(f, name, sheet); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return fmt.Errorf("export: не удалось удалить лист по умолчанию: %w", err)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: не удалось записать книгу: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sheet Sheet) error {
	var rows [][]string
	switch {
	case sheet.Headers == nil:
		rows = sheet.Rows
	case sheet.Empty():
		rows = [][]string{{NoData}}
	default:
		rows = append([][]string{sheet.Headers}, sheet.Rows...)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return fmt.Errorf("export: строка %d листа %q: %w", i+1, name, err)
		}
	}

	if sheet.Headers == nil || sheet.Empty() {
		return nil
	}
	for i, h := range sheet.Headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(max(len(h), minColumnWidth))
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// CSVRenderer плоский текстовый файл: лист метаданных, затем блоки "=== РАЗДЕЛ ===".
// Каждая ячейка в кавычках, кавычки внутри удваиваются.
type CSVRenderer struct{}

func (CSVRenderer) Format() string { return FormatCSV }

func (CSVRenderer) Render(w io.Writer, wb *Workbook) error {
	var b strings.Builder

	info := wb.InfoSheet()
	for _, row := range info.Rows {
		writeCSVRow(&b, row)
	}

	for _, sheet := range wb.Sections {
		fmt.Fprintf(&b, "\n=== %s ===\n", strings.ToUpper(sheet.Name))
		if sheet.Empty() {
			b.WriteString(NoData + "\n")
			continue
		}
		writeCSVRow(&b, sheet.Headers)
		for _, row := range sheet.Rows {
			writeCSVRow(&b, row)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSVRow(b *strings.Builder, row []string) {
	for i, v := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(v, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
