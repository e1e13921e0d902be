package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// Alipay export layout.
const (
	alipayHeaderCell     = "交易时间"
	alipayFallbackHeader = 24
	alipayColumns        = 12
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// AlipayParser reads Alipay CSV statements. Exports are GBK encoded; UTF-8 is
// accepted when the bytes are already valid UTF-8.
type AlipayParser struct {
	normalizer *Normalizer
}

// NewAlipayParser creates a parser that normalizes rows with n.
func NewAlipayParser(n *Normalizer) *AlipayParser {
	return &AlipayParser{normalizer: n}
}

// ParseFile parses an Alipay CSV statement.
func (p *AlipayParser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read Alipay file: %w", err)
	}

	text, err := decodeAlipay(content)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	header := findAlipayHeader(lines)
	if header < 0 {
		return nil, fmt.Errorf("alipay: %w", common.ErrHeaderNotFound)
	}

	var transactions []model.Transaction
	var dropped int

	for i, line := range lines[header+1:] {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells, err := splitCSVLine(line)
		if err != nil || len(cells) < alipayColumns {
			dropped++
			continue
		}

		txn, ok := p.normalizer.Normalize(RawRecord{
			Datetime:        cells[0],
			Category:        cells[1],
			Merchant:        cells[2],
			Account:         cells[3],
			Description:     cells[4],
			Type:            cells[5],
			Amount:          cells[6],
			PaymentMethod:   cells[7],
			Status:          cells[8],
			TransactionID:   cells[9],
			MerchantOrderID: cells[10],
			Note:            cells[11],
			Source:          model.SourceAlipay,
		})
		if !ok {
			dropped++
			continue
		}
		transactions = append(transactions, txn)
	}

	slog.Debug("Parsed Alipay file",
		"total_transactions", len(transactions),
		"dropped_rows", dropped)

	return transactions, nil
}

func decodeAlipay(content []byte) (string, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if utf8.Valid(content) {
		return string(content), nil
	}
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("failed to decode GBK: %w", err)
	}
	return string(decoded), nil
}

// findAlipayHeader returns the index of the column header line.
func findAlipayHeader(lines []string) int {
	for i, line := range lines {
		cells, err := splitCSVLine(line)
		if err == nil && len(cells) > 0 && cells[0] == alipayHeaderCell {
			return i
		}
	}
	if len(lines) > alipayFallbackHeader && strings.TrimSpace(lines[alipayFallbackHeader]) != "" {
		return alipayFallbackHeader
	}
	return -1
}

func splitCSVLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return nil, err
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}
	return record, nil
}
