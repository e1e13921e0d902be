package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// wechatHeaderScan is how many leading rows are searched for the header.
const wechatHeaderScan = 20

type wechatField int

const (
	wfDatetime wechatField = iota
	wfCategory
	wfMerchant
	wfDescription
	wfType
	wfAmount
	wfPaymentMethod
	wfStatus
	wfTransactionID
	wfMerchantOrderID
	wfNote
	wfCount
)

// wechatHeaders maps header substrings to fields. The first field whose
// markers match a header cell claims that column.
var wechatHeaders = []struct {
	markers []string
	field   wechatField
}{
	{field: wfDatetime, markers: []string{"交易时间", "支付时间", "时间"}},
	{field: wfCategory, markers: []string{"交易类型", "类型"}},
	{field: wfMerchant, markers: []string{"交易对方", "对方"}},
	{field: wfDescription, markers: []string{"商品"}},
	{field: wfType, markers: []string{"收/支", "收支"}},
	{field: wfAmount, markers: []string{"金额"}},
	{field: wfPaymentMethod, markers: []string{"支付方式", "付款方式"}},
	{field: wfStatus, markers: []string{"交易状态", "状态"}},
	{field: wfTransactionID, markers: []string{"交易单号", "交易订单号"}},
	{field: wfMerchantOrderID, markers: []string{"商户单号", "商家订单号"}},
	{field: wfNote, markers: []string{"备注"}},
}

// wechatDefaultColumns is the standard export layout, used for any column
// the header does not name.
var wechatDefaultColumns = [wfCount]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// WeChatParser reads WeChat Pay XLSX statements.
type WeChatParser struct {
	normalizer *Normalizer
}

// NewWeChatParser creates a parser that normalizes rows with n.
func NewWeChatParser(n *Normalizer) *WeChatParser {
	return &WeChatParser{normalizer: n}
}

// ParseFile parses the first worksheet of a WeChat Pay workbook.
func (p *WeChatParser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open WeChat Pay workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close workbook", "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheet found in WeChat Pay workbook: %w", common.ErrUnsupportedFormat)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", sheets[0], err)
	}

	header := -1
	for i := 0; i < len(rows) && i < wechatHeaderScan; i++ {
		if len(rows[i]) > 0 && strings.Contains(strings.TrimSpace(rows[i][0]), "交易时间") {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, fmt.Errorf("wechat pay: %w", common.ErrHeaderNotFound)
	}

	columns := mapWeChatColumns(rows[header])

	var transactions []model.Transaction
	var dropped int

	for i, row := range rows[header+1:] {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(row) == 0 {
			continue
		}

		cell := func(f wechatField) string {
			idx := columns[f]
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		datetime := cell(wfDatetime)
		if datetime == "" || datetime == "/" {
			continue
		}

		txn, ok := p.normalizer.Normalize(RawRecord{
			Datetime:        datetime,
			Category:        cell(wfCategory),
			Merchant:        cell(wfMerchant),
			Description:     cell(wfDescription),
			Type:            cell(wfType),
			Amount:          cell(wfAmount),
			PaymentMethod:   cell(wfPaymentMethod),
			Status:          cell(wfStatus),
			TransactionID:   cell(wfTransactionID),
			MerchantOrderID: cell(wfMerchantOrderID),
			Note:            cell(wfNote),
			Source:          model.SourceWeChatPay,
		})
		if !ok {
			dropped++
			continue
		}
		transactions = append(transactions, txn)
	}

	slog.Debug("Parsed WeChat Pay file",
		"sheet", sheets[0],
		"total_transactions", len(transactions),
		"dropped_rows", dropped)

	return transactions, nil
}

func mapWeChatColumns(header []string) [wfCount]int {
	columns := wechatDefaultColumns
	claimed := make(map[wechatField]bool)

	for idx, raw := range header {
		col := strings.ToLower(strings.TrimSpace(raw))
		if col == "" {
			continue
		}
		for _, h := range wechatHeaders {
			if containsAny(col, h.markers) {
				if !claimed[h.field] {
					columns[h.field] = idx
					claimed[h.field] = true
				}
				break
			}
		}
	}

	return columns
}
