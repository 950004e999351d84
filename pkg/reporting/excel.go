package reporting

import (
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/btc-intraday-bot/internal/backtest"
)

// WriteTradesXLSX writes a two-sheet workbook: the closed trades and a
// metrics summary
func (r *DefaultFileReporter) WriteTradesXLSX(results *backtest.Results, path string) error {
	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(summarySheet); err != nil {
		return err
	}

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, results, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, results, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates the workbook styles
func (r *DefaultFileReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7, // Currency format with $ symbol
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10, // 0.00%
	})
	if err != nil {
		return styles, err
	}

	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10,
		Font:   &excelize.Font{Color: "006400"},
	})
	if err != nil {
		return styles, err
	}

	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 10,
		Font:   &excelize.Font{Color: "8B0000"},
	})
	if err != nil {
		return styles, err
	}

	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Family: "Calibri"},
	})
	return styles, err
}

func (r *DefaultFileReporter) writeTradesSheet(fx *excelize.File, sheet string, results *backtest.Results, styles ExcelStyles) error {
	headers := []string{
		"Trade", "Entry Time", "Exit Time", "Entry Price", "Exit Price",
		"Size", "Return", "PnL", "Exit Reason", "Hold (min)",
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := fx.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for i, trade := range results.Trades {
		row := i + 2
		values := []interface{}{
			i + 1,
			trade.EntryTime.Format(time.RFC3339),
			trade.ExitTime.Format(time.RFC3339),
			trade.EntryPrice,
			trade.ExitPrice,
			trade.Size,
			trade.ReturnPct,
			trade.PnL,
			trade.Reason.String(),
			trade.ExitTime.Sub(trade.EntryTime).Minutes(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := fx.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}

		// Color the return column by sign
		returnCell, _ := excelize.CoordinatesToCellName(7, row)
		if trade.ReturnPct >= 0 {
			fx.SetCellStyle(sheet, returnCell, returnCell, styles.GreenPercentStyle)
		} else {
			fx.SetCellStyle(sheet, returnCell, returnCell, styles.RedPercentStyle)
		}

		for _, col := range []int{4, 5, 8} {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			fx.SetCellStyle(sheet, cell, cell, styles.CurrencyStyle)
		}
	}

	fx.SetColWidth(sheet, "B", "C", 22)
	fx.SetColWidth(sheet, "I", "I", 18)
	return nil
}

func (r *DefaultFileReporter) writeSummarySheet(fx *excelize.File, sheet string, results *backtest.Results, styles ExcelStyles) error {
	rows := []struct {
		label string
		value interface{}
		style int
	}{
		{"Initial Balance", results.StartBalance, styles.CurrencyStyle},
		{"Final Balance", results.EndBalance, styles.CurrencyStyle},
		{"Total Return", results.TotalReturn, styles.PercentStyle},
		{"Annualized Return", results.AnnualizedReturn, styles.PercentStyle},
		{"Max Drawdown", results.MaxDrawdown, styles.PercentStyle},
		{"Sharpe Ratio", results.SharpeRatio, 0},
		{"Sortino Ratio", results.SortinoRatio, 0},
		{"Profit Factor", results.ProfitFactor, 0},
		{"Total Trades", results.TotalTrades, 0},
		{"Winning Trades", results.WinningTrades, 0},
		{"Losing Trades", results.LosingTrades, 0},
		{"Circuit Breaker Halts", results.HaltCount, 0},
	}

	for i, row := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := fx.SetCellValue(sheet, labelCell, row.label); err != nil {
			return err
		}
		if err := fx.SetCellValue(sheet, valueCell, row.value); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, labelCell, labelCell, styles.SummaryStyle)
		if row.style != 0 {
			fx.SetCellStyle(sheet, valueCell, valueCell, row.style)
		}
	}

	// Exit breakdown below the metrics
	offset := len(rows) + 2
	headerCell, _ := excelize.CoordinatesToCellName(1, offset)
	if err := fx.SetCellValue(sheet, headerCell, "Exit Breakdown"); err != nil {
		return err
	}
	fx.SetCellStyle(sheet, headerCell, headerCell, styles.HeaderStyle)

	i := 1
	for reason, count := range results.ExitCounts {
		labelCell, _ := excelize.CoordinatesToCellName(1, offset+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, offset+i)
		fx.SetCellValue(sheet, labelCell, reason.String())
		fx.SetCellValue(sheet, valueCell, count)
		i++
	}

	fx.SetColWidth(sheet, "A", "A", 24)
	fx.SetColWidth(sheet, "B", "B", 16)
	return nil
}
