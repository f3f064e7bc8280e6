package eod

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type tradeLine struct {
	Time, Symbol, Side string
	Qty                int
	Price              float64
	OrderID, Reason    string
}

type aggRow struct {
	BuyQty      int
	BuyValue    float64
	SellQty     int
	SellValue   float64
	RealizedPnL float64
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func istNow() time.Time { return time.Now().In(time.FixedZone("IST", 19800)) }

func todaysTradeFile(t time.Time) string {
	return filepath.Join(logDir(), t.Format("2006-01-02")+".txt")
}

func eodCSVPath(t time.Time) string {
	return filepath.Join(logDir(), "eod", t.Format("2006-01-02")+".csv")
}

// SummarizeDay aggregates the day's trade journal into a CSV summary.
// A close counts on whichever side flattens the position, so CLOSE lines
// are folded into the opposing side of the entry they offset.
func SummarizeDay(t time.Time) (string, error) {
	inPath := todaysTradeFile(t)
	if _, err := os.Stat(inPath); err != nil {
		return "", nil
	}
	f, err := os.Open(inPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	row := aggRow{}
	var symbol string
	netQty := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var tl tradeLine
		if err := json.Unmarshal([]byte(sc.Text()), &tl); err != nil {
			continue
		}
		symbol = tl.Symbol
		side := tl.Side
		if side == "CLOSE" {
			// Close lines carry the signed held quantity.
			if tl.Qty < 0 {
				tl.Qty = -tl.Qty
			}
			if netQty > 0 {
				side = "SELL"
			} else {
				side = "BUY"
			}
		}
		switch side {
		case "BUY":
			row.BuyQty += tl.Qty
			row.BuyValue += float64(tl.Qty) * tl.Price
			netQty += tl.Qty
		case "SELL":
			row.SellQty += tl.Qty
			row.SellValue += float64(tl.Qty) * tl.Price
			netQty -= tl.Qty
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if row.BuyQty == 0 && row.SellQty == 0 {
		return "", nil
	}

	outPath := eodCSVPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	defer w.Flush()
	if err := w.Write([]string{"symbol", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "realized_pnl", "gross_buy_value", "gross_sell_value"}); err != nil {
		return "", err
	}

	var buyAvg, sellAvg float64
	if row.BuyQty > 0 {
		buyAvg = row.BuyValue / float64(row.BuyQty)
	}
	if row.SellQty > 0 {
		sellAvg = row.SellValue / float64(row.SellQty)
	}
	matched := row.BuyQty
	if row.SellQty < matched {
		matched = row.SellQty
	}
	row.RealizedPnL = float64(matched) * (sellAvg - buyAvg)

	rec := []string{
		symbol,
		strconv.Itoa(row.BuyQty), fmt.Sprintf("%.4f", buyAvg),
		strconv.Itoa(row.SellQty), fmt.Sprintf("%.4f", sellAvg),
		fmt.Sprintf("%.2f", row.RealizedPnL),
		fmt.Sprintf("%.2f", row.BuyValue), fmt.Sprintf("%.2f", row.SellValue),
	}
	if err := w.Write(rec); err != nil {
		return "", err
	}
	return outPath, nil
}

// SummarizeToday writes the summary for the current IST session day.
func SummarizeToday() (string, error) { return SummarizeDay(istNow()) }
