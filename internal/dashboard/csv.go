package dashboard

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/starlink-stock/stockpro/internal/metrics"
	"github.com/starlink-stock/stockpro/internal/store"
)

const csvBufferSize = 32 * 1024

// currency renders amounts with Brazilian digit grouping, matching how the
// shop reads its reports.
var currency = message.NewPrinter(language.BrazilianPortuguese)

type csvStreamer struct {
	buf *bufio.Writer
	csv *csv.Writer
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer}
}

func (s *csvStreamer) writeComment(line string) error {
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n") + "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	return s.csv.Write(row)
}

func (s *csvStreamer) Close() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	return s.buf.Flush()
}

func writeOverviewCSV(w io.Writer, snap store.Snapshot, generatedAt time.Time) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeComment("# Report: Painel Starlink Stock Pro"); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Gerado em: %s", generatedAt.Format("02/01/2006 15:04"))); err != nil {
		return err
	}

	summary := metrics.Summarize(snap)
	summaryRows := [][]string{
		{"Indicador", "Valor"},
		{"Valor do estoque atual", formatCurrency(summary.CurrentInventoryValue)},
		{"Receita potencial", formatCurrency(summary.PotentialRevenue)},
		{"Lucro potencial restante", formatCurrency(summary.PotentialRemainingProfit)},
		{"Investimento histórico total", formatCurrency(summary.TotalHistoricalInvestment)},
		{"Receita total", formatCurrency(summary.TotalRevenue)},
		{"Lucro total", formatCurrency(summary.TotalProfit)},
		{"Frete total", formatCurrency(summary.TotalShipping)},
		{"Margem restante (%)", formatPercent(summary.RemainingMarginPct)},
		{"Produtos com estoque baixo", strconv.Itoa(summary.LowStockCount)},
	}
	for _, row := range summaryRows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", ""}); err != nil {
		return err
	}

	if err := streamer.writeRow([]string{"Produto", "SKU", "Estoque", "Receita projetada", "Margem (%)", "Estoque baixo"}); err != nil {
		return err
	}
	for _, row := range metrics.Health(snap) {
		lowStock := "Não"
		if row.LowStock {
			lowStock = "Sim"
		}
		if err := streamer.writeRow([]string{
			row.Name,
			row.SKU,
			strconv.Itoa(row.Stock),
			formatCurrency(row.ProjectedRevenue),
			formatPercent(row.MarginPct),
			lowStock,
		}); err != nil {
			return err
		}
	}
	if err := streamer.writeRow([]string{"", "", "", "", "", ""}); err != nil {
		return err
	}

	if err := streamer.writeRow([]string{"Mais vendidos", "Quantidade"}); err != nil {
		return err
	}
	for _, seller := range metrics.TopSellers(snap, metrics.TopSellersLimit) {
		if err := streamer.writeRow([]string{seller.Name, strconv.Itoa(seller.Quantity)}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func formatCurrency(v float64) string {
	return currency.Sprintf("R$ %.2f", v)
}

func formatPercent(v float64) string {
	return currency.Sprintf("%.1f", v)
}
