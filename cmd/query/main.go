package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/rickgao/quotefeed/internal/analytics"
	"github.com/rickgao/quotefeed/internal/config"
	"github.com/rickgao/quotefeed/internal/export"
	"github.com/rickgao/quotefeed/internal/feed"
	"github.com/rickgao/quotefeed/internal/files"
	"github.com/rickgao/quotefeed/internal/logging"
	"github.com/rickgao/quotefeed/internal/model"
	"github.com/rickgao/quotefeed/internal/scanner"
)

func main() {
	configPath := flag.String("config", "configs/quotefeed.yaml", "path to config file")
	date := flag.String("date", "", "trading date (YYYYMMDD)")
	symbol := flag.String("symbol", "", "stock code")
	market := flag.String("market", "", "market (default: search feed.markets)")
	n := flag.Int("n", 20, "number of most recent trades to print")
	flag.Parse()

	if !export.ValidDate(*date) || !export.ValidSymbol(*symbol) {
		fmt.Fprintln(os.Stderr, "usage: query -date YYYYMMDD -symbol CODE [-market TSE] [-n 20]")
		os.Exit(2)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "config", *configPath, "error", err)
		os.Exit(1)
	}
	logger := logging.NewWriter(os.Stderr, cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := locate(cfg, *market, *date)
	if err != nil {
		logger.Error("feed file not found", "date", *date, "error", err)
		os.Exit(1)
	}

	day, err := feed.ParseDate(*date)
	if err != nil {
		logger.Error("invalid date", "error", err)
		os.Exit(1)
	}
	sc := scanner.New(scanner.WithLogger(logger), scanner.WithEncoding(cfg.Feed.Encoding))
	res, err := sc.ScanFile(ctx, f.Path, model.NewSymbolSet(*symbol), day)
	if err != nil {
		logger.Error("failed to scan feed", "path", f.Path, "error", err)
		os.Exit(1)
	}

	open, _ := cfg.Session.OpenOffset() // checked by Validate
	b := analytics.Build(*symbol, *date, res.Records[*symbol], analytics.Options{
		Market:  f.Market,
		Session: analytics.Session{Open: open, Enabled: cfg.Session.Enabled()},
		RunID:   uuid.New(),
	})
	printBundle(os.Stdout, b, res.Stats, *n)
}

// locate finds the feed file for date, trying each configured market when
// market is empty.
func locate(cfg *config.Config, market, date string) (files.FeedFile, error) {
	if market != "" {
		return files.Find(cfg.Feed.DataDir, market, date)
	}
	var lastErr error
	for _, m := range cfg.Feed.Markets {
		f, err := files.Find(cfg.Feed.DataDir, m, date)
		if err == nil {
			return f, nil
		}
		lastErr = err
	}
	return files.FeedFile{}, lastErr
}

func printBundle(w io.Writer, b *analytics.Bundle, scan scanner.Stats, n int) {
	fmt.Fprintf(w, "%s %s %s\n", b.Market, b.Symbol, b.Date)
	fmt.Fprintf(w, "lines %d  decode errors %d\n", scan.Lines, scan.Errors)
	fmt.Fprintf(w, "records %d  trades %d  depths %d  untimed %d  out of session %d\n\n",
		b.Counts.Records, b.Counts.Trades, b.Counts.Depths, b.Counts.Untimed, b.Counts.OutOfSession)

	s := b.Stats
	if !s.Valid {
		fmt.Fprintln(w, "no priced trades")
	} else {
		fmt.Fprintf(w, "open %s  high %s  low %s  close %s\n",
			s.Open.StringFixed(2), s.High.StringFixed(2), s.Low.StringFixed(2), s.Close.StringFixed(2))
		fmt.Fprintf(w, "change %s (%s%%)  avg %s\n",
			s.Change.StringFixed(2), s.ChangePct.StringFixed(2), s.Average.StringFixed(2))
		fmt.Fprintf(w, "trades %d  volume %d  total volume %d\n", s.TradeCount, s.Volume, s.TotalVolume)
	}
	fmt.Fprintf(w, "outer %d  inner %d  ambiguous %d\n\n", b.Sides.Buyer, b.Sides.Seller, b.Sides.Ambiguous)

	if b.Depth != nil {
		fmt.Fprintf(w, "book at %s\n", b.Depth.Time.Format(export.TimeLayout))
		for i := range max(len(b.Depth.Bids), len(b.Depth.Asks)) {
			fmt.Fprintf(w, "  %-16s %-16s\n", level(b.Depth.Bids, i), level(b.Depth.Asks, i))
		}
		fmt.Fprintln(w)
	}

	trades := b.Trades
	if n >= 0 && len(trades) > n {
		trades = trades[:n]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPRICE\tVOLUME\tSIDE\t")
	for _, t := range trades {
		price, vol := "-", "-"
		if t.Price != nil {
			price = t.Price.String()
		}
		if t.Volume != nil {
			vol = fmt.Sprint(*t.Volume)
		}
		side := t.Side.String()
		if t.PreMatch {
			side += " (pre-match)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", t.Time.Format(export.TimeLayout), price, vol, side)
	}
	tw.Flush()
}

func level(levels []model.Level, i int) string {
	if i >= len(levels) {
		return ""
	}
	return fmt.Sprintf("%s x %d", levels[i].Price, levels[i].Volume)
}
