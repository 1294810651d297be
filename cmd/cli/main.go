package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/amirasaad/sendnreceive/infra/initializer"
	"github.com/amirasaad/sendnreceive/pkg/app"
	"github.com/amirasaad/sendnreceive/pkg/config"
	"github.com/amirasaad/sendnreceive/pkg/currency"
	"github.com/amirasaad/sendnreceive/pkg/domain"
	"github.com/amirasaad/sendnreceive/pkg/ledger"
	"github.com/amirasaad/sendnreceive/pkg/money"
	"github.com/amirasaad/sendnreceive/pkg/service/rates"
	log "github.com/charmbracelet/log"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	commandTimeout = 30 * time.Second
	usage          = `Usage: cli <command> [arguments]
Commands:
  rates                               refresh and show fiat and stablecoin rates
  quote <CODE> <amount>               quote a deposit into USD (1:1 for USD and EUR)
  convert <CODE> <amount> [method]    auto-convert a deposit into USDC or EURC
Methods: Card, MobileMoney, BankTransfer, PayPal`
)

var errUsage = errors.New("invalid arguments")

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr *os.File) int {
	p := newPrinter(stdout, term.IsTerminal(int(stdout.Fd())))
	if len(args) == 0 {
		p.println(usage)
		return 2
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(stderr, "failed to load configuration:", err) //nolint:errcheck
		return 1
	}
	if cfg.Log.Level < int(log.WarnLevel) {
		cfg.Log.Level = int(log.WarnLevel)
	}

	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "failed to initialize:", err) //nolint:errcheck
		return 1
	}
	defer cleanup()
	a := app.New(deps, cfg)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := execute(ctx, a, args, p); err != nil {
		if errors.Is(err, errUsage) {
			p.println(usage)
			return 2
		}
		p.println(p.bad("error:"), err)
		return 1
	}
	return 0
}

// execute runs one command against a.
func execute(ctx context.Context, a *app.App, args []string, p *printer) error {
	switch args[0] {
	case "rates":
		return showRates(ctx, a, p)
	case "quote":
		if len(args) < 3 {
			return errUsage
		}
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[2], err)
		}
		return showQuote(ctx, a, currency.Code(strings.ToUpper(args[1])), amount, p)
	case "convert":
		if len(args) < 3 {
			return errUsage
		}
		amount, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[2], err)
		}
		var raw string
		if len(args) > 3 {
			raw = args[3]
		}
		method, err := domain.ParsePaymentMethod(raw)
		if err != nil {
			return err
		}
		return convert(ctx, a, currency.Code(strings.ToUpper(args[1])), amount, method, p)
	case "help", "-h", "--help":
		p.println(usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func showRates(ctx context.Context, a *app.App, p *printer) error {
	snap, err := a.RateSource.Refresh(ctx)
	if err != nil && !errors.Is(err, rates.ErrUsingCachedRates) {
		return err
	}
	if err != nil {
		p.println(p.warn("Providers unavailable, showing " + string(snap.Status) + " rates"))
	}

	p.println(p.head("Rates per USD"), "status:", p.status(snap.Status),
		"updated:", snap.UpdatedAt.Format(time.RFC3339))
	codes := make([]currency.Code, 0, len(snap.Fiat))
	for code := range snap.Fiat {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	for _, code := range codes {
		p.printf("  %-4s %12.4f\n", code, snap.Fiat[code])
	}

	if len(snap.Stablecoins) > 0 {
		p.println(p.head("Stablecoins (USD)"))
		for _, coin := range currency.Stablecoins() {
			id := coinID(coin)
			if price, ok := snap.Stablecoins.Price(id, "usd"); ok {
				p.printf("  %-4s %12.4f\n", coin, price)
			}
		}
	}
	return nil
}

func showQuote(ctx context.Context, a *app.App, code currency.Code, amount float64, p *printer) error {
	q, err := a.QuoteEngine.GetQuote(ctx, code, amount)
	if err != nil {
		return err
	}
	p.printf("%s %s = %s %s  (rate %.6f, %s",
		money.Format(q.Amount), q.Base, p.ok(money.Format(q.TargetAmount)), q.Target, q.Rate, p.status(q.Source))
	if q.Provider != "" {
		p.printf(" via %s", q.Provider)
	}
	p.println(")")
	return nil
}

func convert(
	ctx context.Context,
	a *app.App,
	code currency.Code,
	amount float64,
	method domain.PaymentMethod,
	p *printer,
) error {
	res := a.Orchestrator.PerformAutoConversion(ctx, code, amount, method)
	if res.Success {
		p.println(p.ok("✔ Converted"), money.Format(res.Amount), res.Currency, "→",
			money.Format(res.AmountToMint), res.Stablecoin, "("+a.Orchestrator.Mode()+")")
		p.println("  transaction:", res.TransactionID, " user:", res.UserID)
	} else {
		p.println(p.bad("✘ Conversion failed:"), res.Error)
	}

	b := a.Ledger.Balances()
	p.println(p.head("Balances"), "USDC", b.USDC.StringFixed(2), " EURC", b.EURC.StringFixed(2))
	for _, e := range a.Ledger.RecentEvents() {
		p.println(" ", p.event(e.Type), e.Message)
	}
	if !res.Success {
		return res.Err
	}
	return nil
}

func coinID(coin currency.Code) string {
	if coin == currency.EURC {
		return "euro-coin"
	}
	return "usd-coin"
}

// ---- Output ----

type printer struct {
	w    io.Writer
	ok   func(a ...any) string
	warn func(a ...any) string
	bad  func(a ...any) string
	head func(a ...any) string
}

func newPrinter(w io.Writer, colored bool) *printer {
	mk := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return &printer{
		w:    w,
		ok:   mk(color.FgGreen, color.Bold),
		warn: mk(color.FgYellow),
		bad:  mk(color.FgRed, color.Bold),
		head: mk(color.FgCyan, color.Bold),
	}
}

func (p *printer) println(a ...any) {
	fmt.Fprintln(p.w, a...) //nolint:errcheck
}

func (p *printer) printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...) //nolint:errcheck
}

func (p *printer) status(s domain.QuoteSource) string {
	switch s {
	case domain.SourceLive:
		return p.ok(string(s))
	case domain.SourceCached:
		return p.warn(string(s))
	default:
		return p.bad(string(s))
	}
}

func (p *printer) event(t ledger.EventType) string {
	label := fmt.Sprintf("[%s]", t)
	switch t {
	case ledger.EventSuccess:
		return p.ok(label)
	case ledger.EventError:
		return p.bad(label)
	default:
		return label
	}
}
