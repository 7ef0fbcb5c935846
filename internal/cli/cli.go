// Package cli implements the interactive terminal menu.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/dalfonso89/currency-converter/internal/apperrors"
	"github.com/dalfonso89/currency-converter/internal/format"
	"github.com/dalfonso89/currency-converter/internal/history"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/service"
)

const (
	keywordExit       = "exit"
	keywordCurrencies = "currencies"
	keywordHistory    = "history"

	currencyColumns    = 3
	descriptionWidth   = 20
	separatorLineWidth = 30
)

// Options controls terminal capabilities
type Options struct {
	Emoji bool
	Color bool
}

// DetectOptions enables colour when out is a terminal and emoji when it is a
// terminal on a platform other than Windows.
func DetectOptions(out *os.File) Options {
	isTerminal := term.IsTerminal(int(out.Fd()))
	return Options{
		Emoji: isTerminal && runtime.GOOS != "windows",
		Color: isTerminal,
	}
}

// CLI runs the interactive menu
type CLI struct {
	converter *service.Converter
	history   *history.Store
	logger    *logger.Logger
	input     io.Reader
	out       io.Writer
	options   Options

	title   *color.Color
	success *color.Color
	failure *color.Color
	warning *color.Color

	lines chan string
}

// New creates a CLI reading from input and writing to out
func New(converter *service.Converter, store *history.Store, logger *logger.Logger, input io.Reader, out io.Writer, options Options) *CLI {
	cli := &CLI{
		converter: converter,
		history:   store,
		logger:    logger,
		input:     input,
		out:       out,
		options:   options,
		title:     color.New(color.FgCyan, color.Bold),
		success:   color.New(color.FgGreen),
		failure:   color.New(color.FgRed),
		warning:   color.New(color.FgYellow),
	}

	if !options.Color {
		for _, c := range []*color.Color{cli.title, cli.success, cli.failure, cli.warning} {
			c.DisableColor()
		}
	}
	return cli
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
func (cli *CLI) Run(ctx context.Context) error {
	cli.startReader()

	cli.banner()

	for {
		fmt.Fprintln(cli.out, "\nWhat would you like to do?")
		choice, ok := cli.prompt(ctx, "1. Convert currencies\n2. Show available currencies\n3. View history\n4. Exit\nEnter choice (1-4): ")
		if !ok {
			return cli.finish(ctx)
		}

		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "4", keywordExit:
			cli.goodbye()
			return nil
		case "2", keywordCurrencies:
			cli.showCurrencies(ctx)
		case "3", keywordHistory:
			cli.showHistory()
		case "1":
			if !cli.convertFlow(ctx) {
				return cli.finish(ctx)
			}
		default:
			fmt.Fprintln(cli.out, "Invalid option. Please try again.")
		}
	}
}

func (cli *CLI) banner() {
	heading := "Enhanced Currency Converter"
	if cli.options.Emoji {
		heading = "💱 " + heading + " 💱"
	}
	cli.title.Fprintln(cli.out, heading)
	fmt.Fprintln(cli.out, "Type 'exit' at any prompt to quit")
	fmt.Fprintln(cli.out, "Type 'currencies' to see available currencies")
	fmt.Fprintln(cli.out, "Type 'history' to see your recent conversions")
}

func (cli *CLI) goodbye() {
	fmt.Fprintln(cli.out, "Thank you for using the Currency Converter!")
}

// finish ends the session after exit at a prompt, end of input or cancellation
func (cli *CLI) finish(ctx context.Context) error {
	fmt.Fprintln(cli.out)
	cli.goodbye()
	return ctx.Err()
}

// convertFlow asks for base, targets and amount. It returns false when the
// session should end.
func (cli *CLI) convertFlow(ctx context.Context) bool {
	base, action := cli.promptCode(ctx, "Enter base currency (e.g., USD): ")
	if action != actionContinue {
		return action != actionQuit
	}

	targetInput, action := cli.promptCode(ctx, "Enter target currency/currencies (e.g., EUR,GBP,JPY): ")
	if action != actionContinue {
		return action != actionQuit
	}
	targets := service.ParseCodes(targetInput)

	amountInput, ok := cli.prompt(ctx, "Enter amount: ")
	if !ok {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(amountInput), keywordExit) {
		return false
	}

	amount, err := service.ParseAmount(amountInput)
	if err != nil {
		cli.failure.Fprintln(cli.out, format.Sentence(err.Error()))
		return true
	}

	cli.convert(ctx, base, targets, amount)
	return true
}

type promptAction int

const (
	actionContinue promptAction = iota
	actionHandled
	actionQuit
)

// promptCode reads an upper-cased answer and handles the menu keywords
func (cli *CLI) promptCode(ctx context.Context, label string) (string, promptAction) {
	answer, ok := cli.prompt(ctx, label)
	if !ok {
		return "", actionQuit
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case keywordExit:
		return "", actionQuit
	case keywordCurrencies:
		cli.showCurrencies(ctx)
		return "", actionHandled
	case keywordHistory:
		cli.showHistory()
		return "", actionHandled
	}
	return service.NormalizeCode(answer), actionContinue
}

func (cli *CLI) convert(ctx context.Context, base string, targets []string, amount float64) {
	result, err := cli.converter.Convert(ctx, base, targets, amount)

	if len(result.InvalidTargets) > 0 {
		cli.failure.Fprintf(cli.out, "Error: Invalid target currency code(s): %s\n", strings.Join(result.InvalidTargets, ", "))
	}
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeInvalidCurrencyCode && len(result.InvalidTargets) > 0 {
			return
		}
		cli.failure.Fprintf(cli.out, "Error: %s.\n", err.Error())
		return
	}

	for _, target := range result.FailedTargets {
		cli.failure.Fprintf(cli.out, "Could not fetch rate for %s.\n", target)
	}
	for _, record := range result.Records {
		cli.success.Fprintln(cli.out, format.Conversion(record))
	}
	for _, warning := range result.Warnings {
		cli.warning.Fprintln(cli.out, "Warning: "+warning)
	}
}

func (cli *CLI) showCurrencies(ctx context.Context) {
	catalog, err := cli.converter.Catalog(ctx)
	if err != nil {
		cli.logger.Debugf("Catalog unavailable: %v", err)
		cli.failure.Fprintln(cli.out, "Error: Could not retrieve currency list.")
		return
	}

	cli.title.Fprintln(cli.out, "\n=== Available Currencies ===")
	codes := catalog.Codes()
	for i, code := range codes {
		fmt.Fprintf(cli.out, "%s: %-*s", code, descriptionWidth, format.Truncate(catalog[code].Description, descriptionWidth))
		if (i+1)%currencyColumns == 0 || i == len(codes)-1 {
			fmt.Fprintln(cli.out)
		} else {
			fmt.Fprint(cli.out, "  ")
		}
	}
	fmt.Fprintln(cli.out, strings.Repeat("=", separatorLineWidth))
}

func (cli *CLI) showHistory() {
	conversions := cli.history.Recent()
	if len(conversions) == 0 {
		fmt.Fprintln(cli.out, "No conversion history available.")
		return
	}

	arrow := "->"
	if cli.options.Emoji {
		arrow = "→"
	}

	cli.title.Fprintln(cli.out, "\n=== Recent Conversions ===")
	for i, record := range conversions {
		fmt.Fprintf(cli.out, "%d. %s\n", i+1, format.HistoryEntry(record, arrow))
	}
	fmt.Fprintln(cli.out, strings.Repeat("=", separatorLineWidth))
}

// startReader feeds input lines into cli.lines so prompts can also watch ctx
func (cli *CLI) startReader() {
	cli.lines = make(chan string)
	go func() {
		defer close(cli.lines)
		scanner := bufio.NewScanner(cli.input)
		for scanner.Scan() {
			cli.lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			cli.logger.Warnf("Reading input failed: %v", err)
		}
	}()
}

// prompt prints label and waits for one line. ok is false once input is
// exhausted or ctx is done.
func (cli *CLI) prompt(ctx context.Context, label string) (string, bool) {
	fmt.Fprint(cli.out, label)
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-cli.lines:
		return line, ok
	}
}

