package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/coffee-diary/internal/classification"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// Reviewer walks the user through uncertain classifications and collects
// their decisions as overrides.
type Reviewer struct {
	reader  *LineReader
	writer  io.Writer
	display *classification.Display
	now     func() time.Time
}

// NewReviewer creates a reviewer reading answers from r and writing prompts to w.
func NewReviewer(r io.Reader, w io.Writer, display *classification.Display) *Reviewer {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Reviewer{
		reader:  NewLineReader(r),
		writer:  w,
		display: display,
		now:     time.Now,
	}
}

// NeedsReview reports whether txn is unconfirmed and below the confidence threshold.
func NeedsReview(txn model.CoffeeTransaction, threshold float64) bool {
	if txn.IsConfirmed != nil && *txn.IsConfirmed {
		return false
	}
	return txn.Confidence < threshold
}

// Review prompts for each transaction in turn. It stops early on quit or end
// of input and returns the overrides collected so far, even with an error.
func (rv *Reviewer) Review(ctx context.Context, txns []model.CoffeeTransaction) ([]model.Override, error) {
	var overrides []model.Override

	for i, txn := range txns {
		if _, err := fmt.Fprintln(rv.writer, RenderBox(
			fmt.Sprintf("Purchase %d of %d", i+1, len(txns)),
			rv.describe(txn),
		)); err != nil {
			return overrides, fmt.Errorf("failed to write transaction box: %w", err)
		}

		choice, err := rv.promptChoice(ctx)
		if errors.Is(err, io.EOF) {
			return overrides, nil
		}
		if err != nil {
			return overrides, err
		}

		yes, no := true, false
		o := model.Override{TransactionID: txn.ID, ConfirmedAt: rv.now()}
		switch choice {
		case "c":
			o.IsCoffee, o.IsBeans = &yes, &no
		case "b":
			o.IsCoffee, o.IsBeans = &yes, &yes
		case "n":
			o.IsCoffee = &no
		case "s":
			continue
		case "q":
			return overrides, nil
		}
		overrides = append(overrides, o)
	}

	return overrides, nil
}

func (rv *Reviewer) describe(txn model.CoffeeTransaction) string {
	kind := "drink"
	if txn.IsBeans {
		kind = "beans"
	}
	lines := []string{
		fmt.Sprintf("%s %s %s", BoldStyle.Render("When:"), txn.Date, txn.Time),
		fmt.Sprintf("%s %s", BoldStyle.Render("Cafe:"), rv.display.CafeName(txn.Transaction)),
		fmt.Sprintf("%s %s", BoldStyle.Render("Item:"), txn.Description),
		fmt.Sprintf("%s ¥%.2f", BoldStyle.Render("Paid:"), txn.Amount),
		fmt.Sprintf("%s %s (%.2f, %s)", BoldStyle.Render("Guess:"), kind, txn.Confidence, strings.Join(txn.MatchedKeywords, ", ")),
	}
	return strings.Join(lines, "\n")
}

var reviewChoices = map[string]bool{"c": true, "b": true, "n": true, "s": true, "q": true}

func (rv *Reviewer) promptChoice(ctx context.Context) (string, error) {
	for {
		if _, err := fmt.Fprint(rv.writer, FormatPrompt("[c]offee drink, [b]eans, [n]ot coffee, [s]kip, [q]uit")); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := rv.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}

		choice := strings.ToLower(line)
		if reviewChoices[choice] {
			return choice, nil
		}
		if _, err := fmt.Fprintln(rv.writer, FormatWarning("Please answer c, b, n, s or q.")); err != nil {
			return "", fmt.Errorf("failed to write warning: %w", err)
		}
	}
}
