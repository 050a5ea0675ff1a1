package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/clinic/clinic/internal/assessment"
)

var errQuit = errors.New("screening cancelled")

func screenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen <assessment-id>",
		Short: "Take an assessment in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			bookingURL, _ := cmd.Flags().GetString("booking-url")

			reg, err := buildRegistry(dir)
			if err != nil {
				return err
			}
			a, ok := reg.Get(args[0])
			if !ok {
				return fmt.Errorf("unknown assessment %q", args[0])
			}
			linker, err := bookingLinker(bookingURL)
			if err != nil {
				return err
			}

			fd := os.Stdout.Fd()
			colorize := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
			w := newWizard(cmd.InOrStdin(), cmd.OutOrStdout(), assessment.NewPresenter(linker), colorize)
			_, err = w.run(a)
			if errors.Is(err, errQuit) {
				fmt.Fprintln(cmd.OutOrStdout(), "Bye.")
				return nil
			}
			return err
		},
	}
	cmd.Flags().String("dir", "", "Directory of YAML assessments to load")
	cmd.Flags().String("booking-url", os.Getenv("BOOKING_URL"), "Booking link offered with results")
	return cmd
}

// wizard drives an assessment.Session from line-oriented input.
type wizard struct {
	in        *bufio.Scanner
	out       io.Writer
	presenter *assessment.Presenter

	title  *color.Color
	prompt *color.Color
	faint  *color.Color
	warn   *color.Color
	accent *color.Color
}

func newWizard(in io.Reader, out io.Writer, presenter *assessment.Presenter, colorize bool) *wizard {
	w := &wizard{
		in:        bufio.NewScanner(in),
		out:       out,
		presenter: presenter,
		title:     color.New(color.FgCyan, color.Bold),
		prompt:    color.New(color.Bold),
		faint:     color.New(color.Faint),
		warn:      color.New(color.FgYellow),
		accent:    color.New(color.FgGreen, color.Bold),
	}
	for _, c := range []*color.Color{w.title, w.prompt, w.faint, w.warn, w.accent} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return w
}

func (w *wizard) readLine() (string, bool) {
	if !w.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(w.in.Text()), true
}

// run asks every question and prints the result. End of input before the
// result is errQuit.
func (w *wizard) run(a assessment.Assessment) (assessment.Result, error) {
	s := assessment.NewSession(uuid.NewString(), a, time.Now())
	w.title.Fprintln(w.out, a.Title())
	w.faint.Fprintln(w.out, "Commands: b = back, r = restart, q = quit")

	for {
		if s.State() == assessment.StateReadyToScore {
			r, err := s.ShowResults()
			if err != nil {
				return assessment.Result{}, err
			}
			w.printResult(a, r)
			return r, nil
		}

		q, _ := s.Current()
		w.ask(s, q)
		line, ok := w.readLine()
		if !ok {
			return assessment.Result{}, errQuit
		}

		switch strings.ToLower(line) {
		case "q", "quit":
			return assessment.Result{}, errQuit
		case "b", "back":
			if err := s.Back(); err != nil {
				w.warn.Fprintln(w.out, "Already at the first question.")
			}
			continue
		case "r", "restart":
			s.Restart()
			continue
		}

		if q.Kind == assessment.KindMulti && (line == "" || strings.EqualFold(line, "done")) {
			if err := s.Advance(); err != nil {
				w.warn.Fprintln(w.out, "Choose at least one option.")
			}
			continue
		}
		if err := s.Answer(parseInput(q, line)); err != nil {
			w.warn.Fprintln(w.out, inputHint(q))
			continue
		}
		if q.Kind != assessment.KindMulti {
			if err := s.Advance(); err != nil {
				w.warn.Fprintln(w.out, err.Error())
			}
		}
	}
}

// parseInput maps a 1-based option number to its value. Anything else is
// passed through for the collector to validate.
func parseInput(q assessment.Question, line string) interface{} {
	if q.Kind == assessment.KindBinary {
		return line
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1].Value
	}
	return line
}

func inputHint(q assessment.Question) string {
	switch q.Kind {
	case assessment.KindBinary:
		return "Please answer y or n."
	case assessment.KindMulti:
		return fmt.Sprintf("Enter an option number (up to %d), or an empty line when done.", q.MaxChoices)
	default:
		return fmt.Sprintf("Enter a number from 1 to %d.", len(q.Options))
	}
}

func (w *wizard) ask(s *assessment.Session, q assessment.Question) {
	fmt.Fprintln(w.out)
	w.prompt.Fprintf(w.out, "[%d/%d] %s\n", s.Index()+1, s.Assessment().Bank().Len(), q.Prompt)
	if q.Help != "" {
		w.faint.Fprintln(w.out, q.Help)
	}

	current := s.Responses()[q.ID]
	switch q.Kind {
	case assessment.KindBinary:
		fmt.Fprint(w.out, "(y/n) > ")
	case assessment.KindSingle:
		for i, o := range q.Options {
			fmt.Fprintf(w.out, "  %d) %s\n", i+1, o.Label)
		}
		fmt.Fprint(w.out, "> ")
	default:
		for i, o := range q.Options {
			mark := " "
			for _, c := range current.Choices {
				if c == o.Value {
					mark = "x"
				}
			}
			fmt.Fprintf(w.out, "  [%s] %d) %s\n", mark, i+1, o.Label)
		}
		fmt.Fprint(w.out, "toggle > ")
	}
}

func (w *wizard) printResult(a assessment.Assessment, r assessment.Result) {
	p := w.presenter.Present(a, r)
	fmt.Fprintln(w.out)
	w.title.Fprintln(w.out, p.Title)
	if p.Kind == assessment.ResultTiered {
		w.accent.Fprintf(w.out, "Score %d of %d: %s\n", p.Score, p.MaxScore, p.Tier)
	}
	for _, b := range p.Blocks {
		fmt.Fprintln(w.out)
		w.prompt.Fprintln(w.out, b.Label)
		fmt.Fprintln(w.out, plainText(b.Narrative))
		printAction(w, b.Action)
	}
	fmt.Fprintln(w.out)
	for _, act := range p.Actions {
		printAction(w, act)
	}
}

func printAction(w *wizard, act assessment.Action) {
	if act.Label == "" {
		return
	}
	if act.Target != "" && act.Kind != assessment.ActionRestart {
		w.accent.Fprintf(w.out, "  > %s: %s\n", act.Label, act.Target)
		return
	}
	w.accent.Fprintf(w.out, "  > %s\n", act.Label)
}

// plainText drops the emphasis markers narratives use.
func plainText(md string) string {
	return strings.NewReplacer("**", "", "__", "").Replace(md)
}
