package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ai_quick_actions/generator"
	"ai_quick_actions/host"
	"ai_quick_actions/ui"
	"ai_quick_actions/view"
)

var (
	replyStdin      bool
	replyPlain      bool
	replyCopy       string
	replyCreativity string
	replyTheme      string
	replyWidth      int
)

var replyCmd = &cobra.Command{
	Use:   "reply [text...]",
	Short: "Draft short, medium and long replies to a text",
	Long: `Generates three reply drafts in parallel. The text comes from the
arguments, from stdin with --stdin, or from the current selection
(clipboard).

In a terminal an interactive picker opens; --plain prints every draft
once all of them finish.`,
	RunE: runReply,
}

func init() {
	replyCmd.Flags().BoolVar(&replyStdin, "stdin", false, "read the text from stdin")
	replyCmd.Flags().BoolVar(&replyPlain, "plain", false, "print the drafts instead of opening the picker")
	replyCmd.Flags().StringVar(&replyCopy, "copy", "", "copy this variant (short|medium|long) when done, plain mode only")
	replyCmd.Flags().StringVar(&replyCreativity, "creativity", "", "none|low|medium|high|maximum (overrides config)")
	replyCmd.Flags().StringVar(&replyTheme, "theme", "", "picker theme: dark|light")
	replyCmd.Flags().IntVar(&replyWidth, "width", 80, "wrap width for plain output")
}

func runReply(cmd *cobra.Command, args []string) error {
	text, err := replyInput(args, replyStdin, cmd.InOrStdin(), host.SystemClipboard{})
	if err != nil {
		return err
	}

	agent, variants, err := newReplyAgent(replyCreativity)
	if err != nil {
		return err
	}
	if replyCopy != "" {
		if _, err := generator.ParseVariantID(variants, replyCopy); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if !replyPlain && isTerminal(out) {
		return runReplyInteractive(ctx, agent, variants, text)
	}

	sess, err := generator.NewSession(agent, variants, generator.WithSessionLogger(logger))
	if err != nil {
		return err
	}
	defer sess.Close()
	return runReplyPlain(ctx, sess, text, out, notifier(), host.SystemClipboard{})
}

// replyInput resolves the text to reply to.
func replyInput(args []string, fromStdin bool, stdin io.Reader, cb host.Clipboard) (string, error) {
	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, " ")
	case fromStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	default:
		return host.SelectedText(cb)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", generator.ErrEmptyInput
	}
	return text, nil
}

func runReplyInteractive(ctx context.Context, agent generator.TextGenerator, variants []generator.Variant, text string) error {
	// the picker owns the terminal; logs only go to --log-file
	uiLogger := logger
	if logFile == "" {
		uiLogger = zap.NewNop().Sugar()
	}
	sess, err := generator.NewSession(agent, variants, generator.WithSessionLogger(uiLogger))
	if err != nil {
		return err
	}
	defer sess.Close()

	m := ui.NewModel(sess, ui.Deps{
		Clipboard: host.SystemClipboard{},
		Notifier:  host.DesktopNotifier{Log: host.LogNotifier{Logger: uiLogger}},
		Logger:    uiLogger,
		Theme:     ui.DetectTheme(replyTheme),
	})
	if err := sess.StartAll(text); err != nil {
		return err
	}
	return ui.Run(ctx, m)
}

// runReplyPlain starts every variant, reports completions as they arrive
// and prints all slots once none is pending.
func runReplyPlain(ctx context.Context, sess *generator.Session, text string, out io.Writer, n host.Notifier, cb host.Clipboard) error {
	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	if err := sess.StartAll(text); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- sess.Wait(ctx) }()

	var waitErr error
loop:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			notifyCompletion(ctx, n, ev)
		case waitErr = <-done:
			break loop
		}
	}
	// events emitted before Wait returned are still buffered
	for drained := false; !drained; {
		select {
		case ev, ok := <-events:
			if !ok {
				drained = true
				break
			}
			notifyCompletion(ctx, n, ev)
		default:
			drained = true
		}
	}
	if waitErr != nil {
		return waitErr
	}

	snap := sess.Snapshot()
	for i, sl := range snap.Slots {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "# %s\n", sl.Variant.Title)
		fmt.Fprint(out, view.Terminal(view.DetailMarkdown(snap.Text, sl), replyWidth))
	}

	if replyCopy == "" {
		return nil
	}
	sl, ok := snap.Get(generator.VariantID(replyCopy))
	if !ok {
		return fmt.Errorf("%w: %q", generator.ErrUnknownVariant, replyCopy)
	}
	if sl.Status != generator.StatusDone {
		return fmt.Errorf("%s reply was not generated: %s", sl.Variant.Title, sl.Error)
	}
	if err := cb.WriteText(sl.Result); err != nil {
		return fmt.Errorf("copy reply: %w", err)
	}
	fmt.Fprintf(out, "\nCopied %s reply to clipboard\n", sl.Variant.Title)
	return nil
}

func notifyCompletion(ctx context.Context, n host.Notifier, ev generator.Event) {
	if note, ok := ui.CompletionNotification(ev); ok && n != nil {
		n.Notify(ctx, note)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
