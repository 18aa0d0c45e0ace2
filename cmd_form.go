package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ai_quick_actions/form"
	"ai_quick_actions/host"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Open the application form prefilled with a stored contact",
}

var formListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprint(cmd.OutOrStdout(), form.NewBook(cfg.Form).Table())
		return nil
	},
}

var formOpenCmd = &cobra.Command{
	Use:   "open [id]",
	Short: "Open the prefilled form in the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return openForm(cmd.Context(), args[0], host.SystemOpener{}, notifier())
	},
}

var formCopyCmd = &cobra.Command{
	Use:   "copy [id]",
	Short: "Copy the contact's company name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return copyCompany(cmd.Context(), args[0], host.SystemClipboard{}, notifier())
	},
}

var formURLCmd = &cobra.Command{
	Use:   "url [id]",
	Short: "Print the prefilled form URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}
		u, err := form.NewBook(cfg.Form).URLFor(id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	formCmd.AddCommand(formListCmd, formOpenCmd, formCopyCmd, formURLCmd)
}

func parseEntryID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func openForm(ctx context.Context, arg string, opener host.Opener, n host.Notifier) error {
	id, err := parseEntryID(arg)
	if err != nil {
		return err
	}
	book := form.NewBook(cfg.Form)
	e, err := book.Find(id)
	if err != nil {
		return err
	}
	u, err := book.URLFor(id)
	if err != nil {
		return err
	}
	if err := opener.OpenURL(ctx, u); err != nil {
		n.Notify(ctx, host.Notification{Style: host.StyleFailure, Title: "Failed to open form", Message: err.Error()})
		return err
	}
	logger.Infow("form opened", "entry", id)
	n.Notify(ctx, host.Notification{Style: host.StyleSuccess, Title: "Form opened", Message: e.CompanyName})
	return nil
}

func copyCompany(ctx context.Context, arg string, cb host.Clipboard, n host.Notifier) error {
	id, err := parseEntryID(arg)
	if err != nil {
		return err
	}
	e, err := form.NewBook(cfg.Form).Find(id)
	if err != nil {
		return err
	}
	if err := cb.WriteText(e.CompanyName); err != nil {
		return fmt.Errorf("copy company name: %w", err)
	}
	n.Notify(ctx, host.Notification{Style: host.StyleSuccess, Title: "Copied company name", Message: e.CompanyName})
	return nil
}
