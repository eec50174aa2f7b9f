package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/contact"
)

func newMessagesCommand(configFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show recent contact form submissions and their delivery status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := folio.LoadConfig(*configFile)
			if err != nil {
				return err
			}
			return runMessages(cmd.Context(), cmd.OutOrStdout(), cfg.DatabasePath, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of messages")
	return cmd
}

// runMessages prints the archive at path without creating it when it is missing.
func runMessages(ctx context.Context, w io.Writer, path string, limit int) error {
	store, err := contact.OpenReadOnly(path)
	if errors.Is(err, fs.ErrNotExist) {
		return printMessages(w, nil)
	}
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	return printMessages(w, records)
}

func statusText(s contact.Status) string {
	switch s {
	case contact.StatusSent:
		return okStyle.Render(string(s))
	case contact.StatusFailed:
		return errorStyle.Render(string(s))
	default:
		return warnStyle.Render(string(s))
	}
}

func printMessages(w io.Writer, records []contact.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("No messages."))
		return err
	}
	for _, r := range records {
		header := fmt.Sprintf("%s <%s>  %s", titleStyle.Render(r.Message.Name), r.Message.Email, statusText(r.Status))
		lines := []string{
			header,
			dimStyle.Render(fmt.Sprintf("%s  attempts %d", r.CreatedAt.Format("2006-01-02 15:04"), r.Attempts)),
			r.Message.Message,
		}
		if r.LastError != "" {
			lines = append(lines, errorStyle.Render(r.LastError))
		}
		if _, err := fmt.Fprintln(w, cardStyle.Render(strings.Join(lines, "\n"))); err != nil {
			return err
		}
	}
	return nil
}
