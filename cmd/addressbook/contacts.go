package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/domain"
)

func newListCmd(g *globalFlags) *cobra.Command {
	var (
		query      string
		bookmarked bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List or search contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.FilterAll
			if bookmarked {
				filter = domain.FilterBookmarkedOnly
			}
			return g.withStore(cmd, func(_ context.Context, st *contacts.Store) error {
				found := st.Search(query, filter)
				if asJSON {
					return printJSON(cmd.OutOrStdout(), found)
				}
				return printTable(cmd.OutOrStdout(), found)
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive text matched against every field")
	cmd.Flags().BoolVarP(&bookmarked, "bookmarked", "b", false, "only bookmarked contacts")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// contactFlags are shared by add and edit.
type contactFlags struct {
	id       string
	name     string
	phones   []string
	emails   []string
	tags     []string
	notes    string
	bookmark bool
}

func (f *contactFlags) register(cmd *cobra.Command, withID bool) {
	fs := cmd.Flags()
	if withID {
		fs.StringVar(&f.id, "id", "", "explicit id (generated when empty)")
	}
	fs.StringVarP(&f.name, "name", "n", "", "contact name")
	fs.StringArrayVarP(&f.phones, "phone", "p", nil, "phone as number[:mobile|home|work], repeatable")
	fs.StringArrayVarP(&f.emails, "email", "e", nil, "email as address[:personal|work], repeatable")
	fs.StringSliceVarP(&f.tags, "tag", "t", nil, "tag, repeatable or comma separated")
	fs.StringVar(&f.notes, "notes", "", "free-form notes")
	fs.BoolVar(&f.bookmark, "bookmark", false, "mark as bookmarked")
}

// apply copies the flags that were set on cmd into in.
func (f *contactFlags) apply(cmd *cobra.Command, in *domain.ContactInput) {
	fs := cmd.Flags()
	if fs.Changed("id") {
		in.ID = f.id
	}
	if fs.Changed("name") {
		in.Name = f.name
	}
	if fs.Changed("phone") {
		in.Phones = make([]domain.PhoneInput, 0, len(f.phones))
		for _, raw := range f.phones {
			number, typ := splitTyped(raw, "mobile", "home", "work")
			in.Phones = append(in.Phones, domain.PhoneInput{Number: number, Type: typ})
		}
	}
	if fs.Changed("email") {
		in.Emails = make([]domain.EmailInput, 0, len(f.emails))
		for _, raw := range f.emails {
			addr, typ := splitTyped(raw, "personal", "work")
			in.Emails = append(in.Emails, domain.EmailInput{Email: addr, Type: typ})
		}
	}
	if fs.Changed("tag") {
		in.Tags = f.tags
	}
	if fs.Changed("notes") {
		in.Notes = f.notes
	}
	if fs.Changed("bookmark") {
		in.IsBookmarked = f.bookmark
	}
}

// splitTyped splits "value:type" when type is one of known; phone numbers
// may themselves contain colons, so anything else is kept whole.
func splitTyped(raw string, known ...string) (value, typ string) {
	i := strings.LastIndex(raw, ":")
	if i < 0 {
		return raw, ""
	}
	suffix := strings.ToLower(strings.TrimSpace(raw[i+1:]))
	for _, k := range known {
		if suffix == k {
			return raw[:i], suffix
		}
	}
	return raw, ""
}

func newAddCmd(g *globalFlags) *cobra.Command {
	f := &contactFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a contact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.ContactInput
			f.apply(cmd, &in)
			return g.withStore(cmd, func(ctx context.Context, st *contacts.Store) error {
				c, _, err := st.CreateOrUpdate(ctx, in, "")
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), c)
			})
		},
	}
	f.register(cmd, true)
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEditCmd(g *globalFlags) *cobra.Command {
	f := &contactFlags{}
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a contact; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withStore(cmd, func(ctx context.Context, st *contacts.Store) error {
				existing, err := st.Get(args[0])
				if err != nil {
					return err
				}
				in := domain.InputFromContact(existing)
				f.apply(cmd, &in)

				c, _, err := st.CreateOrUpdate(ctx, in, existing.ID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), c)
			})
		},
	}
	f.register(cmd, false)
	return cmd
}

func newDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contact (no-op if it does not exist)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withStore(cmd, func(ctx context.Context, st *contacts.Store) error {
				removed, err := st.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				if removed {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s not found, nothing deleted\n", args[0])
				}
				return nil
			})
		},
	}
}

func newBookmarkCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "bookmark ID",
		Short: "Toggle the bookmark flag of a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withStore(cmd, func(ctx context.Context, st *contacts.Store) error {
				c, err := st.ToggleBookmark(ctx, args[0])
				if err != nil {
					return err
				}
				state := "removed from"
				if c.IsBookmarked {
					state = "added to"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s bookmarks\n", c.Name, state)
				return nil
			})
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, list []domain.Contact) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPHONES\tEMAILS\tTAGS\t★")
	for i := range list {
		r := domain.Flatten(&list[i])
		star := ""
		if list[i].IsBookmarked {
			star = "★"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			list[i].ID, r.Name,
			strings.ReplaceAll(r.Phones, "\n", ", "),
			strings.ReplaceAll(r.Emails, "\n", ", "),
			r.Tags, star)
	}
	return tw.Flush()
}
