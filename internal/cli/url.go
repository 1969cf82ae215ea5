package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"herbar/client/internal/urlstate"
)

func URLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url <link>",
		Short: "Decode a catalog link and print its canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := urlstate.Decode(args[0])
			out := cmd.OutOrStdout()
			fmt.Fprint(out, describePartial(p))
			fmt.Fprintln(out, urlstate.Encode(args[0], paramsOf(p)))
			return nil
		},
	}
}

func paramsOf(p urlstate.Partial) urlstate.Params {
	var out urlstate.Params
	if p.Query != nil {
		out.Query = *p.Query
	}
	if p.Sort != nil {
		out.Sort = *p.Sort
	}
	out.Tags = p.Tags
	if p.PendingModal != nil {
		out.ModalID = *p.PendingModal
	}
	out.FAQOpen = p.PendingFAQ
	return out
}

func describePartial(p urlstate.Partial) string {
	if p.Empty() {
		return "(nicio stare)\n"
	}
	var b strings.Builder
	if p.Query != nil {
		fmt.Fprintf(&b, "search: %q\n", *p.Query)
	}
	if p.Sort != nil {
		fmt.Fprintf(&b, "sort:   %s\n", *p.Sort)
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "tags:   %s\n", strings.Join(p.Tags, ", "))
	}
	if p.PendingModal != nil {
		fmt.Fprintf(&b, "plant:  %d\n", *p.PendingModal)
	}
	if p.PendingFAQ {
		b.WriteString("faq:    open\n")
	}
	return b.String()
}
