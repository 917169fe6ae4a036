package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lemmekk/internal/signature"
)

func newSignaturesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "signatures",
		Short:       "List recognised cover and archive signatures",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			covers := tableSpec{title: "Covers", headers: []string{"Format", "Header", "Trailer"}}
			for _, c := range signature.Covers {
				covers.add(c.Format, hexBytes(c.Header), hexBytes(c.Trailer))
			}
			fmt.Fprintln(out, covers.render())

			archives := tableSpec{
				title:   "Archives (checked in order)",
				headers: []string{"#", "Format", "Header"},
				aligns:  []columnAlignment{alignRight},
			}
			for i, a := range signature.Archives {
				archives.add(strconv.Itoa(i+1), a.Format, hexBytes(a.Header))
			}
			fmt.Fprintln(out, archives.render())
			return nil
		},
	}
}

func hexBytes(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02X", v)
	}
	return strings.Join(parts, " ")
}
