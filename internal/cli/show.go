package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/arcvalue/internal/value"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	InputOptions
}

// ShowDocument is one decoded document.
type ShowDocument struct {
	Kind    string `json:"kind"`
	Display string `json:"display"`
}

// ShowResult holds every document of one input.
type ShowResult struct {
	Source    string         `json:"source"`
	Format    string         `json:"format"`
	Digest    string         `json:"digest"`
	Documents []ShowDocument `json:"documents"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the value rendering of every document",
		Long: `Decode every document of one input into the value model and print its
display rendering, one document per line.

Examples:
  arcvalue show config.cue
  arcvalue show --nfc records.yaml
  arcvalue show --format json events.cbor.gz`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	opts.InputOptions.addFlags(cmd)

	return cmd
}

func runShow(opts *ShowOptions, path string, cmd *cobra.Command) error {
	srcOpts, err := opts.sourceOptions()
	if err != nil {
		return err
	}
	src, err := openInput(path, cmd.InOrStdin(), srcOpts)
	if err != nil {
		return err
	}
	defer src.Close()

	result := ShowResult{Documents: []ShowDocument{}}
	err = eachDocument(src, func(v value.Value) error {
		result.Documents = append(result.Documents, ShowDocument{
			Kind:    v.Kind().String(),
			Display: v.String(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	result.Source = src.Name()
	result.Format = string(src.Format())
	result.Digest = src.Digest()

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return formatter.Success(result, func(w io.Writer) error {
		for i, doc := range result.Documents {
			if opts.Verbose {
				fmt.Fprintf(w, "%d\t%s\t", i+1, doc.Kind)
			}
			if _, err := fmt.Fprintln(w, doc.Display); err != nil {
				return err
			}
		}
		return nil
	})
}
