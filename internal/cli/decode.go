package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rvmodel/zcseq/internal/decode"
	"github.com/rvmodel/zcseq/internal/seq"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
}

// DecodedWord is the classification of one instruction word.
type DecodedWord struct {
	Word    string `json:"word"`
	Kind    string `json:"kind"`
	SubOps  int64  `json:"sub_ops"`
	TblJmp  bool   `json:"tbljmp,omitempty"`
	Decodes bool   `json:"decodes"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <hex-word>...",
		Short: "Classify compressed instruction words",
		Long: `Classify 16-bit compressed instruction words into sequence kinds.

Each word is checked against the Zcmp/Zcmt encodings: the push/pop family
and the register-move pairs report their sequence kind and sub-operation
count, table jumps are flagged, and anything else is a non-sequence word.

Examples:
  zcseq decode 0xB8F2
  zcseq decode B8F2 BAF2 AC26
  zcseq decode 0xA002 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args, cmd)
		},
	}

	return cmd
}

func runDecode(opts *DecodeOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	words := make([]DecodedWord, 0, len(args))
	for _, arg := range args {
		word, err := parseWord(arg)
		if err != nil {
			_ = formatter.Error("E_BAD_WORD", err.Error(), arg)
			return NewExitError(ExitCommandError, err.Error())
		}

		res := decode.Classify(word)
		decoded := DecodedWord{
			Word:    fmt.Sprintf("0x%04X", word),
			Kind:    res.Kind.String(),
			TblJmp:  res.TblJmp,
			Decodes: res.Kind.Valid() || res.TblJmp,
		}
		if res.Kind.Valid() {
			decoded.SubOps = int64(res.Kind.MaxCount())
		}
		words = append(words, decoded)

		formatter.VerboseLog("classified %s as %s", decoded.Word, decoded.Kind)
	}

	if opts.Format == "json" {
		return formatter.Success(words)
	}

	w := cmd.OutOrStdout()
	for _, d := range words {
		switch {
		case d.TblJmp:
			fmt.Fprintf(w, "%s  table jump (no sequence)\n", d.Word)
		case d.Kind != seq.KindInvalid.String():
			fmt.Fprintf(w, "%s  %s (%d sub-ops)\n", d.Word, d.Kind, d.SubOps)
		default:
			fmt.Fprintf(w, "%s  not a sequence instruction\n", d.Word)
		}
	}
	return nil
}

// parseWord parses a 16-bit instruction word from a hex argument, with or
// without the 0x prefix.
func parseWord(arg string) (uint16, error) {
	s := strings.TrimPrefix(strings.ToLower(arg), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid instruction word %q: expected 16-bit hex", arg)
	}
	return uint16(v), nil
}
