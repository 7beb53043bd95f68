package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/turtacn/keyip-molkit/internal/domain/molfile"
	"github.com/turtacn/keyip-molkit/pkg/errors"
	mtypes "github.com/turtacn/keyip-molkit/pkg/types/molecule"
)

// inputFlags are the reader switches shared by every command that reads a
// structure.
type inputFlags struct {
	format   string
	relaxed  bool
	extended bool
	rescale  bool
	noHeader bool
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.format, "format", "auto", "input format (auto, molfile, sdf)")
	fs.BoolVar(&f.relaxed, "relaxed", false, "accept recoverable format violations")
	fs.BoolVar(&f.extended, "extended", false, "enable extended V2000 property blocks")
	fs.BoolVar(&f.rescale, "rescale", false, "rescale coordinates to a 1.5 median bond length")
	fs.BoolVar(&f.noHeader, "no-header", false, "do not interpret the three header lines")
}

// input reads path ("-" for stdin) into a MolfileInput.
func (f *inputFlags) input(cmd *cobra.Command, path string) (*mtypes.MolfileInput, error) {
	text, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}
	format, err := resolveFormat(f.format, path, text)
	if err != nil {
		return nil, err
	}
	in := &mtypes.MolfileInput{
		Format:  format,
		Molfile: text,
		Reader: mtypes.ReaderOptionsDTO{
			Relaxed:  f.relaxed,
			Extended: f.extended,
			Rescale:  f.rescale,
		},
	}
	if f.noHeader {
		off := false
		in.Reader.ParseHeader = &off
	}
	return in, nil
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrap(err, errors.ErrCodeNotFound, "input file not found")
		}
		return "", errors.Wrap(err, errors.ErrCodeBadRequest, "cannot read input")
	}
	return string(b), nil
}

// resolveFormat honours an explicit --format; auto picks sdf for .sdf/.sd
// files and for text containing a record separator.
func resolveFormat(flag, path, text string) (mtypes.InputFormat, error) {
	switch strings.ToLower(flag) {
	case "molfile", "mol":
		return mtypes.FormatMolfile, nil
	case "sdf":
		return mtypes.FormatSDF, nil
	case "", "auto":
	default:
		return "", errors.New(errors.ErrCodeValidation, "unknown input format").WithDetail(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sdf", ".sd":
		return mtypes.FormatSDF, nil
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimRight(line, " \r") == molfile.RecordSeparator {
			return mtypes.FormatSDF, nil
		}
	}
	return mtypes.FormatMolfile, nil
}

func newParseCmd() *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse a molfile or SD file and report its compliance",
		Long:  "Parse reads a molfile (or each record of an SD file) and reports atom and\nbond counts and the format features it uses. FILE may be - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			input, err := in.input(cmd, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			records := []string{input.Molfile}
			if input.Format == mtypes.FormatSDF {
				records = molfile.SplitSDF(input.Molfile)
			}
			view := annotationView{single: input.Format != mtypes.FormatSDF}
			for i, rec := range records {
				one := *input
				one.Format, one.Molfile = mtypes.FormatMolfile, rec
				dto, err := cc.Service.Parse(ctx, &one)
				if err != nil {
					if len(records) > 1 {
						return errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("record %d", i+1))
					}
					return err
				}
				view.items = append(view.items, *dto)
			}
			return PrintResult(cmd, view)
		},
	}
	in.register(cmd.Flags())
	return cmd
}

func newAnnotateCmd() *cobra.Command {
	var (
		in                 inputFlags
		relaxedAromaticity bool
		stereo             bool
		hashes             bool
	)
	cmd := &cobra.Command{
		Use:   "annotate FILE",
		Short: "Compute aromaticity, stereocenter candidates and skeleton hashes",
		Long:  "Annotate parses a molfile or SD file and computes the derived annotations of\nevery record. FILE may be - for stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			input, err := in.input(cmd, args[0])
			if err != nil {
				return err
			}
			if relaxedAromaticity {
				input.Annotate.Aromaticity = "relaxed"
			}
			input.Annotate.Stereo = stereo
			input.Annotate.Hashes = hashes

			ctx := cmd.Context()
			anns, err := cc.Service.AnnotateAll(ctx, input)
			if err != nil {
				return err
			}
			return PrintResult(cmd, annotationView{items: anns, single: input.Format != mtypes.FormatSDF})
		},
	}
	in.register(cmd.Flags())
	cmd.Flags().BoolVar(&relaxedAromaticity, "relaxed-aromaticity", false, "use the relaxed aromaticity model")
	cmd.Flags().BoolVar(&stereo, "stereo", false, "compute stereocenter candidates even when the config disables them")
	cmd.Flags().BoolVar(&hashes, "hashes", false, "compute skeleton hashes even when the config disables them")
	return cmd
}

func newEquivCmd() *cobra.Command {
	var (
		in      inputFlags
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "equiv A B",
		Short: "Decide whether two molfiles describe the same molecule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			a, err := in.input(cmd, args[0])
			if err != nil {
				return err
			}
			b, err := in.input(cmd, args[1])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out, err := cc.Service.Equivalence(ctx, &mtypes.EquivalenceRequest{
				A:         *a,
				B:         *b,
				TimeoutMS: timeout.Milliseconds(),
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, equivalenceView(*out))
		},
	}
	in.register(cmd.Flags())
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound on the isomorphism search (default from config)")
	return cmd
}

// annotationView renders annotations for every output format.  A single
// molfile prints as one JSON object, an SD file as a list.
type annotationView struct {
	items  []mtypes.AnnotationDTO
	single bool
}

func (v annotationView) JSONValue() interface{} {
	if v.single && len(v.items) == 1 {
		return v.items[0]
	}
	return v.items
}

func (v annotationView) TableHeaders() []string {
	return []string{"#", "NAME", "VERSION", "ATOMS", "BONDS", "COMPLIANCE", "AROMATIC", "STEREO", "SKELETON_HASH"}
}

func (v annotationView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.items))
	for i, a := range v.items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Name,
			a.Version,
			strconv.Itoa(a.Atoms),
			strconv.Itoa(a.Bonds),
			complianceText(a.Compliance),
			strconv.Itoa(len(a.AromaticAtoms)),
			stereoText(a.Stereo),
			shortHash(a.SkeletonHash),
		})
	}
	return rows
}

func (v annotationView) String() string {
	var sb strings.Builder
	for i, a := range v.items {
		if i > 0 {
			sb.WriteString("\n")
		}
		name := a.Name
		if name == "" {
			name = fmt.Sprintf("record %d", i+1)
		}
		fmt.Fprintf(&sb, "%s  %s  atoms=%d bonds=%d\n", name, a.Version, a.Atoms, a.Bonds)
		fmt.Fprintf(&sb, "  compliance: %s\n", complianceText(a.Compliance))
		for _, n := range a.Compliance.Notes {
			fmt.Fprintf(&sb, "    %s (%s)%s\n", n.Kind, n.Level, noteTargets(n))
		}
		if a.AromaticityMode != "" {
			fmt.Fprintf(&sb, "  aromatic atoms (%s): %s\n", a.AromaticityMode, joinInts(a.AromaticAtoms))
			fmt.Fprintf(&sb, "  aromatic bonds (%s): %s\n", a.AromaticityMode, joinInts(a.AromaticBonds))
		}
		if len(a.Stereo) > 0 {
			fmt.Fprintf(&sb, "  stereo: %s\n", stereoText(a.Stereo))
		}
		if a.SkeletonHash != "" {
			fmt.Fprintf(&sb, "  skeleton hash: %s\n", a.SkeletonHash)
			fmt.Fprintf(&sb, "  heavy hash:    %s\n", a.HeavyHash)
		}
	}
	return sb.String()
}

type equivalenceView mtypes.EquivalenceDTO

func (v equivalenceView) JSONValue() interface{} { return mtypes.EquivalenceDTO(v) }

func (v equivalenceView) String() string {
	verdict := "different"
	if v.Equivalent {
		verdict = "equivalent"
	}
	return fmt.Sprintf("%s (%d ms)\n", verdict, v.DurationMS)
}

func complianceText(c mtypes.ComplianceDTO) string {
	s := c.Level
	if c.Invalid {
		s += " (invalid)"
	}
	return s
}

func stereoText(m map[string][]int) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=[%s]", k, joinInts(m[k]))
	}
	return strings.Join(parts, " ")
}

func noteTargets(n mtypes.NoteDTO) string {
	var s string
	if len(n.Atoms) > 0 {
		s += " atoms " + joinInts(n.Atoms)
	}
	if len(n.Bonds) > 0 {
		s += " bonds " + joinInts(n.Bonds)
	}
	if n.Source != nil {
		s += fmt.Sprintf(" at line %d", n.Source.Row)
	}
	return s
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return "-"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	if h == "" {
		return "-"
	}
	return h
}

//Personal.AI order the ending
