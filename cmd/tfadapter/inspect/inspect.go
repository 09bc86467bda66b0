package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/cozy-creator/tf-adapter/internal/npy"
	"github.com/cozy-creator/tf-adapter/internal/utils/hashutil"
	"github.com/cozy-creator/tf-adapter/internal/utils/pathutil"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

var Cmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Describe an .npy file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := pathutil.ExpandPath(args[0])
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		return describe(cmd.OutOrStdout(), data)
	},
}

func describe(w io.Writer, data []byte) error {
	if !bytes.HasPrefix(data, npy.Magic) {
		return fmt.Errorf("not an npy file (detected %s)", mimetype.Detect(data))
	}

	h, err := npy.ReadHeader(bytes.NewReader(data))
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "version:       %d.%d\n", h.Major, h.Minor)
	fmt.Fprintf(w, "dtype:         %s\n", h.DType)
	fmt.Fprintf(w, "shape:         %v\n", h.Shape)
	fmt.Fprintf(w, "fortran_order: %t\n", h.FortranOrder)
	fmt.Fprintf(w, "elements:      %d\n", h.Len())
	fmt.Fprintf(w, "blake3:        %s\n", hashutil.Blake3Hash(data))

	return nil
}
