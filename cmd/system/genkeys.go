package system

import (
	"fmt"

	"github.com/spf13/cobra"

	pasetotoken "github.com/imedbrahmi/hospital_backend/pkg/paseto"
)

func NewGenKeysCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "gen-keys",
		Short: "Print fresh PASETO keys for authentication.paseto",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := pasetotoken.Generate(pasetotoken.Mode(mode))
			if err != nil {
				return err
			}
			hex := keys.Hex()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode: %s\n", hex.Mode)
			if hex.SymmetricHex != "" {
				fmt.Fprintf(out, "local_key_hex: %s\n", hex.SymmetricHex)
			}
			if hex.SecretHex != "" {
				fmt.Fprintf(out, "secret_key_hex: %s\n", hex.SecretHex)
				fmt.Fprintf(out, "public_key_hex: %s\n", hex.PublicHex)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(pasetotoken.ModeLocal), "local or public")

	return cmd
}
