package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

func newSecretCmd() *cobra.Command {
	var size int
	c := &cobra.Command{
		Use:   "secret",
		Short: "Сгенерировать случайный секрет для SESSION_SECRET или CSRF_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if size < 32 {
				return fmt.Errorf("size must be at least 32 bytes, got %d", size)
			}
			b := make([]byte, size)
			if _, err := rand.Read(b); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}
	c.Flags().IntVar(&size, "bytes", 32, "длина секрета в байтах")
	return c
}
