package cmd

import (
	"errors"
	"fmt"
	"time"

	"dentalcms/internal/clock"
	"dentalcms/internal/config"
	"dentalcms/internal/security"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var secret string
	c := &cobra.Command{
		Use:   "token",
		Short: "Выпуск и проверка сессионных токенов",
	}
	c.PersistentFlags().StringVar(&secret, "secret", "", "секрет подписи (по умолчанию SESSION_SECRET)")

	issue := &cobra.Command{
		Use:   "issue <user-id>",
		Short: "Выпустить токен текущего формата",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := newCodec(secret, true)
			if err != nil {
				return err
			}
			token, err := codec.Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	var maxAge time.Duration
	var legacy bool
	verify := &cobra.Command{
		Use:   "verify <token>",
		Short: "Проверить токен (сначала текущий формат, затем legacy)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := newCodec(secret, legacy)
			if err != nil {
				return err
			}
			s, err := codec.Decode(args[0], maxAge)
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subject=%s format=%s issued_at=%s\n",
				s.SubjectID, s.Format, s.IssuedAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	verify.Flags().DurationVar(&maxAge, "max-age", 168*time.Hour, "максимальный возраст токена")
	verify.Flags().BoolVar(&legacy, "legacy", true, "принимать токены старого формата")

	c.AddCommand(issue, verify)
	return c
}

func newCodec(secret string, legacy bool) (*security.TokenCodec, error) {
	if secret == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, err
		}
		secret = cfg.SessionSecret
	}
	if secret == "" {
		return nil, errors.New("no secret: pass --secret or set SESSION_SECRET")
	}
	return security.NewTokenCodec([]byte(secret), clock.System{}, security.WithLegacy(legacy))
}
