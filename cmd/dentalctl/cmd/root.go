package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dentalctl",
		Short: "Служебные команды Dental CMS",
		Long: `Операторские команды Dental CMS: генерация секретов, выпуск и проверка
сессионных токенов, хеширование паролей и создание пользователей.`,
		SilenceUsage: true,
	}
	root.AddCommand(newSecretCmd(), newTokenCmd(), newHashPasswordCmd(), newUserCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
