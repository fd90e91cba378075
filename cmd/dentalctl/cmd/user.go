package cmd

import (
	"context"
	"fmt"
	"time"

	"dentalcms/internal/config"
	"dentalcms/internal/db"
	"dentalcms/internal/models"
	"dentalcms/internal/repository"
	"dentalcms/internal/utils"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "user",
		Short: "Управление пользователями",
	}

	var u models.User
	var password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Создать пользователя (например, первого администратора)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateNewUser(&u, password); err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, err := db.NewPostgresConnection(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(ctx, pool); err != nil {
				return err
			}

			if u.PasswordHash, err = utils.HashPassword(password); err != nil {
				return err
			}
			if err := repository.NewUserRepository(pool).CreateUser(ctx, &u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user id=%d username=%s role=%s\n", u.ID, u.Username, u.Role)
			return nil
		},
	}
	create.Flags().StringVar(&u.Username, "username", "", "логин")
	create.Flags().StringVar(&u.Email, "email", "", "e-mail")
	create.Flags().StringVar(&u.FullName, "name", "", "полное имя")
	create.Flags().StringVar(&u.Role, "role", models.RoleUser, "роль: user или admin")
	create.Flags().StringVar(&password, "password", "", "пароль (не короче 8 символов)")

	c.AddCommand(create)
	return c
}

func validateNewUser(u *models.User, password string) error {
	switch {
	case u.Username == "" || u.Email == "":
		return fmt.Errorf("--username and --email are required")
	case u.Role != models.RoleUser && u.Role != models.RoleAdmin:
		return fmt.Errorf("unknown role %q", u.Role)
	case len(password) < 8:
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
