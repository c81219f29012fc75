package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shiftplan/internal/audit"
	"shiftplan/internal/models"
	"shiftplan/internal/users"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts from the command line",
}

var userAdd users.CreateInput
var userAddSecondary string

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an admin or employee account",
	Example: `  shiftplan user add --username emp26 --password secret1 --name "Jane Doe" \
    --email jane@company.com --primary night --secondary weekend_night --rate 21.5`,
	RunE: runUserAdd,
}

func init() {
	f := userAddCmd.Flags()
	f.StringVar(&userAdd.Username, "username", "", "login name")
	f.StringVar(&userAdd.Password, "password", "", "initial password")
	f.StringVar(&userAdd.Name, "name", "", "display name")
	f.StringVar(&userAdd.Email, "email", "", "email address")
	f.StringVar((*string)(&userAdd.Role), "role", string(models.RoleEmployee), "admin or employee")
	f.StringVar((*string)(&userAdd.PrimaryShift), "primary", "", "primary shift type")
	f.StringVar(&userAddSecondary, "secondary", "", "secondary shift type")
	f.Float64Var(&userAdd.HourlyRate, "rate", 0, "hourly rate")
	for _, name := range []string{"username", "password", "name", "email", "primary"} {
		_ = userAddCmd.MarkFlagRequired(name)
	}
	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.close()

	if userAddSecondary != "" {
		secondary := models.ShiftType(userAddSecondary)
		userAdd.SecondaryShift = &secondary
	}

	svc := users.NewService(rt.store, audit.NewRecorder(rt.store, rt.log), rt.log)
	u, err := svc.Create(cmd.Context(), "cli", userAdd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Username, u.Role)
	return nil
}
