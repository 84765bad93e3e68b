package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punchd/internal/auth"
	"github.com/balkashynov/punchd/internal/db"
	"github.com/balkashynov/punchd/internal/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create an identity with a linked employee and weekly schedule",
	Long: `Create an identity, a linked employee record and a Monday-to-Friday
morning schedule, for local setups and demos.

Examples:
  punchd seed --login jane --password s3cret --name "Jane Doe" --start 9.5
  punchd seed --login cronbot --password s3cret --system`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, err := setup()
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		login, _ := cmd.Flags().GetString("login")
		password, _ := cmd.Flags().GetString("password")
		name, _ := cmd.Flags().GetString("name")
		startHour, _ := cmd.Flags().GetFloat64("start")
		system, _ := cmd.Flags().GetBool("system")

		login = strings.ToLower(strings.TrimSpace(login))
		if login == "" || password == "" {
			return fmt.Errorf("--login and --password are required")
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		identity := models.Identity{Login: login, PasswordHash: hash, System: system}
		if err := gdb.Create(&identity).Error; err != nil {
			return fmt.Errorf("failed to create identity: %w", err)
		}

		if system {
			fmt.Printf("Created system identity %q (#%d)\n", login, identity.ID)
			return nil
		}

		if name == "" {
			name = login
		}
		employee := models.Employee{Name: name, IdentityID: &identity.ID, Active: true}
		for day := time.Monday; day <= time.Friday; day++ {
			employee.Schedule = append(employee.Schedule, models.ScheduleLine{
				Weekday:   day,
				Period:    models.PeriodMorning,
				StartHour: startHour,
			})
		}
		if err := gdb.Create(&employee).Error; err != nil {
			return fmt.Errorf("failed to create employee: %w", err)
		}

		fmt.Printf("Created identity %q (#%d) with employee %q (#%d), morning start %.2f\n",
			login, identity.ID, name, employee.ID, startHour)
		return nil
	},
}

func init() {
	seedCmd.Flags().String("login", "", "Login name for the identity")
	seedCmd.Flags().String("password", "", "Password for the identity")
	seedCmd.Flags().String("name", "", "Employee display name (defaults to login)")
	seedCmd.Flags().Float64("start", 9.0, "Morning start as a fractional hour (9.5 = 9:30)")
	seedCmd.Flags().Bool("system", false, "Create a reserved system identity with no employee")
}
