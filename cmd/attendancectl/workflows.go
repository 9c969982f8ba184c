package main

import (
	"attendance-backend/application/commands"
	"attendance-backend/application/queries"

	"github.com/spf13/cobra"
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the face collection and both tables if they are missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := container.Provision(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("provisioned")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <bucket> <key>",
	Short: "Enroll the employee pictured in an uploaded image",
	Long: `Enroll the employee pictured in an uploaded image.

Examples:
  # Name comes from the key: John_Smith.jpg -> John Smith
  attendancectl register enrollment-bucket John_Smith.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := container.RegisterEmployee.Handle(cmd.Context(), commands.RegisterEmployeeCommand{
			Bucket: args[0],
			Key:    args[1],
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var checkinCmd = &cobra.Command{
	Use:   "checkin <bucket> <key>",
	Short: "Match a snapshot against enrolled faces and record attendance",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := container.RecordAttendance.Handle(cmd.Context(), commands.RecordAttendanceCommand{
			Bucket: args[0],
			Key:    args[1],
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Print who checked in on a date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		date, _ := cmd.Flags().GetString("date")
		result, err := container.DailyReport.Handle(cmd.Context(), queries.DailyReportQuery{Date: date})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Print the Monday to Sunday summary for the week holding a date",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		date, _ := cmd.Flags().GetString("date")
		result, err := container.WeeklyReport.Handle(cmd.Context(), queries.WeeklyReportQuery{Date: date})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	dailyCmd.Flags().String("date", "", "Date as YYYY-MM-DD")
	weeklyCmd.Flags().String("date", "", "Any date in the week, as YYYY-MM-DD")

	rootCmd.AddCommand(provisionCmd, registerCmd, checkinCmd, dailyCmd, weeklyCmd)
}
