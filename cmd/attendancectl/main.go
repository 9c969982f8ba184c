// Command attendancectl drives the attendance workflows from a terminal. It
// uses the same container as the Lambdas, so STORAGE_BACKEND=memory gives a
// throwaway local run and the defaults talk to AWS.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"attendance-backend/infrastructure/config"
	"attendance-backend/infrastructure/di"

	"github.com/spf13/cobra"
)

var (
	envFile   string
	container *di.Container
)

var rootCmd = &cobra.Command{
	Use:   "attendancectl",
	Short: "Enroll employees, record check-ins and print attendance reports",
	Long: `attendancectl runs the attendance workflows without S3 notifications or
API Gateway in front of them. Images are referenced by bucket and key and are
read by the face service directly from S3.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		container, err = di.InitializeContainer(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize container: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		if container == nil {
			return nil
		}
		return container.Shutdown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
