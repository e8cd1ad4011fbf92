package main

// Exercise the recommendation generator against a profile file:
//   go run ./cmd/recommendctl prompt --profile profile.json
//   OPENAI_API_KEY=... go run ./cmd/recommendctl generate --profile profile.json

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "recommendctl",
		Short:         "Render prompts and generate course recommendations offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPromptCmd(), newGenerateCmd())
	return root
}
