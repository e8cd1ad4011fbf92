package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"classify-backend/internal/bootstrap"
	"classify-backend/internal/recommend"
	"classify-backend/internal/shared/config"
	"classify-backend/internal/shared/telemetry"
)

// profileFile mirrors the POST /classify/ body.
type profileFile struct {
	Subjects         []string          `json:"subjects"`
	Grades           map[string]string `json:"grades"`
	FavoriteSubjects []string          `json:"favorite_subjects"`
	Hobbies          []string          `json:"hobbies"`
	Interests        []string          `json:"interests"`
	PersonalityType  string            `json:"personality_type"`
}

func (p profileFile) input() recommend.Input {
	return recommend.Input{
		Subjects:         p.Subjects,
		Grades:           p.Grades,
		FavoriteSubjects: p.FavoriteSubjects,
		Hobbies:          p.Hobbies,
		Interests:        p.Interests,
		PersonalityType:  p.PersonalityType,
	}
}

func readProfile(path string) (recommend.Input, error) {
	if strings.TrimSpace(path) == "" {
		return recommend.Input{}, fmt.Errorf("--profile is required")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return recommend.Input{}, fmt.Errorf("read profile: %w", err)
	}
	var p profileFile
	if err := json.Unmarshal(data, &p); err != nil {
		return recommend.Input{}, fmt.Errorf("decode profile: %w", err)
	}
	return p.input(), nil
}

func newPromptCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the rendered prompt and its hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readProfile(profilePath)
			if err != nil {
				return err
			}
			prompt, err := recommend.RenderPrompt(in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# hash: %s\n", recommend.HashPrompt(prompt))
			fmt.Fprintln(out, prompt)
			return nil
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "Path to a profile JSON file (- for stdin)")
	return cmd
}

// generateOutput is printed by the generate command.
type generateOutput struct {
	Degraded        bool                       `json:"degraded"`
	Reason          string                     `json:"reason,omitempty"`
	Cause           string                     `json:"cause,omitempty"`
	PromptHash      string                     `json:"prompt_hash"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

func newGenerateCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Call the configured provider once and print the recommendations",
		Long: `Loads configuration the same way the API does (.env, CLASSIFY_CONFIG, environment),
then runs a single generation. Without OPENAI_API_KEY the fallback is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readProfile(profilePath)
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Format: "console", Output: cmd.ErrOrStderr()})

			completer, err := bootstrap.BuildCompleter(cfg)
			if err != nil {
				return err
			}
			gen := recommend.NewGenerator(completer, bootstrap.GeneratorOptions(cfg))
			res, err := gen.Generate(cmd.Context(), in)
			if err != nil {
				return err
			}

			out := generateOutput{
				Degraded:        res.Degraded,
				Reason:          res.Reason,
				PromptHash:      res.PromptHash,
				Recommendations: res.Recommendations,
			}
			if res.Cause != nil {
				out.Cause = res.Cause.Error()
			}
			body, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			return nil
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "Path to a profile JSON file (- for stdin)")
	return cmd
}
