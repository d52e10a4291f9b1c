package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auranova/uebridge/internal/service/codegen"
)

var (
	codegenName        string
	codegenTraits      string
	codegenDescription string
	codegenOut         string
)

var codegenCmd = &cobra.Command{
	Use:   "codegen",
	Short: "Generate Unreal Engine C++ classes with the configured language model",
}

var codegenCharacterCmd = &cobra.Command{
	Use:   "character",
	Short: "Generate an ACharacter subclass",
	RunE:  runCodegenCharacter,
}

var codegenSystemCmd = &cobra.Command{
	Use:   "system",
	Short: "Generate a game-logic system (manager class plus supporting types)",
	RunE:  runCodegenSystem,
}

func init() {
	rootCmd.AddCommand(codegenCmd)
	codegenCmd.AddCommand(codegenCharacterCmd, codegenSystemCmd)

	codegenCmd.PersistentFlags().StringVarP(&codegenName, "name", "n", "", "Class or system name")
	codegenCmd.PersistentFlags().StringVarP(&codegenOut, "out", "o", "", "Output directory (default: CODEGEN_OUTPUT_DIR)")
	codegenCharacterCmd.Flags().StringVar(&codegenTraits, "traits", "{}", "Character traits as a JSON object")
	codegenSystemCmd.Flags().StringVarP(&codegenDescription, "description", "d", "", "What the system should do")

	_ = codegenCmd.MarkPersistentFlagRequired("name")
	_ = codegenSystemCmd.MarkFlagRequired("description")
}

func runCodegenCharacter(cmd *cobra.Command, _ []string) error {
	var traits map[string]any
	if err := json.Unmarshal([]byte(codegenTraits), &traits); err != nil {
		return fmt.Errorf("--traits must be a JSON object: %w", err)
	}

	gen, err := newGenerator(cmd)
	if err != nil {
		return err
	}
	return printFiles(cmd, gen, gen.CharacterClass(cmd.Context(), codegenName, traits))
}

func runCodegenSystem(cmd *cobra.Command, _ []string) error {
	gen, err := newGenerator(cmd)
	if err != nil {
		return err
	}
	return printFiles(cmd, gen, gen.GameLogic(cmd.Context(), codegenName, codegenDescription))
}

func newGenerator(cmd *cobra.Command) (*codegen.Generator, error) {
	cfg, log, err := bootstrap()
	if err != nil {
		return nil, err
	}
	if !cfg.AI.Enabled {
		return nil, errors.New("code generation requires AI_ENABLED=true")
	}
	svc := newAIService(cmd.Context(), cfg.AI, log)
	if svc == nil {
		return nil, errors.New("language model unavailable, see log for details")
	}

	out := cfg.Codegen.OutputDir
	if codegenOut != "" {
		out = codegenOut
	}
	return codegen.New(svc, codegen.Config{OutputDir: out}, log.Named("codegen")), nil
}

func printFiles(cmd *cobra.Command, gen *codegen.Generator, files codegen.Files) error {
	if files.Empty() {
		return errors.New("code generation failed")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s.h and %s.cpp to %s\n", codegenName, codegenName, gen.OutputDir())
	return nil
}
