// Package codegen asks the language model for Unreal Engine C++ classes and
// writes them into the project source tree.
package codegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/service/ai"
)

// ErrEmptyResponse means the reply decoded but carried neither file.
var ErrEmptyResponse = errors.New("codegen: reply has no header_file or source_file")

// Completer sends one user-role prompt and returns the model's reply.
type Completer interface {
	Prompt(ctx context.Context, prompt string) (string, error)
}

// Files is the generated pair. Both fields are empty when generation failed.
type Files struct {
	Header string `json:"header_file"`
	Source string `json:"source_file"`
}

// Empty reports whether nothing was generated.
func (f Files) Empty() bool {
	return f.Header == "" && f.Source == ""
}

type Config struct {
	OutputDir string
}

// Generator turns descriptions into source files.
type Generator struct {
	completer Completer
	outputDir string
	log       *zap.Logger
}

func New(completer Completer, cfg Config, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completer: completer,
		outputDir: cfg.OutputDir,
		log:       logger,
	}
}

// OutputDir is where files are written. Empty means files are only returned.
func (g *Generator) OutputDir() string {
	return g.outputDir
}

// CharacterClass generates an ACharacter subclass named name with the given traits.
func (g *Generator) CharacterClass(ctx context.Context, name string, traits map[string]any) Files {
	traitsJSON, err := json.MarshalIndent(traits, "", "  ")
	if err != nil {
		g.log.Error("code generation failed", zap.String("name", name), zap.Error(err))
		return Files{}
	}
	return g.generate(ctx, name, characterPrompt(name, string(traitsJSON)))
}

// GameLogic generates a manager class plus supporting types for a game system.
func (g *Generator) GameLogic(ctx context.Context, system, description string) Files {
	return g.generate(ctx, system, systemPrompt(system, description))
}

func (g *Generator) generate(ctx context.Context, name, prompt string) Files {
	fields := []zap.Field{zap.String("name", name)}

	className := sanitizeName(name)
	if className == "" {
		g.log.Error("code generation failed", append(fields, zap.String("reason", "name has no identifier characters"))...)
		return Files{}
	}
	if g.completer == nil {
		g.log.Error("code generation failed", append(fields, zap.String("reason", "no language model configured"))...)
		return Files{}
	}

	reply, err := g.completer.Prompt(ctx, prompt)
	if err != nil {
		g.log.Error("code generation failed", append(fields, zap.Error(err))...)
		return Files{}
	}

	var files Files
	if err := ai.DecodeJSON(reply, &files); err != nil {
		g.log.Error("code generation failed", append(fields, zap.Error(fmt.Errorf("decode reply: %w", err)))...)
		return Files{}
	}
	if files.Empty() {
		g.log.Error("code generation failed", append(fields, zap.Error(ErrEmptyResponse))...)
		return Files{}
	}

	if g.outputDir != "" {
		if err := g.write(className, files); err != nil {
			g.log.Error("code generation failed", append(fields, zap.Error(err))...)
			return Files{}
		}
	}

	g.log.Info("generated class", append(fields, zap.String("class", className), zap.String("dir", g.outputDir))...)
	return files
}

func (g *Generator) write(className string, files Files) error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	header := filepath.Join(g.outputDir, className+".h")
	if err := os.WriteFile(header, []byte(files.Header), 0o644); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	source := filepath.Join(g.outputDir, className+".cpp")
	if err := os.WriteFile(source, []byte(files.Source), 0o644); err != nil {
		return fmt.Errorf("write source: %w", err)
	}
	return nil
}

// sanitizeName keeps letters, digits and underscores so the result is usable
// both as a C++ identifier and as a file name.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
