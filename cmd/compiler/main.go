// Command compiler compiles blueprint files into OpenSCENARIO documents and
// inspects the knowledge registry.
//
// Usage:
//
//	compiler compile blueprint.json --out scenario.xosc
//	generator | compiler compile --resources /opt/esmini/resources
//	compiler maps
//	compiler context "a truck cuts in on the highway"
//
// Without --out the document is written to the output directory as
// scn_<ULID>.xosc. Diagnostics go to stderr; the written path goes to
// stdout.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/ScenarioForge/internal/domain/blueprint"
	"github.com/GriffinCanCode/ScenarioForge/internal/domain/knowledge"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/config"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/server"
	"github.com/GriffinCanCode/ScenarioForge/internal/logging"
	"github.com/GriffinCanCode/ScenarioForge/internal/shared/id"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(config.LoadOrDefault()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "compiler",
		Short:        "Compile scenario blueprints into OpenSCENARIO documents",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Compiler.KnowledgeFile, "knowledge", cfg.Compiler.KnowledgeFile, "Knowledge overlay file (YAML or TOML)")

	rootCmd.AddCommand(compileCmd(cfg))
	rootCmd.AddCommand(mapsCmd(cfg))
	rootCmd.AddCommand(contextCmd(cfg))
	return rootCmd
}

func compileCmd(cfg *config.Config) *cobra.Command {
	var (
		out       string
		mapKey    string
		jsonDiags bool
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "compile [blueprint-file]",
		Short: "Compile one blueprint; reads stdin when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewNop()
			if verbose {
				logger = logging.FromConfig("debug", true)
				defer func() { _ = logger.Sync() }()
			}

			data, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			raw, err := blueprint.ParseInput(data)
			if err != nil {
				return err
			}
			if mapKey != "" {
				raw.MapKey = mapKey
			}
			bp, diags := blueprint.Normalize(raw)

			comp, err := server.NewCompiler(cfg, logger, nil)
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = filepath.Join(cfg.Compiler.OutputDir, id.NewScenarioID().FileName())
			}

			res, err := comp.CompileToFile(cmd.Context(), bp, path)
			if err != nil {
				printDiagnostics(cmd.ErrOrStderr(), diags, jsonDiags)
				return err
			}

			printDiagnostics(cmd.ErrOrStderr(), append(diags, res.Diagnostics...), jsonDiags)
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&out, "out", "o", "", "Output .xosc path (default: <output-dir>/scn_<id>.xosc)")
	flags.StringVar(&cfg.Compiler.OutputDir, "output-dir", cfg.Compiler.OutputDir, "Output directory when --out is not given")
	flags.StringVarP(&mapKey, "map", "m", "", "Override the blueprint's map_key")
	flags.StringVar(&cfg.Compiler.ResourcesDir, "resources", cfg.Compiler.ResourcesDir, "esmini resources directory")
	flags.StringVar(&cfg.Placement.Catalog, "catalog", cfg.Placement.Catalog, "Placement candidate catalog")
	flags.StringVar(&cfg.Placement.URL, "placement-url", cfg.Placement.URL, "Placement service URL")
	flags.BoolVar(&jsonDiags, "json", false, "Print diagnostics as JSON")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	return cmd
}

func mapsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "maps",
		Short: "List the registered map contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := loadRegistry(cfg)
			if err != nil {
				return err
			}
			for _, m := range reg.Contexts() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-36s lanes=%v speed_limit=%g\n",
					m.Key, m.RoadFile, m.Lanes, m.SpeedLimit)
			}
			return nil
		},
	}
}

func contextCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "context [request]",
		Short: "Print the map and rule context for a free-text request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), reg.PromptContext(strings.Join(args, " ")))
			return nil
		},
	}
}

func loadRegistry(cfg *config.Config) (*knowledge.Registry, error) {
	if cfg.Compiler.KnowledgeFile == "" {
		return knowledge.Default(), nil
	}
	return knowledge.Load(cfg.Compiler.KnowledgeFile)
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("blueprint %s does not exist", args[0])
	}
	return data, err
}

func printDiagnostics(w io.Writer, diags []blueprint.Diagnostic, asJSON bool) {
	if asJSON {
		if diags == nil {
			diags = []blueprint.Diagnostic{}
		}
		out, err := sonic.MarshalString(diags)
		if err == nil {
			fmt.Fprintln(w, out)
		}
		return
	}
	for _, d := range diags {
		fmt.Fprintf(w, "warning: [%s] %s: %s\n", d.Kind, d.Subject, d.Message)
	}
}
