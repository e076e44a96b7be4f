// Command distman installs, removes, and packs dists against a deployment
// directory. It is a thin cobra shell over internal/orchestrator, with one
// subcommand per operation and colored status output on top.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/drahosp/luadist/internal/config"
	"github.com/drahosp/luadist/internal/logging"
	"github.com/drahosp/luadist/internal/orchestrator"
)

var (
	cfgFile    string
	deployRoot string
	repos      []string
	buildVars  []string
	destDir    string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "distman",
		Short: "distman installs, removes, and packs dists into a deployment",
		Long:  "distman resolves dependencies over a manifest of dist.info records and deploys the selected dists into a directory, LuaDist-style.",
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./distman.yaml)")
	rootCmd.PersistentFlags().StringVarP(&deployRoot, "deploy", "d", "./deploy", "deployment directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	installCmd := &cobra.Command{
		Use:   "install <name[constraint]>...",
		Short: "resolve and deploy dists satisfying the given requirements",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runInstall,
	}
	installCmd.Flags().StringArrayVarP(&repos, "repo", "r", nil, "repository locator (directory, archive, or URL); repeatable")
	installCmd.Flags().StringArrayVar(&buildVars, "var", nil, "KEY=VALUE build variable; repeatable")

	removeCmd := &cobra.Command{
		Use:   "remove <name[constraint]>...",
		Short: "delete deployed dists matching the given names",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRemove,
	}

	packCmd := &cobra.Command{
		Use:   "pack <name[constraint]>...",
		Short: "archive deployed dists matching the given names",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPack,
	}
	packCmd.Flags().StringVarP(&destDir, "out", "o", ".", "directory to write archives into")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list deployed dists, including provides and host-provides",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	rootCmd.AddCommand(installCmd, removeCmd, packCmd, listCmd)

	if err := rootCmd.Execute(); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func newOrchestrator() (*orchestrator.Orchestrator, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Logger = logging.New(os.Stderr, verbose)
	return orchestrator.New(cfg), nil
}

func parseBuildVars(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		k, v, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("--var %q: expected KEY=VALUE", e)
		}
		out[k] = v
	}
	return out, nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	vars, err := parseBuildVars(buildVars)
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		return fmt.Errorf("install requires at least one --repo locator")
	}

	installed, err := o.Install(args, deployRoot, repos, nil, vars)
	if err != nil {
		return fmt.Errorf("install: %w", err)
	}
	for _, d := range installed {
		color.Green("installed %s-%s", d.Name, d.Version)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	if err := o.Remove(args, deployRoot); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	color.Yellow("removed %s", strings.Join(args, ", "))
	return nil
}

func runPack(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	archives, err := o.Pack(args, deployRoot, destDir)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	for _, path := range archives {
		color.Green("packed %s", path)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	deployed, err := o.GetDeployed(deployRoot)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	for _, d := range deployed {
		if d.Provided != nil {
			color.Blue("%s-%s (provided by %s-%s)", d.Name, d.Version, d.Provided.Name, d.Provided.Version)
			continue
		}
		fmt.Printf("%s-%s\n", d.Name, d.Version)
	}
	return nil
}
