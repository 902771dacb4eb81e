// ktbind [path], ktbind generate [path]
package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ktbind-build/ktbind/internal/bindgen"
	"github.com/ktbind-build/ktbind/internal/bindgen/kotlin"
	"github.com/ktbind-build/ktbind/internal/msg"
)

var (
	flagMultiplatform bool
	flagOutDir        string
	flagCdylib        string
	flagJobs          int
	flagFormatter     EnumValue = NewEnumValue("ktlint", map[string]string{
		"ktlint": "Format written files with ktlint -F (default)",
		"ktfmt":  "Format written files with ktfmt",
		"none":   "Skip formatting",
	})
)

func doGenerate(cmd *cobra.Command, args []string) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}

	b, err := bindgen.NewBindgenInDirectory(target, kotlin.New())
	if err != nil {
		msg.Fatal("%v", err)
	}

	b.ForceMultiplatform = flagMultiplatform
	if flagFormatter.Value() != "none" {
		b.Formatter = flagFormatter.Value()
	}
	if flagOutDir != "" {
		b.SetOutDir(flagOutDir)
	}
	if flagCdylib != "" {
		b.SetCdylib(flagCdylib)
	}
	if flagJobs > 0 {
		b.Jobs = flagJobs
	}

	if err := b.Generate(context.Background()); err != nil {
		msg.Fatal("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ktbind [manifest path]",
	Short: "Kotlin Multiplatform binding generator",
	Long:  `Generates Kotlin bindings for native components from interface-description metadata`,
	Args:  cobra.MinimumNArgs(1),
	Run:   doGenerate,
}

var generateCmd = &cobra.Command{
	Use:   "generate [manifest path]",
	Short: "Generate bindings",
	Long:  `Generate bindings. If no manifest path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doGenerate,
}

func init() {
	addGenerateFlags(rootCmd)

	// ktbind generate subcommand
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&flagMultiplatform, "multiplatform", "m", false, "Force multiplatform mode on every component")
	cmd.Flags().StringVarP(&flagOutDir, "out-dir", "o", "", "Override the manifest's output directory")
	cmd.Flags().StringVar(&flagCdylib, "cdylib", "", "Build-wide native artifact name")
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", runtime.NumCPU(), "Number of components generated in parallel")
	cmd.Flags().VarP(&flagFormatter, "formatter", "f", "Formatter to run on written files, one of "+flagFormatter.HelpString())
	cmd.RegisterFlagCompletionFunc("formatter", flagFormatter.CompletionFunc())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
