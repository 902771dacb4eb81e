// ktbind init [name], ktbind new [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ktbind-build/ktbind/internal/msg"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

// initIn scaffolds a single-component build in an existing directory: the
// build manifest, a sample interface description, and an optional config.
func initIn(dir, name string) {
	// ktbind.yaml
	writefile(`out_dir: build/generated
components:
  - metadata: `+name+`/ktbind.json
`, dir, "ktbind.yaml")

	mkdir(dir, name)

	// <name>/ktbind.json
	writefile(`{
  "namespace": "`+name+`",
  "crate_name": "`+name+`",
  "functions": [
    { "name": "add", "args": [{ "name": "a", "type": "u32" }, { "name": "b", "type": "u32" }], "return": "u32" }
  ]
}
`, dir, name, "ktbind.json")

	// <name>/uniffi.toml
	writefile(`[bindings.kotlin]
package_name = "com.example.`+name+`"
kotlin_multiplatform = true
kotlin_targets = ["jvm", "android", "native"]
`, dir, name, "uniffi.toml")

	// .gitignore
	writefile(`build/
`, dir, ".gitignore")

	programName := getProgramName()
	fmt.Printf("You can now do %s to generate the bindings.\n", color.HiCyanString(programName+" "+dir))
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "ktbind"
	}
	basename := filepath.Base(os.Args[0])
	ext := filepath.Ext(basename)
	return basename[:len(basename)-len(ext)]
}

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a binding build in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initIn(".", args[0])
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a binding build in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(args[0], filepath.Base(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newCmd)
}
