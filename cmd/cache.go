// ktbind cache dir|clean
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ktbind-build/ktbind/internal/cache"
	"github.com/ktbind-build/ktbind/internal/msg"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the fetched-component cache",
}

var cacheDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := cache.DefaultDir()
		if err != nil {
			msg.Fatal("%v", err)
		}
		fmt.Println(dir)
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all fetched components",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		dir, err := cache.DefaultDir()
		if err != nil {
			msg.Fatal("%v", err)
		}
		if err := cache.Clean(dir); err != nil {
			msg.Fatal("%v", err)
		}
		msg.Info("removed %s", dir)
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheDirCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}
