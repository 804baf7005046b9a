package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time
var Version = "dev"

// persistentKeys are the root flags mirrored into viper
var persistentKeys = []string{
	"db",
	"verbose",
	"quiet",
	"no-color",
	"exclusive-keeper",
	"event-log-dir",
	"event-log-level",
	"network-db",
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "mnb",
		Short: "Music Notebook - prompts, versions, takes and releases of AI-generated songs",
		Long: `mnb (Music Notebook) keeps track of AI music generation work.
Projects hold songs, songs hold versions generated from a prompt builder,
and each version collects its takes, QA checklist, timeline and release
plans. State lives in a local SQLite database.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			util.SetVerbose(GetConfigBool("verbose"))
			util.SetQuiet(GetConfigBool("quiet"))
			if GetConfigBool("no-color") {
				util.SetColors(false)
			}
			return nil
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./configs/mnb.yaml)")
	pf.String("db", defaultDBPath, "state database file")
	pf.BoolP("verbose", "v", false, "verbose output")
	pf.BoolP("quiet", "q", false, "quiet output (errors only)")
	pf.Bool("no-color", false, "disable coloured log output")
	pf.Bool("exclusive-keeper", false, "keeping a take clears the other keepers of its version")
	pf.String("event-log-dir", "", "write a JSONL audit trail of changes to this directory")
	pf.String("event-log-level", "info", "minimum event level: debug, info, warning, error")
	pf.Bool("network-db", false, "apply network-filesystem pragmas to the database (auto-detected when unset)")

	for _, key := range persistentKeys {
		viper.BindPFlag(key, pf.Lookup(key))
	}

	rootCmd.AddCommand(
		newProjectCmd(),
		newSongCmd(),
		newVersionCmd(),
		newTakeCmd(),
		newReleaseCmd(),
		newBuilderCmd(),
		newPromptCmd(),
		newOutlineCmd(),
		newDashboardCmd(),
		newReportCmd(),
		newExportCmd(),
		newImportCmd(),
		newDoctorCmd(),
	)

	return rootCmd
}

func initConfig(cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common locations
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("mnb")
		viper.SetConfigType("yaml")
	}

	// Read in environment variables that match, MNB_EVENT_LOG_DIR for event-log-dir
	viper.SetEnvPrefix("MNB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine unless one was named explicitly
	var notFound viper.ConfigFileNotFoundError
	switch err := viper.ReadInConfig(); {
	case err == nil:
		util.DebugLog("Using config file: %s", viper.ConfigFileUsed())
	case cfgFile == "" && errors.As(err, &notFound):
	default:
		return fmt.Errorf("config %s: %v: %w", viper.ConfigFileUsed(), err, util.ErrInvalidConfig)
	}

	switch level := GetConfigString("event-log-level", "info"); level {
	case "debug", "info", "warning", "error":
	default:
		return fmt.Errorf("event-log-level %q: %w", level, util.ErrInvalidConfig)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
