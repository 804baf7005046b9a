package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/music-notebook/internal/audio"
	"github.com/franz/music-notebook/internal/store"
	"github.com/franz/music-notebook/internal/util"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on the environment and configuration",
		Long: `Run diagnostic checks to ensure mnb can operate correctly.

This command checks:
- SQLite version compatibility
- Database accessibility, integrity and stored state
- Storage type of the database (local or network)
- Clipboard availability
- Optional tools (ffprobe for take durations)
- Event log directory, when configured

Use this command to troubleshoot issues before running mnb operations.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
	cmd.Flags().Bool("repair", false, "delete stored keys that cannot be read, so their defaults apply")
	return cmd
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== MNB Doctor - System Diagnostics ===")
	util.InfoLog("")

	dbPath := GetConfigPath("db", defaultDBPath)
	repair, _ := cmd.Flags().GetBool("repair")

	results := []checkResult{
		checkSQLite(),
		checkDatabase(dbPath),
		checkStoredState(dbPath, repair),
		checkStorage(dbPath),
		checkClipboard(),
		checkFFprobe(),
	}
	if dir := GetConfigPath("event-log-dir", ""); dir != "" {
		results = append(results, checkEventLogDir(dir))
	}

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running mnb.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! System is ready for mnb operations.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is compiled in; just verify it answers
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility and integrity
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	version, _ := db.SchemaVersion()
	entries, _ := db.Entries()
	return checkResult{
		name: "Database",
		message: fmt.Sprintf("%s (%s, schema v%d, %d keys)",
			dbPath, humanize.Bytes(uint64(info.Size())), version, len(entries)),
	}
}

// checkStoredState verifies the saved notebook decodes. Corrupt keys are a
// warning: mnb falls back to defaults and overwrites them on the next change.
func checkStoredState(dbPath string, repair bool) checkResult {
	if _, err := os.Stat(dbPath); err != nil {
		return checkResult{
			name:    "Stored state",
			message: "nothing saved yet",
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Stored state",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckState(); err != nil {
		if !repair {
			return checkResult{
				name:    "Stored state",
				warning: true,
				message: fmt.Sprintf("will fall back to defaults (run with --repair to reset): %v", err),
			}
		}
		dropped, err := db.DropUnreadable()
		if err != nil {
			return checkResult{
				name:    "Stored state",
				error:   true,
				message: fmt.Sprintf("repair failed: %v", err),
			}
		}
		util.InfoLog("Reset to defaults: %s", strings.Join(dropped, ", "))
	}

	st, err := db.LoadState()
	if err != nil {
		return checkResult{
			name:    "Stored state",
			error:   true,
			message: err.Error(),
		}
	}
	return checkResult{
		name:    "Stored state",
		message: fmt.Sprintf("%d projects", len(st.Projects)),
	}
}

// checkStorage reports whether the database lives on network storage
func checkStorage(dbPath string) checkResult {
	info, err := util.DetectMount(dbPath)
	if err != nil {
		return checkResult{
			name:    "Storage",
			warning: true,
			message: fmt.Sprintf("cannot determine filesystem: %v", err),
		}
	}
	if info.Network {
		return checkResult{
			name:    "Storage",
			warning: true,
			message: fmt.Sprintf("network filesystem %s at %s (network pragmas applied, avoid concurrent mnb processes)", info.FSType, info.MountPoint),
		}
	}
	msg := "local"
	if info.FSType != "" {
		msg = fmt.Sprintf("local %s", info.FSType)
	}
	return checkResult{
		name:    "Storage",
		message: msg,
	}
}

// checkClipboard lists the usable copy mechanisms
func checkClipboard() checkResult {
	methods := newClipboard().Methods()
	if len(methods) == 0 {
		return checkResult{
			name:    "Clipboard",
			warning: true,
			message: "no system clipboard and stdout is not a terminal (--copy will only print)",
		}
	}
	return checkResult{
		name:    "Clipboard",
		message: strings.Join(methods, ", "),
	}
}

// checkFFprobe looks for ffprobe, which only take import needs
func checkFFprobe() checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	version, err := audio.FFprobeVersion(ctx)
	if err != nil {
		return checkResult{
			name:    "ffprobe (optional)",
			warning: true,
			message: "not usable, takes added with --from-file get no duration",
		}
	}
	return checkResult{
		name:    "ffprobe (optional)",
		message: "version " + version,
	}
}

// checkEventLogDir verifies the event log directory is writable
func checkEventLogDir(path string) checkResult {
	if err := os.MkdirAll(path, 0755); err != nil {
		return checkResult{
			name:    "Event log directory",
			error:   true,
			message: fmt.Sprintf("cannot create %s: %v", path, err),
		}
	}

	// Check write permission by creating a temp file
	testFile := filepath.Join(path, ".mnb_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Event log directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Event log directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}
