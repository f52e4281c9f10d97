// Command listmirror incrementally mirrors mailing-list archives and
// rebuilds consolidated mailbox files for a mail client.
//
// Besides the default mirror pass it understands two maintenance
// commands for private-archive passwords:
//
//	listmirror set-password <key>      store a password from stdin
//	listmirror delete-password <key>   remove a stored password
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/nhle/listmirror/internal/credential"
	"github.com/nhle/listmirror/internal/fetch"
	"github.com/nhle/listmirror/internal/model"
	"github.com/nhle/listmirror/internal/report"
	"github.com/nhle/listmirror/internal/store"
	"github.com/nhle/listmirror/internal/sync"
)

// Distinct exit statuses let cron wrappers tell configuration mistakes
// from runtime failures.
const (
	exitConfig      = 1
	exitArchiveRoot = 2
	exitRun         = 3
)

// stateDBName is the SQLite file holding completion markers and the
// run journal, kept inside the archive root.
const stateDBName = "state.db"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		archiveRoot string
		verbose     bool
		force       bool
	)

	pflag.StringVarP(&configPath, "config", "c",
		model.DefaultConfigPath(), "path to the configuration file")
	pflag.StringVarP(&archiveRoot, "archive-root", "a",
		model.DefaultArchiveRoot(), "directory for downloaded payloads and sync state")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pflag.BoolVarP(&force, "force", "f", false,
		"rebuild every archive even when nothing changed")
	pflag.Parse()

	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	if args := pflag.Args(); len(args) > 0 {
		return runPasswordCommand(args)
	}

	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		log.Errorf("loading configuration: %s", err)
		return exitConfig
	}

	if err := ensureArchiveRoot(archiveRoot); err != nil {
		log.Errorf("%s", err)
		return exitArchiveRoot
	}

	st, err := store.NewSQLiteStore(filepath.Join(archiveRoot, stateDBName))
	if err != nil {
		log.Errorf("opening state database: %s", err)
		return exitRun
	}
	defer st.Close()

	fetcher, err := fetch.NewHTTPFetcher()
	if err != nil {
		log.Errorf("creating fetcher: %s", err)
		return exitRun
	}

	engine := sync.New(st, fetcher, *cfg, archiveRoot, sync.Options{
		Force:   force,
		Resolve: credential.Resolve,
	})

	results, err := engine.Run(context.Background())
	fmt.Print(report.Render(results))
	if err != nil {
		log.Errorf("run aborted: %s", err)
		return exitRun
	}
	return 0
}

// ensureArchiveRoot creates the archive root when absent. A path that
// exists but is not a directory is a configuration mistake.
func ensureArchiveRoot(root string) error {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("creating archive root %s: %w", root, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspecting archive root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("archive root %s exists but is not a directory", root)
	}
	return nil
}

// runPasswordCommand handles the keyring maintenance commands.
func runPasswordCommand(args []string) int {
	switch {
	case args[0] == "set-password" && len(args) == 2:
		fmt.Fprintf(os.Stderr, "password for %s: ", args[1])
		password, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			log.Errorf("reading password: %s", err)
			return exitConfig
		}
		if err := credential.Set(args[1], strings.TrimSpace(password)); err != nil {
			log.Errorf("%s", err)
			return exitConfig
		}
		return 0

	case args[0] == "delete-password" && len(args) == 2:
		if err := credential.Delete(args[1]); err != nil {
			log.Errorf("%s", err)
			return exitConfig
		}
		return 0

	default:
		log.Errorf("unknown command %q", strings.Join(args, " "))
		return exitConfig
	}
}
