package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/calens/finch/core/config"
	"github.com/calens/finch/core/dispatch"
	"github.com/calens/finch/core/jumpdb"
	"github.com/calens/finch/core/log"
	"github.com/calens/finch/core/prompt"
	"github.com/calens/finch/core/run"
	"github.com/calens/finch/core/selection"
	"github.com/calens/finch/core/session"
	"github.com/calens/finch/core/trash"
	"github.com/calens/finch/core/watch"
)

var (
	stealth            bool
	secureEnv          bool
	secureCmds         bool
	disableIcons       bool
	disableSuggestions bool
	disableHighlight   bool
	noAutoLS           bool
	profile            string

	exitCode int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   session.ProgramName + " [PATH]",
	Short: "A keyboard-driven terminal file manager",
	Long: `Browse with numbered listings: type an entry's number (or its name)
to enter a directory or open a file. Anything that is not an internal
command runs through the system shell.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command and exits with the last dispatched
// command's code. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", session.ProgramName, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func runRoot(cmd *cobra.Command, args []string) error {
	fsys := afero.NewOsFs()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	paths := config.ProfilePaths(home, profile)

	if !stealth {
		if err := config.Init(fsys, paths); err != nil {
			return err
		}
	}
	cfg, err := config.Load(fsys, paths.ConfigFile)
	if err != nil {
		return err
	}

	start, err := startDir(fsys, args)
	if err != nil {
		return err
	}

	if secureEnv {
		scrubEnv()
	}

	s := session.New(fsys, run.NewLauncher(), start, true)
	s.Home = home
	s.Paths = paths
	s.Sel = selection.New(fsys, paths.SelFile, stealth)
	cfg.Apply(s)

	s.Stealth = stealth
	s.SecureCmds = secureCmds
	if disableIcons {
		s.Icons = false
	}
	if disableSuggestions {
		s.Suggestions = false
	}
	if disableHighlight {
		s.Highlight = false
	}
	if noAutoLS {
		s.AutoLS = false
	}
	s.Colorize = isatty.IsTerminal(os.Stdout.Fd())
	if ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ); err == nil {
		s.TermWidth = int(ws.Col)
	}

	restoreSignals := run.ShieldTTYSignals()
	defer restoreSignals()

	lg := loadState(s, cfg, len(args) > 0)
	defer persistState(s)

	var watcher *watch.Watcher
	if w, err := watch.New(); err == nil {
		watcher = w
		_ = watcher.Arm(s.CWD())
		defer watcher.Close()
	}

	can := trash.New(s, "")
	d := dispatch.New(s, can, watcher, lg)

	histFile := ""
	if !stealth {
		histFile = paths.HistFile
	}
	loop, err := prompt.New(s, d, histFile)
	if err != nil {
		return err
	}
	s.Prompt = loop

	if s.AutoLS {
		if err := s.Refresh(); err == nil {
			s.PrintListing()
		}
	}
	d.RebuildPathCache()

	exitCode = loop.Run()
	return nil
}

// startDir picks the starting directory: the positional argument when
// given, else the process cwd.
func startDir(fsys afero.Fs, args []string) (string, error) {
	if len(args) == 0 {
		return os.Getwd()
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return "", err
	}
	info, err := fsys.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%s: no such file or directory", args[0])
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", args[0])
	}
	return abs, os.Chdir(abs)
}

// loadState restores persisted session state and opens the command log
// and jump database. Stealth mode skips all of it.
func loadState(s *session.Session, cfg *config.Configuration, explicitStart bool) *log.Log {
	if stealth {
		return nil
	}

	_ = s.Sel.Load()

	if table, err := config.LoadActions(s.Fs, s.Paths.ActionsFile); err == nil {
		s.Actions = table
	}
	if pinned, err := config.LoadPin(s.Fs, s.Paths.PinFile); err == nil && pinned != "" {
		s.Pinned = pinned
	}
	if hist, err := config.LoadHistory(s.Fs, s.Paths.HistFile); err == nil {
		s.CmdHistory = hist
	}
	if dirs, err := config.LoadDirhist(s.Fs, s.Paths.DirhistFile); err == nil {
		for _, dir := range dirs {
			if dir != s.CWD() {
				s.Hist.Push(dir)
			}
		}
		// Keep the ring anchored at the actual starting directory.
		s.Hist.Push(s.CWD())
	}

	if !explicitStart {
		if slots, _, err := config.LoadWorkspaces(s.Fs, s.Paths.LastFile); err == nil {
			restoreWorkspaces(s, slots)
		}
	}

	if db, err := jumpdb.Open(s.Paths.JumpFile); err == nil {
		s.Jump = db
	}

	return log.New(s.Fs, s.Paths.LogFile, cfg.LogCommands)
}

// restoreWorkspaces refills the non-current slots from the .last file.
// The current slot keeps the session's start directory.
func restoreWorkspaces(s *session.Session, slots [session.MaxWorkspaces]string) {
	for i, p := range slots {
		if i == s.CurWS || p == "" {
			continue
		}
		if info, err := s.Fs.Stat(p); err == nil && info.IsDir() {
			s.Workspaces[i] = p
		}
	}
}

func persistState(s *session.Session) {
	if stealth {
		return
	}
	_ = s.Sel.Save()
	_ = config.SaveHistory(s.Fs, s.Paths.HistFile, s.CmdHistory)
	_ = config.SaveDirhist(s.Fs, s.Paths.DirhistFile, s.Hist.Paths())
	_ = config.SavePin(s.Fs, s.Paths.PinFile, s.Pinned)
	if s.Jump != nil {
		_ = s.Jump.Close()
	}
}

// scrubEnv drops every environment variable outside a small allowlist so
// child processes cannot be steered by preloaded libraries or lookalike
// interpreter settings.
func scrubEnv() {
	allowed := map[string]bool{
		"HOME": true, "PATH": true, "SHELL": true, "TERM": true,
		"USER": true, "LOGNAME": true, "PAGER": true, "EDITOR": true,
		"TMPDIR": true, "LANG": true, "DISPLAY": true, "TZ": true,
	}
	for _, kv := range os.Environ() {
		name := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			name = kv[:i]
		}
		if allowed[name] || strings.HasPrefix(name, "LC_") ||
			strings.HasPrefix(name, "XDG_") {
			continue
		}
		os.Unsetenv(name)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVarP(&stealth, "stealth", "S", false,
		"leave no trace: no persistent state is read or written")
	flags.BoolVar(&secureEnv, "secure-env", false,
		"run with a sanitized environment")
	flags.BoolVar(&secureCmds, "secure-cmds", false,
		"refuse external commands with shell metacharacters")
	flags.BoolVar(&disableIcons, "disable-icons", false,
		"never print entry icons")
	flags.BoolVar(&disableSuggestions, "disable-suggestions", false,
		"turn off input suggestions")
	flags.BoolVar(&disableHighlight, "disable-highlight", false,
		"turn off syntax highlighting")
	flags.BoolVar(&noAutoLS, "no-autols", false,
		"do not relist after directory changes")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "P", "",
		"use an alternative configuration profile")
}
