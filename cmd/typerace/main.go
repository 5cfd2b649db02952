// Package main provides the CLI entrypoint for typerace.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typerace/internal/config"
	"github.com/verte-zerg/typerace/internal/content"
	"github.com/verte-zerg/typerace/internal/engine"
	"github.com/verte-zerg/typerace/internal/matchmaking"
	"github.com/verte-zerg/typerace/internal/model"
	"github.com/verte-zerg/typerace/internal/race"
	"github.com/verte-zerg/typerace/internal/sessionsui"
	"github.com/verte-zerg/typerace/internal/stats"
	"github.com/verte-zerg/typerace/internal/store"
	"github.com/verte-zerg/typerace/internal/tui"
	"github.com/verte-zerg/typerace/internal/ws"
)

const (
	defaultAddr     = ":8080"
	defaultCategory = "race"
	defaultWords    = 25
	defaultCaps     = 0.0
	defaultPunct    = 0.0
)

const defaultPunctSet = ".,!?;:\"'"

var (
	browseUser  string
	browseLimit int

	replaySession int64

	reportSession int64

	raceID string

	serveAddr          string
	serveContentDir    string
	serveCategory      string
	serveWPMRange      int
	serveMinPlayers    int
	serveMaxPlayers    int
	serveExpandAfterMs int64
	serveExpandStep    int
	serveMaxWPMRange   int
	serveTickMs        int64

	generateWords int
	generateCaps  float64
	generatePunct float64
	generateOut   string

	dbPath string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typerace",
		Short:         "Competitive typing trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runBrowseCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the database")
	rootCmd.Flags().StringVar(&browseUser, "user", "", "filter sessions by user")
	rootCmd.Flags().IntVar(&browseLimit, "limit", 0, "limit to most recent N sessions (0 = all)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newRaceCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// runBrowseCmd opens the session browser and replays the selected session.
func runBrowseCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := context.Background()
	sessions, err := st.ListSessions(ctx, browseUser, browseLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	browser := sessionsui.NewModel(sessions)
	program := tea.NewProgram(browser, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run session browser: %w", err)
	}
	id, ok := browser.Selected()
	if !ok {
		return nil
	}
	return runReplayViewer(ctx, st, id)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a stored session",
		Args:  cobra.NoArgs,
		RunE:  runReplayCmd,
	}
	cmd.Flags().Int64Var(&replaySession, "session", 0, "session ID to replay")
	return cmd
}

func runReplayCmd(_ *cobra.Command, _ []string) error {
	if replaySession <= 0 {
		return fmt.Errorf("--session must be a positive session ID")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)
	return runReplayViewer(context.Background(), st, replaySession)
}

func runReplayViewer(ctx context.Context, st *store.Store, sessionID int64) error {
	rec, err := st.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", sessionID, err)
	}
	log, err := st.GetKeystrokes(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load keystrokes: %w", err)
	}
	viewer := tui.NewModel(rec, log)
	program := tea.NewProgram(viewer, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run replay viewer: %w", err)
	}
	return nil
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE:  runSessionsCmd,
	}
	cmd.Flags().StringVar(&browseUser, "user", "", "filter sessions by user")
	cmd.Flags().IntVar(&browseLimit, "limit", 0, "limit to most recent N sessions (0 = all)")
	return cmd
}

func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	sessions, err := st.ListSessions(context.Background(), browseUser, browseLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	return stats.RenderSessionTable(cmd.OutOrStdout(), sessions)
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a session summary",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().Int64Var(&reportSession, "session", 0, "session ID to summarize")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	if reportSession <= 0 {
		return fmt.Errorf("--session must be a positive session ID")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	ctx := context.Background()
	rec, err := st.GetSession(ctx, reportSession)
	if err != nil {
		return fmt.Errorf("failed to load session %d: %w", reportSession, err)
	}
	log, err := st.GetKeystrokes(ctx, reportSession)
	if err != nil {
		return fmt.Errorf("failed to load keystrokes: %w", err)
	}
	return stats.RenderSessionSummary(cmd.OutOrStdout(), rec, log)
}

func newRaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "race",
		Short: "Print stored race results",
		Args:  cobra.NoArgs,
		RunE:  runRaceCmd,
	}
	cmd.Flags().StringVar(&raceID, "id", "", "race ID")
	return cmd
}

func runRaceCmd(cmd *cobra.Command, _ []string) error {
	if raceID == "" {
		return fmt.Errorf("--id must not be empty")
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	r, participants, err := st.GetRace(context.Background(), raceID)
	if err != nil {
		return fmt.Errorf("failed to load race %s: %w", raceID, err)
	}
	return stats.RenderRaceResults(cmd.OutOrStdout(), r, participants)
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a challenge text",
		Args:  cobra.ArbitraryArgs,
		RunE:  runGenerateCmd,
	}
	cmd.Flags().IntVar(&generateWords, "words", defaultWords, "words per challenge")
	cmd.Flags().Float64Var(&generateCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	cmd.Flags().Float64Var(&generatePunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	cmd.Flags().StringVar(&generateOut, "out", "", "write the challenge to a file instead of stdout")
	return cmd
}

// runGenerateCmd builds a challenge from the word pool given as arguments,
// falling back to a small built-in pool.
func runGenerateCmd(cmd *cobra.Command, args []string) error {
	if generateWords <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if generateCaps < 0 || generateCaps > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if generatePunct < 0 || generatePunct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	pool := args
	if len(pool) == 0 {
		pool = builtinWords()
	}
	gen := content.NewGenerator(pool)
	challenge := gen.Challenge(generateWords, generateCaps, generatePunct, []rune(defaultPunctSet))

	if generateOut == "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), challenge.Text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(generateOut), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(generateOut, []byte(challenge.Text+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write challenge: %w", err)
	}
	logErrf("Wrote %s\n", generateOut)
	return nil
}

func builtinWords() []string {
	return strings.Fields("the quick brown fox jumps over a lazy dog and then runs back home " +
		"to rest while birds sing in tall green trees near cold clear water")
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the race server",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringVar(&serveContentDir, "content-dir", config.DefaultContentDir(), "directory with challenge texts")
	cmd.Flags().StringVar(&serveCategory, "category", defaultCategory, "challenge category raced on matchmaking")
	cmd.Flags().IntVar(&serveWPMRange, "wpm-range", matchmaking.DefaultConfig.WPMRange, "initial matchmaking WPM band")
	cmd.Flags().IntVar(&serveMinPlayers, "min-players", matchmaking.DefaultConfig.MinPlayers, "minimum players per match")
	cmd.Flags().IntVar(&serveMaxPlayers, "max-players", matchmaking.DefaultConfig.MaxPlayers, "maximum players per match")
	cmd.Flags().Int64Var(&serveExpandAfterMs, "expand-after-ms", matchmaking.DefaultConfig.ExpandAfterMs, "wait time per band expansion step")
	cmd.Flags().IntVar(&serveExpandStep, "expand-step", matchmaking.DefaultConfig.ExpandStep, "WPM added per expansion step")
	cmd.Flags().IntVar(&serveMaxWPMRange, "max-wpm-range", matchmaking.DefaultConfig.MaxWPMRange, "maximum matchmaking WPM band")
	cmd.Flags().Int64Var(&serveTickMs, "tick-interval-ms", matchmaking.DefaultTickInterval.Milliseconds(), "matchmaking tick interval")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Server.Addr)
	applyStringConfig(cmd, "content-dir", &serveContentDir, fileCfg.Server.ContentDir)
	applyIntConfig(cmd, "wpm-range", &serveWPMRange, fileCfg.Matchmaking.WPMRange)
	applyIntConfig(cmd, "min-players", &serveMinPlayers, fileCfg.Matchmaking.MinPlayers)
	applyIntConfig(cmd, "max-players", &serveMaxPlayers, fileCfg.Matchmaking.MaxPlayers)
	applyInt64Config(cmd, "expand-after-ms", &serveExpandAfterMs, fileCfg.Matchmaking.ExpandAfterMs)
	applyIntConfig(cmd, "expand-step", &serveExpandStep, fileCfg.Matchmaking.ExpandStep)
	applyIntConfig(cmd, "max-wpm-range", &serveMaxWPMRange, fileCfg.Matchmaking.MaxWPMRange)
	applyInt64Config(cmd, "tick-interval-ms", &serveTickMs, fileCfg.Matchmaking.TickIntervalMs)

	mmCfg := model.MatchmakingConfig{
		WPMRange:      serveWPMRange,
		MinPlayers:    serveMinPlayers,
		MaxPlayers:    serveMaxPlayers,
		ExpandAfterMs: serveExpandAfterMs,
		ExpandStep:    serveExpandStep,
		MaxWPMRange:   serveMaxWPMRange,
	}
	if err := validateMatchmaking(mmCfg); err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer closeStore(st)

	provider := content.NewDirProvider(serveContentDir)
	coord := race.NewCoordinator()
	svc := matchmaking.NewService(matchmaking.NewQueue(mmCfg), time.Duration(serveTickMs)*time.Millisecond)

	hub := ws.NewHub(func(userID string, data []byte) {
		var action race.Action
		if err := json.Unmarshal(data, &action); err != nil {
			logErrf("bad action from %s: %v\n", userID, err)
			return
		}
		if action.UserID == "" {
			action.UserID = userID
		}
		if err := coord.Apply(action); err != nil {
			logErrf("action %s from %s: %v\n", action.Type, userID, err)
		}
	})
	defer hub.Close()

	coord.Subscribe(func(ev race.Event) {
		hub.Broadcast(string(ev.Type), ev)
		if ev.Type == race.EventRaceFinished {
			if err := st.SaveRace(context.Background(), ev.Race, ev.Participants); err != nil {
				logErrf("failed to save race %s: %v\n", ev.Race.ID, err)
			}
		}
	})

	matches := svc.Subscribe()
	go func() {
		for m := range matches {
			createRaceFromMatch(coord, provider, m)
		}
	}()
	svc.Start()
	defer svc.Stop()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/queue/join", queueJoinHandler(st, svc))
	mux.HandleFunc("/queue/leave", queueLeaveHandler(svc))
	mux.HandleFunc("/challenge", challengeHandler(provider))
	mux.HandleFunc("/sessions", sessionUploadHandler(st))

	server := &http.Server{Addr: serveAddr, Handler: mux}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logErrf("listening on %s\n", serveAddr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// createRaceFromMatch turns a matchmaking result into a waiting race with
// every matched player joined, then starts it.
func createRaceFromMatch(coord *race.Coordinator, provider content.Provider, m matchmaking.Match) {
	refs := challengeRefs(provider)
	if len(refs) == 0 {
		logErrf("no challenges available for matched players; dropping match\n")
		return
	}
	r, err := coord.Create(len(m.Players), refs)
	if err != nil {
		logErrf("failed to create race: %v\n", err)
		return
	}
	for _, p := range m.Players {
		if err := coord.Join(r.ID, p.UserID); err != nil {
			logErrf("failed to join %s to race %s: %v\n", p.UserID, r.ID, err)
		}
	}
	if err := coord.Start(r.ID); err != nil {
		logErrf("failed to start race %s: %v\n", r.ID, err)
	}
}

func challengeRefs(provider content.Provider) []string {
	cat, err := provider.Category(serveCategory)
	if err != nil {
		logErrf("failed to load category %q: %v\n", serveCategory, err)
		return nil
	}
	refs := make([]string, 0, cat.Count())
	for _, ch := range cat.Challenges {
		refs = append(refs, ch.ID)
	}
	return refs
}

func queueJoinHandler(st *store.Store, svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		userID := r.URL.Query().Get("user")
		if userID == "" {
			http.Error(w, "user is required", http.StatusBadRequest)
			return
		}
		userName := r.URL.Query().Get("name")
		if userName == "" {
			userName = userID
		}
		wpm, err := st.RecentAverageWPM(r.Context(), userID, 10)
		if err != nil {
			logErrf("failed to load average WPM for %s: %v\n", userID, err)
			wpm = store.DefaultAverageWPM
		}
		svc.Queue().AddPlayer(userID, userName, wpm)
		svc.Tick()
		w.WriteHeader(http.StatusNoContent)
	}
}

func queueLeaveHandler(svc *matchmaking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		userID := r.URL.Query().Get("user")
		if userID == "" {
			http.Error(w, "user is required", http.StatusBadRequest)
			return
		}
		svc.Queue().RemovePlayer(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}

type keystrokeJSON struct {
	TimestampMs int64  `json:"timestampMs"`
	Expected    string `json:"expected"`
	Actual      string `json:"actual"`
	Correct     bool   `json:"correct"`
	LatencyMs   int64  `json:"latencyMs"`
}

type sessionUpload struct {
	UserID     string          `json:"userId"`
	StartedAt  time.Time       `json:"startedAt"`
	TargetText string          `json:"targetText"`
	HintUsed   bool            `json:"hintUsed"`
	Keystrokes []keystrokeJSON `json:"keystrokes"`
}

// sessionUploadHandler accepts a finished session's keystroke log. The
// stats are re-derived server-side from the log; clients never submit
// their own numbers.
func sessionUploadHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var upload sessionUpload
		if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
			http.Error(w, "bad request body", http.StatusBadRequest)
			return
		}
		if upload.UserID == "" || upload.TargetText == "" || len(upload.Keystrokes) == 0 {
			http.Error(w, "userId, targetText, and keystrokes are required", http.StatusBadRequest)
			return
		}
		log := make([]model.KeystrokeEvent, 0, len(upload.Keystrokes))
		for _, k := range upload.Keystrokes {
			log = append(log, model.KeystrokeEvent{
				TimestampMs: k.TimestampMs,
				Expected:    firstRune(k.Expected),
				Actual:      firstRune(k.Actual),
				Correct:     k.Correct,
				LatencyMs:   k.LatencyMs,
			})
		}
		rec := model.SessionRecord{
			UserID:     upload.UserID,
			StartedAt:  upload.StartedAt,
			TargetText: upload.TargetText,
			HintUsed:   upload.HintUsed,
			Stats:      engine.ComputeStats(log, log[len(log)-1].TimestampMs),
		}
		id, err := st.InsertSession(r.Context(), rec, log)
		if err != nil {
			logErrf("failed to save session for %s: %v\n", upload.UserID, err)
			http.Error(w, "failed to save session", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]int64{"id": id}); err != nil {
			logErrf("failed to encode response: %v\n", err)
		}
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func challengeHandler(provider content.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := r.URL.Query().Get("ref")
		if ref == "" {
			http.Error(w, "ref is required", http.StatusBadRequest)
			return
		}
		challenge, err := provider.Challenge(ref)
		if err != nil {
			http.Error(w, "challenge not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(challenge); err != nil {
			logErrf("failed to encode challenge: %v\n", err)
		}
	}
}

func validateMatchmaking(cfg model.MatchmakingConfig) error {
	if cfg.WPMRange <= 0 {
		return fmt.Errorf("--wpm-range must be > 0")
	}
	if cfg.MinPlayers < race.MinPlayers {
		return fmt.Errorf("--min-players must be >= %d", race.MinPlayers)
	}
	if cfg.MaxPlayers < cfg.MinPlayers {
		return fmt.Errorf("--max-players must be >= --min-players")
	}
	if cfg.MaxPlayers > race.MaxPlayers {
		return fmt.Errorf("--max-players must be <= %d", race.MaxPlayers)
	}
	if cfg.ExpandAfterMs <= 0 {
		return fmt.Errorf("--expand-after-ms must be > 0")
	}
	if cfg.ExpandStep < 0 {
		return fmt.Errorf("--expand-step must be >= 0")
	}
	if cfg.MaxWPMRange < cfg.WPMRange {
		return fmt.Errorf("--max-wpm-range must be >= --wpm-range")
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typerace configuration
# Uncomment a value to enable it. CLI flags override config values.

[server]
# addr = %q              # Listen address
# content-dir = ""       # Directory with challenge texts

[matchmaking]
# wpm-range = %d         # Initial WPM band
# min-players = %d       # Minimum players per match
# max-players = %d       # Maximum players per match
# expand-after-ms = %d   # Wait time per band expansion step
# expand-step = %d       # WPM added per expansion step
# max-wpm-range = %d     # Maximum WPM band
# tick-interval-ms = %d  # Matchmaking tick interval
`,
		defaultAddr,
		matchmaking.DefaultConfig.WPMRange,
		matchmaking.DefaultConfig.MinPlayers,
		matchmaking.DefaultConfig.MaxPlayers,
		matchmaking.DefaultConfig.ExpandAfterMs,
		matchmaking.DefaultConfig.ExpandStep,
		matchmaking.DefaultConfig.MaxWPMRange,
		matchmaking.DefaultTickInterval.Milliseconds(),
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
