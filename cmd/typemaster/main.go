// Package main provides the CLI entrypoint for typemaster.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typemaster/internal/config"
	"github.com/verte-zerg/typemaster/internal/generator"
	"github.com/verte-zerg/typemaster/internal/lesson"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/session"
	"github.com/verte-zerg/typemaster/internal/stats"
	"github.com/verte-zerg/typemaster/internal/store"
	"github.com/verte-zerg/typemaster/internal/texts"
	"github.com/verte-zerg/typemaster/internal/tui"
)

const (
	defaultMode         = "test"
	defaultLesson       = 1
	defaultPreviewWidth = 60
)

var (
	practiceMode     string
	practiceTextID   int64
	practiceTextFile string
	practiceLesson   int

	textTitle string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typemaster",
		Short:         "Typing speed tester and tutor",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "start mode: test or lessons")
	rootCmd.Flags().Int64Var(&practiceTextID, "text-id", 0, "practice a stored text by ID (see: typemaster texts list)")
	rootCmd.Flags().StringVar(&practiceTextFile, "text-file", "", "practice the contents of a text file")
	rootCmd.Flags().IntVar(&practiceLesson, "lesson", defaultLesson, "lesson number to start on (1-based)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLessonsCmd())
	rootCmd.AddCommand(newTextsCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyInt64Config(cmd, "text-id", &practiceTextID, fileCfg.Practice.TextID)
	applyStringConfig(cmd, "text-file", &practiceTextFile, fileCfg.Practice.TextFile)
	applyIntConfig(cmd, "lesson", &practiceLesson, fileCfg.Practice.Lesson)
	// A text source given on the command line replaces the configured one.
	if cmd.Flags().Changed("text-file") && !cmd.Flags().Changed("text-id") {
		practiceTextID = 0
	}
	if cmd.Flags().Changed("text-id") && !cmd.Flags().Changed("text-file") {
		practiceTextFile = ""
	}

	mode, err := parseMode(practiceMode)
	if err != nil {
		return err
	}
	cfg := model.Config{
		Mode:     mode,
		TextID:   practiceTextID,
		TextFile: practiceTextFile,
		Lesson:   practiceLesson,
	}
	lessonSet, err := fileCfg.LessonSet()
	if err != nil {
		return err
	}
	if err := validateConfig(cfg, lessonSet); err != nil {
		return err
	}
	if !isInteractive() {
		return fmt.Errorf("typemaster needs an interactive terminal")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	library, err := st.ListTexts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list texts: %w", err)
	}
	text, err := resolveText(ctx, st, cfg, library)
	if err != nil {
		return err
	}

	seq := lesson.NewSequencer(lessonSet)
	if err := seq.Select(cfg.Lesson - 1); err != nil {
		return fmt.Errorf("invalid --lesson: %w", err)
	}

	ctrl := session.New(text.Body)
	defer ctrl.Close()

	m := tui.NewModel(ctrl, seq, library, generator.New(), text, cfg.Mode)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	snap := ctrl.Snapshot()
	if snap.HasResult {
		if err := stats.RenderResult(cmd.OutOrStdout(), snap.Result, snap.ElapsedTicks); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func resolveText(ctx context.Context, st *store.Store, cfg model.Config, library []model.Text) (model.Text, error) {
	switch {
	case cfg.TextFile != "":
		body, err := texts.LoadFile(config.ExpandHome(cfg.TextFile))
		if err != nil {
			return model.Text{}, fmt.Errorf("failed to load text file: %w", err)
		}
		return model.Text{Title: filepath.Base(cfg.TextFile), Body: body}, nil
	case cfg.TextID > 0:
		text, err := st.GetText(ctx, cfg.TextID)
		if errors.Is(err, store.ErrNotFound) {
			return model.Text{}, fmt.Errorf("text %d not found (run: typemaster texts list)", cfg.TextID)
		}
		if err != nil {
			return model.Text{}, fmt.Errorf("failed to load text: %w", err)
		}
		return text, nil
	default:
		if len(library) == 0 {
			return model.Text{}, fmt.Errorf("text library is empty")
		}
		return library[0], nil
	}
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := st.SeedBuiltin(context.Background(), texts.Builtin()); err != nil {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
		return nil, fmt.Errorf("failed to seed texts: %w", err)
	}
	return st, nil
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

func newLessonsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lessons",
		Short: "List practice lessons",
		Args:  cobra.NoArgs,
		RunE:  runLessonsCmd,
	}
}

func runLessonsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	set, err := fileCfg.LessonSet()
	if err != nil {
		return err
	}
	if err := stats.RenderLessons(cmd.OutOrStdout(), set.All()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newTextsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "texts",
		Short: "Manage the reference text library",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored texts",
		Args:  cobra.NoArgs,
		RunE:  runTextsListCmd,
	})
	addCmd := &cobra.Command{
		Use:   "add PATH",
		Short: "Add a text file to the library",
		Args:  cobra.ExactArgs(1),
		RunE:  runTextsAddCmd,
	}
	addCmd.Flags().StringVar(&textTitle, "title", "", "text title (default: file name)")
	cmd.AddCommand(addCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Remove a stored text",
		Args:  cobra.ExactArgs(1),
		RunE:  runTextsRemoveCmd,
	})
	return cmd
}

func runTextsListCmd(cmd *cobra.Command, _ []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	library, err := st.ListTexts(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list texts: %w", err)
	}
	if err := stats.RenderTexts(cmd.OutOrStdout(), library, previewWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runTextsAddCmd(cmd *cobra.Command, args []string) error {
	body, err := texts.LoadFile(config.ExpandHome(args[0]))
	if err != nil {
		return fmt.Errorf("failed to load text file: %w", err)
	}
	title := strings.TrimSpace(textTitle)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.AddText(context.Background(), title, body)
	if err != nil {
		return fmt.Errorf("failed to add text: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Added text %d (%s)\n", id, title); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runTextsRemoveCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid text ID %q", args[0])
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.DeleteText(context.Background(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("text %d not found or built-in", id)
		}
		return fmt.Errorf("failed to remove text: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed text %d\n", id); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typemaster configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q             # Start mode: "test" or "lessons"
# text-id = 1               # Stored text to practice (typemaster texts list)
# text-file = "~/text.txt"  # Practice a text file instead
# lesson = %d               # Lesson number to start on

# Replace the built-in lessons by defining your own:
# [[lessons]]
# title = "Numbers"
# text = "12345 67890 12345 67890"
`,
		defaultMode,
		defaultLesson,
	)
}

func parseMode(s string) (model.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "test":
		return model.ModeTest, nil
	case "lessons", "lesson":
		return model.ModeLessons, nil
	default:
		return model.ModeTest, fmt.Errorf("--mode must be \"test\" or \"lessons\"")
	}
}

func validateConfig(cfg model.Config, lessons lesson.Set) error {
	if cfg.TextID < 0 {
		return fmt.Errorf("--text-id must be > 0")
	}
	if cfg.TextID > 0 && cfg.TextFile != "" {
		return fmt.Errorf("--text-id and --text-file are mutually exclusive")
	}
	if cfg.Lesson < 1 || cfg.Lesson > lessons.Len() {
		return fmt.Errorf("--lesson must be between 1 and %d", lessons.Len())
	}
	return nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func previewWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultPreviewWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return defaultPreviewWidth
	}
	// Leave room for the ID, title and length columns.
	if w := width - 40; w > 10 {
		return w
	}
	return 10
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
