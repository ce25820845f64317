package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agisilaos/todoist-planner/internal/ai"
	"github.com/agisilaos/todoist-planner/internal/api"
	"github.com/agisilaos/todoist-planner/internal/app/planner"
	"github.com/agisilaos/todoist-planner/internal/config"
	"github.com/agisilaos/todoist-planner/internal/output"
)

var (
	planTimezone     string
	planApply        bool
	planYes          bool
	planJSON         bool
	planPlain        bool
	planEnrichLabels bool
	planIfActivated  bool
)

var planCmd = &cobra.Command{
	Use:   "plan [request text]",
	Short: "Generate a task plan from a request and optionally apply it",
	Long: `Sends the request text to the configured AI model and prints the
resolved plan preview. With --apply, creates the tasks after
confirmation (--yes skips the prompt). Reads the request from stdin
when no argument is given.`,
	Args: cobra.ArbitraryArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planTimezone, "timezone", "", "IANA timezone for due-date math (default from config, then UTC)")
	planCmd.Flags().BoolVar(&planApply, "apply", false, "execute the plan against Todoist")
	planCmd.Flags().BoolVarP(&planYes, "yes", "y", false, "skip the confirmation prompt")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the resolved plan and report as JSON")
	planCmd.Flags().BoolVar(&planPlain, "plain", false, "print tab-separated rows instead of the preview block")
	planCmd.Flags().BoolVar(&planEnrichLabels, "enrich-labels", false, "run a second AI pass to classify labels per task")
	planCmd.Flags().BoolVar(&planIfActivated, "if-activated", false, "exit silently unless the text contains an activation phrase")
}

func runPlan(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" && !output.IsTTY(os.Stdin) {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return errors.New("empty request: pass the request text as arguments or on stdin")
	}

	if planIfActivated && !ai.IsActivationPhrase(text) {
		logger.Debug("no activation phrase, skipping", zap.String("text", text))
		return nil
	}

	cfg, err := loadEffectiveConfig()
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return errors.New("missing Todoist token: set TODOIST_API_TOKEN or the token config field")
	}

	timezone := planTimezone
	if timezone == "" {
		timezone = cfg.Timezone
	}

	rules, err := ai.LoadRules(cfg.RulesPath)
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	client := api.NewClient(cfg.BaseURL, cfg.Token, timeout)
	model := ai.NewClient(cfg.AIURL, cfg.AIKey, cfg.AIModel)
	model.Logger = logger
	p := &ai.Planner{Client: model, Rules: rules, Logger: logger}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	labels, err := client.ListLabels(ctx)
	if err != nil {
		return fmt.Errorf("list labels: %w", err)
	}
	logger.Debug("account loaded", zap.Int("projects", len(projects)), zap.Int("labels", len(labels)))

	result, err := p.RequestPlan(ctx, text, timezone, projects, labels)
	if err != nil {
		return err
	}

	resolved := planner.ResolveAt(result.Plan, projects, labels, result.Today, planner.Options{
		PriorityProject: rules.PriorityProject,
		ForceProject:    rules.ForceProject,
	})
	if planEnrichLabels {
		resolved = p.EnrichLabels(ctx, resolved, labels, text)
	}

	mode, err := output.DetectMode(planJSON, planPlain, output.IsTTY(os.Stdout))
	if err != nil {
		return err
	}
	switch mode {
	case output.ModeJSON:
		meta := output.Meta{RequestID: resolved.RequestID, Count: len(resolved.Tasks) + len(resolved.Subtasks)}
		if err := output.WriteJSON(os.Stdout, resolved, meta); err != nil {
			return err
		}
	case output.ModePlain:
		if err := output.WritePlain(os.Stdout, planRows(resolved)); err != nil {
			return err
		}
	default:
		if err := output.WriteText(os.Stdout, planner.PreviewText(resolved)); err != nil {
			return err
		}
	}

	if !planApply || !resolved.HasWork() {
		return nil
	}
	if !planYes && !confirm(os.Stdout) {
		fmt.Fprintln(os.Stdout, "Cancelled.")
		return nil
	}

	report := planner.Executor{API: client, Logger: logger}.Execute(ctx, resolved)

	switch mode {
	case output.ModeJSON:
		return output.WriteJSON(os.Stdout, report, output.Meta{RequestID: resolved.RequestID})
	case output.ModePlain:
		return output.WritePlain(os.Stdout, reportRows(report))
	default:
		return output.WriteText(os.Stdout, planner.ReportText(report))
	}
}

func planRows(p planner.ResolvedPlan) [][]string {
	rows := make([][]string, 0, len(p.Tasks)+len(p.Subtasks))
	for _, t := range p.Tasks {
		rows = append(rows, []string{"task", t.Ref, t.Content, t.ProjectName, t.DueString, strings.Join(t.Labels, ",")})
	}
	for _, s := range p.Subtasks {
		parent := s.ParentRef
		if parent == "" {
			parent = s.ParentTaskID
		}
		rows = append(rows, []string{"subtask", s.Ref, s.Content, parent, s.DueString, strings.Join(s.Labels, ",")})
	}
	return rows
}

func reportRows(r planner.Report) [][]string {
	var rows [][]string
	for _, t := range r.CreatedTasks {
		rows = append(rows, []string{"task", "ok", t.Ref, t.ID, t.Content})
	}
	for _, t := range r.FailedTasks {
		rows = append(rows, []string{"task", "failed", t.Ref, t.Reason, t.Content})
	}
	for _, s := range r.CreatedSubtasks {
		rows = append(rows, []string{"subtask", "ok", s.Ref, s.ID, s.Content})
	}
	for _, s := range r.FailedSubtasks {
		rows = append(rows, []string{"subtask", "failed", s.Ref, s.Reason, s.Content})
	}
	for _, d := range r.UpdatedDue {
		rows = append(rows, []string{"due", "ok", d.Ref, d.TaskID, d.DueString})
	}
	for _, d := range r.FailedDue {
		rows = append(rows, []string{"due", "failed", d.Ref, d.Reason, d.DueString})
	}
	for _, l := range r.UpdatedLabels {
		rows = append(rows, []string{"labels", "ok", l.Ref, l.TaskID, strings.Join(l.Labels, ",")})
	}
	for _, l := range r.FailedLabels {
		rows = append(rows, []string{"labels", "failed", l.Ref, l.Reason, strings.Join(l.Labels, ",")})
	}
	return rows
}

func confirm(out *os.File) bool {
	if !output.IsTTY(os.Stdin) {
		return false
	}
	fmt.Fprint(out, "Proceed? (y/N): ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func loadEffectiveConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultUserConfigPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg, _, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, err
	}
	return config.ApplyEnv(cfg), nil
}
