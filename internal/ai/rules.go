package ai

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabelHint steers the model toward a label for a theme of task text.
// The hint only takes effect when the label actually exists in the
// user's account.
type LabelHint struct {
	Label string `yaml:"label"`
	Topic string `yaml:"topic"`
}

// Rules carries the user-tunable routing a plan request bakes into the
// prompt: the project new tasks should land in and thematic label
// hints.
type Rules struct {
	PriorityProject string      `yaml:"priority_project"`
	ForceProject    bool        `yaml:"force_project"`
	LabelHints      []LabelHint `yaml:"label_hints"`
}

// DefaultRules routes everything into the urgent-tasks project and
// splits labels between work and personal-life themes.
func DefaultRules() Rules {
	return Rules{
		PriorityProject: "Срочные задачи",
		ForceProject:    true,
		LabelHints: []LabelHint{
			{Label: "Работа", Topic: "work/business/dev/distribution/discord roles tasks"},
			{Label: "Жизнь", Topic: "health/personal/life tasks"},
		},
	}
}

// LoadRules reads a rules file, filling unset fields from the
// defaults. A missing path returns the defaults unchanged.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if strings.TrimSpace(path) == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return rules, nil
		}
		return rules, fmt.Errorf("read rules: %w", err)
	}

	// force_project decodes through a pointer so an absent key keeps the
	// default instead of reading as false.
	var loaded struct {
		PriorityProject string      `yaml:"priority_project"`
		ForceProject    *bool       `yaml:"force_project"`
		LabelHints      []LabelHint `yaml:"label_hints"`
	}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return rules, fmt.Errorf("parse rules: %w", err)
	}
	if strings.TrimSpace(loaded.PriorityProject) != "" {
		rules.PriorityProject = strings.TrimSpace(loaded.PriorityProject)
	}
	if loaded.ForceProject != nil {
		rules.ForceProject = *loaded.ForceProject
	}
	if len(loaded.LabelHints) > 0 {
		hints := loaded.LabelHints[:0]
		for _, h := range loaded.LabelHints {
			h.Label = strings.TrimSpace(h.Label)
			h.Topic = strings.TrimSpace(h.Topic)
			if h.Label != "" && h.Topic != "" {
				hints = append(hints, h)
			}
		}
		rules.LabelHints = hints
	}
	return rules, nil
}
