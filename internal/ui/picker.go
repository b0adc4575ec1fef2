package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/modu-ai/rulesync/internal/core/repository"
	"github.com/modu-ai/rulesync/pkg/models"
)

// pickerHeight caps the visible option rows of the rule picker.
const pickerHeight = 15

// RulePicker lets the user choose rules to install.
type RulePicker struct {
	theme    *Theme
	headless *HeadlessManager
}

// NewRulePicker creates a RulePicker.
func NewRulePicker(theme *Theme, hm *HeadlessManager) *RulePicker {
	return &RulePicker{theme: theme, headless: hm}
}

// Pick shows a multi-select list of rules and returns the chosen ones in
// list order. An empty selection is not an error. Aborting the form returns
// ErrCancelled; headless mode returns ErrHeadlessNoSelection because the
// caller has to name rules explicitly there.
func (p *RulePicker) Pick(rules []models.RuleDescriptor) ([]models.RuleDescriptor, error) {
	if len(rules) == 0 {
		return nil, ErrNoItems
	}
	if p.headless.IsHeadless() {
		return nil, ErrHeadlessNoSelection
	}

	var picked []int
	field := huh.NewMultiSelect[int]().
		Title("Select rules to install").
		Description("space to toggle, ctrl+a to toggle all, enter to confirm").
		Options(ruleOptions(rules)...).
		Height(min(len(rules)+2, pickerHeight)).
		Filterable(true).
		Value(&picked)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme.huhTheme()).
		WithAccessible(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("rule picker: %w", err)
	}

	return selectByIndex(rules, picked), nil
}

// ruleOptions labels each rule with its repository so same-named rules
// from different repositories can be told apart.
func ruleOptions(rules []models.RuleDescriptor) []huh.Option[int] {
	opts := make([]huh.Option[int], len(rules))
	for i, r := range rules {
		opts[i] = huh.NewOption(fmt.Sprintf("%s  (%s)", r.Name, repository.WorkingCopyName(r.RepositoryURL)), i)
	}
	return opts
}

// selectByIndex returns rules[i] for each picked index, in rules order.
func selectByIndex(rules []models.RuleDescriptor, picked []int) []models.RuleDescriptor {
	chosen := make(map[int]bool, len(picked))
	for _, i := range picked {
		chosen[i] = true
	}
	out := make([]models.RuleDescriptor, 0, len(picked))
	for i, r := range rules {
		if chosen[i] {
			out = append(out, r)
		}
	}
	return out
}
