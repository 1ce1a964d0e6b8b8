// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tui holds the interactive picker behind `mealctl browse`.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/mealctlgo/internal/mealdb"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f6be00"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
}

// PickerModel is a minimal list picker over search results. Selection is
// reported through Choice; a nil Choice means the user bailed out.
type PickerModel struct {
	Title  string
	Items  []mealdb.Meal
	Choice *mealdb.Meal

	cursor int
}

func NewPicker(title string, items []mealdb.Meal) PickerModel {
	return PickerModel{Title: title, Items: items}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Quit):
		return m, tea.Quit

	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.Items)-1 {
			m.cursor++
		}

	case key.Matches(keyMsg, keys.Select):
		if len(m.Items) > 0 {
			m.Choice = &m.Items[m.cursor]
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.Title) + "\n\n")

	if len(m.Items) == 0 {
		b.WriteString(dimStyle.Render("no matches") + "\n")
		return b.String()
	}

	for i, item := range m.Items {
		line := fmt.Sprintf("%s (%s, %s)", item.Name, item.Category, item.Area)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("enter select / q quit") + "\n")
	return b.String()
}

// Pick runs the picker and returns the selected meal, if any.
func Pick(title string, items []mealdb.Meal) (*mealdb.Meal, error) {
	final, err := tea.NewProgram(NewPicker(title, items)).Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(PickerModel)
	if !ok {
		return nil, nil
	}
	return m.Choice, nil
}
