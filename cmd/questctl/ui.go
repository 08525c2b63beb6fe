package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	iconSparkle = "✨"
	iconFire    = "🔥"
	iconTrophy  = "🏆"
	iconGem     = "💎"
	iconCoin    = "🪙"
	iconError   = "🧨"
)

var (
	cPrimary = lipgloss.Color("63")
	cAccent  = lipgloss.Color("205")
	cGood    = lipgloss.Color("42")
	cBad     = lipgloss.Color("196")
	cMuted   = lipgloss.Color("244")
	cGold    = lipgloss.Color("220")
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	styleKey   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	styleMuted = lipgloss.NewStyle().Foreground(cMuted)
	styleGood  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	styleBad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	styleGold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
)

func heading(icon, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return styleTitle.Render(icon + title)
}

func labelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", styleKey.Render(label+":"), value)
}

// progressBar renders done/total as a fixed-width bar.
func progressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(max(done*width/total, 0), width)
	return styleGood.Render(strings.Repeat("█", filled)) +
		styleMuted.Render(strings.Repeat("░", width-filled))
}

func remainingLabel(n int) string {
	if n < 0 {
		return styleGood.Render("unlimited")
	}
	if n == 0 {
		return styleBad.Render("none left today")
	}
	return fmt.Sprintf("%d left today", n)
}
