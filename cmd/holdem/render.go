package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"holdem-arcade/card"
	"holdem-arcade/holdem"
)

func chips(n int64) string { return humanize.Comma(n) }

func cardsString(cs []card.Card) string {
	if len(cs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		s := c.String()
		if c.Suit() == card.Heart || c.Suit() == card.Diamond {
			s = pterm.LightRed(s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func render(s holdem.Snapshot) {
	pterm.Println()
	board := fmt.Sprintf("Hand #%d  %s\nBoard: %s\nPot: %s   Current bet: %s",
		s.Hand, strings.ToUpper(s.Phase.String()), cardsString(s.CommunityCards), chips(s.Pot), chips(s.TableBet))
	pterm.DefaultBox.WithTitle(pterm.LightGreen("|TABLE|")).WithTitleTopCenter().Println(board)

	data := pterm.TableData{{"Seat", "Player", "Stack", "Bet", "Status", "Cards"}}
	for _, p := range s.Players {
		status := pterm.LightGreen("Active")
		switch {
		case p.SittingOut:
			status = pterm.FgGray.Sprint("Out")
		case p.Folded:
			status = pterm.LightRed("Folded")
		}
		name := p.Name
		if p.Seat == s.ActionSeat {
			name = pterm.LightCyan("> " + name)
		}
		data = append(data, []string{
			fmt.Sprint(p.Seat), name, chips(p.Stack), chips(p.Bet), status, cardsString(p.HandCards),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	if len(s.Log) > 0 {
		pterm.DefaultSection.WithLevel(2).Println("Log")
		for _, l := range s.Log {
			pterm.Println("  " + l)
		}
	}
}

func renderShowdown(r *holdem.ShowdownResult) {
	if r == nil || r.Uncontested {
		return
	}
	var b strings.Builder
	for _, p := range r.Players {
		line := fmt.Sprintf("%s  %s  %.3f  %s", p.Name, cardsString(p.HandCards), p.Strength, p.Label)
		if p.IsWinner {
			line = pterm.LightGreen(line + fmt.Sprintf("  +%s", chips(p.WinAmount)))
		}
		b.WriteString(line + "\n")
	}
	pterm.DefaultBox.WithTitle(pterm.LightYellow("|SHOWDOWN|")).WithTitleTopCenter().Println(strings.TrimRight(b.String(), "\n"))
}
