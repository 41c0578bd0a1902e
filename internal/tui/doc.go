// Package tui is the interactive terminal player.
//
// The player draws the 16-slot ring with a cursor, highlights the strand the
// rule wants moved and the slot it must go to, and shows the loose and tight
// previews side by side, scrolled so the latest step stays centred.
//
// # Thread Safety
//
// The Model is used only from the bubbletea event loop. Moves run in a
// tea.Cmd goroutine because the session blocks while the move animates;
// the model drops every request until the move reports back, and the
// session drops them too.
package tui
