package key

import "github.com/gdamore/tcell/v2"

/**
 * Keys and Runes!
 */

const (
	RuneColon  = ':'
	RuneStart  = 's'
	RunePause  = 'p'
	RuneCancel = 'c'
	RuneWake   = 'w'
	RuneExport = 'e'
	RuneRescan = 'r'
	RuneFilter = 'f'
	RuneSave   = 'v'
	RuneQuit   = 'q'
)

const (
	KeyCtrlC = tcell.KeyCtrlC
	KeyEnter = tcell.KeyEnter
	KeyEsc   = tcell.KeyEsc
	KeyTab   = tcell.KeyTab
)
