package style

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

/**
 * Styles and Colors!
 */

const (
	ColorDefault     = tcell.ColorDefault
	ColorBlack       = tcell.ColorBlack
	ColorWhite       = tcell.ColorWhite
	ColorPurple      = tcell.ColorMediumPurple
	ColorGreen       = tcell.ColorSeaGreen
	ColorLightGreen  = tcell.ColorLightSeaGreen
	ColorMediumGreen = tcell.ColorMediumSeaGreen
	ColorOrange      = tcell.ColorOrange
	ColorDimGrey     = tcell.ColorDimGrey
	ColorRed         = tcell.ColorIndianRed
)

var (
	StyleDefault = tcell.StyleDefault
)

var compat = false

// SetCompat switches to plain ascii borders and drops text attributes for
// terminals with limited capabilities
func SetCompat(enabled bool) {
	compat = enabled

	if !enabled {
		return
	}

	tview.Borders.Horizontal = '-'
	tview.Borders.Vertical = '|'
	tview.Borders.TopLeft = '+'
	tview.Borders.TopRight = '+'
	tview.Borders.BottomLeft = '+'
	tview.Borders.BottomRight = '+'
	tview.Borders.LeftT = '+'
	tview.Borders.RightT = '+'
	tview.Borders.TopT = '+'
	tview.Borders.BottomT = '+'
	tview.Borders.Cross = '+'
	tview.Borders.HorizontalFocus = '='
	tview.Borders.VerticalFocus = '|'
	tview.Borders.TopLeftFocus = '+'
	tview.Borders.TopRightFocus = '+'
	tview.Borders.BottomLeftFocus = '+'
	tview.Borders.BottomRightFocus = '+'
}

// Compat returns true when compatibility mode is enabled
func Compat() bool {
	return compat
}

// Bold returns the bold attribute unless in compatibility mode
func Bold() tcell.AttrMask {
	if compat {
		return tcell.AttrNone
	}

	return tcell.AttrBold
}
