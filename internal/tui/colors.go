package tui

// Color constants for the punchd status view
const (
	ColorBorder = "#3A3F55" // Grey-blue

	ColorPrimaryText   = "#E6EAF2" // Primary text (headers, logins)
	ColorSecondaryText = "#B1B8C7" // Secondary text (timestamps, tokens)
	ColorDisabledText  = "#6D7383" // Muted text
	ColorHelpText      = "240"     // Dark grey for help text

	ColorAccentMain = "#7C3AED" // Title, accents

	ColorError   = "#EF4444" // Stale sessions
	ColorSuccess = "#22C55E" // Fresh sessions
	ColorWarning = "#F59E0B" // Sessions close to the threshold
)
