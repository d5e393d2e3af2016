package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconIdentical = " " // No icon for rows needing no attention
	IconDifferent = "≠" // Values diverge across files
	IconMissing   = "✗" // Key absent from at least one file
	IconPending   = "●" // Cell has an unsaved pending change
	IconConflict  = "⚠" // Pending change raced an external disk edit
	IconDeleted   = "-" // Pending deletion
	IconGone      = "?" // Column's file vanished from disk
)

// StatusIcon maps a row status to its list marker.
func StatusIcon(s RowStatus) string {
	switch s {
	case StatusDifferent:
		return IconDifferent
	case StatusMissing:
		return IconMissing
	default:
		return IconIdentical
	}
}
