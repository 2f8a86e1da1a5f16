package theme

// NewClinic creates the default theme: the clinic's blue and teal on a dark
// terminal.
func NewClinic() *Theme {
	return &Theme{
		Name:   "clinic",
		IsDark: true,

		Primary:   "#89b4fa", // Blue
		Secondary: "#94e2d5", // Teal

		FgMuted: "#7f849c",
		FgBase:  "#cdd6f4",

		Success: "#a6e3a1",
		Warning: "#f9e2af",
		Error:   "#f38ba8",

		DiffInsertFg: "#a6e3a1",
		DiffDeleteFg: "#f38ba8",
		DiffHunkFg:   "#89dceb",
	}
}
