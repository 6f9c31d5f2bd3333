package shadow

// mimeColors maps Drive MIME types to embed accent colors, matching the
// Drive web UI palette.
var mimeColors = map[string]int{
	"application/vnd.google-apps.document":     0x4285F4,
	"application/vnd.google-apps.spreadsheet":  0x0F9D58,
	"application/vnd.google-apps.presentation": 0xF4B400,
	"application/vnd.google-apps.form":         0x7627BB,
	"application/vnd.google-apps.drawing":      0xD93025,
	"application/vnd.google-apps.folder":       0x5F6368,
	"application/pdf":                          0xEA4335,
}

// defaultColor is used for MIME types without a table entry.
const defaultColor = 0x9AA0A6

// colorFor returns the accent color for a MIME type.
func colorFor(mimeType string) int {
	if c, ok := mimeColors[mimeType]; ok {
		return c
	}
	return defaultColor
}
