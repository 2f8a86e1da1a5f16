package wizard

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// ImportExtensions are the file types the picker offers for import.
var ImportExtensions = []string{".json", ".md", ".markdown"}

// FileItem is a file or directory in the picker.
type FileItem struct {
	name  string
	path  string
	isDir bool
}

// Render returns the item line truncated to width.
func (f *FileItem) Render(width int) string {
	icon := "📄"
	if f.isDir {
		icon = "📁"
	}
	display := icon + " " + f.name
	if width > 8 && len(display) > width-2 {
		display = display[:width-5] + "..."
	}
	return display
}

var styleSelectedItem = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Background(lipgloss.Color("#313244")).
	Bold(true)

// FilePicker browses directories for files with one of the given
// extensions.
type FilePicker struct {
	currentPath string
	exts        []string
	items       []*FileItem
	selectedIdx int
	err         string
	width       int
	height      int
}

// NewFilePicker starts in dir, or the working directory when dir is empty.
func NewFilePicker(dir string, exts []string) *FilePicker {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		dir = cwd
	}
	fp := &FilePicker{
		exts:   exts,
		width:  60,
		height: 10,
	}
	fp.loadDirectory(dir)
	return fp
}

func (f *FilePicker) accepts(name string) bool {
	if len(f.exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range f.exts {
		if ext == e {
			return true
		}
	}
	return false
}

// loadDirectory lists path: a parent entry, directories, then matching files.
func (f *FilePicker) loadDirectory(path string) {
	entries, err := os.ReadDir(path)
	if err != nil {
		f.err = err.Error()
		return
	}
	f.err = ""
	f.items = f.items[:0]

	if abs, err := filepath.Abs(path); err == nil && abs != filepath.Dir(abs) {
		f.items = append(f.items, &FileItem{name: "..", path: filepath.Dir(abs), isDir: true})
	}

	var dirs, files []*FileItem
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		full := filepath.Join(path, entry.Name())
		switch {
		case entry.IsDir():
			dirs = append(dirs, &FileItem{name: entry.Name(), path: full, isDir: true})
		case f.accepts(entry.Name()):
			files = append(files, &FileItem{name: entry.Name(), path: full})
		}
	}
	byName := func(items []*FileItem) {
		sort.Slice(items, func(i, j int) bool {
			return strings.ToLower(items[i].name) < strings.ToLower(items[j].name)
		})
	}
	byName(dirs)
	byName(files)

	f.items = append(f.items, dirs...)
	f.items = append(f.items, files...)
	f.currentPath = path
	f.selectedIdx = 0
}

// SetSize updates the dimensions for the file picker.
func (f *FilePicker) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// Dir returns the directory being shown.
func (f *FilePicker) Dir() string { return f.currentPath }

// SelectedPath returns the highlighted file, or "" for a directory.
func (f *FilePicker) SelectedPath() string {
	if f.selectedIdx >= 0 && f.selectedIdx < len(f.items) {
		if item := f.items[f.selectedIdx]; !item.isDir {
			return item.path
		}
	}
	return ""
}

// Update handles navigation. Choosing a file emits FileSelectedMsg.
func (f *FilePicker) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if f.selectedIdx > 0 {
			f.selectedIdx--
		}
	case "down", "j":
		if f.selectedIdx < len(f.items)-1 {
			f.selectedIdx++
		}
	case "enter":
		if f.selectedIdx < 0 || f.selectedIdx >= len(f.items) {
			return nil
		}
		item := f.items[f.selectedIdx]
		if item.isDir {
			f.loadDirectory(item.path)
			return nil
		}
		return func() tea.Msg {
			return FileSelectedMsg{Path: item.path}
		}
	case "backspace":
		if parent := filepath.Dir(f.currentPath); parent != f.currentPath {
			f.loadDirectory(parent)
		}
	}
	return nil
}

// View renders the picker with a window of items around the selection.
func (f *FilePicker) View() string {
	var b strings.Builder
	b.WriteString(styleLabel.Render(f.currentPath))
	b.WriteString("\n\n")

	if f.err != "" {
		b.WriteString(styleFieldError.Render("✗ " + f.err))
		b.WriteString("\n")
	}

	hasFiles := false
	for _, item := range f.items {
		if !item.isDir {
			hasFiles = true
			break
		}
	}
	if !hasFiles {
		b.WriteString(styleNotice.Render("No " + strings.Join(f.exts, ", ") + " files in this directory"))
		b.WriteString("\n")
	}

	visible := f.height - 4
	if visible < 3 {
		visible = 3
	}
	start := 0
	if f.selectedIdx >= visible {
		start = f.selectedIdx - visible + 1
	}
	end := start + visible
	if end > len(f.items) {
		end = len(f.items)
	}
	for i := start; i < end; i++ {
		line := f.items[i].Render(f.width)
		if i == f.selectedIdx {
			b.WriteString(styleSelectedItem.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHintBar(
		"↑↓/j/k", "navigate",
		"enter", "select",
		"backspace", "up",
		"esc", "cancel",
	))
	return b.String()
}

// FileSelectedMsg is sent when a file is chosen.
type FileSelectedMsg struct {
	Path string
}
