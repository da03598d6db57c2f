package tui

import "github.com/charmbracelet/bubbles/key"

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type keyMap struct {
	Copy      key.Binding
	Cut       key.Binding
	Paste     key.Binding
	SelectAll key.Binding
	Delete    key.Binding
	Quantize  key.Binding
	AddMode   key.Binding
	Escape    key.Binding

	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	OctaveUp   key.Binding
	OctaveDown key.Binding
	Softer     key.Binding
	Louder     key.Binding
	Shorter    key.Binding
	Longer     key.Binding

	ZoomIn  key.Binding
	ZoomOut key.Binding
	Fit     key.Binding

	Play   key.Binding
	Stop   key.Binding
	Back   key.Binding
	Ahead  key.Binding
	New    key.Binding
	Open   key.Binding
	Save   key.Binding
	SaveAs key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Copy:      binding("copy", "ctrl+c"),
		Cut:       binding("cut", "ctrl+x"),
		Paste:     binding("paste", "ctrl+v"),
		SelectAll: binding("select all", "ctrl+a"),
		Delete:    binding("delete", "delete", "backspace"),
		Quantize:  binding("quantize", "q"),
		AddMode:   binding("add notes", "a"),
		Escape:    binding("cancel", "esc"),

		Left:       binding("earlier", "left"),
		Right:      binding("later", "right"),
		Up:         binding("semitone up", "up"),
		Down:       binding("semitone down", "down"),
		OctaveUp:   binding("octave up", "shift+up"),
		OctaveDown: binding("octave down", "shift+down"),
		Softer:     binding("velocity -", "["),
		Louder:     binding("velocity +", "]"),
		Shorter:    binding("shorter", ","),
		Longer:     binding("longer", "."),

		ZoomIn:  binding("zoom in", "+", "="),
		ZoomOut: binding("zoom out", "-", "_"),
		Fit:     binding("fit", "f"),

		Play:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Stop:   binding("stop", "home"),
		Back:   binding("back a bar", "pgup"),
		Ahead:  binding("ahead a bar", "pgdown"),
		New:    binding("new", "ctrl+n"),
		Open:   binding("open", "ctrl+o"),
		Save:   binding("save", "ctrl+s"),
		SaveAs: binding("save as", "ctrl+w"),
		Help:   binding("help", "?"),
		Quit:   binding("quit", "ctrl+q"),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddMode, k.Delete, k.Quantize, k.Play, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Copy, k.Cut, k.Paste, k.SelectAll, k.Delete, k.Quantize, k.AddMode, k.Escape},
		{k.Left, k.Right, k.Up, k.Down, k.OctaveUp, k.OctaveDown, k.Softer, k.Louder, k.Shorter, k.Longer},
		{k.ZoomIn, k.ZoomOut, k.Fit, k.Play, k.Stop, k.Back, k.Ahead},
		{k.New, k.Open, k.Save, k.SaveAs, k.Help, k.Quit},
	}
}
