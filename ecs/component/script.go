package component

// Script attaches a tengo behavior. Source is compiled once per entity by the
// script system; Path is kept for diagnostics and hot reload.
type Script struct {
	Path   string
	Source []byte
}

var ScriptComponent = NewComponent[Script]()
