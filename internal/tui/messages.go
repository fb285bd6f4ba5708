package tui

type menuChangedMsg struct{}

type treeLoadedMsg struct {
	rows  []row
	empty bool
}

type activationMsg struct {
	id int
}

type eventResultMsg struct {
	event string
	err   error
}

type copiedMsg struct{}

type clearStatusMsg struct{}
