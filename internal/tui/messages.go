package tui

import (
	"github.com/Veraticus/life-sheet/internal/model"
	"github.com/Veraticus/life-sheet/internal/workflow"
)

type loadedMsg struct {
	err error
}

type savedMsg struct {
	err    error
	result workflow.SaveResult
}

type autosavedMsg struct {
	err   error
	field string
}

type deletedMsg struct {
	err     error
	removed model.Entry
	ref     uint64
}

// bannerExpiredMsg triggers a redraw once a status banner has timed out.
type bannerExpiredMsg struct{}
