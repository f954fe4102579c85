package view

import (
	"github.com/Afrawles/actionfeed/internal/activity"
	"github.com/Afrawles/actionfeed/internal/poller"
)

type multi []poller.View

// Multi fans every update out to each view in order.
func Multi(views ...poller.View) poller.View {
	var m multi
	for _, v := range views {
		if v != nil {
			m = append(m, v)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multi) Render(entries []activity.Entry) {
	for _, v := range m {
		v.Render(entries)
	}
}

func (m multi) RenderEmpty() {
	for _, v := range m {
		v.RenderEmpty()
	}
}

func (m multi) SetStatus(s poller.Status) {
	for _, v := range m {
		v.SetStatus(s)
	}
}
