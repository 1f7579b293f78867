package google

import (
	"context"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// Mirror is a task store observer that forwards each change to the calendar.
// Failures are logged; the board never waits on the calendar being right.
type Mirror struct {
	client  *CalendarClient
	timeout time.Duration
}

func NewMirror(c *CalendarClient) *Mirror {
	return &Mirror{client: c, timeout: 30 * time.Second}
}

func (m *Mirror) Changed(prev, next []model.Task, change model.Change) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	var err error
	switch change.Kind {
	case model.ChangeReset:
		return
	case model.ChangeDeleted:
		err = m.client.RemoveTask(ctx, change.ID)
	default:
		for _, task := range next {
			if task.ID == change.ID {
				_, err = m.client.SyncTask(ctx, task)
				break
			}
		}
	}
	if err != nil {
		logging.Logger.WithField("task", change.ID).Warnf("calendar mirror: %v", err)
	}
}
