package schedules_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jrsteele09/bell-client/httpclient"
	"github.com/jrsteele09/bell-client/model"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

// gatedAPI answers GET /schedules with a fixed list and holds POST
// /schedules until release is closed.
type gatedAPI struct {
	list    []model.Schedule
	created model.Schedule
	entered chan struct{}
	release chan struct{}
}

func newGatedAPI(list []model.Schedule, created model.Schedule) *gatedAPI {
	return &gatedAPI{list: list, created: created, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedAPI) Send(ctx context.Context, req httpclient.Request, out any) error {
	var body any = g.list
	if req.Method == http.MethodPost {
		close(g.entered)
		select {
		case <-g.release:
		case <-ctx.Done():
			return ctx.Err()
		}
		body = g.created
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
