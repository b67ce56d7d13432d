package penzgtu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/jusunglee/penzgtu-go/internal/models"
	"github.com/jusunglee/penzgtu-go/internal/upstream"
)

// Upstream method names
const (
	MethodTimetableMeta = "getTimetableMeta"
	MethodWeekNum       = "getWeekNum"
	MethodTimetable     = "getTimetable"
)

// Caller sends a signed method call to the upstream
type Caller interface {
	Call(ctx context.Context, method string, args upstream.Args) (json.RawMessage, error)
}

// RemoteClient implements the Client interface against the live upstream
type RemoteClient struct {
	caller  Caller
	appCode string
}

// NewRemote creates a new remote PenzGTU client
func NewRemote(config Config, logger *slog.Logger) *RemoteClient {
	caller := upstream.NewCaller(upstream.Config{
		URL: config.URL,
		Credentials: upstream.Credentials{
			AppKey:  config.AppKey,
			AppCode: config.AppCode,
		},
		Timeout: config.Timeout,
	}, logger)
	return NewRemoteWithCaller(caller, config.AppCode)
}

// NewRemoteWithCaller creates a client on top of an existing caller
func NewRemoteWithCaller(caller Caller, appCode string) *RemoteClient {
	return &RemoteClient{caller: caller, appCode: appCode}
}

func (c *RemoteClient) GetTimetableMeta(ctx context.Context) (*models.TimetableMeta, error) {
	var meta models.TimetableMeta
	if err := c.fetchData(ctx, MethodTimetableMeta, nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *RemoteClient) GetWeekNum(ctx context.Context) (*models.WeekNum, error) {
	var week models.WeekNum
	if err := c.fetchData(ctx, MethodWeekNum, nil, &week); err != nil {
		return nil, err
	}
	return &week, nil
}

// GetTimetable fetches a group's timetable. Both schedule types go through
// the same upstream method; att queries send tt_stream in place of tt_year.
func (c *RemoteClient) GetTimetable(ctx context.Context, q models.TimetableQuery) (json.RawMessage, error) {
	var data json.RawMessage
	if err := c.fetchData(ctx, MethodTimetable, c.timetableArgs(q), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *RemoteClient) timetableArgs(q models.TimetableQuery) upstream.Args {
	args := upstream.Args{
		{Key: c.key("tt_level"), Value: q.Level},
		{Key: c.key("tt_form"), Value: q.Form},
		{Key: c.key("tt_type"), Value: q.Type},
	}
	if q.Type == models.TypeAttestation {
		args = append(args, upstream.Arg{Key: c.key("tt_stream"), Value: q.Stream})
	} else {
		args = append(args, upstream.Arg{Key: c.key("tt_year"), Value: q.Year})
	}
	return append(args, upstream.Arg{Key: c.key("tt_group"), Value: q.Group})
}

// key namespaces an argument name with the application code
func (c *RemoteClient) key(name string) string {
	return c.appCode + ":" + name
}

// fetchData calls method and decodes the response's data object into v
func (c *RemoteClient) fetchData(ctx context.Context, method string, args upstream.Args, v any) error {
	body, err := c.caller.Call(ctx, method, args)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null || data.Type == gjson.False {
		return fmt.Errorf("%s: %w", method, ErrNoData)
	}

	if err := json.Unmarshal([]byte(data.Raw), v); err != nil {
		return fmt.Errorf("%s: decode data: %w", method, err)
	}
	return nil
}
