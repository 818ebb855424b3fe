package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/punchclock/internal/domain/model"
)

// FileGateway serves users and punches from a YAML fixture:
//
//	users:
//	  - {user_id: "1", name: Ana}
//	events:
//	  - {user_id: "1", timestamp: "2024-03-01 09:00:00"}
//
// The file is re-read on every fetch so edits show up on the next refresh.
type FileGateway struct {
	path     string
	location *time.Location
}

// NewFileGateway returns a gateway reading path. A nil loc means time.Local.
func NewFileGateway(path string, loc *time.Location) *FileGateway {
	if loc == nil {
		loc = time.Local
	}
	return &FileGateway{path: path, location: loc}
}

type fixture struct {
	Users  []userRecord  `koanf:"users"`
	Events []punchRecord `koanf:"events"`
}

func (g *FileGateway) load() (fixture, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(g.path), yaml.Parser()); err != nil {
		return fixture{}, fmt.Errorf("load fixture %s: %w", g.path, err)
	}
	var fx fixture
	if err := k.UnmarshalWithConf("", &fx, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fixture{}, fmt.Errorf("decode fixture %s: %w", g.path, err)
	}
	return fx, nil
}

// FetchUsers implements Gateway.
func (g *FileGateway) FetchUsers(ctx context.Context) (model.Directory, error) {
	if err := ctx.Err(); err != nil {
		return model.Directory{}, unavailable("terminal.fetch_users", err)
	}
	fx, err := g.load()
	if err != nil {
		return model.Directory{}, unavailable("terminal.fetch_users", err)
	}
	return toDirectory(fx.Users), nil
}

// FetchEvents implements Gateway.
func (g *FileGateway) FetchEvents(ctx context.Context) ([]model.ClockEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("terminal.fetch_events", err)
	}
	fx, err := g.load()
	if err != nil {
		return nil, unavailable("terminal.fetch_events", err)
	}
	events, err := toEvents(fx.Events, g.location)
	if err != nil {
		return nil, unavailable("terminal.fetch_events", err)
	}
	return events, nil
}
