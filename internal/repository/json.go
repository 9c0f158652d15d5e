package repository

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type record struct {
	Data   []byte    `json:"data"`
	Expiry time.Time `json:"expiry"`
}

type Data struct {
	Sessions map[string]record `json:"sessions"`
}

// jsonRepo keeps sessions in memory and writes them to a JSON file when the
// service stops, so signed-in users survive a restart.
type jsonRepo struct {
	path string
	log  *zap.Logger
	now  func() time.Time

	mu   sync.Mutex
	data *Data
}

func NewJSON(p Params) (Repository, error) {
	r := newJSONRepo(p.Config.Session.FilePath, p.Log)

	err := r.readfile()
	if err != nil {
		// only log, data will be empty and will overwrite when
		// the service is stopped
		r.log.Warn("failed reading json session file", zap.Error(err))
	}

	p.LC.Append(fx.Hook{
		OnStop: r.stop,
	})

	return r, nil
}

func newJSONRepo(path string, log *zap.Logger) *jsonRepo {
	return &jsonRepo{
		path: path,
		log:  log,
		now:  time.Now,
		data: &Data{Sessions: map[string]record{}},
	}
}

func (r *jsonRepo) stop(_ context.Context) error {
	return r.writefile()
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errTableFileIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	r.mu.Lock()
	defer r.mu.Unlock()

	data := &Data{}
	if err := json.NewDecoder(f).Decode(data); err != nil {
		return err
	}
	if data.Sessions == nil {
		data.Sessions = map[string]record{}
	}
	r.data = data
	return nil
}

func (r *jsonRepo) writefile() error {
	r.mu.Lock()
	r.prune()
	b, err := json.MarshalIndent(r.data, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, b, 0o600)
}

// prune drops expired sessions. Callers hold mu.
func (r *jsonRepo) prune() {
	now := r.now()
	for token, rec := range r.data.Sessions {
		if !rec.Expiry.After(now) {
			delete(r.data.Sessions, token)
		}
	}
}

func (r *jsonRepo) Find(token string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.data.Sessions[token]
	if !ok {
		return nil, false, nil
	}
	if !rec.Expiry.After(r.now()) {
		delete(r.data.Sessions, token)
		return nil, false, nil
	}
	return rec.Data, true, nil
}

func (r *jsonRepo) Commit(token string, b []byte, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data.Sessions[token] = record{Data: b, Expiry: expiry}
	return nil
}

func (r *jsonRepo) Delete(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.data.Sessions, token)
	return nil
}
