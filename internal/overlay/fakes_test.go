package overlay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/localstore"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/render"
)

var errUnreachable = errors.New("dial tcp 127.0.0.1:1: connect: connection refused")

// fakeRemote is an in-memory comment API with call counters.
type fakeRemote struct {
	mu       sync.Mutex
	comments []*domain.Comment
	nextID   int64
	calls    map[string]int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// When set, Create acknowledges without an id.
	createNoID bool

	// When set, Update signals updateStarted then blocks on updateGate.
	updateStarted chan struct{}
	updateGate    chan struct{}
}

func newFakeRemote(seed ...*domain.Comment) *fakeRemote {
	f := &fakeRemote{calls: make(map[string]int)}
	for _, c := range seed {
		f.comments = append(f.comments, c.Clone())
		if c.IDValue() > f.nextID {
			f.nextID = c.IDValue()
		}
	}
	return f
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.calls {
		n += v
	}
	return n
}

func (f *fakeRemote) ListByPage(_ context.Context, pageURL string) ([]*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*domain.Comment{}
	for _, c := range f.comments {
		if c.PageURL == pageURL {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (f *fakeRemote) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createNoID {
		return &domain.Comment{}, nil
	}
	f.nextID++
	rec := c.Clone()
	rec.ID = domain.Int64Ptr(f.nextID)
	rec.ApplyDefaults()
	now := time.Now().UTC()
	rec.CreatedAt = domain.TimePtr(now)
	rec.UpdatedAt = domain.TimePtr(now)
	f.comments = append(f.comments, rec)
	return rec.Clone(), nil
}

func (f *fakeRemote) Update(_ context.Context, id int64, u domain.CommentUpdate) (*domain.Comment, error) {
	f.mu.Lock()
	f.calls["update"]++
	started, gate := f.updateStarted, f.updateGate
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for _, c := range f.comments {
		if c.IDValue() == id {
			u.Apply(c, time.Now())
			return c.Clone(), nil
		}
	}
	// The fake keeps answering for deleted ids to model a stale response.
	merged := &domain.Comment{ID: domain.Int64Ptr(id)}
	u.Apply(merged, time.Now())
	return merged, nil
}

func (f *fakeRemote) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, c := range f.comments {
		if c.IDValue() == id {
			f.comments = append(f.comments[:i:i], f.comments[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// countingLocal wraps the real local store to count calls.
type countingLocal struct {
	*localstore.Store
	mu    sync.Mutex
	calls int
}

func (l *countingLocal) hit() {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
}

func (l *countingLocal) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *countingLocal) Append(ctx context.Context, pageURL string, c *domain.Comment) error {
	l.hit()
	return l.Store.Append(ctx, pageURL, c)
}

func (l *countingLocal) ReadAll(ctx context.Context, pageURL string) ([]*domain.Comment, error) {
	l.hit()
	return l.Store.ReadAll(ctx, pageURL)
}

func (l *countingLocal) UpdateByID(ctx context.Context, pageURL string, id int64, u domain.CommentUpdate) (*domain.Comment, error) {
	l.hit()
	return l.Store.UpdateByID(ctx, pageURL, id, u)
}

func (l *countingLocal) DeleteByID(ctx context.Context, pageURL string, id int64) (bool, error) {
	l.hit()
	return l.Store.DeleteByID(ctx, pageURL, id)
}

const testPage = "https://app.test/checkout"

type harness struct {
	ctrl   *Controller
	remote *fakeRemote
	kv     *localstore.MemoryKV
	local  *countingLocal
	doc    *render.Document
}

func newHarness(remote *fakeRemote) *harness {
	kv := localstore.NewMemoryKV()
	local := &countingLocal{Store: localstore.New(kv)}
	doc := render.NewDocument()
	doc.ConfirmFunc = func(string) bool { return true }

	ctrl, err := New(Config{APIBaseURL: "http://api.test", PageURL: testPage}, Deps{
		Remote: remote,
		Local:  local,
		View:   doc,
		Logger: logger.Nop(),
	})
	if err != nil {
		panic(err)
	}
	return &harness{ctrl: ctrl, remote: remote, kv: kv, local: local, doc: doc}
}

func comment(id int64, content string, x, y float64) *domain.Comment {
	return &domain.Comment{
		ID:        domain.Int64Ptr(id),
		PageURL:   testPage,
		Content:   content,
		PositionX: x,
		PositionY: y,
		Status:    domain.StatusOpen,
		Priority:  domain.PriorityMedium,
		Category:  domain.CategoryGeneral,
	}
}

func commentIDs(ctrl *Controller) []int64 {
	var out []int64
	for _, p := range ctrl.Pins() {
		out = append(out, p.Comment.IDValue())
	}
	return out
}
