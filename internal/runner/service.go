package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tasque/internal/config"
	"tasque/internal/eventbus"
	"tasque/internal/storage"
	"tasque/pkg/clock"
	"tasque/pkg/logx"
	"tasque/pkg/trigger"
)

// Options carries the runner's collaborators. Zero values get defaults: the wall clock,
// a no-op logger, a private bus, no journal and a random session id.
type Options struct {
	Clock   clock.Source
	Log     logx.Logger
	Bus     eventbus.Bus
	Store   storage.Store
	Session string

	// OpenStore reopens the journal when a reload changes the history section. The runner
	// then owns the store and Close releases it. Without it such a change waits for a restart.
	OpenStore func(config.HistoryConfig) (storage.Store, error)
}

type Service struct {
	log     logx.Logger
	bus     eventbus.Bus
	store     storage.Store
	openStore func(config.HistoryConfig) (storage.Store, error)
	session   string

	clock  *zonedClock
	stream *trigger.Stream[string]
	cfg    *config.Config

	fired atomic.Uint64
}

// New registers the enabled tasks of cfg. cfg is expected to have passed config.Validate.
func New(cfg *config.Config, opts Options) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("runner: nil config")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real(loc)
	}
	if opts.Log.IsZero() {
		opts.Log = logx.Nop()
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.New()
	}
	if opts.Session == "" {
		opts.Session = uuid.NewString()
	}

	s := &Service{
		log:     opts.Log.With(logx.String("session", opts.Session)),
		bus:     opts.Bus,
		store:     opts.Store,
		openStore: opts.OpenStore,
		session:   opts.Session,
		clock:     &zonedClock{Source: opts.Clock, loc: loc},
	}
	s.stream = trigger.NewStream[string](trigger.WithClock(s.clock), trigger.WithLogger(s.log))
	s.apply(&config.Config{}, cfg)
	return s, nil
}

func (s *Service) Session() string { return s.session }

// Fired returns how many task occurrences were dispatched.
func (s *Service) Fired() uint64 { return s.fired.Load() }

// Run dispatches due tasks until ctx is done. Configs received on updates replace the
// running one; a wait in progress is abandoned and the selection recomputed.
func (s *Service) Run(ctx context.Context, updates <-chan *config.Config) error {
	s.logLastFires(ctx)
	s.log.Info("runner started",
		logx.Int("tasks", s.stream.Len()),
		logx.String("tz", s.clock.loc.String()),
	)
	defer s.log.Info("runner stopped", logx.Int64("fired", int64(s.fired.Load())))

	for {
		due, ok := s.stream.Next()
		if !ok {
			s.log.Warn("no task has a next occurrence; waiting for a config change")
			select {
			case <-ctx.Done():
				return nil
			case cfg, open := <-updates:
				if !open {
					updates = nil
					continue
				}
				s.reload(cfg)
			}
			continue
		}

		if !due.Tied {
			if wait := due.At.Sub(s.clock.Now()); wait > 0 {
				s.log.Debug("waiting", logx.String("task", due.ID), logx.Time("due", due.At), logx.Duration("in", wait))
				select {
				case <-ctx.Done():
					return nil
				case cfg, open := <-updates:
					if open {
						s.reload(cfg)
					} else {
						updates = nil
					}
					s.stream.Rewind(due.At)
					continue
				case <-s.clock.After(wait):
				}
			}
		}
		s.dispatch(ctx, due)
	}
}

func (s *Service) dispatch(ctx context.Context, due trigger.Due[string]) {
	now := s.clock.Now()
	s.fired.Add(1)
	s.bus.Publish(eventbus.Event{
		Type: eventbus.TypeTaskDue,
		Time: now,
		Data: eventbus.TaskDue{Session: s.session, TaskID: due.ID, Due: due.At, Tied: due.Tied},
	})

	if s.store != nil {
		err := s.store.AppendFire(ctx, storage.FireRecord{
			Session: s.session,
			TaskID:  due.ID,
			Due:     due.At,
			FiredAt: now,
			Tied:    due.Tied,
		})
		if err != nil {
			s.log.Warn("fire journal append failed", logx.String("task", due.ID), logx.Err(err))
		}
	}

	s.log.Info("task due",
		logx.String("task", due.ID),
		logx.Time("due", due.At),
		logx.Bool("tied", due.Tied),
		logx.Duration("lag", now.Sub(due.At)),
	)
}

func (s *Service) reload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	changed, attrs := config.SummarizeConfigChange(s.cfg, cfg)
	if s.cfg.History != cfg.History {
		s.reopenStore(cfg.History)
	}
	diff := s.apply(s.cfg, cfg)
	s.bus.Publish(eventbus.Event{
		Type: eventbus.TypeConfigReloaded,
		Time: s.clock.Now(),
		Data: eventbus.ConfigReloaded{Added: diff.Added, Changed: diff.Changed, Removed: diff.Removed},
	})
	s.log.Info("config applied", append([]logx.Field{logx.Strings("changed", changed)}, attrs...)...)
}

// reopenStore swaps the journal for one matching h. A failed open keeps the current one.
func (s *Service) reopenStore(h config.HistoryConfig) {
	if s.openStore == nil {
		s.log.Warn("history settings changed; restart to apply", logx.String("driver", h.Driver), logx.String("path", h.Path))
		return
	}
	st, err := s.openStore(h)
	if err != nil {
		s.log.Warn("fire journal reopen failed; keeping the current one", logx.String("driver", h.Driver), logx.Err(err))
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.Warn("fire journal close failed", logx.Err(err))
		}
	}
	s.store = st
	s.log.Info("fire journal reopened", logx.String("driver", h.Driver), logx.String("path", h.Path))
}

// Close releases the journal. Call it after Run has returned.
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	st := s.store
	s.store = nil
	return st.Close()
}

// apply moves the stream from oldCfg's tasks to newCfg's.
func (s *Service) apply(oldCfg, newCfg *config.Config) config.TaskDiff {
	if loc, err := newCfg.Location(); err != nil {
		s.log.Warn("timezone rejected; keeping the current one", logx.String("tz", s.clock.loc.String()), logx.Err(err))
	} else if loc.String() != s.clock.loc.String() {
		s.clock.loc = loc
		// Cached fire times were computed in the old zone.
		s.stream.Invalidate()
	}

	diff := config.DiffTasks(oldCfg, newCfg)
	for _, id := range diff.Removed {
		s.stream.Remove(id)
	}
	byID := make(map[string]config.TaskConfig, len(newCfg.Tasks))
	for _, t := range newCfg.EnabledTasks() {
		byID[t.ID] = t
	}
	for _, id := range append(append([]string(nil), diff.Added...), diff.Changed...) {
		tc := byID[id]
		set, err := tc.Schedule()
		if err != nil {
			s.log.Warn("task skipped", logx.String("task", id), logx.Err(err))
			s.stream.Remove(id)
			continue
		}
		s.stream.Insert(trigger.NewTask(id, set))
	}
	s.cfg = newCfg
	return diff
}

func (s *Service) logLastFires(ctx context.Context) {
	if s.store == nil {
		return
	}
	for _, id := range s.stream.IDs() {
		rec, ok, err := s.store.LastFire(ctx, id)
		if err != nil {
			s.log.Warn("fire journal lookup failed", logx.String("task", id), logx.Err(err))
			return
		}
		if ok {
			s.log.Debug("last fire", logx.String("task", id), logx.Time("due", rec.Due), logx.String("session", rec.Session))
		}
	}
}

// Snapshot lists the registered tasks with their next occurrence after now. It must not be
// called while Run is active.
func (s *Service) Snapshot() []TaskState {
	now := s.clock.Now()
	out := make([]TaskState, 0, len(s.cfg.Tasks))
	for _, t := range s.cfg.EnabledTasks() {
		st := TaskState{ID: t.ID, Schedules: t.Schedules}
		if set, err := t.Schedule(); err == nil {
			st.Next, st.HasNext = set.NextOccurrence(now.Truncate(time.Second).Add(time.Second))
		}
		out = append(out, st)
	}
	return out
}

type TaskState struct {
	ID        string
	Schedules []string
	Next      time.Time
	HasNext   bool
}
