// Package board holds the in-memory state of one Kanban board and the drag
// reassignment engine that mutates it. Nothing in here blocks, logs or fails:
// every invalid command degrades to a no-op.
package board

import (
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

// Listener receives the board snapshot after every effective mutation.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store owns the column sequence and task collection of a single board.
// It is not safe for concurrent use; the caller serializes access.
type Store struct {
	columns []model.Column
	tasks   []model.Task

	newID     func() string
	listeners []subscription
	nextSubID int
}

type Option func(*Store)

// WithIDGenerator replaces the UUID id policy, mostly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the board contents. Columns with a duplicate or empty id and
// tasks with a duplicate or empty id are skipped. Tasks may reference columns
// that do not exist; they are kept but belong to no column.
func (s *Store) Load(columns []model.Column, tasks []model.Task) {
	s.columns = s.columns[:0]
	s.tasks = s.tasks[:0]

	seenCols := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c.ID == "" {
			continue
		}
		if _, dup := seenCols[c.ID]; dup {
			continue
		}
		seenCols[c.ID] = struct{}{}
		if c.Color == "" {
			c.Color = model.DefaultColumnColor
		}
		s.columns = append(s.columns, c)
	}

	seenTasks := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if _, dup := seenTasks[t.ID]; dup {
			continue
		}
		seenTasks[t.ID] = struct{}{}
		if !t.Priority.Valid() {
			t.Priority = model.PriorityMedium
		}
		s.tasks = append(s.tasks, t.Clone())
	}

	s.notify()
}

// Columns returns the columns in insertion order.
func (s *Store) Columns() []model.Column {
	out := make([]model.Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Tasks returns every task in collection order.
func (s *Store) Tasks() []model.Task {
	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Column(id string) (model.Column, bool) {
	if i := s.columnIndex(id); i >= 0 {
		return s.columns[i], true
	}
	return model.Column{}, false
}

func (s *Store) HasColumn(id string) bool {
	return s.columnIndex(id) >= 0
}

func (s *Store) Task(id string) (model.Task, bool) {
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

func (s *Store) HasTask(id string) bool {
	return s.taskIndex(id) >= 0
}

// TasksInColumn returns, in collection order, the tasks whose ColumnID equals
// columnID. The result is empty (never nil) for unknown columns.
func (s *Store) TasksInColumn(columnID string) []model.Task {
	out := []model.Task{}
	for _, t := range s.tasks {
		if t.ColumnID == columnID {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Dangling returns tasks whose column no longer exists.
func (s *Store) Dangling() []model.Task {
	out := []model.Task{}
	for _, t := range s.tasks {
		if !s.HasColumn(t.ColumnID) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// ReplaceTask applies update to the task with the given id. The task keeps its
// id whatever update returns. Reports false when the task does not exist.
func (s *Store) ReplaceTask(taskID string, update func(model.Task) model.Task) bool {
	i := s.taskIndex(taskID)
	if i < 0 {
		return false
	}
	next := update(s.tasks[i].Clone())
	next.ID = taskID
	s.tasks[i] = next.Clone()
	s.notify()
	return true
}

// AddColumn appends a column with a fresh id and the default color.
func (s *Store) AddColumn(title string) (model.Column, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Column{}, false
	}
	c := model.Column{
		ID:    s.newID(),
		Title: title,
		Color: model.DefaultColumnColor,
	}
	s.columns = append(s.columns, c)
	s.notify()
	return c, true
}

func (s *Store) RenameColumn(columnID, title string) bool {
	title = strings.TrimSpace(title)
	i := s.columnIndex(columnID)
	if i < 0 || title == "" {
		return false
	}
	s.columns[i].Title = title
	s.notify()
	return true
}

// AddTask appends a Medium priority task with empty metadata to columnID.
func (s *Store) AddTask(columnID, title string) (model.Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" || !s.HasColumn(columnID) {
		return model.Task{}, false
	}
	t := model.Task{
		ID:       s.newID(),
		ColumnID: columnID,
		Title:    title,
		Priority: model.PriorityMedium,
		Tags:     []string{},
	}
	s.tasks = append(s.tasks, t)
	s.notify()
	return t.Clone(), true
}

func (s *Store) DeleteTask(taskID string) bool {
	i := s.taskIndex(taskID)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.notify()
	return true
}

// Snapshot builds the read-only view handed to renderers. Every column has an
// entry in TasksByColumn, possibly empty.
func (s *Store) Snapshot() Snapshot {
	byColumn := make(map[string][]model.Task, len(s.columns))
	for _, c := range s.columns {
		byColumn[c.ID] = []model.Task{}
	}
	for _, t := range s.tasks {
		if list, ok := byColumn[t.ColumnID]; ok {
			byColumn[t.ColumnID] = append(list, t.Clone())
		}
	}
	return Snapshot{
		Columns:       s.Columns(),
		TasksByColumn: byColumn,
	}
}

// Subscribe registers fn for change notifications. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn Listener) func() {
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify() {
	if len(s.listeners) == 0 {
		return
	}
	snap := s.Snapshot()
	subs := append([]subscription(nil), s.listeners...)
	for _, sub := range subs {
		sub.fn(snap)
	}
}

func (s *Store) columnIndex(id string) int {
	for i, c := range s.columns {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) taskIndex(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
