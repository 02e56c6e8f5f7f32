// Package memory provides an in-memory timeoff.TxStore for tests and demos.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/schedulehq/schedule-engine/generic"
	"github.com/schedulehq/schedule-engine/jobcode"
	"github.com/schedulehq/schedule-engine/timeoff"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	state state
}

type historyKey struct {
	EmployeeID     timeoff.EmployeeID
	TrimesterStart string
}

type state struct {
	employees map[timeoff.EmployeeID]timeoff.Employee
	entries   map[timeoff.EntryID]timeoff.Entry
	history   map[historyKey]timeoff.HistoryRecord
	jobCodes  map[string]jobcode.Settings
	rules     *timeoff.Rules
	nextEntry timeoff.EntryID
}

func New() *Memory {
	return &Memory{state: state{
		employees: make(map[timeoff.EmployeeID]timeoff.Employee),
		entries:   make(map[timeoff.EntryID]timeoff.Entry),
		history:   make(map[historyKey]timeoff.HistoryRecord),
		jobCodes:  make(map[string]jobcode.Settings),
	}}
}

var _ timeoff.TxStore = (*Memory)(nil)

// =============================================================================
// FIXTURE HELPERS
// =============================================================================

// PutEmployee inserts or replaces an employee.
func (m *Memory) PutEmployee(e timeoff.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.employees[e.ID] = e
}

// PutJobCode inserts or replaces job code settings.
func (m *Memory) PutJobCode(s jobcode.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.jobCodes[s.Code.Key()] = s
}

// SetRules replaces the PTO settings row.
func (m *Memory) SetRules(r timeoff.Rules) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.rules = &r
}

// Len returns how many time-off entries are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.entries)
}

// =============================================================================
// timeoff.Store
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id timeoff.EmployeeID) (*timeoff.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getEmployee(id), nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]timeoff.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.listEmployees(), nil
}

func (m *Memory) AdjustVacationWeeksUsed(_ context.Context, id timeoff.EmployeeID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.adjustVacationWeeks(id, delta)
	return nil
}

func (m *Memory) TimeOffInRange(_ context.Context, id timeoff.EmployeeID, from, to generic.Date) ([]timeoff.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.inRange(id, from, to), nil
}

func (m *Memory) GetTimeOff(_ context.Context, id timeoff.EntryID) (*timeoff.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.state.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) TimeOffByGroup(_ context.Context, groupID string) ([]timeoff.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.byGroup(groupID), nil
}

func (m *Memory) InsertTimeOff(_ context.Context, e timeoff.Entry) (timeoff.EntryID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.insert(e), nil
}

func (m *Memory) DeleteTimeOff(_ context.Context, id timeoff.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state.entries, id)
	return nil
}

func (m *Memory) GetHistory(_ context.Context, id timeoff.EmployeeID, trimesterStart generic.Date) (*timeoff.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.getHistory(id, trimesterStart), nil
}

func (m *Memory) SaveHistory(_ context.Context, rec timeoff.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.history[historyKey{rec.EmployeeID, rec.TrimesterStart.String()}] = rec
	return nil
}

func (m *Memory) GetSettings(_ context.Context) (timeoff.Rules, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state.rules == nil {
		return timeoff.DefaultRules(), nil
	}
	return *m.state.rules, nil
}

func (m *Memory) GetJobCodeSettings(_ context.Context, code jobcode.Code) (*jobcode.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.state.jobCodes[code.Key()]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn under the write lock. On error the state is restored
// from a snapshot taken before fn ran.
func (m *Memory) WithTx(_ context.Context, fn func(timeoff.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&txView{state: &m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (s *state) clone() state {
	c := state{
		employees: make(map[timeoff.EmployeeID]timeoff.Employee, len(s.employees)),
		entries:   make(map[timeoff.EntryID]timeoff.Entry, len(s.entries)),
		history:   make(map[historyKey]timeoff.HistoryRecord, len(s.history)),
		jobCodes:  make(map[string]jobcode.Settings, len(s.jobCodes)),
		rules:     s.rules,
		nextEntry: s.nextEntry,
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.history {
		c.history[k] = v
	}
	for k, v := range s.jobCodes {
		c.jobCodes[k] = v
	}
	return c
}

// txView is the Store handed to WithTx callbacks. The caller already holds
// the write lock.
type txView struct {
	state *state
}

func (tv *txView) GetEmployee(_ context.Context, id timeoff.EmployeeID) (*timeoff.Employee, error) {
	return tv.state.getEmployee(id), nil
}

func (tv *txView) ListEmployees(_ context.Context) ([]timeoff.Employee, error) {
	return tv.state.listEmployees(), nil
}

func (tv *txView) AdjustVacationWeeksUsed(_ context.Context, id timeoff.EmployeeID, delta int) error {
	tv.state.adjustVacationWeeks(id, delta)
	return nil
}

func (tv *txView) TimeOffInRange(_ context.Context, id timeoff.EmployeeID, from, to generic.Date) ([]timeoff.Entry, error) {
	return tv.state.inRange(id, from, to), nil
}

func (tv *txView) GetTimeOff(_ context.Context, id timeoff.EntryID) (*timeoff.Entry, error) {
	e, ok := tv.state.entries[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (tv *txView) TimeOffByGroup(_ context.Context, groupID string) ([]timeoff.Entry, error) {
	return tv.state.byGroup(groupID), nil
}

func (tv *txView) InsertTimeOff(_ context.Context, e timeoff.Entry) (timeoff.EntryID, error) {
	return tv.state.insert(e), nil
}

func (tv *txView) DeleteTimeOff(_ context.Context, id timeoff.EntryID) error {
	delete(tv.state.entries, id)
	return nil
}

func (tv *txView) GetHistory(_ context.Context, id timeoff.EmployeeID, trimesterStart generic.Date) (*timeoff.HistoryRecord, error) {
	return tv.state.getHistory(id, trimesterStart), nil
}

func (tv *txView) SaveHistory(_ context.Context, rec timeoff.HistoryRecord) error {
	tv.state.history[historyKey{rec.EmployeeID, rec.TrimesterStart.String()}] = rec
	return nil
}

func (tv *txView) GetSettings(_ context.Context) (timeoff.Rules, error) {
	if tv.state.rules == nil {
		return timeoff.DefaultRules(), nil
	}
	return *tv.state.rules, nil
}

func (tv *txView) GetJobCodeSettings(_ context.Context, code jobcode.Code) (*jobcode.Settings, error) {
	s, ok := tv.state.jobCodes[code.Key()]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// =============================================================================
// STATE HELPERS (caller holds the lock)
// =============================================================================

func (s *state) getEmployee(id timeoff.EmployeeID) *timeoff.Employee {
	e, ok := s.employees[id]
	if !ok {
		return nil
	}
	return &e
}

func (s *state) listEmployees() []timeoff.Employee {
	result := make([]timeoff.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *state) adjustVacationWeeks(id timeoff.EmployeeID, delta int) {
	e, ok := s.employees[id]
	if !ok {
		return
	}
	e.VacationWeeksUsed += delta
	if e.VacationWeeksUsed < 0 {
		e.VacationWeeksUsed = 0
	}
	s.employees[id] = e
}

func (s *state) inRange(id timeoff.EmployeeID, from, to generic.Date) []timeoff.Entry {
	var result []timeoff.Entry
	for _, e := range s.entries {
		if e.EmployeeID == id && e.Date.AfterOrEqual(from) && e.Date.BeforeOrEqual(to) {
			result = append(result, e)
		}
	}
	sortEntries(result)
	return result
}

func (s *state) byGroup(groupID string) []timeoff.Entry {
	var result []timeoff.Entry
	for _, e := range s.entries {
		if groupID != "" && e.VacationGroupID == groupID {
			result = append(result, e)
		}
	}
	sortEntries(result)
	return result
}

func (s *state) insert(e timeoff.Entry) timeoff.EntryID {
	s.nextEntry++
	e.ID = s.nextEntry
	s.entries[e.ID] = e
	return e.ID
}

func (s *state) getHistory(id timeoff.EmployeeID, trimesterStart generic.Date) *timeoff.HistoryRecord {
	rec, ok := s.history[historyKey{id, trimesterStart.String()}]
	if !ok {
		return nil
	}
	return &rec
}

func sortEntries(entries []timeoff.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
}
