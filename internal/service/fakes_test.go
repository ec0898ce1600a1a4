package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"masterlist-web/internal/models"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memoryStore is an in-memory SessionStore. Sessions are stored as JSON so
// tests see the same round trip as the Redis store.
type memoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	locks    map[string]bool
	progress map[string][2]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: map[string][]byte{},
		locks:    map[string]bool{},
		progress: map[string][2]int{},
	}
}

func (m *memoryStore) Save(_ context.Context, s *models.ImportSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Code] = data
	return nil
}

func (m *memoryStore) SaveIfExists(_ context.Context, s *models.ImportSession) (bool, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.Code]; !ok {
		return false, nil
	}
	m.sessions[s.Code] = data
	return true, nil
}

func (m *memoryStore) Load(_ context.Context, code string) (*models.ImportSession, error) {
	m.mu.Lock()
	data, ok := m.sessions[code]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var s models.ImportSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memoryStore) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, code)
	return nil
}

func (m *memoryStore) Exists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[code]
	return ok, nil
}

func (m *memoryStore) Lock(_ context.Context, code string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[code] {
		return false, nil
	}
	m.locks[code] = true
	return true, nil
}

func (m *memoryStore) Unlock(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, code)
	return nil
}

func (m *memoryStore) RecordProgress(_ context.Context, code string, r models.SubmissionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.progress[code]
	if r.Success {
		p[0]++
	} else {
		p[1]++
	}
	m.progress[code] = p
	return nil
}

func (m *memoryStore) Progress(_ context.Context, code string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.progress[code]
	return p[0], p[1], nil
}

type memoryLog struct {
	mu   sync.Mutex
	rows map[string]*models.ImportSessionLog
}

func newMemoryLog() *memoryLog {
	return &memoryLog{rows: map[string]*models.ImportSessionLog{}}
}

func (l *memoryLog) UpsertSession(log *models.ImportSessionLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[log.SessionCode] = log
	return nil
}

func (l *memoryLog) UpdateSessionStatus(code string, status models.SessionStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if row, ok := l.rows[code]; ok {
		row.Status = string(status)
	}
	return nil
}

func (l *memoryLog) ListSessions(offset, limit int) ([]models.ImportSessionLog, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.ImportSessionLog
	for _, row := range l.rows {
		out = append(out, *row)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

// fakeMasterData serves fixed reference data and records created rows.
type fakeMasterData struct {
	mu        sync.Mutex
	items     []models.Item
	boms      []models.BoMEntry
	processes []models.Process
	steps     []models.ProcessStep
	failIDs   map[int64]bool
	created   []int64
	fetchErr  error
	block     chan struct{}
}

func (f *fakeMasterData) FetchItems(context.Context) ([]models.Item, error) {
	return f.items, f.fetchErr
}

func (f *fakeMasterData) FetchBoMs(context.Context) ([]models.BoMEntry, error) {
	return f.boms, f.fetchErr
}

func (f *fakeMasterData) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[item.ID] {
		return nil, errors.New("server rejected item")
	}
	f.created = append(f.created, item.ID)
	f.items = append(f.items, item)
	return &item, nil
}

func (f *fakeMasterData) CreateBoMEntry(_ context.Context, entry models.BoMEntry) (*models.BoMEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[entry.ID] {
		return nil, errors.New("server rejected bom")
	}
	f.created = append(f.created, entry.ID)
	f.boms = append(f.boms, entry)
	return &entry, nil
}

func (f *fakeMasterData) FetchProcesses(context.Context) ([]models.Process, error) {
	return f.processes, nil
}

func (f *fakeMasterData) CreateProcess(_ context.Context, p models.Process) (*models.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.processes) + 1)
	f.processes = append(f.processes, p)
	return &p, nil
}

func (f *fakeMasterData) FetchProcessSteps(context.Context) ([]models.ProcessStep, error) {
	return f.steps, nil
}

func (f *fakeMasterData) CreateProcessStep(_ context.Context, step models.ProcessStep) (*models.ProcessStep, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step.ID = int64(len(f.steps) + 1)
	f.steps = append(f.steps, step)
	return &step, nil
}

func (f *fakeMasterData) createdIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.created...)
}

// itemRow builds a 15-column item row with the given leading values.
func itemRow(id interface{}, name string, tenant interface{}, itemType, uom string, minBuf, maxBuf interface{}, avg interface{}, scrap string) models.Row {
	row := make(models.Row, 15)
	row[0] = cellOf(id)
	row[1] = cellOf(name)
	row[2] = cellOf(tenant)
	row[3] = models.StringCell("")
	row[4] = cellOf(itemType)
	row[5] = cellOf(uom)
	row[6] = cellOf(minBuf)
	row[7] = cellOf(maxBuf)
	row[13] = cellOf(avg)
	row[14] = cellOf(scrap)
	return row
}

func bomRow(id, itemID, componentID, qty interface{}) models.Row {
	return models.Row{cellOf(id), cellOf(itemID), cellOf(componentID), cellOf(qty)}
}

func cellOf(v interface{}) models.Cell {
	if s, ok := v.(string); ok && s == "" {
		return models.EmptyCell()
	}
	c, err := models.CellFromValue(v)
	if err != nil {
		panic(err)
	}
	return c
}
