package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oarthurdev/vortex-gestao/internal/models"
)

// table keeps rows by id and remembers insertion order so listings are
// stable when sort keys tie.
type table[T any] struct {
	rows  map[string]T
	order []string
	// copyRow duplicates a row for snapshots; nil means the row holds no
	// pointers or slices.
	copyRow func(T) T
}

func newTable[T any](copyRow func(T) T) *table[T] {
	return &table[T]{rows: make(map[string]T), copyRow: copyRow}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// filter returns matching rows, newest insertion first.
func (t *table[T]) filter(keep func(*T) bool) []T {
	out := make([]T, 0)
	for i := len(t.order) - 1; i >= 0; i-- {
		v := t.rows[t.order[i]]
		if keep(&v) {
			out = append(out, v)
		}
	}
	return out
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{rows: make(map[string]T, len(t.rows)), order: append([]string(nil), t.order...), copyRow: t.copyRow}
	for k, v := range t.rows {
		if t.copyRow != nil {
			v = t.copyRow(v)
		}
		c.rows[k] = v
	}
	return c
}

type memTables struct {
	companies     *table[models.Company]
	users         *table[models.User]
	properties    *table[models.Property]
	clients       *table[models.Client]
	interactions  *table[models.ClientInteraction]
	appointments  *table[models.Appointment]
	contracts     *table[models.Contract]
	transactions  *table[models.Transaction]
	constructions *table[models.Construction]
	tasks         *table[models.ConstructionTask]
	expenses      *table[models.ConstructionExpense]
	activities    *table[models.Activity]
}

func newMemTables() memTables {
	return memTables{
		companies:     newTable[models.Company](copyCompany),
		users:         newTable[models.User](nil),
		properties:    newTable[models.Property](copyProperty),
		clients:       newTable[models.Client](copyClient),
		interactions:  newTable[models.ClientInteraction](copyInteraction),
		appointments:  newTable[models.Appointment](copyAppointment),
		contracts:     newTable[models.Contract](copyContract),
		transactions:  newTable[models.Transaction](copyTransaction),
		constructions: newTable[models.Construction](copyConstruction),
		tasks:         newTable[models.ConstructionTask](copyTask),
		expenses:      newTable[models.ConstructionExpense](copyExpense),
		activities:    newTable[models.Activity](copyActivity),
	}
}

func (t memTables) clone() memTables {
	return memTables{
		companies:     t.companies.clone(),
		users:         t.users.clone(),
		properties:    t.properties.clone(),
		clients:       t.clients.clone(),
		interactions:  t.interactions.clone(),
		appointments:  t.appointments.clone(),
		contracts:     t.contracts.clone(),
		transactions:  t.transactions.clone(),
		constructions: t.constructions.clone(),
		tasks:         t.tasks.clone(),
		expenses:      t.expenses.clone(),
		activities:    t.activities.clone(),
	}
}

// MemStorage is the map-backed Storage used by tests and STORAGE_DRIVER=memory.
// Transact serializes transactions and restores a snapshot on error; plain
// writes made by other goroutines while a transaction fails are rolled back
// with it.
type MemStorage struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	t    memTables
	now  func() time.Time
}

func NewMemStorage() *MemStorage {
	return &MemStorage{t: newMemTables(), now: time.Now}
}

// Callers may pass ids that alias a reused request buffer, so rows and map
// keys only ever hold ids the store owns.
func newID(id string) string {
	if id != "" {
		return strings.Clone(id)
	}
	return uuid.NewString()
}

// cloneOptional detaches a caller string, which may alias a request buffer.
func cloneOptional(s *string) *string {
	if s == nil {
		return nil
	}
	c := strings.Clone(*s)
	return &c
}

func (m *MemStorage) Transact(ctx context.Context, fn func(tx Storage) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.RLock()
	snapshot := m.t.clone()
	m.mu.RUnlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.t = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func sortByCreatedDesc[T any](rows []T, created func(*T) time.Time) {
	sort.SliceStable(rows, func(i, j int) bool {
		return created(&rows[i]).After(created(&rows[j]))
	})
}

// -------------------------
// Companies / users
// -------------------------

func (m *MemStorage) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.t.companies.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemStorage) ListCompanies(ctx context.Context) ([]models.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.companies.filter(func(*models.Company) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStorage) CreateCompany(ctx context.Context, c *models.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.t.companies.filter(func(o *models.Company) bool { return o.Document == c.Document })) > 0 {
		return ErrConflict
	}
	c.ID = newID(c.ID)
	c.CreatedAt = m.now()
	m.t.companies.put(c.ID, *c)
	return nil
}

func (m *MemStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.t.users.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found := m.t.users.filter(func(u *models.User) bool { return u.Username == username })
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (m *MemStorage) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.users.filter(func(u *models.User) bool { return u.CompanyID == companyID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStorage) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.t.users.filter(func(o *models.User) bool { return o.Username == u.Username })) > 0 {
		return ErrConflict
	}
	u.ID = newID(u.ID)
	u.CreatedAt = m.now()
	m.t.users.put(u.ID, *u)
	return nil
}

func (m *MemStorage) UpdateUser(ctx context.Context, companyID, id string, mutate func(*models.User) error) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.t.users.get(id)
	if !ok || u.CompanyID != companyID {
		return nil, ErrNotFound
	}
	id, companyID = u.ID, u.CompanyID
	if err := mutate(&u); err != nil {
		return nil, err
	}
	u.ID, u.CompanyID = id, companyID
	m.t.users.put(id, u)
	return &u, nil
}

// -------------------------
// Properties
// -------------------------

func (m *MemStorage) GetProperty(ctx context.Context, companyID, id string) (*models.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.t.properties.get(id)
	if !ok || p.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemStorage) ListProperties(ctx context.Context, companyID string) ([]models.Property, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.properties.filter(func(p *models.Property) bool { return p.CompanyID == companyID })
	sortByCreatedDesc(out, func(p *models.Property) time.Time { return p.CreatedAt })
	return out, nil
}

func (m *MemStorage) CreateProperty(ctx context.Context, p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = newID(p.ID)
	p.CreatedAt = m.now()
	p.UpdatedAt = p.CreatedAt
	m.t.properties.put(p.ID, *p)
	return nil
}

func (m *MemStorage) UpdateProperty(ctx context.Context, companyID, id string, mutate func(*models.Property) error) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.t.properties.get(id)
	if !ok || p.CompanyID != companyID {
		return nil, ErrNotFound
	}
	id, companyID = p.ID, p.CompanyID
	if err := mutate(&p); err != nil {
		return nil, err
	}
	p.ID, p.CompanyID = id, companyID
	p.UpdatedAt = m.now()
	m.t.properties.put(id, p)
	return &p, nil
}

func (m *MemStorage) DeleteProperty(ctx context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.t.properties.get(id)
	if !ok || p.CompanyID != companyID {
		return ErrNotFound
	}
	if len(m.t.contracts.filter(func(c *models.Contract) bool { return c.PropertyID == id })) > 0 ||
		len(m.t.constructions.filter(func(c *models.Construction) bool { return c.PropertyID == id })) > 0 {
		return ErrConflict
	}
	m.t.properties.remove(id)
	for _, a := range m.t.appointments.filter(func(a *models.Appointment) bool { return a.PropertyID != nil && *a.PropertyID == id }) {
		a.PropertyID = nil
		m.t.appointments.put(a.ID, a)
	}
	return nil
}

// -------------------------
// Clients / interactions
// -------------------------

func (m *MemStorage) GetClient(ctx context.Context, companyID, id string) (*models.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.t.clients.get(id)
	if !ok || c.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemStorage) ListClients(ctx context.Context, companyID string) ([]models.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.clients.filter(func(c *models.Client) bool { return c.CompanyID == companyID })
	sortByCreatedDesc(out, func(c *models.Client) time.Time { return c.CreatedAt })
	return out, nil
}

func (m *MemStorage) CreateClient(ctx context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = newID(c.ID)
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	m.t.clients.put(c.ID, *c)
	return nil
}

func (m *MemStorage) UpdateClient(ctx context.Context, companyID, id string, mutate func(*models.Client) error) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.t.clients.get(id)
	if !ok || c.CompanyID != companyID {
		return nil, ErrNotFound
	}
	id, companyID = c.ID, c.CompanyID
	if err := mutate(&c); err != nil {
		return nil, err
	}
	c.ID, c.CompanyID = id, companyID
	c.UpdatedAt = m.now()
	m.t.clients.put(id, c)
	return &c, nil
}

func (m *MemStorage) DeleteClient(ctx context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.t.clients.get(id)
	if !ok || c.CompanyID != companyID {
		return ErrNotFound
	}
	if len(m.t.contracts.filter(func(c *models.Contract) bool { return c.ClientID == id })) > 0 {
		return ErrConflict
	}
	m.t.clients.remove(id)
	for _, i := range m.t.interactions.filter(func(i *models.ClientInteraction) bool { return i.ClientID == id }) {
		m.t.interactions.remove(i.ID)
	}
	for _, a := range m.t.appointments.filter(func(a *models.Appointment) bool { return a.ClientID == id }) {
		m.t.appointments.remove(a.ID)
	}
	return nil
}

func (m *MemStorage) ListInteractions(ctx context.Context, companyID, clientID string) ([]models.ClientInteraction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.interactions.filter(func(i *models.ClientInteraction) bool {
		return i.CompanyID == companyID && i.ClientID == clientID
	})
	sortByCreatedDesc(out, func(i *models.ClientInteraction) time.Time { return i.OccurredAt })
	return out, nil
}

func (m *MemStorage) CreateInteraction(ctx context.Context, i *models.ClientInteraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.t.clients.get(i.ClientID)
	if !ok || c.CompanyID != i.CompanyID {
		return ErrNotFound
	}
	i.ID = newID(i.ID)
	i.ClientID = c.ID
	i.CreatedAt = m.now()
	m.t.interactions.put(i.ID, *i)
	return nil
}

// -------------------------
// Appointments
// -------------------------

func (m *MemStorage) GetAppointment(ctx context.Context, companyID, id string) (*models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.t.appointments.get(id)
	if !ok || a.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MemStorage) ListAppointments(ctx context.Context, companyID string, f AppointmentFilter) ([]models.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := filterNow(f)
	out := m.t.appointments.filter(func(a *models.Appointment) bool {
		if a.CompanyID != companyID {
			return false
		}
		if f.Status != nil && a.Status != *f.Status {
			return false
		}
		if f.ClientID != "" && a.ClientID != f.ClientID {
			return false
		}
		if f.Upcoming && (a.ScheduledAt.Before(now) || !isUpcomingStatus(a.Status)) {
			return false
		}
		if f.From != nil && a.ScheduledAt.Before(*f.From) {
			return false
		}
		if f.To != nil && a.ScheduledAt.After(*f.To) {
			return false
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *MemStorage) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = newID(a.ID)
	a.CreatedAt = m.now()
	a.UpdatedAt = a.CreatedAt
	m.t.appointments.put(a.ID, *a)
	return nil
}

func (m *MemStorage) UpdateAppointment(ctx context.Context, companyID, id string, mutate func(*models.Appointment) error) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.t.appointments.get(id)
	if !ok || a.CompanyID != companyID {
		return nil, ErrNotFound
	}
	id, companyID = a.ID, a.CompanyID
	if err := mutate(&a); err != nil {
		return nil, err
	}
	a.ID, a.CompanyID = id, companyID
	a.UpdatedAt = m.now()
	m.t.appointments.put(id, a)
	return &a, nil
}

func (m *MemStorage) DeleteAppointment(ctx context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.t.appointments.get(id)
	if !ok || a.CompanyID != companyID {
		return ErrNotFound
	}
	m.t.appointments.remove(id)
	return nil
}

// -------------------------
// Contracts
// -------------------------

func (m *MemStorage) GetContract(ctx context.Context, companyID, id string) (*models.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.t.contracts.get(id)
	if !ok || c.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemStorage) ListContracts(ctx context.Context, companyID string) ([]models.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.contracts.filter(func(c *models.Contract) bool { return c.CompanyID == companyID })
	sortByCreatedDesc(out, func(c *models.Contract) time.Time { return c.CreatedAt })
	return out, nil
}

func (m *MemStorage) CreateContract(ctx context.Context, c *models.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = newID(c.ID)
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	m.t.contracts.put(c.ID, *c)
	return nil
}

func (m *MemStorage) UpdateContract(ctx context.Context, companyID, id string, mutate func(*models.Contract) error) (*models.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.t.contracts.get(id)
	if !ok || c.CompanyID != companyID {
		return nil, ErrNotFound
	}
	id, companyID = c.ID, c.CompanyID
	if err := mutate(&c); err != nil {
		return nil, err
	}
	c.ID, c.CompanyID = id, companyID
	c.UpdatedAt = m.now()
	m.t.contracts.put(id, c)
	return &c, nil
}

func (m *MemStorage) DeleteContract(ctx context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.t.contracts.get(id)
	if !ok || c.CompanyID != companyID {
		return ErrNotFound
	}
	m.t.contracts.remove(id)
	for _, t := range m.t.transactions.filter(func(t *models.Transaction) bool { return t.ContractID != nil && *t.ContractID == id }) {
		t.ContractID = nil
		m.t.transactions.put(t.ID, t)
	}
	return nil
}

// -------------------------
// Transactions
// -------------------------

func (m *MemStorage) GetTransaction(ctx context.Context, companyID, id string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.t.transactions.get(id)
	if !ok || t.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemStorage) ListTransactions(ctx context.Context, companyID string) ([]models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.transactions.filter(func(t *models.Transaction) bool { return t.CompanyID == companyID })
	sortByCreatedDesc(out, func(t *models.Transaction) time.Time { return t.CreatedAt })
	return out, nil
}

func (m *MemStorage) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = newID(t.ID)
	t.CreatedAt = m.now()
	m.t.transactions.put(t.ID, *t)
	return nil
}

func (m *MemStorage) UpdateTransaction(ctx context.Context, companyID, id string, mutate func(*models.Transaction) error) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.t.transactions.get(id)
	if !ok || t.CompanyID != companyID {
		return nil, ErrNotFound
	}
	id, companyID = t.ID, t.CompanyID
	if err := mutate(&t); err != nil {
		return nil, err
	}
	t.ID, t.CompanyID = id, companyID
	m.t.transactions.put(id, t)
	return &t, nil
}

func (m *MemStorage) DeleteTransaction(ctx context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.t.transactions.get(id)
	if !ok || t.CompanyID != companyID {
		return ErrNotFound
	}
	m.t.transactions.remove(id)
	return nil
}

// -------------------------
// Constructions / tasks / expenses
// -------------------------

func (m *MemStorage) ownsConstruction(companyID, id string) bool {
	c, ok := m.t.constructions.get(id)
	return ok && c.CompanyID == companyID
}

func (m *MemStorage) GetConstruction(ctx context.Context, companyID, id string) (*models.Construction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.t.constructions.get(id)
	if !ok || c.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MemStorage) ListConstructions(ctx context.Context, companyID string) ([]models.Construction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.constructions.filter(func(c *models.Construction) bool { return c.CompanyID == companyID })
	sortByCreatedDesc(out, func(c *models.Construction) time.Time { return c.CreatedAt })
	return out, nil
}

func (m *MemStorage) CreateConstruction(ctx context.Context, c *models.Construction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = newID(c.ID)
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	m.t.constructions.put(c.ID, *c)
	return nil
}

func (m *MemStorage) UpdateConstruction(ctx context.Context, companyID, id string, mutate func(*models.Construction) error) (*models.Construction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.t.constructions.get(id)
	if !ok || c.CompanyID != companyID {
		return nil, ErrNotFound
	}
	id, companyID = c.ID, c.CompanyID
	if err := mutate(&c); err != nil {
		return nil, err
	}
	c.ID, c.CompanyID = id, companyID
	c.UpdatedAt = m.now()
	m.t.constructions.put(id, c)
	return &c, nil
}

func (m *MemStorage) DeleteConstruction(ctx context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ownsConstruction(companyID, id) {
		return ErrNotFound
	}
	m.t.constructions.remove(id)
	for _, t := range m.t.tasks.filter(func(t *models.ConstructionTask) bool { return t.ConstructionID == id }) {
		m.t.tasks.remove(t.ID)
	}
	for _, e := range m.t.expenses.filter(func(e *models.ConstructionExpense) bool { return e.ConstructionID == id }) {
		m.t.expenses.remove(e.ID)
	}
	return nil
}

func (m *MemStorage) ListTasks(ctx context.Context, companyID, constructionID string) ([]models.ConstructionTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ownsConstruction(companyID, constructionID) {
		return nil, ErrNotFound
	}
	out := m.t.tasks.filter(func(t *models.ConstructionTask) bool { return t.ConstructionID == constructionID })
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemStorage) CreateTask(ctx context.Context, companyID string, t *models.ConstructionTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ownsConstruction(companyID, t.ConstructionID) {
		return ErrNotFound
	}
	t.ID = newID(t.ID)
	t.ConstructionID = strings.Clone(t.ConstructionID)
	t.CreatedAt = m.now()
	t.UpdatedAt = t.CreatedAt
	m.t.tasks.put(t.ID, *t)
	return nil
}

func (m *MemStorage) UpdateTask(ctx context.Context, companyID, constructionID, id string, mutate func(*models.ConstructionTask) error) (*models.ConstructionTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ownsConstruction(companyID, constructionID) {
		return nil, ErrNotFound
	}
	t, ok := m.t.tasks.get(id)
	if !ok || t.ConstructionID != constructionID {
		return nil, ErrNotFound
	}
	id, constructionID = t.ID, t.ConstructionID
	if err := mutate(&t); err != nil {
		return nil, err
	}
	t.ID, t.ConstructionID = id, constructionID
	t.UpdatedAt = m.now()
	m.t.tasks.put(id, t)
	return &t, nil
}

func (m *MemStorage) DeleteTask(ctx context.Context, companyID, constructionID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ownsConstruction(companyID, constructionID) {
		return ErrNotFound
	}
	t, ok := m.t.tasks.get(id)
	if !ok || t.ConstructionID != constructionID {
		return ErrNotFound
	}
	m.t.tasks.remove(id)
	return nil
}

func (m *MemStorage) ListExpenses(ctx context.Context, companyID, constructionID string) ([]models.ConstructionExpense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ownsConstruction(companyID, constructionID) {
		return nil, ErrNotFound
	}
	out := m.t.expenses.filter(func(e *models.ConstructionExpense) bool { return e.ConstructionID == constructionID })
	sortByCreatedDesc(out, func(e *models.ConstructionExpense) time.Time { return e.ExpenseDate })
	return out, nil
}

func (m *MemStorage) CreateExpense(ctx context.Context, companyID string, e *models.ConstructionExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ownsConstruction(companyID, e.ConstructionID) {
		return ErrNotFound
	}
	e.ID = newID(e.ID)
	e.ConstructionID = strings.Clone(e.ConstructionID)
	e.CreatedAt = m.now()
	m.t.expenses.put(e.ID, *e)
	return nil
}

func (m *MemStorage) UpdateExpense(ctx context.Context, companyID, constructionID, id string, mutate func(*models.ConstructionExpense) error) (*models.ConstructionExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ownsConstruction(companyID, constructionID) {
		return nil, ErrNotFound
	}
	e, ok := m.t.expenses.get(id)
	if !ok || e.ConstructionID != constructionID {
		return nil, ErrNotFound
	}
	id, constructionID = e.ID, e.ConstructionID
	if err := mutate(&e); err != nil {
		return nil, err
	}
	e.ID, e.ConstructionID = id, constructionID
	m.t.expenses.put(id, e)
	return &e, nil
}

func (m *MemStorage) DeleteExpense(ctx context.Context, companyID, constructionID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ownsConstruction(companyID, constructionID) {
		return ErrNotFound
	}
	e, ok := m.t.expenses.get(id)
	if !ok || e.ConstructionID != constructionID {
		return ErrNotFound
	}
	m.t.expenses.remove(id)
	return nil
}

// -------------------------
// Activities
// -------------------------

func (m *MemStorage) ListActivities(ctx context.Context, companyID string, limit int) ([]models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.t.activities.filter(func(a *models.Activity) bool { return a.CompanyID == companyID })
	sortByCreatedDesc(out, func(a *models.Activity) time.Time { return a.CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStorage) CreateActivity(ctx context.Context, a *models.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = newID(a.ID)
	a.EntityID = cloneOptional(a.EntityID)
	a.CreatedAt = m.now()
	m.t.activities.put(a.ID, *a)
	return nil
}
