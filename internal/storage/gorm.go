package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oarthurdev/vortex-gestao/internal/models"
)

// DBStorage is the GORM-backed Storage (PostgreSQL in production, SQLite for
// local runs and tests).
type DBStorage struct {
	db *gorm.DB
}

func NewDBStorage(db *gorm.DB) *DBStorage {
	return &DBStorage{db: db}
}

func (s *DBStorage) Transact(ctx context.Context, fn func(tx Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DBStorage{db: tx})
	})
}

// validID guards uuid columns: PostgreSQL rejects malformed literals with an
// error instead of simply matching nothing.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrConflict
	default:
		return err
	}
}

func firstScoped[T any](ctx context.Context, db *gorm.DB, companyID, id string) (*T, error) {
	if !validID(id) || !validID(companyID) {
		return nil, ErrNotFound
	}
	var v T
	if err := db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func listScoped[T any](ctx context.Context, db *gorm.DB, companyID, order string) ([]T, error) {
	out := make([]T, 0)
	if !validID(companyID) {
		return out, nil
	}
	if err := db.WithContext(ctx).Where("company_id = ?", companyID).Order(order).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func createRow[T any](ctx context.Context, db *gorm.DB, v *T) error {
	return translate(db.WithContext(ctx).Create(v).Error)
}

// updateScoped loads the row under the company, applies mutate and saves
// every column back.
func updateScoped[T any](ctx context.Context, db *gorm.DB, companyID, id string, mutate func(*T) error) (*T, error) {
	v, err := firstScoped[T](ctx, db, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(v); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Save(v).Error; err != nil {
		return nil, translate(err)
	}
	return v, nil
}

func deleteScoped[T any](ctx context.Context, db *gorm.DB, companyID, id string) error {
	if !validID(id) || !validID(companyID) {
		return ErrNotFound
	}
	var v T
	res := db.WithContext(ctx).Where("id = ? AND company_id = ?", id, companyID).Delete(&v)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// -------------------------
// Companies / users
// -------------------------

func (s *DBStorage) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var c models.Company
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *DBStorage) ListCompanies(ctx context.Context) ([]models.Company, error) {
	out := make([]models.Company, 0)
	if err := s.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBStorage) CreateCompany(ctx context.Context, c *models.Company) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Company{}).Where("document = ?", c.Document).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	c.ID = newID(c.ID)
	return createRow(ctx, s.db, c)
}

func (s *DBStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *DBStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *DBStorage) ListUsers(ctx context.Context, companyID string) ([]models.User, error) {
	return listScoped[models.User](ctx, s.db, companyID, "name asc")
}

func (s *DBStorage) CreateUser(ctx context.Context, u *models.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", u.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}
	u.ID = newID(u.ID)
	return createRow(ctx, s.db, u)
}

func (s *DBStorage) UpdateUser(ctx context.Context, companyID, id string, mutate func(*models.User) error) (*models.User, error) {
	return updateScoped(ctx, s.db, companyID, id, func(u *models.User) error {
		if err := mutate(u); err != nil {
			return err
		}
		u.ID, u.CompanyID = id, companyID
		return nil
	})
}

// -------------------------
// Properties
// -------------------------

func (s *DBStorage) GetProperty(ctx context.Context, companyID, id string) (*models.Property, error) {
	return firstScoped[models.Property](ctx, s.db, companyID, id)
}

func (s *DBStorage) ListProperties(ctx context.Context, companyID string) ([]models.Property, error) {
	return listScoped[models.Property](ctx, s.db, companyID, "created_at desc")
}

func (s *DBStorage) CreateProperty(ctx context.Context, p *models.Property) error {
	p.ID = newID(p.ID)
	return createRow(ctx, s.db, p)
}

func (s *DBStorage) UpdateProperty(ctx context.Context, companyID, id string, mutate func(*models.Property) error) (*models.Property, error) {
	return updateScoped(ctx, s.db, companyID, id, func(p *models.Property) error {
		if err := mutate(p); err != nil {
			return err
		}
		p.ID, p.CompanyID = id, companyID
		return nil
	})
}

// DeleteProperty refuses while a contract or construction points at the
// property; appointments just lose the link.
func (s *DBStorage) DeleteProperty(ctx context.Context, companyID, id string) error {
	if _, err := s.GetProperty(ctx, companyID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Contract{}, &models.Construction{}} {
			if err := refuseReferenced(tx, model, "property_id", id); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Appointment{}).Where("property_id = ?", id).Update("property_id", nil).Error; err != nil {
			return err
		}
		return translate(tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Property{}).Error)
	})
}

// refuseReferenced returns ErrConflict when any row of model has column = id.
func refuseReferenced(tx *gorm.DB, model any, column, id string) error {
	var n int64
	if err := tx.Model(model).Where(column+" = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	return nil
}

// -------------------------
// Clients / interactions
// -------------------------

func (s *DBStorage) GetClient(ctx context.Context, companyID, id string) (*models.Client, error) {
	return firstScoped[models.Client](ctx, s.db, companyID, id)
}

func (s *DBStorage) ListClients(ctx context.Context, companyID string) ([]models.Client, error) {
	return listScoped[models.Client](ctx, s.db, companyID, "created_at desc")
}

func (s *DBStorage) CreateClient(ctx context.Context, c *models.Client) error {
	c.ID = newID(c.ID)
	return createRow(ctx, s.db, c)
}

func (s *DBStorage) UpdateClient(ctx context.Context, companyID, id string, mutate func(*models.Client) error) (*models.Client, error) {
	return updateScoped(ctx, s.db, companyID, id, func(c *models.Client) error {
		if err := mutate(c); err != nil {
			return err
		}
		c.ID, c.CompanyID = id, companyID
		return nil
	})
}

func (s *DBStorage) DeleteClient(ctx context.Context, companyID, id string) error {
	if _, err := s.GetClient(ctx, companyID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refuseReferenced(tx, &models.Contract{}, "client_id", id); err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.ClientInteraction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		return translate(tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Client{}).Error)
	})
}

func (s *DBStorage) ListInteractions(ctx context.Context, companyID, clientID string) ([]models.ClientInteraction, error) {
	out := make([]models.ClientInteraction, 0)
	if !validID(companyID) || !validID(clientID) {
		return out, nil
	}
	err := s.db.WithContext(ctx).
		Where("company_id = ? AND client_id = ?", companyID, clientID).
		Order("occurred_at desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBStorage) CreateInteraction(ctx context.Context, i *models.ClientInteraction) error {
	if _, err := s.GetClient(ctx, i.CompanyID, i.ClientID); err != nil {
		return err
	}
	i.ID = newID(i.ID)
	return createRow(ctx, s.db, i)
}

// -------------------------
// Appointments
// -------------------------

func (s *DBStorage) GetAppointment(ctx context.Context, companyID, id string) (*models.Appointment, error) {
	return firstScoped[models.Appointment](ctx, s.db, companyID, id)
}

func (s *DBStorage) ListAppointments(ctx context.Context, companyID string, f AppointmentFilter) ([]models.Appointment, error) {
	out := make([]models.Appointment, 0)
	if !validID(companyID) || (f.ClientID != "" && !validID(f.ClientID)) {
		return out, nil
	}

	q := s.db.WithContext(ctx).Where("company_id = ?", companyID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Upcoming {
		q = q.Where("scheduled_at >= ? AND status IN ?", filterNow(f), upcomingStatuses)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("scheduled_at <= ?", *f.To)
	}
	q = q.Order("scheduled_at asc")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBStorage) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	a.ID = newID(a.ID)
	return createRow(ctx, s.db, a)
}

func (s *DBStorage) UpdateAppointment(ctx context.Context, companyID, id string, mutate func(*models.Appointment) error) (*models.Appointment, error) {
	return updateScoped(ctx, s.db, companyID, id, func(a *models.Appointment) error {
		if err := mutate(a); err != nil {
			return err
		}
		a.ID, a.CompanyID = id, companyID
		return nil
	})
}

func (s *DBStorage) DeleteAppointment(ctx context.Context, companyID, id string) error {
	return deleteScoped[models.Appointment](ctx, s.db, companyID, id)
}

// -------------------------
// Contracts
// -------------------------

func (s *DBStorage) GetContract(ctx context.Context, companyID, id string) (*models.Contract, error) {
	return firstScoped[models.Contract](ctx, s.db, companyID, id)
}

func (s *DBStorage) ListContracts(ctx context.Context, companyID string) ([]models.Contract, error) {
	return listScoped[models.Contract](ctx, s.db, companyID, "created_at desc")
}

func (s *DBStorage) CreateContract(ctx context.Context, c *models.Contract) error {
	c.ID = newID(c.ID)
	return createRow(ctx, s.db, c)
}

func (s *DBStorage) UpdateContract(ctx context.Context, companyID, id string, mutate func(*models.Contract) error) (*models.Contract, error) {
	return updateScoped(ctx, s.db, companyID, id, func(c *models.Contract) error {
		if err := mutate(c); err != nil {
			return err
		}
		c.ID, c.CompanyID = id, companyID
		return nil
	})
}

func (s *DBStorage) DeleteContract(ctx context.Context, companyID, id string) error {
	if _, err := s.GetContract(ctx, companyID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).Where("contract_id = ?", id).Update("contract_id", nil).Error; err != nil {
			return err
		}
		return translate(tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Contract{}).Error)
	})
}

// -------------------------
// Transactions
// -------------------------

func (s *DBStorage) GetTransaction(ctx context.Context, companyID, id string) (*models.Transaction, error) {
	return firstScoped[models.Transaction](ctx, s.db, companyID, id)
}

func (s *DBStorage) ListTransactions(ctx context.Context, companyID string) ([]models.Transaction, error) {
	return listScoped[models.Transaction](ctx, s.db, companyID, "created_at desc")
}

func (s *DBStorage) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	t.ID = newID(t.ID)
	return createRow(ctx, s.db, t)
}

func (s *DBStorage) UpdateTransaction(ctx context.Context, companyID, id string, mutate func(*models.Transaction) error) (*models.Transaction, error) {
	return updateScoped(ctx, s.db, companyID, id, func(t *models.Transaction) error {
		if err := mutate(t); err != nil {
			return err
		}
		t.ID, t.CompanyID = id, companyID
		return nil
	})
}

func (s *DBStorage) DeleteTransaction(ctx context.Context, companyID, id string) error {
	return deleteScoped[models.Transaction](ctx, s.db, companyID, id)
}

// -------------------------
// Constructions / tasks / expenses
// -------------------------

func (s *DBStorage) GetConstruction(ctx context.Context, companyID, id string) (*models.Construction, error) {
	return firstScoped[models.Construction](ctx, s.db, companyID, id)
}

func (s *DBStorage) ListConstructions(ctx context.Context, companyID string) ([]models.Construction, error) {
	return listScoped[models.Construction](ctx, s.db, companyID, "created_at desc")
}

func (s *DBStorage) CreateConstruction(ctx context.Context, c *models.Construction) error {
	c.ID = newID(c.ID)
	return createRow(ctx, s.db, c)
}

func (s *DBStorage) UpdateConstruction(ctx context.Context, companyID, id string, mutate func(*models.Construction) error) (*models.Construction, error) {
	return updateScoped(ctx, s.db, companyID, id, func(c *models.Construction) error {
		if err := mutate(c); err != nil {
			return err
		}
		c.ID, c.CompanyID = id, companyID
		return nil
	})
}

func (s *DBStorage) DeleteConstruction(ctx context.Context, companyID, id string) error {
	if _, err := s.GetConstruction(ctx, companyID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("construction_id = ?", id).Delete(&models.ConstructionTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("construction_id = ?", id).Delete(&models.ConstructionExpense{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND company_id = ?", id, companyID).Delete(&models.Construction{}).Error
	})
}

func (s *DBStorage) ensureConstruction(ctx context.Context, companyID, constructionID string) error {
	_, err := s.GetConstruction(ctx, companyID, constructionID)
	return err
}

// childScoped loads a task or expense by id under its construction.
func childScoped[T any](ctx context.Context, db *gorm.DB, constructionID, id string) (*T, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var v T
	if err := db.WithContext(ctx).Where("id = ? AND construction_id = ?", id, constructionID).First(&v).Error; err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (s *DBStorage) ListTasks(ctx context.Context, companyID, constructionID string) ([]models.ConstructionTask, error) {
	if err := s.ensureConstruction(ctx, companyID, constructionID); err != nil {
		return nil, err
	}
	out := make([]models.ConstructionTask, 0)
	err := s.db.WithContext(ctx).
		Where("construction_id = ?", constructionID).
		Order("sort_order asc, created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBStorage) CreateTask(ctx context.Context, companyID string, t *models.ConstructionTask) error {
	if err := s.ensureConstruction(ctx, companyID, t.ConstructionID); err != nil {
		return err
	}
	t.ID = newID(t.ID)
	return createRow(ctx, s.db, t)
}

func (s *DBStorage) UpdateTask(ctx context.Context, companyID, constructionID, id string, mutate func(*models.ConstructionTask) error) (*models.ConstructionTask, error) {
	if err := s.ensureConstruction(ctx, companyID, constructionID); err != nil {
		return nil, err
	}
	t, err := childScoped[models.ConstructionTask](ctx, s.db, constructionID, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(t); err != nil {
		return nil, err
	}
	t.ID, t.ConstructionID = id, constructionID
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return t, nil
}

func (s *DBStorage) DeleteTask(ctx context.Context, companyID, constructionID, id string) error {
	if err := s.ensureConstruction(ctx, companyID, constructionID); err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Where("id = ? AND construction_id = ?", id, constructionID).Delete(&models.ConstructionTask{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DBStorage) ListExpenses(ctx context.Context, companyID, constructionID string) ([]models.ConstructionExpense, error) {
	if err := s.ensureConstruction(ctx, companyID, constructionID); err != nil {
		return nil, err
	}
	out := make([]models.ConstructionExpense, 0)
	err := s.db.WithContext(ctx).
		Where("construction_id = ?", constructionID).
		Order("expense_date desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBStorage) CreateExpense(ctx context.Context, companyID string, e *models.ConstructionExpense) error {
	if err := s.ensureConstruction(ctx, companyID, e.ConstructionID); err != nil {
		return err
	}
	e.ID = newID(e.ID)
	return createRow(ctx, s.db, e)
}

func (s *DBStorage) UpdateExpense(ctx context.Context, companyID, constructionID, id string, mutate func(*models.ConstructionExpense) error) (*models.ConstructionExpense, error) {
	if err := s.ensureConstruction(ctx, companyID, constructionID); err != nil {
		return nil, err
	}
	e, err := childScoped[models.ConstructionExpense](ctx, s.db, constructionID, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(e); err != nil {
		return nil, err
	}
	e.ID, e.ConstructionID = id, constructionID
	if err := s.db.WithContext(ctx).Save(e).Error; err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}
	return e, nil
}

func (s *DBStorage) DeleteExpense(ctx context.Context, companyID, constructionID, id string) error {
	if err := s.ensureConstruction(ctx, companyID, constructionID); err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Where("id = ? AND construction_id = ?", id, constructionID).Delete(&models.ConstructionExpense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// -------------------------
// Activities
// -------------------------

func (s *DBStorage) ListActivities(ctx context.Context, companyID string, limit int) ([]models.Activity, error) {
	out := make([]models.Activity, 0)
	if !validID(companyID) {
		return out, nil
	}
	q := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DBStorage) CreateActivity(ctx context.Context, a *models.Activity) error {
	a.ID = newID(a.ID)
	return createRow(ctx, s.db, a)
}
