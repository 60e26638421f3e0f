// Package storage persists every tenant-owned entity. All single-row reads,
// updates and deletes take the caller's company id and treat a row owned by
// another company exactly like a missing row.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/oarthurdev/vortex-gestao/internal/models"
)

var (
	ErrNotFound = errors.New("storage: not found")
	ErrConflict = errors.New("storage: conflict")
)

// AppointmentFilter narrows ListAppointments. Zero values disable a filter.
type AppointmentFilter struct {
	Status   *models.AppointmentStatus
	ClientID string
	// Upcoming keeps appointments at or after Now that are still agendado
	// or confirmado.
	Upcoming bool
	Now      time.Time
	From     *time.Time
	To       *time.Time
	Limit    int
}

type CompanyStore interface {
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	CreateCompany(ctx context.Context, c *models.Company) error
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, companyID string) ([]models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, companyID, id string, mutate func(*models.User) error) (*models.User, error)
}

type PropertyStore interface {
	GetProperty(ctx context.Context, companyID, id string) (*models.Property, error)
	ListProperties(ctx context.Context, companyID string) ([]models.Property, error)
	CreateProperty(ctx context.Context, p *models.Property) error
	UpdateProperty(ctx context.Context, companyID, id string, mutate func(*models.Property) error) (*models.Property, error)
	DeleteProperty(ctx context.Context, companyID, id string) error
}

type ClientStore interface {
	GetClient(ctx context.Context, companyID, id string) (*models.Client, error)
	ListClients(ctx context.Context, companyID string) ([]models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, companyID, id string, mutate func(*models.Client) error) (*models.Client, error)
	DeleteClient(ctx context.Context, companyID, id string) error

	ListInteractions(ctx context.Context, companyID, clientID string) ([]models.ClientInteraction, error)
	CreateInteraction(ctx context.Context, i *models.ClientInteraction) error
}

type AppointmentStore interface {
	GetAppointment(ctx context.Context, companyID, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, companyID string, f AppointmentFilter) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	UpdateAppointment(ctx context.Context, companyID, id string, mutate func(*models.Appointment) error) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, companyID, id string) error
}

type ContractStore interface {
	GetContract(ctx context.Context, companyID, id string) (*models.Contract, error)
	ListContracts(ctx context.Context, companyID string) ([]models.Contract, error)
	CreateContract(ctx context.Context, c *models.Contract) error
	UpdateContract(ctx context.Context, companyID, id string, mutate func(*models.Contract) error) (*models.Contract, error)
	DeleteContract(ctx context.Context, companyID, id string) error
}

type TransactionStore interface {
	GetTransaction(ctx context.Context, companyID, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, companyID string) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, t *models.Transaction) error
	UpdateTransaction(ctx context.Context, companyID, id string, mutate func(*models.Transaction) error) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, companyID, id string) error
}

// ConstructionStore scopes tasks and expenses through their parent
// construction's company.
type ConstructionStore interface {
	GetConstruction(ctx context.Context, companyID, id string) (*models.Construction, error)
	ListConstructions(ctx context.Context, companyID string) ([]models.Construction, error)
	CreateConstruction(ctx context.Context, c *models.Construction) error
	UpdateConstruction(ctx context.Context, companyID, id string, mutate func(*models.Construction) error) (*models.Construction, error)
	DeleteConstruction(ctx context.Context, companyID, id string) error

	ListTasks(ctx context.Context, companyID, constructionID string) ([]models.ConstructionTask, error)
	CreateTask(ctx context.Context, companyID string, t *models.ConstructionTask) error
	UpdateTask(ctx context.Context, companyID, constructionID, id string, mutate func(*models.ConstructionTask) error) (*models.ConstructionTask, error)
	DeleteTask(ctx context.Context, companyID, constructionID, id string) error

	ListExpenses(ctx context.Context, companyID, constructionID string) ([]models.ConstructionExpense, error)
	CreateExpense(ctx context.Context, companyID string, e *models.ConstructionExpense) error
	UpdateExpense(ctx context.Context, companyID, constructionID, id string, mutate func(*models.ConstructionExpense) error) (*models.ConstructionExpense, error)
	DeleteExpense(ctx context.Context, companyID, constructionID, id string) error
}

type ActivityStore interface {
	ListActivities(ctx context.Context, companyID string, limit int) ([]models.Activity, error)
	CreateActivity(ctx context.Context, a *models.Activity) error
}

// Storage is implemented by MemStorage and DBStorage.
type Storage interface {
	CompanyStore
	UserStore
	PropertyStore
	ClientStore
	AppointmentStore
	ContractStore
	TransactionStore
	ConstructionStore
	ActivityStore

	// Transact runs fn against a Storage whose writes commit together or
	// not at all.
	Transact(ctx context.Context, fn func(tx Storage) error) error
}

// upcomingStatuses are the appointment states still expected to happen.
var upcomingStatuses = []models.AppointmentStatus{
	models.AppointmentAgendado,
	models.AppointmentConfirmado,
}

func isUpcomingStatus(s models.AppointmentStatus) bool {
	for _, u := range upcomingStatuses {
		if s == u {
			return true
		}
	}
	return false
}

func filterNow(f AppointmentFilter) time.Time {
	if f.Now.IsZero() {
		return time.Now()
	}
	return f.Now
}
