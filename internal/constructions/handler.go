package constructions

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/auth"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

const (
	msgNotFound        = "Obra não encontrada"
	msgTaskNotFound    = "Tarefa não encontrada"
	msgExpenseNotFound = "Despesa não encontrada"
)

// -------------------------
// Request Types
// -------------------------

type CreateConstructionRequest struct {
	PropertyID        string                    `json:"propertyId"`
	Name              string                    `json:"name"`
	Description       *string                   `json:"description"`
	Status            models.ConstructionStatus `json:"status"`
	Budget            decimal.NullDecimal       `json:"budget"`
	Spent             *models.Amount            `json:"spent"`
	StartDate         *models.DateTime          `json:"startDate"`
	EndDate           *models.DateTime          `json:"endDate"`
	ExpectedEndDate   *models.DateTime          `json:"expectedEndDate"`
	Progress          *int                      `json:"progress"`
	Contractor        *string                   `json:"contractor"`
	ContractorContact *string                   `json:"contractorContact"`
	Notes             *string                   `json:"notes"`
}

type UpdateConstructionRequest struct {
	PropertyID        *string                    `json:"propertyId"`
	Name              *string                    `json:"name"`
	Description       *string                    `json:"description"`
	Status            *models.ConstructionStatus `json:"status"`
	Budget            *decimal.Decimal           `json:"budget"`
	Spent             *models.Amount             `json:"spent"`
	StartDate         *models.DateTime           `json:"startDate"`
	EndDate           *models.DateTime           `json:"endDate"`
	ExpectedEndDate   *models.DateTime           `json:"expectedEndDate"`
	Progress          *int                       `json:"progress"`
	Contractor        *string                    `json:"contractor"`
	ContractorContact *string                    `json:"contractorContact"`
	Notes             *string                    `json:"notes"`
}

type TaskRequest struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	Status        *models.TaskStatus   `json:"status"`
	Priority      *models.TaskPriority `json:"priority"`
	StartDate     *models.DateTime     `json:"startDate"`
	EndDate       *models.DateTime     `json:"endDate"`
	AssignedTo    *string              `json:"assignedTo"`
	EstimatedCost *decimal.Decimal     `json:"estimatedCost"`
	ActualCost    *decimal.Decimal     `json:"actualCost"`
	Progress      *int                 `json:"progress"`
	Order         *int                 `json:"order"`
}

type ExpenseRequest struct {
	Description *string                 `json:"description"`
	Category    *models.ExpenseCategory `json:"category"`
	Amount      *models.Amount          `json:"amount"`
	ExpenseDate *models.DateTime        `json:"expenseDate"`
	Supplier    *string                 `json:"supplier"`
	Receipt     *string                 `json:"receipt"`
	Notes       *string                 `json:"notes"`
}

func checkProgress(v *apperror.ValidationError, p *int) {
	if p != nil && (*p < 0 || *p > 100) {
		v.Add("progress", "deve estar entre 0 e 100")
	}
}

func requiredText(v *apperror.ValidationError, field string, s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		v.Add(field, "campo obrigatório")
		return ""
	}
	return strings.TrimSpace(*s)
}

func (r *CreateConstructionRequest) toModel(companyID string) (*models.Construction, error) {
	v := &apperror.ValidationError{}
	c := &models.Construction{
		CompanyID:         companyID,
		PropertyID:        strings.TrimSpace(r.PropertyID),
		Name:              requiredText(v, "name", &r.Name),
		Description:       r.Description,
		Status:            r.Status,
		Budget:            r.Budget,
		Spent:             decimal.Zero,
		StartDate:         r.StartDate.Ptr(),
		EndDate:           r.EndDate.Ptr(),
		ExpectedEndDate:   r.ExpectedEndDate.Ptr(),
		Contractor:        r.Contractor,
		ContractorContact: r.ContractorContact,
		Notes:             r.Notes,
	}
	if c.PropertyID == "" {
		v.Add("propertyId", "campo obrigatório")
	}
	if r.Spent != nil {
		c.Spent = r.Spent.Decimal
	}
	checkProgress(v, r.Progress)
	if r.Progress != nil {
		c.Progress = *r.Progress
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *UpdateConstructionRequest) apply(c *models.Construction) error {
	v := &apperror.ValidationError{}
	if r.PropertyID != nil {
		c.PropertyID = requiredText(v, "propertyId", r.PropertyID)
	}
	if r.Name != nil {
		c.Name = requiredText(v, "name", r.Name)
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.Budget != nil {
		c.Budget = decimal.NewNullDecimal(*r.Budget)
	}
	if r.Spent != nil {
		c.Spent = r.Spent.Decimal
	}
	if r.StartDate != nil {
		c.StartDate = r.StartDate.Ptr()
	}
	if r.EndDate != nil {
		c.EndDate = r.EndDate.Ptr()
	}
	if r.ExpectedEndDate != nil {
		c.ExpectedEndDate = r.ExpectedEndDate.Ptr()
	}
	checkProgress(v, r.Progress)
	if r.Progress != nil {
		c.Progress = *r.Progress
	}
	if r.Contractor != nil {
		c.Contractor = r.Contractor
	}
	if r.ContractorContact != nil {
		c.ContractorContact = r.ContractorContact
	}
	if r.Notes != nil {
		c.Notes = r.Notes
	}
	return v.OrNil()
}

// apply is shared by create and update; create checks Name first.
func (r *TaskRequest) apply(t *models.ConstructionTask) error {
	v := &apperror.ValidationError{}
	if r.Name != nil {
		t.Name = requiredText(v, "name", r.Name)
	}
	if r.Description != nil {
		t.Description = r.Description
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.StartDate != nil {
		t.StartDate = r.StartDate.Ptr()
	}
	if r.EndDate != nil {
		t.EndDate = r.EndDate.Ptr()
	}
	if r.AssignedTo != nil {
		t.AssignedTo = r.AssignedTo
	}
	if r.EstimatedCost != nil {
		t.EstimatedCost = decimal.NewNullDecimal(*r.EstimatedCost)
	}
	if r.ActualCost != nil {
		t.ActualCost = decimal.NewNullDecimal(*r.ActualCost)
	}
	checkProgress(v, r.Progress)
	if r.Progress != nil {
		t.Progress = *r.Progress
	}
	if r.Order != nil {
		t.SortOrder = *r.Order
	}
	return v.OrNil()
}

func (r *ExpenseRequest) apply(e *models.ConstructionExpense) error {
	v := &apperror.ValidationError{}
	if r.Description != nil {
		e.Description = requiredText(v, "description", r.Description)
	}
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.Amount != nil {
		if r.Amount.IsNegative() {
			v.Add("amount", "não pode ser negativo")
		}
		e.Amount = r.Amount.Decimal
	}
	if r.ExpenseDate != nil {
		e.ExpenseDate = r.ExpenseDate.Time
	}
	if r.Supplier != nil {
		e.Supplier = r.Supplier
	}
	if r.Receipt != nil {
		e.Receipt = r.Receipt
	}
	if r.Notes != nil {
		e.Notes = r.Notes
	}
	return v.OrNil()
}

// -------------------------
// Construction CRUD
// -------------------------

// GET /api/constructions
func ListConstructionsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), auth.CompanyID(c))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar obras")
		}
		return c.JSON(list)
	}
}

// GET /api/constructions/:id
func GetConstructionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := svc.Get(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar obra")
		}
		return c.JSON(view)
	}
}

// POST /api/constructions
func CreateConstructionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateConstructionRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		construction, err := body.toModel(auth.CompanyID(c))
		if err != nil {
			return err
		}
		if err := svc.Create(c.UserContext(), auth.UserID(c), construction); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar obra")
		}
		return c.Status(fiber.StatusCreated).JSON(construction)
	}
}

// PUT /api/constructions/:id
func UpdateConstructionHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body UpdateConstructionRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		construction, err := svc.Update(c.UserContext(), auth.CompanyID(c), c.Params("id"), body.apply)
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao atualizar obra")
		}
		return c.JSON(construction)
	}
}

// DELETE /api/constructions/:id
func DeleteConstructionHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteConstruction(c.UserContext(), auth.CompanyID(c), c.Params("id")); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao deletar obra")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Tasks
// -------------------------

// GET /api/constructions/:id/tasks
func ListTasksHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := store.ListTasks(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar tarefas")
		}
		return c.JSON(list)
	}
}

// POST /api/constructions/:id/tasks
func CreateTaskHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TaskRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		if body.Name == nil {
			return apperror.Invalid("name", "campo obrigatório")
		}
		task := &models.ConstructionTask{ConstructionID: c.Params("id")}
		if err := body.apply(task); err != nil {
			return err
		}
		if err := svc.CreateTask(c.UserContext(), auth.CompanyID(c), task); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar tarefa")
		}
		return c.Status(fiber.StatusCreated).JSON(task)
	}
}

// PUT /api/constructions/:id/tasks/:taskId
func UpdateTaskHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TaskRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		task, err := store.UpdateTask(c.UserContext(), auth.CompanyID(c), c.Params("id"), c.Params("taskId"), body.apply)
		if err != nil {
			return apperror.Wrap(err, msgTaskNotFound, "Erro ao atualizar tarefa")
		}
		return c.JSON(task)
	}
}

// DELETE /api/constructions/:id/tasks/:taskId
func DeleteTaskHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteTask(c.UserContext(), auth.CompanyID(c), c.Params("id"), c.Params("taskId")); err != nil {
			return apperror.Wrap(err, msgTaskNotFound, "Erro ao deletar tarefa")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------
// Expenses
// -------------------------

// GET /api/constructions/:id/expenses
func ListExpensesHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := store.ListExpenses(c.UserContext(), auth.CompanyID(c), c.Params("id"))
		if err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao buscar despesas")
		}
		return c.JSON(list)
	}
}

// POST /api/constructions/:id/expenses
func CreateExpenseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		v := &apperror.ValidationError{}
		if body.Description == nil {
			v.Add("description", "campo obrigatório")
		}
		if body.Amount == nil {
			v.Add("amount", "campo obrigatório")
		}
		if body.ExpenseDate == nil {
			v.Add("expenseDate", "campo obrigatório")
		}
		if err := v.OrNil(); err != nil {
			return err
		}

		expense := &models.ConstructionExpense{ConstructionID: c.Params("id")}
		if err := body.apply(expense); err != nil {
			return err
		}
		if err := svc.CreateExpense(c.UserContext(), auth.CompanyID(c), expense); err != nil {
			return apperror.Wrap(err, msgNotFound, "Erro ao criar despesa")
		}
		return c.Status(fiber.StatusCreated).JSON(expense)
	}
}

// PUT /api/constructions/:id/expenses/:expenseId
func UpdateExpenseHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ExpenseRequest
		if err := apperror.BindJSON(c, &body); err != nil {
			return err
		}
		expense, err := store.UpdateExpense(c.UserContext(), auth.CompanyID(c), c.Params("id"), c.Params("expenseId"), body.apply)
		if err != nil {
			return apperror.Wrap(err, msgExpenseNotFound, "Erro ao atualizar despesa")
		}
		return c.JSON(expense)
	}
}

// DELETE /api/constructions/:id/expenses/:expenseId
func DeleteExpenseHandler(store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.DeleteExpense(c.UserContext(), auth.CompanyID(c), c.Params("id"), c.Params("expenseId")); err != nil {
			return apperror.Wrap(err, msgExpenseNotFound, "Erro ao deletar despesa")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
