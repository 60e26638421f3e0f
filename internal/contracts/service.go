package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/oarthurdev/vortex-gestao/internal/activity"
	"github.com/oarthurdev/vortex-gestao/internal/apperror"
	"github.com/oarthurdev/vortex-gestao/internal/models"
	"github.com/oarthurdev/vortex-gestao/internal/storage"
)

type Service struct {
	store storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

type PropertyRef struct {
	ID      string                `json:"id"`
	Title   string                `json:"title"`
	Address string                `json:"address"`
	Status  models.PropertyStatus `json:"status"`
}

type ClientRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// View is a contract with the property and client it binds. Either side is
// nil when the referenced row no longer exists.
type View struct {
	models.Contract
	Property *PropertyRef `json:"property"`
	Client   *ClientRef   `json:"client"`
}

// signedStatus is the property status a signed contract of each type
// implies.
var signedStatus = map[models.ContractType]models.PropertyStatus{
	models.ContractLocacao: models.PropertyAlugado,
	models.ContractVenda:   models.PropertyVendido,
}

func checkRefs(ctx context.Context, tx storage.Storage, companyID, propertyID, clientID string) error {
	v := &apperror.ValidationError{}
	if _, err := tx.GetProperty(ctx, companyID, propertyID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		v.Add("propertyId", "imóvel não encontrado")
	}
	if _, err := tx.GetClient(ctx, companyID, clientID); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		v.Add("clientId", "cliente não encontrado")
	}
	return v.OrNil()
}

// Create signs a contract: the contract row, the property status flip and
// the feed entry commit together. The flip ignores the property's current
// status.
func (s *Service) Create(ctx context.Context, userID string, c *models.Contract) error {
	if c.Status == "" {
		c.Status = models.ContractAtivo
	}
	return s.store.Transact(ctx, func(tx storage.Storage) error {
		if err := checkRefs(ctx, tx, c.CompanyID, c.PropertyID, c.ClientID); err != nil {
			return err
		}
		if err := tx.CreateContract(ctx, c); err != nil {
			return err
		}
		if status, ok := signedStatus[c.Type]; ok {
			_, err := tx.UpdateProperty(ctx, c.CompanyID, c.PropertyID, func(p *models.Property) error {
				p.Status = status
				return nil
			})
			if err != nil {
				return fmt.Errorf("update property status: %w", err)
			}
		}
		return activity.Record(ctx, tx, activity.Entry{
			CompanyID:   c.CompanyID,
			UserID:      userID,
			Type:        models.ActivityContractSigned,
			Title:       "Novo contrato assinado",
			Description: fmt.Sprintf("Contrato de %s foi assinado", c.Type),
			EntityType:  "contract",
			EntityID:    c.ID,
		})
	})
}

// Update re-validates references only when the mutation moved them.
func (s *Service) Update(ctx context.Context, companyID, id string, mutate func(*models.Contract) error) (*models.Contract, error) {
	var updated *models.Contract
	err := s.store.Transact(ctx, func(tx storage.Storage) error {
		current, err := tx.GetContract(ctx, companyID, id)
		if err != nil {
			return err
		}
		propertyID, clientID := current.PropertyID, current.ClientID

		updated, err = tx.UpdateContract(ctx, companyID, id, mutate)
		if err != nil {
			return err
		}
		if updated.PropertyID != propertyID || updated.ClientID != clientID {
			return checkRefs(ctx, tx, companyID, updated.PropertyID, updated.ClientID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, companyID string) ([]View, error) {
	list, err := s.store.ListContracts(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.join(ctx, companyID, list)
}

func (s *Service) Get(ctx context.Context, companyID, id string) (*View, error) {
	c, err := s.store.GetContract(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	views, err := s.join(ctx, companyID, []models.Contract{*c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) join(ctx context.Context, companyID string, list []models.Contract) ([]View, error) {
	out := make([]View, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	props, err := s.store.ListProperties(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byProperty := make(map[string]*PropertyRef, len(props))
	for _, p := range props {
		byProperty[p.ID] = &PropertyRef{ID: p.ID, Title: p.Title, Address: p.Address, Status: p.Status}
	}

	clients, err := s.store.ListClients(ctx, companyID)
	if err != nil {
		return nil, err
	}
	byClient := make(map[string]*ClientRef, len(clients))
	for _, c := range clients {
		byClient[c.ID] = &ClientRef{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}
	}

	for _, c := range list {
		out = append(out, View{Contract: c, Property: byProperty[c.PropertyID], Client: byClient[c.ClientID]})
	}
	return out, nil
}
