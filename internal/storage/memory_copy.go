package storage

import "github.com/oarthurdev/vortex-gestao/internal/models"

// Snapshot copies for MemStorage.Transact. Every pointer and slice field is
// duplicated so a mutator writing through one cannot reach the snapshot.

func dup[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func dupSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func copyCompany(c models.Company) models.Company {
	c.Phone, c.Address = dup(c.Phone), dup(c.Address)
	return c
}

func copyProperty(p models.Property) models.Property {
	p.Description = dup(p.Description)
	p.Bedrooms, p.Bathrooms, p.ParkingSpaces = dup(p.Bedrooms), dup(p.Bathrooms), dup(p.ParkingSpaces)
	p.Images = dupSlice(p.Images)
	return p
}

func copyClient(c models.Client) models.Client {
	c.Document, c.Source = dup(c.Document), dup(c.Source)
	c.Address, c.Notes = dup(c.Address), dup(c.Notes)
	c.Tags = dupSlice(c.Tags)
	c.LastContactAt, c.NextFollowUp = dup(c.LastContactAt), dup(c.NextFollowUp)
	return c
}

func copyInteraction(i models.ClientInteraction) models.ClientInteraction {
	i.Channel, i.Stage = dup(i.Channel), dup(i.Stage)
	i.NextSteps, i.CreatedBy = dup(i.NextSteps), dup(i.CreatedBy)
	i.NextFollowUp = dup(i.NextFollowUp)
	return i
}

func copyAppointment(a models.Appointment) models.Appointment {
	a.PropertyID, a.Notes, a.AgentName = dup(a.PropertyID), dup(a.Notes), dup(a.AgentName)
	a.Channel = dup(a.Channel)
	return a
}

func copyContract(c models.Contract) models.Contract {
	c.EndDate, c.Terms = dup(c.EndDate), dup(c.Terms)
	return c
}

func copyTransaction(t models.Transaction) models.Transaction {
	t.PaidDate, t.ContractID = dup(t.PaidDate), dup(t.ContractID)
	return t
}

func copyConstruction(c models.Construction) models.Construction {
	c.Description, c.Notes = dup(c.Description), dup(c.Notes)
	c.StartDate, c.EndDate, c.ExpectedEndDate = dup(c.StartDate), dup(c.EndDate), dup(c.ExpectedEndDate)
	c.Contractor, c.ContractorContact = dup(c.Contractor), dup(c.ContractorContact)
	return c
}

func copyTask(t models.ConstructionTask) models.ConstructionTask {
	t.Description, t.AssignedTo = dup(t.Description), dup(t.AssignedTo)
	t.StartDate, t.EndDate = dup(t.StartDate), dup(t.EndDate)
	return t
}

func copyExpense(e models.ConstructionExpense) models.ConstructionExpense {
	e.Supplier, e.Receipt, e.Notes = dup(e.Supplier), dup(e.Receipt), dup(e.Notes)
	return e
}

func copyActivity(a models.Activity) models.Activity {
	a.UserID, a.Description = dup(a.UserID), dup(a.Description)
	a.EntityType, a.EntityID = dup(a.EntityType), dup(a.EntityID)
	return a
}
