package models

import (
	"encoding/json"
	"fmt"
)

// EnumError is returned while decoding a payload that carries a value outside
// one of the closed enumerations below.
type EnumError struct {
	Field string
	Enum  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("valor inválido para %s: %q", e.Enum, e.Value)
}

func unmarshalEnum[T ~string](data []byte, field, enum string, valid func(T) bool, out *T) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &EnumError{Field: field, Enum: enum, Value: string(data)}
	}
	v := T(s)
	if !valid(v) {
		return &EnumError{Field: field, Enum: enum, Value: s}
	}
	*out = v
	return nil
}

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleCorretor   UserRole = "corretor"
	RoleFinanceiro UserRole = "financeiro"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCorretor, RoleFinanceiro:
		return true
	}
	return false
}

func (r *UserRole) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "role", "perfil de usuário", UserRole.Valid, r)
}

type PropertyType string

const (
	PropertyApartamento PropertyType = "apartamento"
	PropertyCasa        PropertyType = "casa"
	PropertyComercial   PropertyType = "comercial"
	PropertyTerreno     PropertyType = "terreno"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyApartamento, PropertyCasa, PropertyComercial, PropertyTerreno:
		return true
	}
	return false
}

func (t *PropertyType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "type", "tipo de imóvel", PropertyType.Valid, t)
}

type PropertyStatus string

const (
	PropertyDisponivel PropertyStatus = "disponivel"
	PropertyAlugado    PropertyStatus = "alugado"
	PropertyVendido    PropertyStatus = "vendido"
	PropertyManutencao PropertyStatus = "manutencao"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyDisponivel, PropertyAlugado, PropertyVendido, PropertyManutencao:
		return true
	}
	return false
}

func (s *PropertyStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", "status do imóvel", PropertyStatus.Valid, s)
}

type ClientType string

const (
	ClientLead         ClientType = "lead"
	ClientProprietario ClientType = "proprietario"
	ClientLocatario    ClientType = "locatario"
	ClientComprador    ClientType = "comprador"
)

func (t ClientType) Valid() bool {
	switch t {
	case ClientLead, ClientProprietario, ClientLocatario, ClientComprador:
		return true
	}
	return false
}

func (t *ClientType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "type", "tipo de cliente", ClientType.Valid, t)
}

// ClientStage is the client's position in the sales pipeline.
type ClientStage string

const (
	StageNovo           ClientStage = "novo"
	StageQualificado    ClientStage = "qualificado"
	StageVisitaAgendada ClientStage = "visita_agendada"
	StageProposta       ClientStage = "proposta"
	StageFechado        ClientStage = "fechado"
	StagePerdido        ClientStage = "perdido"
)

// ClientStages lists every stage in pipeline order.
var ClientStages = []ClientStage{
	StageNovo,
	StageQualificado,
	StageVisitaAgendada,
	StageProposta,
	StageFechado,
	StagePerdido,
}

func (s ClientStage) Valid() bool {
	switch s {
	case StageNovo, StageQualificado, StageVisitaAgendada, StageProposta, StageFechado, StagePerdido:
		return true
	}
	return false
}

func (s *ClientStage) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "stage", "etapa do funil", ClientStage.Valid, s)
}

type InteractionType string

const (
	InteractionTelefone   InteractionType = "contato_telefonico"
	InteractionWhatsapp   InteractionType = "whatsapp"
	InteractionEmail      InteractionType = "email"
	InteractionVisita     InteractionType = "visita"
	InteractionProposta   InteractionType = "proposta"
	InteractionAssinatura InteractionType = "assinatura"
)

func (t InteractionType) Valid() bool {
	switch t {
	case InteractionTelefone, InteractionWhatsapp, InteractionEmail, InteractionVisita, InteractionProposta, InteractionAssinatura:
		return true
	}
	return false
}

func (t *InteractionType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "type", "tipo de interação", InteractionType.Valid, t)
}

type Channel string

const (
	ChannelTelefone   Channel = "telefone"
	ChannelWhatsapp   Channel = "whatsapp"
	ChannelEmail      Channel = "email"
	ChannelPresencial Channel = "presencial"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelTelefone, ChannelWhatsapp, ChannelEmail, ChannelPresencial:
		return true
	}
	return false
}

func (c *Channel) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "channel", "canal", Channel.Valid, c)
}

type AppointmentType string

const (
	AppointmentVisita   AppointmentType = "visita"
	AppointmentReuniao  AppointmentType = "reuniao"
	AppointmentVistoria AppointmentType = "vistoria"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentVisita, AppointmentReuniao, AppointmentVistoria:
		return true
	}
	return false
}

func (t *AppointmentType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "type", "tipo de agendamento", AppointmentType.Valid, t)
}

type AppointmentStatus string

const (
	AppointmentAgendado   AppointmentStatus = "agendado"
	AppointmentConfirmado AppointmentStatus = "confirmado"
	AppointmentRealizado  AppointmentStatus = "realizado"
	AppointmentCancelado  AppointmentStatus = "cancelado"
	AppointmentNoShow     AppointmentStatus = "no_show"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentAgendado, AppointmentConfirmado, AppointmentRealizado, AppointmentCancelado, AppointmentNoShow:
		return true
	}
	return false
}

func (s *AppointmentStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", "status do agendamento", AppointmentStatus.Valid, s)
}

type ContractType string

const (
	ContractLocacao ContractType = "locacao"
	ContractVenda   ContractType = "venda"
)

func (t ContractType) Valid() bool {
	return t == ContractLocacao || t == ContractVenda
}

func (t *ContractType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "type", "tipo de contrato", ContractType.Valid, t)
}

type ContractStatus string

const (
	ContractAtivo     ContractStatus = "ativo"
	ContractVencido   ContractStatus = "vencido"
	ContractCancelado ContractStatus = "cancelado"
	ContractRenovado  ContractStatus = "renovado"
)

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractAtivo, ContractVencido, ContractCancelado, ContractRenovado:
		return true
	}
	return false
}

func (s *ContractStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", "status do contrato", ContractStatus.Valid, s)
}

type TransactionType string

const (
	TransactionReceita TransactionType = "receita"
	TransactionDespesa TransactionType = "despesa"
)

func (t TransactionType) Valid() bool {
	return t == TransactionReceita || t == TransactionDespesa
}

func (t *TransactionType) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "type", "tipo de transação", TransactionType.Valid, t)
}

type TransactionStatus string

const (
	TransactionPendente TransactionStatus = "pendente"
	TransactionPago     TransactionStatus = "pago"
	TransactionVencido  TransactionStatus = "vencido"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionPendente, TransactionPago, TransactionVencido:
		return true
	}
	return false
}

func (s *TransactionStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", "status da transação", TransactionStatus.Valid, s)
}

type ConstructionStatus string

const (
	ConstructionPlanejamento ConstructionStatus = "planejamento"
	ConstructionEmAndamento  ConstructionStatus = "em_andamento"
	ConstructionPausada      ConstructionStatus = "pausada"
	ConstructionConcluida    ConstructionStatus = "concluida"
	ConstructionCancelada    ConstructionStatus = "cancelada"
)

func (s ConstructionStatus) Valid() bool {
	switch s {
	case ConstructionPlanejamento, ConstructionEmAndamento, ConstructionPausada, ConstructionConcluida, ConstructionCancelada:
		return true
	}
	return false
}

func (s *ConstructionStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", "status da obra", ConstructionStatus.Valid, s)
}

type TaskStatus string

const (
	TaskPendente    TaskStatus = "pendente"
	TaskEmAndamento TaskStatus = "em_andamento"
	TaskConcluida   TaskStatus = "concluida"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPendente, TaskEmAndamento, TaskConcluida:
		return true
	}
	return false
}

func (s *TaskStatus) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "status", "status da tarefa", TaskStatus.Valid, s)
}

type TaskPriority string

const (
	PriorityBaixa TaskPriority = "baixa"
	PriorityMedia TaskPriority = "media"
	PriorityAlta  TaskPriority = "alta"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityBaixa, PriorityMedia, PriorityAlta:
		return true
	}
	return false
}

func (p *TaskPriority) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "priority", "prioridade", TaskPriority.Valid, p)
}

type ExpenseCategory string

const (
	ExpenseMaterial    ExpenseCategory = "material"
	ExpenseMaoDeObra   ExpenseCategory = "mao_de_obra"
	ExpenseEquipamento ExpenseCategory = "equipamento"
	ExpenseOutros      ExpenseCategory = "outros"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseMaterial, ExpenseMaoDeObra, ExpenseEquipamento, ExpenseOutros:
		return true
	}
	return false
}

func (c *ExpenseCategory) UnmarshalJSON(b []byte) error {
	return unmarshalEnum(b, "category", "categoria de despesa", ExpenseCategory.Valid, c)
}
