package frontdesk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tunestudio/pkg/client"
	"tunestudio/pkg/model"
	"tunestudio/pkg/phone"
)

const IntakeFlowName = "intake"

type ClientsAPI interface {
	GetByPhone(ctx context.Context, phone string) (*model.Client, error)
	Create(ctx context.Context, in *model.Client) (*model.Client, error)
}

type OrdersAPI interface {
	Create(ctx context.Context, in *model.Order) (*model.Order, error)
}

// Intake is what the front desk collects when a car arrives.
type Intake struct {
	Name     string
	Phone    string
	Email    string
	Car      *model.Car
	Items    []model.OrderItem
	Currency string
	Comment  string
}

type State struct {
	Input Intake

	Phone         string
	Client        *model.Client
	ClientCreated bool
	Order         *model.Order

	Completed []string
}

func NewState(in Intake) *State {
	return &State{Input: in}
}

// IntakeFlow finds the client by phone, registers them when unknown and opens
// an order when work items were given.
type IntakeFlow struct {
	clients ClientsAPI
	orders  OrdersAPI
}

func NewIntakeFlow(clients ClientsAPI, orders OrdersAPI) *IntakeFlow {
	return &IntakeFlow{clients: clients, orders: orders}
}

func (f *IntakeFlow) Name() string {
	return IntakeFlowName
}

func (f *IntakeFlow) Steps() []Step {
	return []Step{
		{Name: "normalize_phone", Execute: f.normalizePhone},
		{Name: "find_client", Execute: f.findClient},
		{Name: "register_client", Execute: f.registerClient},
		{Name: "open_order", Execute: f.openOrder},
	}
}

func (f *IntakeFlow) normalizePhone(_ context.Context, s *State) error {
	if s.Input.Phone == "" {
		return MissingParamErr("phone")
	}
	if !phone.IsCanonical(phone.Normalize(s.Input.Phone)) {
		return fmt.Errorf("%q is not a valid phone number", s.Input.Phone)
	}
	s.Phone = phone.Format(s.Input.Phone)
	return nil
}

func (f *IntakeFlow) findClient(ctx context.Context, s *State) error {
	c, err := f.clients.GetByPhone(ctx, s.Phone)
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil
		}
		return err
	}
	s.Client = c
	return nil
}

func (f *IntakeFlow) registerClient(ctx context.Context, s *State) error {
	if s.Client != nil {
		return nil
	}
	if s.Input.Name == "" {
		return MissingParamErr("name")
	}

	in := &model.Client{
		Name:  s.Input.Name,
		Phone: s.Phone,
		Email: s.Input.Email,
	}
	if s.Input.Car != nil {
		in.Cars = []model.Car{*s.Input.Car}
	}

	c, err := f.clients.Create(ctx, in)
	if err != nil {
		return err
	}
	s.Client = c
	s.ClientCreated = true
	return nil
}

func (f *IntakeFlow) openOrder(ctx context.Context, s *State) error {
	if len(s.Input.Items) == 0 {
		return nil
	}

	o, err := f.orders.Create(ctx, &model.Order{
		ClientID: s.Client.ID,
		Car:      s.Input.Car,
		Items:    s.Input.Items,
		Currency: s.Input.Currency,
		Comment:  s.Input.Comment,
	})
	if err != nil {
		return err
	}
	s.Order = o
	return nil
}
