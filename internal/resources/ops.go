package resources

import (
	"context"
	"errors"
	"fmt"

	"github.com/sbrock928/dealdesk/internal/activity"
	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/logger"
	natspkg "github.com/sbrock928/dealdesk/internal/nats"
	"github.com/sbrock928/dealdesk/internal/report"
)

// Service is the slice of the backend client the resource screens need.
type Service interface {
	ListUsers(ctx context.Context) ([]api.User, error)
	CreateUser(ctx context.Context, u api.User) (*api.User, error)
	UpdateUser(ctx context.Context, id int, u api.User) (*api.User, error)
	DeleteUser(ctx context.Context, id int) error

	ListEmployees(ctx context.Context) ([]api.Employee, error)
	CreateEmployee(ctx context.Context, e api.Employee) (*api.Employee, error)
	UpdateEmployee(ctx context.Context, id int, e api.Employee) (*api.Employee, error)
	DeleteEmployee(ctx context.Context, id int) error

	ListSubscribers(ctx context.Context) ([]api.Subscriber, error)
	CreateSubscriber(ctx context.Context, s api.Subscriber) (*api.Subscriber, error)
	UpdateSubscriber(ctx context.Context, id int, s api.Subscriber) (*api.Subscriber, error)
	DeleteSubscriber(ctx context.Context, id int) error
}

// Recorder appends to the local activity log. Nil disables recording.
type Recorder interface {
	Record(ctx context.Context, event activity.Event) (activity.Event, error)
}

// Ops validates resource forms and forwards them to the backend, recording
// each successful mutation in the activity log.
type Ops struct {
	svc  Service
	rec  Recorder
	user string
}

// NewOps creates the resource operations layer.
func NewOps(svc Service, rec Recorder, user string) *Ops {
	return &Ops{svc: svc, rec: rec, user: user}
}

// Result is the outcome of one resource mutation. FieldErrors is non-empty
// when local validation failed; Message carries a backend failure.
type Result struct {
	OK          bool
	FieldErrors []report.FieldError
	Message     string
}

func (o *Ops) failure(err error) Result {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return Result{Message: apiErr.UserMessage()}
	}
	logger.Error("resource call failed: %v", err)
	return Result{Message: "Could not reach the reporting service. Please try again."}
}

func (o *Ops) record(ctx context.Context, action, summary string) {
	if o.rec == nil {
		return
	}
	_, err := o.rec.Record(ctx, activity.Event{
		User:   o.user,
		Kind:   natspkg.KindResource,
		Action: action,
		Data:   summary,
	})
	if err != nil {
		// The mutation already succeeded; a lost audit entry is logged,
		// not surfaced.
		logger.Warn("recording activity: %v", err)
	}
}

// SaveUser creates or updates a user depending on id (0 creates).
func (o *Ops) SaveUser(ctx context.Context, id int, form UserForm) Result {
	if errs := ValidateForm(form); len(errs) > 0 {
		return Result{FieldErrors: errs}
	}

	u := form.ToAPI()
	if id == 0 {
		created, err := o.svc.CreateUser(ctx, u)
		if err != nil {
			return o.failure(err)
		}
		o.record(ctx, "created", fmt.Sprintf("user %s", created.Username))
		return Result{OK: true, Message: fmt.Sprintf("User %q created", created.Username)}
	}

	updated, err := o.svc.UpdateUser(ctx, id, u)
	if err != nil {
		return o.failure(err)
	}
	o.record(ctx, "updated", fmt.Sprintf("user %s", updated.Username))
	return Result{OK: true, Message: fmt.Sprintf("User %q updated", updated.Username)}
}

// DeleteUser removes a user record.
func (o *Ops) DeleteUser(ctx context.Context, u api.User) Result {
	if err := o.svc.DeleteUser(ctx, u.ID); err != nil {
		return o.failure(err)
	}
	o.record(ctx, "deleted", fmt.Sprintf("user %s", u.Username))
	return Result{OK: true, Message: fmt.Sprintf("User %q deleted", u.Username)}
}

// SaveEmployee creates or updates an employee depending on id (0 creates).
func (o *Ops) SaveEmployee(ctx context.Context, id int, form EmployeeForm) Result {
	if errs := ValidateForm(form); len(errs) > 0 {
		return Result{FieldErrors: errs}
	}

	e := form.ToAPI()
	if id == 0 {
		created, err := o.svc.CreateEmployee(ctx, e)
		if err != nil {
			return o.failure(err)
		}
		o.record(ctx, "created", fmt.Sprintf("employee %s %s", created.FirstName, created.LastName))
		return Result{OK: true, Message: "Employee created"}
	}

	updated, err := o.svc.UpdateEmployee(ctx, id, e)
	if err != nil {
		return o.failure(err)
	}
	o.record(ctx, "updated", fmt.Sprintf("employee %s %s", updated.FirstName, updated.LastName))
	return Result{OK: true, Message: "Employee updated"}
}

// DeleteEmployee removes an employee record.
func (o *Ops) DeleteEmployee(ctx context.Context, e api.Employee) Result {
	if err := o.svc.DeleteEmployee(ctx, e.ID); err != nil {
		return o.failure(err)
	}
	o.record(ctx, "deleted", fmt.Sprintf("employee %s %s", e.FirstName, e.LastName))
	return Result{OK: true, Message: "Employee deleted"}
}

// SaveSubscriber creates or updates a subscriber depending on id (0 creates).
func (o *Ops) SaveSubscriber(ctx context.Context, id int, form SubscriberForm) Result {
	if errs := ValidateForm(form); len(errs) > 0 {
		return Result{FieldErrors: errs}
	}

	s := form.ToAPI()
	if id == 0 {
		created, err := o.svc.CreateSubscriber(ctx, s)
		if err != nil {
			return o.failure(err)
		}
		o.record(ctx, "created", fmt.Sprintf("subscriber %s", created.Name))
		return Result{OK: true, Message: fmt.Sprintf("Subscriber %q created", created.Name)}
	}

	updated, err := o.svc.UpdateSubscriber(ctx, id, s)
	if err != nil {
		return o.failure(err)
	}
	o.record(ctx, "updated", fmt.Sprintf("subscriber %s", updated.Name))
	return Result{OK: true, Message: fmt.Sprintf("Subscriber %q updated", updated.Name)}
}

// DeleteSubscriber removes a subscriber record.
func (o *Ops) DeleteSubscriber(ctx context.Context, s api.Subscriber) Result {
	if err := o.svc.DeleteSubscriber(ctx, s.ID); err != nil {
		return o.failure(err)
	}
	o.record(ctx, "deleted", fmt.Sprintf("subscriber %s", s.Name))
	return Result{OK: true, Message: fmt.Sprintf("Subscriber %q deleted", s.Name)}
}
