package report

import (
	"context"
	"errors"

	"github.com/sbrock928/dealdesk/internal/api"
	"github.com/sbrock928/dealdesk/internal/logger"
)

// ReportService is the slice of the backend client the operations need.
type ReportService interface {
	CreateReport(ctx context.Context, req api.ReportRequest) (*api.ReportConfig, error)
	UpdateReport(ctx context.Context, id int, req api.ReportRequest) (*api.ReportConfig, error)
}

// Identity is the acting user, passed explicitly instead of read from any
// ambient global.
type Identity struct {
	Username string
}

// NoticeLevel classifies a user-facing notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is one transient user-facing message. Field is set for validation
// errors attributed to a form field.
type Notice struct {
	Level   NoticeLevel
	Field   string
	Message string
}

// Ops orchestrates report save/update: pre-validate, build the payload,
// call the backend, and normalize outcomes into notices. Validation
// failures are local and never reach the network; backend failures surface
// as one notice and leave the draft untouched so the user can retry.
type Ops struct {
	svc    ReportService
	id     Identity
	notify func(Notice)
}

// NewOps creates the operations layer. notify must be non-nil.
func NewOps(svc ReportService, id Identity, notify func(Notice)) *Ops {
	return &Ops{svc: svc, id: id, notify: notify}
}

// SaveNew validates the draft and creates a new report. Each validation
// error is surfaced individually and the call returns before any network
// traffic. On success the onSuccess callback runs and the draft is reset.
func (o *Ops) SaveNew(ctx context.Context, d *Draft, onSuccess func(*api.ReportConfig)) bool {
	if !o.preValidate(d) {
		return false
	}

	req := BuildReportRequest(d, o.id.Username)
	cfg, err := o.svc.CreateReport(ctx, req)
	if err != nil {
		o.notifyAPIError(err)
		return false
	}

	logger.Info("report %q created (id=%d)", cfg.Name, cfg.ID)
	o.notify(Notice{Level: NoticeInfo, Message: "Report \"" + cfg.Name + "\" saved"})
	if onSuccess != nil {
		onSuccess(cfg)
	}
	d.Reset()
	return true
}

// UpdateExisting validates the draft and patches the report with the given
// id. The draft is kept as-is on success (edit-in-place).
func (o *Ops) UpdateExisting(ctx context.Context, id int, d *Draft, onSuccess func(*api.ReportConfig)) bool {
	if !o.preValidate(d) {
		return false
	}

	req := BuildReportRequest(d, o.id.Username)
	cfg, err := o.svc.UpdateReport(ctx, id, req)
	if err != nil {
		o.notifyAPIError(err)
		return false
	}

	logger.Info("report %q updated (id=%d)", cfg.Name, cfg.ID)
	o.notify(Notice{Level: NoticeInfo, Message: "Report \"" + cfg.Name + "\" updated"})
	if onSuccess != nil {
		onSuccess(cfg)
	}
	return true
}

// SaveOrUpdate dispatches on edit mode.
func (o *Ops) SaveOrUpdate(ctx context.Context, d *Draft, editing *api.ReportConfig, isEditMode bool, onSuccess func(*api.ReportConfig)) bool {
	if isEditMode && editing != nil {
		return o.UpdateExisting(ctx, editing.ID, d, onSuccess)
	}
	return o.SaveNew(ctx, d, onSuccess)
}

func (o *Ops) preValidate(d *Draft) bool {
	res := ValidateAll(d)
	if res.Valid {
		return true
	}
	for _, fe := range res.Errors {
		o.notify(Notice{Level: NoticeError, Field: fe.Field, Message: fe.Message})
	}
	return false
}

func (o *Ops) notifyAPIError(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		o.notify(Notice{Level: NoticeError, Message: apiErr.UserMessage()})
		return
	}
	logger.Error("report save failed: %v", err)
	o.notify(Notice{Level: NoticeError, Message: "Could not reach the reporting service. Please try again."})
}
