package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/domain"
	portssvc "github.com/ikymasie/KIKA-MONOREPO-sub003/internal/core/ports/services"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/middleware"
	"github.com/ikymasie/KIKA-MONOREPO-sub003/internal/utils"
)

// ErrMissingPhone is returned when a guarantor has no phone number to message.
var ErrMissingPhone = errors.New("guarantor has no phone number")

// LogNotifier composes the guarantor SMS and writes it to the request logger.
// Delivery through an SMS gateway is handled outside this service.
type LogNotifier struct{}

// NewLogNotifier creates a notifier that logs outgoing guarantor messages.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

var _ portssvc.GuarantorNotifier = (*LogNotifier)(nil)

// NotifyGuarantor implements portssvc.GuarantorNotifier.
func (n *LogNotifier) NotifyGuarantor(ctx context.Context, notification domain.GuarantorNotification) error {
	if notification.Phone == "" {
		return fmt.Errorf("%w: member %s", ErrMissingPhone, notification.GuarantorMemberID)
	}
	middleware.GetLoggerFromCtx(ctx).Info("Guarantor notification queued",
		slog.String("method", notification.Method),
		slog.String("to", notification.Phone),
		slog.String("loan_id", notification.LoanID),
		slog.String("guarantor_record_id", notification.GuarantorRecordID),
		slog.String("message", ComposeMessage(notification)),
	)
	return nil
}

// ComposeMessage renders the text sent to a guarantor.
func ComposeMessage(n domain.GuarantorNotification) string {
	return fmt.Sprintf(
		"You have been requested to guarantee a loan of %s for %s. Please respond by %s. Login to KIKA to accept or reject.",
		utils.FormatPula(n.LoanAmount),
		n.ApplicantName,
		n.ResponseDeadline.Format("02 Jan 2006"),
	)
}
