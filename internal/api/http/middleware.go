package http

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/request-workflow/internal/observability"
	"github.com/spec-kit/request-workflow/internal/workflow"
	"github.com/spec-kit/request-workflow/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = util.NewInternalError(nil)
			}
			if err != nil {
				domainErr := mapWorkflowError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// mapWorkflowError translates coordinator failures into transport errors
// before the generic mapping runs. Submission failures unwrap to the
// underlying cause so repository errors keep their own status codes.
func mapWorkflowError(err error) *util.DomainError {
	var submission *workflow.SubmissionError
	if errors.As(err, &submission) {
		err = submission.Err
	}

	switch {
	case errors.Is(err, workflow.ErrSubmissionInFlight):
		return util.ToDomainError(util.NewProcessing("a submission is already in flight for this session"))
	case errors.Is(err, workflow.ErrNoPendingAction):
		return util.NewDomainError("NO_PENDING_ACTION", "no action is awaiting a remark", http.StatusBadRequest, nil)
	}

	var validation *workflow.ValidationError
	if errors.As(err, &validation) {
		return util.NewDomainError("VALIDATION_FAILED", validation.Error(), http.StatusBadRequest,
			map[string]any{"field": validation.Field})
	}

	var mismatch *workflow.AuthorizationMismatchError
	if errors.As(err, &mismatch) {
		return util.NewDomainError("ACTION_NOT_PERMITTED", mismatch.Error(), http.StatusForbidden,
			map[string]any{"action": mismatch.Action, "stage": mismatch.Stage, "status": mismatch.Status})
	}

	return util.ToDomainError(err)
}
