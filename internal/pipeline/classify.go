package pipeline

import (
	"net/http"
	"strings"

	apperrors "github.com/corpdir/api/internal/pkg/errors"
)

// Envelope messages that do not come from the failure itself.
const (
	InternalErrorMessage = "Internal server error"
	ConflictMessage      = "Resource already exists"
)

// ErrorEnvelope is the JSON body written for a failed request.
type ErrorEnvelope struct {
	Message string `json:"message"`
	Fields  string `json:"fields,omitempty"`
}

// Classifier maps failures to HTTP responses.
type Classifier struct {
	// StripDepth is the number of leading wrapper segments ("payload",
	// "criteria") removed from validation field paths. The last segment of
	// a path is always kept.
	StripDepth int
}

// NewClassifier creates a Classifier.
func NewClassifier(stripDepth int) *Classifier {
	return &Classifier{StripDepth: stripDepth}
}

// Classify returns the status code and envelope for err. It never panics;
// anything it cannot classify becomes a 500 with a generic message.
func (c *Classifier) Classify(err error) (status int, envelope ErrorEnvelope) {
	defer func() {
		if r := recover(); r != nil {
			status, envelope = http.StatusInternalServerError, ErrorEnvelope{Message: InternalErrorMessage}
		}
	}()

	if err == nil {
		return http.StatusInternalServerError, ErrorEnvelope{Message: InternalErrorMessage}
	}

	appErr := apperrors.GetAppError(err)
	if appErr != nil && appErr.Code == apperrors.CodeValidation {
		return http.StatusBadRequest, c.validationEnvelope(appErr)
	}

	if ue := apperrors.GetUniqueConstraintError(err); ue != nil {
		msg := ConflictMessage
		if len(ue.Violations) > 0 && ue.Violations[0].Message != "" {
			msg = ue.Violations[0].Message
		}
		return http.StatusConflict, ErrorEnvelope{Message: msg}
	}

	if appErr != nil && appErr.StatusCode >= 400 && appErr.StatusCode < 500 {
		return appErr.StatusCode, ErrorEnvelope{Message: appErr.Message}
	}

	return http.StatusInternalServerError, ErrorEnvelope{Message: InternalErrorMessage}
}

func (c *Classifier) validationEnvelope(appErr *apperrors.AppError) ErrorEnvelope {
	if len(appErr.Violations) == 0 {
		return ErrorEnvelope{Message: appErr.Message}
	}

	messages := make([]string, 0, len(appErr.Violations))
	fields := make([]string, 0, len(appErr.Violations))
	for _, v := range appErr.Violations {
		if v.Message != "" {
			messages = append(messages, v.Message)
		}
		fields = append(fields, strings.Join(c.strip(v.Path), "."))
	}

	return ErrorEnvelope{
		Message: strings.Join(messages, ", "),
		Fields:  strings.Join(fields, ", "),
	}
}

func (c *Classifier) strip(path []string) []string {
	depth := c.StripDepth
	if depth > len(path)-1 {
		depth = len(path) - 1
	}
	if depth <= 0 {
		return path
	}
	return path[depth:]
}
