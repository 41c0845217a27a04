package usecase

import (
	"errors"
	"net/http"

	"linkedin-assistant/internal/domain"
)

// Caller-safe messages for failure kinds whose upstream detail must not
// leak.
const (
	msgServiceUnavailable = "Service temporarily unavailable. Please try again later."
	msgRateLimited        = "Rate limit exceeded. Please try again later."
	msgUnexpected         = "An unexpected error occurred"
)

// Outcome is the outward-facing translation of a chat failure: an HTTP
// status, a caller-safe message and a machine code.
type Outcome struct {
	StatusCode int
	Message    string
	Code       domain.ErrorCode
}

// Classifier maps orchestrator failures to outward categories. It is a pure
// total function over the domain's failure kinds and is invoked exactly once
// per request, at the boundary.
type Classifier struct{}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// chatDomainSentinels are the failure kinds whose detail is preserved
// verbatim for the caller: they originate in this service's own chat
// domain (tool dispatch, protocol violations, the turn limit), and their
// text aids tool-integration debugging.
var chatDomainSentinels = []error{
	domain.ErrChatFailure,
	domain.ErrToolFailure,
	domain.ErrToolNotFound,
	domain.ErrInvalidArguments,
	domain.ErrTurnLimit,
	domain.ErrExtractorFailure,
}

// Classify translates err into its outward category.
//
//	model unavailable      -> 503, detail surfaced verbatim
//	transport failure      -> 503, generic retry-later message
//	rate limited           -> 429, generic retry-later message
//	chat-domain failure    -> 500, detail surfaced verbatim
//	anything unclassified  -> 500, generic message, no detail leaked
func (c *Classifier) Classify(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{StatusCode: http.StatusOK, Code: domain.CodeUnknown}

	case errors.Is(err, domain.ErrModelUnavailable):
		return Outcome{
			StatusCode: http.StatusServiceUnavailable,
			Message:    err.Error(),
			Code:       domain.CodeModelUnavailable,
		}

	case errors.Is(err, domain.ErrProviderUnreachable):
		return Outcome{
			StatusCode: http.StatusServiceUnavailable,
			Message:    msgServiceUnavailable,
			Code:       domain.CodeProviderUnreachable,
		}

	case errors.Is(err, domain.ErrRateLimit):
		return Outcome{
			StatusCode: http.StatusTooManyRequests,
			Message:    msgRateLimited,
			Code:       domain.CodeRateLimit,
		}
	}

	for _, sentinel := range chatDomainSentinels {
		if errors.Is(err, sentinel) {
			return Outcome{
				StatusCode: http.StatusInternalServerError,
				Message:    err.Error(),
				Code:       domain.ErrorCodeOf(err),
			}
		}
	}

	return Outcome{
		StatusCode: http.StatusInternalServerError,
		Message:    msgUnexpected,
		Code:       domain.CodeUnknown,
	}
}
