package quiz

import "errors"

var (
	ErrUnsupportedPurchase = errors.New("unsupported purchase payload")
	ErrMissingChargeID     = errors.New("missing charge id")
	ErrInvalidDifficulty   = errors.New("difficulty must be between 1 and 5")
	ErrInvalidOption       = errors.New("option must be between 1 and 4")
	ErrUnknownMetric       = errors.New("unknown leaderboard metric")
	ErrUnknownRole         = errors.New("unknown admin role")
	ErrTopicNotFound       = errors.New("topic not found or inactive")
	ErrUserNotFound        = errors.New("user not found")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrForbidden           = errors.New("forbidden")

	// ErrAnswerPending rejects a pick while the active question is still unanswered.
	ErrAnswerPending = errors.New("active question not answered yet")
)
